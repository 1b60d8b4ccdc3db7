package tui

import (
	"github.com/pnordq/pnfem/internal/domain"
	"github.com/pnordq/pnfem/internal/usecase"
)

type modelLoadedMsg struct {
	path string
	in   domain.InputData
	err  error
}

type modelSavedMsg struct {
	path string
	err  error
}

type modelsListedMsg struct {
	refs []domain.ModelRef
	err  error
}

// solverDoneMsg is the worker's finished signal.
type solverDoneMsg struct {
	kind domain.RunKind
	done usecase.Done
}

type figuresDoneMsg struct {
	kind  domain.FigureKind
	paths []string
	err   error
}
