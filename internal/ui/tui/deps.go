package tui

import (
	"log/slog"

	"github.com/pnordq/pnfem/internal/domain"
	"github.com/pnordq/pnfem/internal/ports"
	"github.com/pnordq/pnfem/internal/usecase"
)

// ModelFiles is the model store plus name resolution for the Open/Save As prompt.
type ModelFiles interface {
	ports.ModelStore
	ResolvePath(root, nameOrPath string) string
}

type Deps struct {
	Root           string
	WorkspaceFound bool
	Config         domain.Config

	Models  ModelFiles
	Execute *usecase.ExecuteModel
	Study   *usecase.ParamStudy
	Thread  *usecase.SolverThread
	Figures *usecase.RenderFigures

	Logger *slog.Logger
	Debug  bool
}
