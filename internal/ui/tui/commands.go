package tui

import (
	"context"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pnordq/pnfem/internal/domain"
	"github.com/pnordq/pnfem/internal/infra/jsonmodel"
	"github.com/pnordq/pnfem/internal/usecase"
)

// studyFields only feed the parameter study.
var studyFields = map[string]bool{"b, end": true, "q, end": true, "paramSteps": true}

// calcIssues returns what blocks Execute: calculation issues and unparsable
// calculation fields.
func calcIssues(verr *domain.ValidationError) *domain.ValidationError {
	if verr == nil {
		return nil
	}
	var out []domain.Issue
	for _, is := range verr.Issues {
		switch {
		case is.Group == domain.GroupCalcInputs:
			out = append(out, is)
		case is.Group == domain.GroupTextInput && !studyFields[is.Field]:
			out = append(out, is)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return &domain.ValidationError{Issues: out}
}

// saveIssues returns what blocks Save: any calculation issue or unparsable field.
func saveIssues(verr *domain.ValidationError) *domain.ValidationError {
	return verr.Filter(domain.GroupCalcInputs, domain.GroupTextInput)
}

// studyIssues returns what blocks a study of param.
func studyIssues(in domain.InputData, verr *domain.ValidationError, param domain.StudyParam) *domain.ValidationError {
	var out []domain.Issue
	if calc := calcIssues(verr); calc != nil {
		out = append(out, calc.Issues...)
	}
	if verr != nil {
		for _, is := range verr.Issues {
			if is.Group != domain.GroupTextInput || !studyFields[is.Field] {
				continue
			}
			if is.Field == "paramSteps" || (param == domain.StudyB && is.Field == "b, end") || (param == domain.StudyQ && is.Field == "q, end") {
				out = append(out, is)
			}
		}
	}
	if len(out) == 0 {
		if study := usecase.Check(in, param); study != nil {
			return study
		}
		return nil
	}
	return &domain.ValidationError{Issues: out}
}

func cmdLoadModel(models ModelFiles, path string) tea.Cmd {
	return func() tea.Msg {
		in, err := models.LoadModel(path)
		return modelLoadedMsg{path: path, in: in, err: err}
	}
}

func cmdSaveModel(models ModelFiles, path string, in domain.InputData) tea.Cmd {
	return func() tea.Msg {
		return modelSavedMsg{path: path, err: models.SaveModel(path, in)}
	}
}

func cmdListModels(models ModelFiles, root string) tea.Cmd {
	return func() tea.Msg {
		refs, err := models.ListModels(root)
		return modelsListedMsg{refs: refs, err: err}
	}
}

// startJob hands a job to the worker and waits for its finished signal.
func startJob(ctx context.Context, thread *usecase.SolverThread, kind domain.RunKind, job usecase.Job) (string, tea.Cmd, error) {
	id, done, err := thread.Start(ctx, job)
	if err != nil {
		return "", nil, err
	}
	return id, waitDone(kind, done), nil
}

func waitDone(kind domain.RunKind, done <-chan usecase.Done) tea.Cmd {
	return func() tea.Msg {
		return solverDoneMsg{kind: kind, done: <-done}
	}
}

func cmdRenderFigure(uc *usecase.RenderFigures, out *domain.OutputData, dir string, kind domain.FigureKind, opts domain.FigureOptions) tea.Cmd {
	return func() tea.Msg {
		paths, err := uc.Execute(out, dir, "", []domain.FigureKind{kind}, opts, true)
		return figuresDoneMsg{kind: kind, paths: paths, err: err}
	}
}

// resolveModelPath turns prompt input into a model file path.
func resolveModelPath(deps Deps, s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	p := deps.Models.ResolvePath(deps.Root, s)
	if !filepath.IsAbs(p) && (strings.ContainsAny(s, `/\`) || filepath.Ext(s) != "") {
		p = filepath.Join(deps.Root, p)
	}
	if filepath.Ext(p) == "" {
		p += jsonmodel.Ext
	}
	return p
}

func modelName(path string) string {
	if path == "" {
		return "untitled"
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
