package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pnordq/pnfem/internal/domain"
	"github.com/pnordq/pnfem/internal/infra/cdfexport"
	"github.com/pnordq/pnfem/internal/infra/config"
	"github.com/pnordq/pnfem/internal/infra/femsolver"
	"github.com/pnordq/pnfem/internal/infra/figures"
	"github.com/pnordq/pnfem/internal/infra/fsworkspace"
	"github.com/pnordq/pnfem/internal/infra/jsonmodel"
	"github.com/pnordq/pnfem/internal/infra/logger"
	"github.com/pnordq/pnfem/internal/infra/runstore"
	"github.com/pnordq/pnfem/internal/infra/shpexport"
	"github.com/pnordq/pnfem/internal/infra/viewer"
	"github.com/pnordq/pnfem/internal/infra/vtkexport"
	"github.com/pnordq/pnfem/internal/infra/workspacefinder"
	"github.com/pnordq/pnfem/internal/ports"
	"github.com/pnordq/pnfem/internal/report"
	"github.com/pnordq/pnfem/internal/usecase"
)

type workspaceCtx struct {
	root string
	cfg  domain.Config

	models   *jsonmodel.Store
	store    *runstore.JSONStore
	solver   *femsolver.Solver
	vtk      *vtkexport.Exporter
	workbook *report.Workbook
	figures  *figures.Renderer
	viewer   *viewer.Viewer
}

func loadWorkspace(workspaceFlag string) (*workspaceCtx, error) {
	root, err := resolveWorkspaceRoot(workspaceFlag)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	return newWorkspaceCtx(root, cfg), nil
}

func newWorkspaceCtx(root string, cfg domain.Config) *workspaceCtx {
	return &workspaceCtx{
		root:     root,
		cfg:      cfg,
		models:   jsonmodel.NewStore(jsonmodel.WithModelsDir(cfg.Paths.ModelsDir)),
		store:    runstore.NewJSONStore(root, cfg, runstore.WithIndex(true)),
		solver:   femsolver.New(femsolver.ConfigFrom(cfg.Solver), femsolver.WithLogger(logger.L())),
		vtk:      vtkexport.New(),
		workbook: report.NewWorkbook(),
		figures:  figures.New(),
		viewer:   viewer.New(),
	}
}

// dir resolves a configured workspace directory against the root.
func (ws *workspaceCtx) dir(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(ws.root, rel)
}

// runStore is nil when the run should not be saved.
func (ws *workspaceCtx) runStore(noSave bool) ports.ArtifactStore {
	if noSave {
		return nil
	}
	return ws.store
}

func (ws *workspaceCtx) executeModel(noSave bool) *usecase.ExecuteModel {
	return usecase.NewExecuteModel(ws.solver, ws.runStore(noSave), ws.cfg.Checks, usecase.WithLogger(logger.L()))
}

func (ws *workspaceCtx) studyDirs() usecase.StudyDirs {
	return usecase.StudyDirs{
		VTK:     ws.dir(ws.cfg.Paths.VTKDir),
		Figures: ws.dir(ws.cfg.Paths.FiguresDir),
	}
}

func (ws *workspaceCtx) paramStudy(noSave bool) *usecase.ParamStudy {
	return usecase.NewParamStudy(ws.solver, ws.vtk, ws.figures, ws.runStore(noSave), ws.studyDirs(), ws.cfg, usecase.WithLogger(logger.L()))
}

func (ws *workspaceCtx) exportResult() *usecase.ExportResult {
	return usecase.NewExportResult(ws.vtk, cdfexport.New(), ws.workbook, shpexport.New())
}

func (ws *workspaceCtx) renderFigures() *usecase.RenderFigures {
	return usecase.NewRenderFigures(ws.figures, ws.viewer, usecase.WithLogger(logger.L()))
}

func resolveWorkspaceRoot(workspaceFlag string) (string, error) {
	w := strings.TrimSpace(workspaceFlag)
	if w != "" {
		abs, err := filepath.Abs(w)
		if err != nil {
			return "", fmt.Errorf("invalid workspace path: %w", err)
		}
		return abs, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	locator := workspacefinder.NewFinder(workspacefinder.WithLogger(logger.L()))
	root, err := locator.FindRoot(wd)
	if err != nil {
		return "", fmt.Errorf("workspace not found from %q (tip: run `pnfem init`): %w", wd, err)
	}
	return root, nil
}

// resolveModelPath accepts a model name ("plate"), a file name ("plate.json")
// or a path. An empty argument selects the default model.
func resolveModelPath(ws *workspaceCtx, arg string) (string, error) {
	in := strings.TrimSpace(arg)
	if in == "" {
		in = strings.TrimSuffix(fsworkspace.DefaultModel, jsonmodel.Ext)
	}

	if looksLikePath(in) {
		p := in
		if !filepath.IsAbs(p) {
			p = filepath.Join(ws.root, p)
		}
		return filepath.Clean(p), nil
	}

	modelsDir := ws.dir(ws.cfg.Paths.ModelsDir)
	if hasJSONExt(in) {
		p := filepath.Join(modelsDir, in)
		if fileExists(p) {
			return p, nil
		}
	}

	p := filepath.Join(modelsDir, in+jsonmodel.Ext)
	if fileExists(p) {
		return p, nil
	}
	return "", &domain.OpError{
		Op:   "cli.model",
		Kind: domain.KindNotFound,
		Path: p,
		Err:  fmt.Errorf("model %q not found in %q: %w", in, modelsDir, domain.ErrNotFound),
	}
}

// modelName is the base name of a model file without extension.
func modelName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func looksLikePath(s string) bool {
	return strings.Contains(s, "/") || strings.Contains(s, string(filepath.Separator))
}

func hasJSONExt(s string) bool {
	return strings.EqualFold(filepath.Ext(s), jsonmodel.Ext)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
