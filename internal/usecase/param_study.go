package usecase

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/pnordq/pnfem/internal/domain"
	"github.com/pnordq/pnfem/internal/ports"
	ucassert "github.com/pnordq/pnfem/internal/usecase/assert"
	"github.com/pnordq/pnfem/internal/usecase/extract"
)

// StudyDirs are the workspace directories a study writes to.
type StudyDirs struct {
	VTK     string
	Figures string
}

// StudyRequest describes one parameter study.
type StudyRequest struct {
	Input  domain.InputData
	Param  domain.StudyParam
	Source ModelSource

	// Progress, when set, is called after every finished step.
	Progress func(step domain.StudyStep, total int)
}

type ParamStudy struct {
	base
	solver  ports.Solver
	vtk     ports.ResultExporter
	figures ports.FigureRenderer
	store   ports.ArtifactStore
	dirs    StudyDirs
	cfg     domain.Config
}

// NewParamStudy wires the study action. vtk, figures and store may be nil to
// skip the matching output.
func NewParamStudy(s ports.Solver, vtk ports.ResultExporter, figures ports.FigureRenderer, store ports.ArtifactStore, dirs StudyDirs, cfg domain.Config, opts ...Option) *ParamStudy {
	uc := &ParamStudy{
		base:    newBase(),
		solver:  s,
		vtk:     vtk,
		figures: figures,
		store:   store,
		dirs:    dirs,
		cfg:     cfg,
	}
	apply(&uc.base, opts)
	return uc
}

// Check returns the validation issues that block a study of param.
func Check(in domain.InputData, param domain.StudyParam) *domain.ValidationError {
	verr := domain.Validate(in)
	if verr == nil {
		return nil
	}
	if calc := verr.Filter(domain.GroupCalcInputs); calc != nil {
		return calc
	}
	if param == domain.StudyB {
		return verr.Filter(domain.GroupBendInput)
	}
	// qend has no range check; only the step count and a non-finite qend matter.
	var steps []domain.Issue
	for _, is := range verr.Issues {
		if is.Field == "paramSteps" || is.Field == "q, end" {
			steps = append(steps, is)
		}
	}
	if len(steps) == 0 {
		return nil
	}
	return &domain.ValidationError{Issues: steps}
}

// Execute solves one copy of the model per study value. The caller's input is
// never modified. On cancellation the completed steps are returned with the
// context error and nothing is saved.
func (uc *ParamStudy) Execute(ctx context.Context, req StudyRequest) (domain.RunArtifact, string, error) {
	spec := domain.NewStudySpec(req.Input, req.Param)
	res := &domain.StudyResult{Spec: spec}
	run := domain.RunArtifact{
		Kind:      domain.RunStudy,
		ModelName: req.Source.Name,
		ModelPath: req.Source.Path,
		StartedAt: uc.now(),
		Input:     req.Input,
		Study:     res,
	}

	if verr := Check(req.Input, req.Param); verr != nil {
		run.FinishedAt = uc.now()
		return run, "", verr
	}

	values := spec.Values()
	uc.log.Info("study.start", "model", req.Source.Name, "param", string(req.Param), "steps", len(values))

	var metricFailures []domain.CheckResult
	for i, v := range values {
		if err := ctx.Err(); err != nil {
			run.FinishedAt = uc.now()
			uc.log.Info("study.cancelled", "completed", len(res.Steps))
			return run, "", err
		}

		in := spec.Apply(req.Input, v)
		out, err := uc.solver.Execute(ctx, in)
		if err != nil {
			run.FinishedAt = uc.now()
			return run, "", fmt.Errorf("study step %d (%s = %g): %w", i+1, req.Param, v, err)
		}

		step := domain.StudyStep{
			Index:           i,
			Value:           v,
			MaxVonMises:     out.Summary.MaxVonMises,
			MaxDisplacement: out.Summary.MaxDisplacement,
			Metrics:         map[string]float64{},
		}

		if uc.vtk != nil {
			rel := spec.FileName(i)
			if err := uc.vtk.Export(filepath.Join(uc.dirs.VTK, rel), &out); err != nil {
				run.FinishedAt = uc.now()
				return run, "", err
			}
			step.VTKFile = rel
		}

		if len(uc.cfg.Study.Metrics) > 0 {
			doc, err := extract.Document(domain.RunArtifact{Kind: domain.RunSolve, Input: in, Output: &out})
			if err != nil {
				return run, "", &domain.OpError{Op: "study.metrics", Kind: domain.KindExecution, Err: err}
			}
			vals, failed := extract.Metrics(doc, uc.cfg.Study.Metrics)
			step.Metrics = vals
			for _, f := range failed {
				f.Message = fmt.Sprintf("step %d: %s", i+1, f.Message)
				metricFailures = append(metricFailures, f)
			}
		}

		res.Steps = append(res.Steps, step)
		uc.log.Info("study.step", "step", i+1, "param", string(req.Param), "value", v, "max_von_mises", step.MaxVonMises)
		if req.Progress != nil {
			req.Progress(step, len(values))
		}
	}

	if uc.cfg.Study.Plot && uc.figures != nil && len(res.Steps) > 0 {
		p := filepath.Join(uc.dirs.Figures, StudyPlotName(req.Param))
		if err := uc.figures.RenderStudy(p, res); err != nil {
			uc.log.Warn("study.plot_failed", "path", p, "error", err)
		} else {
			res.PlotFile = p
		}
	}

	run.FinishedAt = uc.now()
	run.Checks = append(ucassert.Evaluate(uc.cfg.Checks, run), metricFailures...)
	uc.log.Info("study.ok", "model", req.Source.Name, "steps", len(res.Steps), "failed_checks", run.FailedChecks())

	if uc.store == nil {
		return run, "", nil
	}
	id, err := uc.store.SaveRun(run)
	if err != nil {
		return run, "", err
	}
	run.ID = id
	return run, id, nil
}

// StudyPlotName is the figure file of a study, e.g. max_mises_vs_b.png.
func StudyPlotName(p domain.StudyParam) string {
	return "max_mises_vs_" + string(p) + ".png"
}
