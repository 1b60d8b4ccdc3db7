package usecase

import (
	"context"

	"github.com/pnordq/pnfem/internal/domain"
	"github.com/pnordq/pnfem/internal/ports"
	ucassert "github.com/pnordq/pnfem/internal/usecase/assert"
)

// ModelSource names where a model came from; both fields may be empty.
type ModelSource struct {
	Name string
	Path string
}

type ExecuteModel struct {
	base
	solver ports.Solver
	store  ports.ArtifactStore
	checks domain.ChecksConfig
}

// NewExecuteModel wires the solve action. A nil store skips persisting.
func NewExecuteModel(s ports.Solver, store ports.ArtifactStore, checks domain.ChecksConfig, opts ...Option) *ExecuteModel {
	uc := &ExecuteModel{base: newBase(), solver: s, store: store, checks: checks}
	apply(&uc.base, opts)
	return uc
}

// Execute validates and solves the model, evaluates the checks and saves the run.
// It returns the run and its ID (empty when nothing was saved).
func (uc *ExecuteModel) Execute(ctx context.Context, in domain.InputData, src ModelSource) (domain.RunArtifact, string, error) {
	run := domain.RunArtifact{
		Kind:      domain.RunSolve,
		ModelName: src.Name,
		ModelPath: src.Path,
		StartedAt: uc.now(),
		Input:     in,
	}

	if verr := domain.Validate(in); verr != nil {
		if calc := verr.Filter(domain.GroupCalcInputs); calc != nil {
			run.FinishedAt = uc.now()
			return run, "", calc
		}
	}
	if err := ctx.Err(); err != nil {
		run.FinishedAt = uc.now()
		return run, "", err
	}

	uc.log.Info("solve.start", "model", src.Name, "el_type", in.ElType.String(), "el_size_factor", in.ElSizeFactor)

	out, err := uc.solver.Execute(ctx, in)
	run.FinishedAt = uc.now()
	if err != nil {
		uc.log.Warn("solve.failed", "model", src.Name, "error", err)
		return run, "", err
	}
	run.Output = &out
	run.Checks = ucassert.Evaluate(uc.checks, run)

	uc.log.Info("solve.ok",
		"model", src.Name,
		"nodes", out.Summary.Nodes,
		"max_von_mises", out.Summary.MaxVonMises,
		"failed_checks", run.FailedChecks(),
	)

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
