package usecase

import (
	"fmt"

	"github.com/pnordq/pnfem/internal/domain"
	"github.com/pnordq/pnfem/internal/ports"
	"github.com/pnordq/pnfem/internal/usecase/extract"
)

// Latest selects the newest saved run.
const Latest = "latest"

type QueryRun struct {
	runs ports.ArtifactStore
}

func NewQueryRun(runs ports.ArtifactStore) *QueryRun {
	return &QueryRun{runs: runs}
}

// Load returns the run with the given ID; "" or "latest" picks the newest run.
func (uc *QueryRun) Load(id string) (domain.RunArtifact, error) {
	if id == "" || id == Latest {
		refs, err := uc.runs.ListRuns()
		if err != nil {
			return domain.RunArtifact{}, err
		}
		if len(refs) == 0 {
			return domain.RunArtifact{}, &domain.OpError{
				Op:   "query.latest",
				Kind: domain.KindNotFound,
				Err:  fmt.Errorf("no saved runs: %w", domain.ErrNotFound),
			}
		}
		id = refs[0].ID
	}
	return uc.runs.LoadRun(id)
}

// Execute evaluates a JSONPath expression against a saved run.
func (uc *QueryRun) Execute(id, expr string) (any, error) {
	run, err := uc.Load(id)
	if err != nil {
		return nil, err
	}
	doc, err := extract.Document(run)
	if err != nil {
		return nil, &domain.OpError{Op: "query.document", Kind: domain.KindExecution, Err: err}
	}
	return extract.Query(doc, expr)
}
