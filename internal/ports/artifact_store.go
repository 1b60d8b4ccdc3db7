package ports

import "github.com/pnordq/pnfem/internal/domain"

// ArtifactStore persists run artifacts for reproducibility.
type ArtifactStore interface {
	SaveRun(run domain.RunArtifact) (id string, err error)
	LoadRun(id string) (domain.RunArtifact, error)
	ListRuns() ([]domain.RunRef, error)
}
