package ports

import (
	"context"

	"github.com/pnordq/pnfem/internal/domain"
)

// Solver runs one finite element analysis of the model.
type Solver interface {
	Execute(ctx context.Context, in domain.InputData) (domain.OutputData, error)
}
