package ports

import "github.com/pnordq/pnfem/internal/domain"

// ModelStore reads and writes model files.
type ModelStore interface {
	LoadModel(path string) (domain.InputData, error)
	SaveModel(path string, in domain.InputData) error
	ListModels(root string) ([]domain.ModelRef, error)
}
