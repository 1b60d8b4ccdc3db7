package usecase

import (
	"github.com/pnordq/pnfem/internal/domain"
	"github.com/pnordq/pnfem/internal/ports"
)

type ValidateModel struct {
	models ports.ModelStore
}

func NewValidateModel(models ports.ModelStore) *ValidateModel {
	return &ValidateModel{models: models}
}

// Execute loads the model file and checks it without solving. Load failures are
// returned as errors; validation findings come back as a *domain.ValidationError.
func (uc *ValidateModel) Execute(path string) (domain.InputData, *domain.ValidationError, error) {
	in, err := uc.models.LoadModel(path)
	if err != nil {
		return domain.InputData{}, nil, err
	}
	return in, domain.Validate(in), nil
}
