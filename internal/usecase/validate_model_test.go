package usecase

import (
	"errors"
	"testing"

	"github.com/pnordq/pnfem/internal/domain"
)

func TestValidateModel(t *testing.T) {
	in, verr, err := NewValidateModel(fakeModels{in: domain.DefaultInputData()}).Execute("m.json")
	if err != nil || verr != nil {
		t.Fatalf("expected valid model, got %v %v", verr, err)
	}
	if in != domain.DefaultInputData() {
		t.Fatalf("expected loaded input")
	}

	bad := domain.DefaultInputData()
	bad.V = 0.7
	_, verr, err = NewValidateModel(fakeModels{in: bad}).Execute("m.json")
	if err != nil || verr == nil || verr.Issues[0].Field != "v" {
		t.Fatalf("expected v issue, got %v %v", verr, err)
	}

	_, _, err = NewValidateModel(fakeModels{err: errBoom}).Execute("m.json")
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected load error, got %v", err)
	}
}
