package usecase

import (
	"testing"

	"github.com/pnordq/pnfem/internal/domain"
)

func TestQueryRun_LatestAndByID(t *testing.T) {
	store := &fakeStore{saved: []domain.RunArtifact{
		{ID: "old", Output: &domain.OutputData{Summary: domain.Summary{MaxVonMises: 1}}},
		{ID: "new", Output: &domain.OutputData{Summary: domain.Summary{MaxVonMises: 2}}},
	}}
	uc := NewQueryRun(store)

	v, err := uc.Execute(Latest, "$.Output.Summary.MaxVonMises")
	if err != nil || v != 2.0 {
		t.Fatalf("expected 2 from latest run, got %v (%v)", v, err)
	}
	v, err = uc.Execute("old", "$.Output.Summary.MaxVonMises")
	if err != nil || v != 1.0 {
		t.Fatalf("expected 1 from old run, got %v (%v)", v, err)
	}
}

func TestQueryRun_Errors(t *testing.T) {
	uc := NewQueryRun(&fakeStore{})
	if _, err := uc.Execute("", "$.ID"); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not found without runs, got %v", err)
	}

	uc = NewQueryRun(&fakeStore{saved: []domain.RunArtifact{{ID: "r"}}})
	if _, err := uc.Execute("r", "  "); !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected invalid expression, got %v", err)
	}
	if _, err := uc.Execute("missing", "$.ID"); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
