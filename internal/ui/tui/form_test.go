package tui

import (
	"testing"

	"github.com/pnordq/pnfem/internal/domain"
)

func TestForm_RoundTrip(t *testing.T) {
	in := domain.DefaultInputData()
	in.B = 0.03
	in.ElType = domain.ElementQuad
	in.ElSizeFactor = domain.ElSizeFactorFromSlider(70)

	got, verr := newForm(in).read(domain.InputData{Version: in.Version})
	if verr != nil {
		t.Fatalf("unexpected issues: %v", verr)
	}
	if got != in {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, in)
	}
}

func TestForm_TextIssuesKeepBaseValue(t *testing.T) {
	in := domain.DefaultInputData()
	f := newForm(in)
	for i := range f.fields {
		switch f.fields[i].key {
		case "E":
			f.fields[i].input.SetValue("2e10x")
		case "paramSteps":
			f.fields[i].input.SetValue("2.5")
		}
	}

	got, verr := f.read(in)
	if verr == nil || len(verr.Issues) != 2 {
		t.Fatalf("expected two text issues, got %v", verr)
	}
	for _, is := range verr.Issues {
		if is.Group != domain.GroupTextInput || is.Message != domain.NotANumberMessage {
			t.Fatalf("unexpected issue %+v", is)
		}
	}
	if got.E != in.E || got.ParamSteps != in.ParamSteps {
		t.Fatalf("expected base values to be kept, got E=%v steps=%d", got.E, got.ParamSteps)
	}
}

func TestIssueFilters(t *testing.T) {
	in := domain.DefaultInputData()
	verr := &domain.ValidationError{Issues: []domain.Issue{
		{Field: "q, end", Group: domain.GroupTextInput, Message: domain.NotANumberMessage},
	}}

	if calcIssues(verr) != nil {
		t.Fatal("a study field must not block Execute")
	}
	if saveIssues(verr) == nil {
		t.Fatal("any text issue blocks Save")
	}
	if studyIssues(in, verr, domain.StudyB) != nil {
		t.Fatal("q, end must not block the b study")
	}
	if studyIssues(in, verr, domain.StudyQ) == nil {
		t.Fatal("q, end must block the q study")
	}
}

func TestForm_MoveWraps(t *testing.T) {
	f := newForm(domain.DefaultInputData())
	f.move(-1)
	if f.focus != len(f.fields)-1 {
		t.Fatalf("expected focus on last field, got %d", f.focus)
	}
	f.move(1)
	if f.focus != 0 {
		t.Fatalf("expected focus on first field, got %d", f.focus)
	}
}
