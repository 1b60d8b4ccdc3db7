package domain

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestValidate_DefaultModelIsValid(t *testing.T) {
	if err := Validate(DefaultInputData()); err != nil {
		t.Fatalf("expected default model to be valid, got %v", err)
	}
}

func TestValidate_NegativeAndZeroLengths(t *testing.T) {
	in := DefaultInputData()
	in.W = -1
	in.T = 0

	verr := Validate(in)
	if verr == nil {
		t.Fatalf("expected issues")
	}
	if !verr.Blocks(GroupCalcInputs) {
		t.Fatalf("expected calc inputs to be blocked")
	}
	if verr.Blocks(GroupBendInput) {
		t.Fatalf("did not expect bend issues: %v", verr)
	}

	msg := verr.Error()
	if !strings.Contains(msg, "w is -1 m, which is negative and not possible for a length!") {
		t.Fatalf("missing negative length message: %s", msg)
	}
	if !strings.Contains(msg, "t is 0 m, which is not a possible dimension!") {
		t.Fatalf("missing zero length message: %s", msg)
	}
}

func TestValidate_PoissonRange(t *testing.T) {
	for _, v := range []float64{-1.5, 0.6} {
		in := DefaultInputData()
		in.V = v
		verr := Validate(in)
		if verr == nil || len(verr.Issues) != 1 || verr.Issues[0].Field != "v" {
			t.Fatalf("v=%v: expected a single v issue, got %v", v, verr)
		}
	}
	for _, v := range []float64{-1, 0, 0.5} {
		in := DefaultInputData()
		in.V = v
		if verr := Validate(in); verr != nil {
			t.Fatalf("v=%v: expected valid, got %v", v, verr)
		}
	}
}

func TestValidate_NotchDepthAgainstHalfHeight(t *testing.T) {
	in := DefaultInputData()
	in.B = in.H / 2

	verr := Validate(in)
	if verr == nil || verr.Issues[0].Field != "b" {
		t.Fatalf("expected b issue, got %v", verr)
	}
	if !strings.Contains(verr.Issues[0].Message, "greater or equal to half the height h") {
		t.Fatalf("unexpected message: %s", verr.Issues[0].Message)
	}
}

func TestValidate_BEndOnlyBlocksStudy(t *testing.T) {
	in := DefaultInputData()
	in.BEnd = 0.2

	verr := Validate(in)
	if verr == nil {
		t.Fatalf("expected bend issue")
	}
	if verr.Blocks(GroupCalcInputs) {
		t.Fatalf("bend >= h/2 must not block the solve: %v", verr)
	}
	if !verr.Blocks(GroupBendInput) {
		t.Fatalf("expected study to be blocked")
	}
}

func TestValidate_NegativeBEndBlocksBoth(t *testing.T) {
	in := DefaultInputData()
	in.BEnd = -0.01

	verr := Validate(in)
	if !verr.Blocks(GroupCalcInputs) || !verr.Blocks(GroupBendInput) {
		t.Fatalf("expected both groups, got %v", verr)
	}
}

func TestValidate_NotchWiderThanPlate(t *testing.T) {
	in := DefaultInputData()
	in.A = in.W

	verr := Validate(in)
	if verr == nil || verr.Issues[0].Field != "a" {
		t.Fatalf("expected a issue, got %v", verr)
	}
}

func TestValidate_OtherFields(t *testing.T) {
	in := DefaultInputData()
	in.E = 0
	in.ElSizeFactor = 1.5
	in.ElType = 7
	in.ParamSteps = 0

	verr := Validate(in)
	if verr == nil {
		t.Fatalf("expected issues")
	}
	got := map[string]IssueGroup{}
	for _, is := range verr.Issues {
		got[is.Field] = is.Group
	}
	want := map[string]IssueGroup{
		"E":              GroupCalcInputs,
		"el_size_factor": GroupCalcInputs,
		"el_type":        GroupCalcInputs,
		"paramSteps":     GroupBendInput,
	}
	for k, g := range want {
		if got[k] != g {
			t.Fatalf("field %s: expected group %s, got %q", k, g, got[k])
		}
	}
}

func TestValidationError_FilterAndUnwrap(t *testing.T) {
	in := DefaultInputData()
	in.W = 0
	in.BEnd = 0.2

	verr := Validate(in)
	bend := verr.Filter(GroupBendInput)
	if bend == nil || len(bend.Issues) != 1 {
		t.Fatalf("expected one bend issue, got %v", bend)
	}
	if verr.Filter(GroupTextInput) != nil {
		t.Fatalf("expected nil filter result")
	}

	var err error = verr
	if !errors.Is(err, ErrInvalidModel) {
		t.Fatalf("expected ErrInvalidModel")
	}
	if !IsKind(err, KindInvalidModel) {
		t.Fatalf("expected KindInvalidModel")
	}
}

func TestValidate_NonFinite(t *testing.T) {
	cases := []struct {
		name  string
		set   func(*InputData)
		field string
		group IssueGroup
	}{
		{"w NaN", func(in *InputData) { in.W = math.NaN() }, "w", GroupCalcInputs},
		{"h +Inf", func(in *InputData) { in.H = math.Inf(1) }, "h", GroupCalcInputs},
		{"E NaN", func(in *InputData) { in.E = math.NaN() }, "E", GroupCalcInputs},
		{"t +Inf", func(in *InputData) { in.T = math.Inf(1) }, "t", GroupCalcInputs},
		{"v -Inf", func(in *InputData) { in.V = math.Inf(-1) }, "v", GroupCalcInputs},
		{"q NaN", func(in *InputData) { in.Q = math.NaN() }, "q", GroupCalcInputs},
		{"bend NaN", func(in *InputData) { in.BEnd = math.NaN() }, "b, end", GroupBendInput},
		{"qend -Inf", func(in *InputData) { in.QEnd = math.Inf(-1) }, "q, end", GroupBendInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := DefaultInputData()
			tc.set(&in)

			verr := Validate(in)
			if verr == nil || len(verr.Issues) != 1 {
				t.Fatalf("expected one issue, got %v", verr)
			}
			is := verr.Issues[0]
			if is.Field != tc.field || is.Group != tc.group {
				t.Fatalf("unexpected issue %+v", is)
			}
			if !strings.Contains(is.Message, "not a finite number") {
				t.Fatalf("unexpected message %q", is.Message)
			}
		})
	}
}

func TestValidate_ParamStepsUpperBound(t *testing.T) {
	in := DefaultInputData()
	in.ParamSteps = MaxParamSteps
	if verr := Validate(in); verr != nil {
		t.Fatalf("expected %d steps to be valid, got %v", MaxParamSteps, verr)
	}

	in.ParamSteps = 1_000_000_000
	verr := Validate(in)
	if verr == nil || verr.Blocks(GroupCalcInputs) || !verr.Blocks(GroupBendInput) {
		t.Fatalf("expected a study-only issue, got %v", verr)
	}
}
