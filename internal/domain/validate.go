package domain

import (
	"fmt"
	"math"
	"strings"
)

// IssueGroup tells which actions an issue blocks.
type IssueGroup string

const (
	// GroupCalcInputs blocks Execute and Save.
	GroupCalcInputs IssueGroup = "calc_inputs"
	// GroupBendInput blocks the parameter study.
	GroupBendInput IssueGroup = "bend_input"
	// GroupTextInput marks a form value that is not a number.
	GroupTextInput IssueGroup = "text_input"
)

// NotANumberMessage is shown for form fields that do not parse.
const NotANumberMessage = "The program can only handle numbers as input!"

// MaxParamSteps bounds the number of parameter-study steps.
const MaxParamSteps = 1000

// Issue is a single validation finding.
type Issue struct {
	Field   string
	Group   IssueGroup
	Message string
}

// ValidationError aggregates every issue found in one pass.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return "invalid model"
	}
	msgs := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		msgs = append(msgs, is.Message)
	}
	return "invalid model: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidModel }

// Blocks reports whether any issue belongs to one of the groups.
func (e *ValidationError) Blocks(groups ...IssueGroup) bool {
	if e == nil {
		return false
	}
	for _, is := range e.Issues {
		for _, g := range groups {
			if is.Group == g {
				return true
			}
		}
	}
	return false
}

// Filter returns only the issues of the given groups, or nil when none match.
func (e *ValidationError) Filter(groups ...IssueGroup) *ValidationError {
	if e == nil {
		return nil
	}
	var out []Issue
	for _, is := range e.Issues {
		for _, g := range groups {
			if is.Group == g {
				out = append(out, is)
				break
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return &ValidationError{Issues: out}
}

// Validate checks the model and returns every issue found (nil when valid).
// Issues on bend are reported in GroupBendInput; a non-positive bend is also a
// GroupCalcInputs issue, like any other length.
func Validate(in InputData) *ValidationError {
	// The range checks below are meaningless for NaN and Inf. Non-finite study
	// end values compare false everywhere and fall through.
	issues := nonFinite(in)
	if len(issues) > 0 && (&ValidationError{Issues: issues}).Blocks(GroupCalcInputs) {
		return &ValidationError{Issues: issues}
	}

	lengths := []struct {
		key string
		val float64
	}{
		{"w", in.W},
		{"h", in.H},
		{"a", in.A},
		{"b", in.B},
		{"t", in.T},
		{"b, end", in.BEnd},
	}
	for _, l := range lengths {
		var msg string
		switch {
		case l.val < 0:
			msg = fmt.Sprintf("%s is %v m, which is negative and not possible for a length!", l.key, l.val)
		case l.val == 0:
			msg = fmt.Sprintf("%s is %v m, which is not a possible dimension!", l.key, l.val)
		default:
			continue
		}
		issues = append(issues, Issue{Field: l.key, Group: GroupCalcInputs, Message: msg})
		if l.key == "b, end" {
			issues = append(issues, Issue{Field: l.key, Group: GroupBendInput, Message: msg})
		}
	}

	if in.V < -1 || in.V > 0.5 {
		issues = append(issues, Issue{
			Field: "v",
			Group: GroupCalcInputs,
			Message: fmt.Sprintf("The program works with isotropic, linearly elastic materials, "+
				"so v is in the range of -1 to 0.5, you inputed v = %v!", in.V),
		})
	}

	if in.B >= in.H/2 {
		issues = append(issues, Issue{
			Field: "b",
			Group: GroupCalcInputs,
			Message: fmt.Sprintf("The inputed b is %v m, which is greater or equal to half the height h "+
				"that is %v m, this is an invalid geometry!", in.B, in.H/2),
		})
	}

	if in.BEnd >= in.H/2 {
		issues = append(issues, Issue{
			Field: "b, end",
			Group: GroupBendInput,
			Message: fmt.Sprintf("The inputed b, end is %v m, which is greater or equal to half the height h "+
				"that is %v m, this is an invalid geometry for the model!", in.BEnd, in.H/2),
		})
	}

	if in.A >= in.W {
		issues = append(issues, Issue{
			Field: "a",
			Group: GroupCalcInputs,
			Message: fmt.Sprintf("The inputed a is %v m, which is greater or equal to the width w "+
				"that is %v m, this is an invalid geometry!", in.A, in.W),
		})
	}

	if in.E <= 0 {
		issues = append(issues, Issue{
			Field:   "E",
			Group:   GroupCalcInputs,
			Message: fmt.Sprintf("E is %v Pa, the Young's modulus must be positive!", in.E),
		})
	}

	if in.ElSizeFactor <= 0 || in.ElSizeFactor > 1 {
		issues = append(issues, Issue{
			Field:   "el_size_factor",
			Group:   GroupCalcInputs,
			Message: fmt.Sprintf("The element size factor is %v, it must be in the range (0, 1]!", in.ElSizeFactor),
		})
	}

	if in.ElType != ElementTriangle && in.ElType != ElementQuad {
		issues = append(issues, Issue{
			Field:   "el_type",
			Group:   GroupCalcInputs,
			Message: fmt.Sprintf("Element type %d is unknown, use 2 (triangles) or 3 (quads)!", int(in.ElType)),
		})
	}

	switch {
	case in.ParamSteps < 1:
		issues = append(issues, Issue{
			Field:   "paramSteps",
			Group:   GroupBendInput,
			Message: fmt.Sprintf("The parameter study needs at least 1 step, got %d!", in.ParamSteps),
		})
	case in.ParamSteps > MaxParamSteps:
		issues = append(issues, Issue{
			Field:   "paramSteps",
			Group:   GroupBendInput,
			Message: fmt.Sprintf("The parameter study allows at most %d steps, got %d!", MaxParamSteps, in.ParamSteps),
		})
	}

	if len(issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: issues}
}

// nonFinite reports NaN and Inf values. Study end values only block the study.
func nonFinite(in InputData) []Issue {
	vals := []struct {
		key   string
		val   float64
		group IssueGroup
	}{
		{"w", in.W, GroupCalcInputs},
		{"h", in.H, GroupCalcInputs},
		{"a", in.A, GroupCalcInputs},
		{"b", in.B, GroupCalcInputs},
		{"t", in.T, GroupCalcInputs},
		{"E", in.E, GroupCalcInputs},
		{"v", in.V, GroupCalcInputs},
		{"q", in.Q, GroupCalcInputs},
		{"el_size_factor", in.ElSizeFactor, GroupCalcInputs},
		{"b, end", in.BEnd, GroupBendInput},
		{"q, end", in.QEnd, GroupBendInput},
	}
	var issues []Issue
	for _, v := range vals {
		if math.IsNaN(v.val) || math.IsInf(v.val, 0) {
			issues = append(issues, Issue{
				Field:   v.key,
				Group:   v.group,
				Message: fmt.Sprintf("%s is %v, which is not a finite number!", v.key, v.val),
			})
		}
	}
	return issues
}
