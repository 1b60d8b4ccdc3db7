// Package assert evaluates the workspace checks against a run.
package assert

import (
	"fmt"
	"sort"

	"github.com/PaesslerAG/jsonpath"
	"github.com/pnordq/pnfem/internal/domain"
	"github.com/pnordq/pnfem/internal/usecase/extract"
)

func MaxVonMises(limit float64, got float64) domain.CheckResult {
	if got <= limit {
		return domain.CheckResult{
			Name:    "max_von_mises",
			Passed:  true,
			Message: fmt.Sprintf("max von Mises %.4g Pa <= %.4g Pa", got, limit),
		}
	}

	return domain.CheckResult{
		Name:    "max_von_mises",
		Passed:  false,
		Message: fmt.Sprintf("expected max von Mises <= %.4g Pa, got %.4g Pa", limit, got),
	}
}

func MaxDisplacement(limit float64, got float64) domain.CheckResult {
	if got <= limit {
		return domain.CheckResult{
			Name:    "max_displacement",
			Passed:  true,
			Message: fmt.Sprintf("max displacement %.4g m <= %.4g m", got, limit),
		}
	}

	return domain.CheckResult{
		Name:    "max_displacement",
		Passed:  false,
		Message: fmt.Sprintf("expected max displacement <= %.4g m, got %.4g m", limit, got),
	}
}

// Evaluate applies the checks to a run. The run is only converted to a JSON
// document when JSONPath checks are configured.
func Evaluate(spec domain.ChecksConfig, run domain.RunArtifact) []domain.CheckResult {
	var out []domain.CheckResult

	sum, ok := summaryOf(run)
	if spec.MaxVonMises != nil && ok {
		out = append(out, MaxVonMises(*spec.MaxVonMises, sum.MaxVonMises))
	}
	if spec.MaxDisplacement != nil && ok {
		out = append(out, MaxDisplacement(*spec.MaxDisplacement, sum.MaxDisplacement))
	}

	if len(spec.JSONPath) == 0 {
		return out
	}

	exprs := make([]string, 0, len(spec.JSONPath))
	for expr := range spec.JSONPath {
		exprs = append(exprs, expr)
	}
	sort.Strings(exprs)

	doc, err := extract.Document(run)
	if err != nil {
		for _, expr := range exprs {
			out = append(out, jsonPathChecks(expr, spec.JSONPath[expr], nil,
				fmt.Errorf("run is not a valid JSON document"))...)
		}
		return out
	}

	for _, expr := range exprs {
		val, getErr := jsonpath.Get(expr, doc)
		out = append(out, jsonPathChecks(expr, spec.JSONPath[expr], val, getErr)...)
	}

	return out
}

// summaryOf picks the solve summary, or the worst study step.
func summaryOf(run domain.RunArtifact) (domain.Summary, bool) {
	if run.Output != nil && !run.Output.Empty() {
		return run.Output.Summary, true
	}
	if run.Study == nil || len(run.Study.Steps) == 0 {
		return domain.Summary{}, false
	}
	var s domain.Summary
	for _, st := range run.Study.Steps {
		if st.MaxVonMises > s.MaxVonMises {
			s.MaxVonMises = st.MaxVonMises
		}
		if st.MaxDisplacement > s.MaxDisplacement {
			s.MaxDisplacement = st.MaxDisplacement
		}
	}
	return s, true
}

func jsonPathChecks(expr string, c domain.JSONPathCheck, val any, getErr error) []domain.CheckResult {
	var out []domain.CheckResult
	if c.Exists {
		out = append(out, checkExists(expr, val, getErr))
	}
	if c.Gt != nil {
		out = append(out, checkGt(expr, val, getErr, *c.Gt))
	}
	if c.Lt != nil {
		out = append(out, checkLt(expr, val, getErr, *c.Lt))
	}
	return out
}

func checkExists(expr string, val any, getErr error) domain.CheckResult {
	if getErr != nil {
		return domain.CheckResult{
			Name:    "jsonpath.exists",
			Passed:  false,
			Message: fmt.Sprintf("invalid jsonpath %q: %v", expr, getErr),
		}
	}
	if extract.IsEmpty(val) {
		return domain.CheckResult{
			Name:    "jsonpath.exists",
			Passed:  false,
			Message: fmt.Sprintf("jsonpath %q: expected value to exist, got empty", expr),
		}
	}
	return domain.CheckResult{
		Name:    "jsonpath.exists",
		Passed:  true,
		Message: fmt.Sprintf("jsonpath %q exists", expr),
	}
}

func checkGt(expr string, val any, getErr error, threshold float64) domain.CheckResult {
	if getErr != nil {
		return domain.CheckResult{
			Name:    "jsonpath.gt",
			Passed:  false,
			Message: fmt.Sprintf("jsonpath %q: %v", expr, getErr),
		}
	}
	f, err := extract.ToFloat64(val)
	if err != nil {
		return domain.CheckResult{
			Name:    "jsonpath.gt",
			Passed:  false,
			Message: fmt.Sprintf("jsonpath %q: %v", expr, err),
		}
	}
	if f > threshold {
		return domain.CheckResult{
			Name:    "jsonpath.gt",
			Passed:  true,
			Message: fmt.Sprintf("jsonpath %q: %v > %v", expr, f, threshold),
		}
	}
	return domain.CheckResult{
		Name:    "jsonpath.gt",
		Passed:  false,
		Message: fmt.Sprintf("jsonpath %q: expected > %v, got %v", expr, threshold, f),
	}
}

func checkLt(expr string, val any, getErr error, threshold float64) domain.CheckResult {
	if getErr != nil {
		return domain.CheckResult{
			Name:    "jsonpath.lt",
			Passed:  false,
			Message: fmt.Sprintf("jsonpath %q: %v", expr, getErr),
		}
	}
	f, err := extract.ToFloat64(val)
	if err != nil {
		return domain.CheckResult{
			Name:    "jsonpath.lt",
			Passed:  false,
			Message: fmt.Sprintf("jsonpath %q: %v", expr, err),
		}
	}
	if f < threshold {
		return domain.CheckResult{
			Name:    "jsonpath.lt",
			Passed:  true,
			Message: fmt.Sprintf("jsonpath %q: %v < %v", expr, f, threshold),
		}
	}
	return domain.CheckResult{
		Name:    "jsonpath.lt",
		Passed:  false,
		Message: fmt.Sprintf("jsonpath %q: expected < %v, got %v", expr, threshold, f),
	}
}
