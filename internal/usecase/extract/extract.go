// Package extract reads values out of runs with JSONPath expressions.
package extract

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/pnordq/pnfem/internal/domain"
)

// Document converts v (usually a domain.RunArtifact) into the generic JSON
// tree jsonpath works on. Field names are the Go names, e.g.
// $.Output.Summary.MaxVonMises.
func Document(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Parse decodes raw JSON.
func Parse(b []byte) (any, error) {
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Query evaluates one expression against a document.
func Query(doc any, expr string) (any, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, &domain.OpError{
			Op:   "extract.query",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("empty jsonpath expression: %w", domain.ErrInvalidConfig),
		}
	}
	val, err := jsonpath.Get(expr, doc)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "extract.query",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("jsonpath %q: %v: %w", expr, err, domain.ErrInvalidConfig),
		}
	}
	return val, nil
}

// Metrics evaluates named numeric rules (name -> expression).
//
// A rule that fails is reported as a failed CheckResult; other rules still run.
func Metrics(doc any, rules map[string]string) (map[string]float64, []domain.CheckResult) {
	if len(rules) == 0 {
		return map[string]float64{}, nil
	}

	keys := make([]string, 0, len(rules))
	for k := range rules {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make(map[string]float64, len(keys))
	var failed []domain.CheckResult

	for _, name := range keys {
		expr := strings.TrimSpace(rules[name])
		val, err := Query(doc, expr)
		if err != nil {
			failed = append(failed, metricFailure(name, fmt.Sprintf("metric %q: %v", name, err)))
			continue
		}
		if IsEmpty(val) {
			failed = append(failed, metricFailure(name, fmt.Sprintf("metric %q (%s): no value found", name, expr)))
			continue
		}
		f, err := ToFloat64(val)
		if err != nil {
			failed = append(failed, metricFailure(name, fmt.Sprintf("metric %q (%s): %v", name, expr, err)))
			continue
		}
		values[name] = f
	}

	return values, failed
}

func metricFailure(name, msg string) domain.CheckResult {
	return domain.CheckResult{Name: "metric." + name, Passed: false, Message: msg}
}

// IsEmpty reports nil, empty strings and empty collections.
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}

// ToFloat64 converts a JSONPath value to a number. A single element array
// counts as its element.
func ToFloat64(val any) (float64, error) {
	if arr, ok := val.([]any); ok && len(arr) == 1 {
		val = arr[0]
	}
	switch v := val.(type) {
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("value %q is not numeric", v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("value of type %T is not numeric", val)
	}
}

// Format renders a value for terminal output.
func Format(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), nil
	case bool:
		return strconv.FormatBool(t), nil
	case nil:
		return "null", nil
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
