// Package template fills {{KEY}} placeholders in workspace scaffolding files.
package template

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pnordq/pnfem/internal/domain"
)

// RenderString replaces {{KEY}} placeholders with vars values.
// It returns an error if a variable is missing or a placeholder is malformed.
func RenderString(input string, vars map[string]string) (string, error) {
	if input == "" {
		return "", nil
	}

	var out strings.Builder
	rest := input
	for {
		start := strings.Index(rest, "{{")
		if start == -1 {
			out.WriteString(rest)
			return out.String(), nil
		}

		out.WriteString(rest[:start])
		rest = rest[start+2:]

		end := strings.Index(rest, "}}")
		if end == -1 {
			return "", renderErr(fmt.Errorf("unclosed template expression"))
		}

		key := strings.TrimSpace(rest[:end])
		if key == "" {
			return "", renderErr(fmt.Errorf("empty template expression"))
		}

		value, ok := vars[key]
		if !ok {
			return "", renderErr(fmt.Errorf("missing variable %q", key))
		}

		out.WriteString(value)
		rest = rest[end+2:]
	}
}

func renderErr(err error) error {
	return &domain.OpError{
		Op:   "template.render",
		Kind: domain.KindInvalidConfig,
		Err:  fmt.Errorf("%v: %w", err, domain.ErrInvalidConfig),
	}
}

// ConfigVars exposes cfg as template variables, e.g. MODELS_DIR or MAX_DOFS.
func ConfigVars(name string, cfg domain.Config) map[string]string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return map[string]string{
		"NAME":          name,
		"MODELS_DIR":    cfg.Paths.ModelsDir,
		"RUNS_DIR":      cfg.Paths.RunsDir,
		"FIGURES_DIR":   cfg.Paths.FiguresDir,
		"VTK_DIR":       cfg.Paths.VTKDir,
		"EXPORTS_DIR":   cfg.Paths.ExportsDir,
		"MAX_DOFS":      strconv.Itoa(cfg.Solver.MaxDofs),
		"DENSE_LIMIT":   strconv.Itoa(cfg.Solver.DenseLimit),
		"CG_TOLERANCE":  f(cfg.Solver.CGTolerance),
		"CG_MAX_ITER":   strconv.Itoa(cfg.Solver.CGMaxIter),
		"MAGNIFICATION": f(cfg.Solver.Magnification),
		"STUDY_PLOT":    strconv.FormatBool(cfg.Study.Plot),
		"LOG_MAX_SIZE":  strconv.Itoa(cfg.Logging.MaxSizeMB),
		"LOG_BACKUPS":   strconv.Itoa(cfg.Logging.MaxBackups),
		"LOG_MAX_AGE":   strconv.Itoa(cfg.Logging.MaxAgeDays),
		"LOG_COMPRESS":  strconv.FormatBool(cfg.Logging.Compress),
	}
}
