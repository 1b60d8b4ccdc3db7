package config

import (
	"fmt"
	"strings"

	"github.com/pnordq/pnfem/internal/domain"
)

// MapConfig applies the parsed file on top of domain.DefaultConfig().
func MapConfig(path string, y YAMLConfig) (domain.Config, error) {
	cfg := domain.DefaultConfig()
	p := y.PNFEM

	setStr(&cfg.Paths.ModelsDir, p.Paths.ModelsDir)
	setStr(&cfg.Paths.RunsDir, p.Paths.RunsDir)
	setStr(&cfg.Paths.FiguresDir, p.Paths.FiguresDir)
	setStr(&cfg.Paths.VTKDir, p.Paths.VTKDir)
	setStr(&cfg.Paths.ExportsDir, p.Paths.ExportsDir)

	s := p.Solver
	if s.MaxDofs != nil {
		if *s.MaxDofs <= 0 {
			return cfg, invalidField(path, "solver.max_dofs", "must be positive")
		}
		cfg.Solver.MaxDofs = *s.MaxDofs
	}
	if s.DenseLimit != nil {
		if *s.DenseLimit < 0 {
			return cfg, invalidField(path, "solver.dense_limit", "must not be negative")
		}
		cfg.Solver.DenseLimit = *s.DenseLimit
	}
	if s.CGTolerance != nil {
		if *s.CGTolerance <= 0 || *s.CGTolerance >= 1 {
			return cfg, invalidField(path, "solver.cg_tolerance", "must be in (0, 1)")
		}
		cfg.Solver.CGTolerance = *s.CGTolerance
	}
	if s.CGMaxIter != nil {
		if *s.CGMaxIter <= 0 {
			return cfg, invalidField(path, "solver.cg_max_iter", "must be positive")
		}
		cfg.Solver.CGMaxIter = *s.CGMaxIter
	}
	if s.Magnification != nil {
		if *s.Magnification <= 0 {
			return cfg, invalidField(path, "solver.magnification", "must be positive")
		}
		cfg.Solver.Magnification = *s.Magnification
	}

	cfg.Checks.MaxVonMises = p.Checks.MaxVonMises
	cfg.Checks.MaxDisplacement = p.Checks.MaxDisplacement
	if len(p.Checks.JSONPath) > 0 {
		cfg.Checks.JSONPath = make(map[string]domain.JSONPathCheck, len(p.Checks.JSONPath))
		for expr, c := range p.Checks.JSONPath {
			if !strings.HasPrefix(strings.TrimSpace(expr), "$") {
				return cfg, invalidField(path, "checks.jsonpath", fmt.Sprintf("expression %q must start with $", expr))
			}
			cfg.Checks.JSONPath[expr] = domain.JSONPathCheck{Exists: c.Exists, Lt: c.Lt, Gt: c.Gt}
		}
	}

	if len(p.Study.Metrics) > 0 {
		cfg.Study.Metrics = make(map[string]string, len(p.Study.Metrics))
		for name, expr := range p.Study.Metrics {
			if strings.TrimSpace(name) == "" || !strings.HasPrefix(strings.TrimSpace(expr), "$") {
				return cfg, invalidField(path, "study.metrics."+name, "expected a name and a $ expression")
			}
			cfg.Study.Metrics[name] = expr
		}
	}
	if p.Study.Plot != nil {
		cfg.Study.Plot = *p.Study.Plot
	}

	l := p.Logging
	setPositive(&cfg.Logging.MaxSizeMB, l.MaxSizeMB)
	setPositive(&cfg.Logging.MaxBackups, l.MaxBackups)
	setPositive(&cfg.Logging.MaxAgeDays, l.MaxAgeDays)
	if l.Compress != nil {
		cfg.Logging.Compress = *l.Compress
	}

	return cfg, nil
}

func setStr(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = v
	}
}

func setPositive(dst *int, v *int) {
	if v != nil && *v > 0 {
		*dst = *v
	}
}

func invalidField(path, field, msg string) error {
	return &domain.OpError{
		Op:   "config.map",
		Kind: domain.KindInvalidConfig,
		Path: path,
		Err:  fmt.Errorf("field %s: %s: %w", field, msg, domain.ErrInvalidConfig),
	}
}
