package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pnordq/pnfem/internal/domain"
	"gopkg.in/yaml.v3"
)

const (
	FileName = "pnfem.yaml"
	EnvFile  = ".env"
)

// Environment overrides, read from the process and from <root>/.env.
// Process variables win over the file.
const (
	EnvMaxDofs      = "PNFEM_MAX_DOFS"
	EnvDenseLimit   = "PNFEM_DENSE_LIMIT"
	EnvLogMaxSizeMB = "PNFEM_LOG_MAX_SIZE_MB"
)

// Load reads <root>/pnfem.yaml and applies the environment overrides.
func Load(root string) (domain.Config, error) {
	path := filepath.Join(root, FileName)
	b, err := os.ReadFile(path)
	if err != nil {
		return domain.DefaultConfig(), &domain.OpError{
			Op:   "config.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	cfg, err := Parse(path, b)
	if err != nil {
		return cfg, err
	}
	if err := applyEnv(root, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Parse decodes a pnfem.yaml document; path is only used in errors.
func Parse(path string, b []byte) (domain.Config, error) {
	var dto YAMLConfig
	if err := yaml.Unmarshal(b, &dto); err != nil {
		return domain.DefaultConfig(), &domain.OpError{
			Op:   "config.load",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}
	return MapConfig(path, dto)
}

func applyEnv(root string, cfg *domain.Config) error {
	envPath := filepath.Join(root, EnvFile)
	vals, err := godotenv.Read(envPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return &domain.OpError{Op: "config.env", Kind: domain.KindInvalidConfig, Path: envPath, Err: err}
		}
		vals = map[string]string{}
	}
	for _, k := range []string{EnvMaxDofs, EnvDenseLimit, EnvLogMaxSizeMB} {
		if v, ok := os.LookupEnv(k); ok {
			vals[k] = v
		}
	}

	targets := []struct {
		key string
		dst *int
		min int
	}{
		{EnvMaxDofs, &cfg.Solver.MaxDofs, 1},
		{EnvDenseLimit, &cfg.Solver.DenseLimit, 0},
		{EnvLogMaxSizeMB, &cfg.Logging.MaxSizeMB, 1},
	}
	for _, t := range targets {
		raw, ok := vals[t.key]
		if !ok || raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < t.min {
			return &domain.OpError{
				Op:   "config.env",
				Kind: domain.KindInvalidConfig,
				Path: envPath,
				Err:  fmt.Errorf("%s=%q: expected an integer >= %d: %w", t.key, raw, t.min, domain.ErrInvalidConfig),
			}
		}
		*t.dst = n
	}
	return nil
}
