package workspacefinder

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pnordq/pnfem/internal/domain"
	"github.com/pnordq/pnfem/internal/infra/config"
	"github.com/pnordq/pnfem/internal/ports"
)

// Finder walks up from a directory until it meets a pnfem.yaml file.
type Finder struct {
	configFile string
	stopAt     string
	log        *slog.Logger
}

type Option func(*Finder)

// WithConfigFile changes the marker file name.
func WithConfigFile(name string) Option {
	return func(f *Finder) {
		if name != "" {
			f.configFile = name
		}
	}
}

// WithStopAt ends the walk at dir (inclusive) instead of the filesystem root.
func WithStopAt(dir string) Option {
	return func(f *Finder) {
		if abs, err := filepath.Abs(dir); err == nil {
			f.stopAt = filepath.Clean(abs)
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(f *Finder) {
		if l != nil {
			f.log = l
		}
	}
}

func NewFinder(opts ...Option) *Finder {
	f := &Finder{
		configFile: config.FileName,
		log:        slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

var _ ports.WorkspaceLocator = (*Finder)(nil)

// ConfigPath is the marker file of the workspace at root.
func (f *Finder) ConfigPath(root string) string {
	return filepath.Join(root, f.configFile)
}

// FindRoot returns the nearest directory at or above startDir holding the
// config file. A directory named like the config file does not count.
func (f *Finder) FindRoot(startDir string) (string, error) {
	if startDir == "" {
		return "", &domain.OpError{
			Op:   "workspacefinder.findroot",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("start directory is empty: %w", domain.ErrInvalidConfig),
		}
	}

	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", &domain.OpError{Op: "workspacefinder.findroot", Kind: domain.KindExecution, Path: startDir, Err: err}
	}
	// A model file path starts the walk at its directory.
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		abs = filepath.Dir(abs)
	}

	start := filepath.Clean(abs)
	for cur, depth := start, 0; ; depth++ {
		cfgPath := f.ConfigPath(cur)
		if info, err := os.Stat(cfgPath); err == nil && info.Mode().IsRegular() {
			f.log.Debug("workspace.found", "root", cur, "config", cfgPath, "levels_up", depth)
			return cur, nil
		}

		parent := filepath.Dir(cur)
		if parent == cur || cur == f.stopAt {
			f.log.Debug("workspace.not_found", "start", start, "config_file", f.configFile)
			return "", &domain.OpError{
				Op:   "workspacefinder.findroot",
				Kind: domain.KindNotFound,
				Path: start,
				Err:  fmt.Errorf("no %s at or above %s: %w", f.configFile, start, domain.ErrNotFound),
			}
		}
		cur = parent
	}
}
