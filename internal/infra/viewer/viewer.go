// Package viewer opens exported files with the desktop's default application.
package viewer

import (
	"os"

	"github.com/pnordq/pnfem/internal/domain"
	"github.com/pnordq/pnfem/internal/ports"
	"github.com/skratchdot/open-golang/open"
)

type Viewer struct {
	run func(string) error
}

type Option func(*Viewer)

// WithRunner replaces the launcher, mainly for tests.
func WithRunner(fn func(string) error) Option {
	return func(v *Viewer) { v.run = fn }
}

func New(opts ...Option) *Viewer {
	v := &Viewer{run: open.Run}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

var _ ports.Viewer = (*Viewer)(nil)

func (v *Viewer) Open(path string) error {
	if _, err := os.Stat(path); err != nil {
		return &domain.OpError{Op: "viewer.open", Kind: domain.KindNotFound, Path: path, Err: err}
	}
	if err := v.run(path); err != nil {
		return &domain.OpError{Op: "viewer.open", Kind: domain.KindExecution, Path: path, Err: err}
	}
	return nil
}
