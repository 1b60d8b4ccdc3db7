package usecase

import (
	"path/filepath"

	"github.com/pnordq/pnfem/internal/domain"
	"github.com/pnordq/pnfem/internal/ports"
)

type RenderFigures struct {
	base
	renderer ports.FigureRenderer
	viewer   ports.Viewer
}

// NewRenderFigures wires the figure action; viewer may be nil.
func NewRenderFigures(r ports.FigureRenderer, v ports.Viewer, opts ...Option) *RenderFigures {
	uc := &RenderFigures{base: newBase(), renderer: r, viewer: v}
	apply(&uc.base, opts)
	return uc
}

// FigurePath is where a figure of the given kind is written.
func FigurePath(dir, prefix string, kind domain.FigureKind) string {
	name := string(kind) + ".png"
	if prefix != "" {
		name = prefix + "_" + name
	}
	return filepath.Join(dir, name)
}

// Execute renders the figures into dir and optionally opens them. The paths
// written so far are returned even when a later figure fails.
func (uc *RenderFigures) Execute(out *domain.OutputData, dir, prefix string, kinds []domain.FigureKind, opts domain.FigureOptions, open bool) ([]string, error) {
	var paths []string
	for _, k := range kinds {
		p := FigurePath(dir, prefix, k)
		if err := uc.renderer.Render(p, k, out, opts); err != nil {
			return paths, err
		}
		paths = append(paths, p)
		uc.log.Debug("figure.written", "kind", string(k), "path", p)

		if open && uc.viewer != nil {
			if err := uc.viewer.Open(p); err != nil {
				return paths, err
			}
		}
	}
	return paths, nil
}
