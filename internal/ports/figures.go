package ports

import "github.com/pnordq/pnfem/internal/domain"

// FigureRenderer draws result figures to image files.
type FigureRenderer interface {
	Render(path string, kind domain.FigureKind, out *domain.OutputData, opts domain.FigureOptions) error
	RenderStudy(path string, res *domain.StudyResult) error
}

// Viewer opens a file in the system viewer.
type Viewer interface {
	Open(path string) error
}
