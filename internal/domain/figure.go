package domain

import "fmt"

// FigureKind selects one of the result figures.
type FigureKind string

const (
	FigureGeometry      FigureKind = "geometry"
	FigureMesh          FigureKind = "mesh"
	FigureDisplacement  FigureKind = "displacement"
	FigureElementValues FigureKind = "element-values"
)

// FigureKinds lists every figure in display order.
func FigureKinds() []FigureKind {
	return []FigureKind{FigureGeometry, FigureMesh, FigureDisplacement, FigureElementValues}
}

func ParseFigureKind(s string) (FigureKind, error) {
	for _, k := range FigureKinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unsupported figure %q (expected geometry|mesh|displacement|element-values): %w", s, ErrInvalidConfig)
}

// FigureOptions tunes how a figure is drawn.
type FigureOptions struct {
	// Magnification scales displacements in the deformed mesh.
	Magnification float64
	// ShowUndisplaced draws the original mesh under the deformed one.
	ShowUndisplaced bool
}
