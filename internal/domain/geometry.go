package domain

import (
	"github.com/ctessum/geom"
)

// Marker tags a boundary curve for loads and boundary conditions.
type Marker int

const (
	MarkerNone  Marker = 0
	MarkerLoad  Marker = 6  // right edge, x = w
	MarkerClamp Marker = 12 // left edge, x = 0
)

// Curve is a straight boundary segment between two geometry points.
type Curve struct {
	From, To int
	Marker   Marker
}

// Geometry is the boundary description of the notched plate.
type Geometry struct {
	Points []geom.Point
	Curves []Curve
}

// Geometry builds the plate outline counter-clockwise from the origin.
// Curve 5 (right edge) carries MarkerLoad, curve 11 (left edge) MarkerClamp.
func (in InputData) Geometry() Geometry {
	h, w, a, b := in.H, in.W, in.A, in.B
	xl := (w - a) / 2
	xr := (w + a) / 2

	pts := []geom.Point{
		{X: 0, Y: 0},
		{X: xl, Y: 0},
		{X: xl, Y: b},
		{X: xr, Y: b},
		{X: xr, Y: 0},
		{X: w, Y: 0},
		{X: w, Y: h},
		{X: xr, Y: h},
		{X: xr, Y: h - b},
		{X: xl, Y: h - b},
		{X: xl, Y: h},
		{X: 0, Y: h},
	}

	curves := make([]Curve, 0, len(pts))
	for i := 0; i < len(pts)-1; i++ {
		c := Curve{From: i, To: i + 1}
		if i == 5 {
			c.Marker = MarkerLoad
		}
		curves = append(curves, c)
	}
	curves = append(curves, Curve{From: 0, To: len(pts) - 1, Marker: MarkerClamp})

	return Geometry{Points: pts, Curves: curves}
}

// Polygon returns the closed outline.
func (g Geometry) Polygon() geom.Polygon {
	path := make(geom.Path, 0, len(g.Points)+1)
	path = append(path, g.Points...)
	if len(g.Points) > 0 {
		path = append(path, g.Points[0])
	}
	return geom.Polygon{path}
}

// Area is the plate area without the notches.
func (g Geometry) Area() float64 {
	return g.Polygon().Area()
}

// Bounds returns the bounding box of the outline.
func (g Geometry) Bounds() *geom.Bounds {
	return g.Polygon().Bounds()
}

// Contains reports whether (x, y) is inside the plate or on its boundary.
func (g Geometry) Contains(x, y float64) bool {
	return geom.Point{X: x, Y: y}.Within(g.Polygon()) != geom.Outside
}

// MarkedCurves returns the curves carrying marker m.
func (g Geometry) MarkedCurves(m Marker) []Curve {
	var out []Curve
	for _, c := range g.Curves {
		if c.Marker == m {
			out = append(out, c)
		}
	}
	return out
}
