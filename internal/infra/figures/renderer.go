// Package figures draws the plate, the mesh and the results with gonum/plot.
package figures

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/pnordq/pnfem/internal/domain"
	"github.com/pnordq/pnfem/internal/ports"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const (
	defaultWidth          = 18 * vg.Centimeter
	defaultMagnification  = 1000
	extraHeightForHeading = 3 * vg.Centimeter
)

var (
	edgeColor      = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	meshFill       = color.RGBA{R: 200, G: 215, B: 235, A: 255}
	undisplaced    = color.RGBA{R: 170, G: 170, B: 170, A: 255}
	loadColor      = color.RGBA{R: 200, G: 30, B: 30, A: 255}
	clampColor     = color.RGBA{R: 30, G: 60, B: 200, A: 255}
	studyLineColor = color.RGBA{R: 20, G: 90, B: 160, A: 255}
)

type Renderer struct {
	width vg.Length
}

type Option func(*Renderer)

func WithWidth(w vg.Length) Option {
	return func(r *Renderer) {
		if w > 0 {
			r.width = w
		}
	}
}

func New(opts ...Option) *Renderer {
	r := &Renderer{width: defaultWidth}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ ports.FigureRenderer = (*Renderer)(nil)

// Render draws one figure. The geometry figure only needs out.Geometry and
// out.Input; the others need a solved result.
func (r *Renderer) Render(path string, kind domain.FigureKind, out *domain.OutputData, opts domain.FigureOptions) error {
	var (
		p   *plot.Plot
		err error
	)
	switch kind {
	case domain.FigureGeometry:
		p, err = geometryPlot(out)
	case domain.FigureMesh:
		p, err = meshPlot(out)
	case domain.FigureDisplacement:
		p, err = displacementPlot(out, opts)
	case domain.FigureElementValues:
		p, err = elementValuesPlot(out)
	default:
		err = fmt.Errorf("unsupported figure %q", kind)
	}
	if err != nil {
		return &domain.OpError{Op: "figures.render", Kind: domain.KindExecution, Path: path, Err: err}
	}

	w, h := r.size(out.Input)
	return save(p, w, h, path)
}

// RenderStudy plots the largest von Mises stress against the study parameter.
func (r *Renderer) RenderStudy(path string, res *domain.StudyResult) error {
	if res == nil || len(res.Steps) == 0 {
		return &domain.OpError{Op: "figures.study", Kind: domain.KindExecution, Path: path, Err: domain.ErrNoResult}
	}

	xys := make(plotter.XYs, len(res.Steps))
	for i, s := range res.Steps {
		xys[i].X = s.Value
		xys[i].Y = s.MaxVonMises
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Max von Mises stress vs %s", res.Spec.Param)
	p.X.Label.Text = paramLabel(res.Spec.Param)
	p.Y.Label.Text = "max von Mises [Pa]"
	p.Add(plotter.NewGrid())

	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return &domain.OpError{Op: "figures.study", Kind: domain.KindExecution, Path: path, Err: err}
	}
	line.Color = studyLineColor
	points.Color = studyLineColor
	p.Add(line, points)

	return save(p, r.width, r.width*2/3, path)
}

func paramLabel(p domain.StudyParam) string {
	if p == domain.StudyQ {
		return "q [N]"
	}
	return "b [m]"
}

// size keeps the plate's aspect ratio.
func (r *Renderer) size(in domain.InputData) (vg.Length, vg.Length) {
	w := r.width
	if in.W <= 0 || in.H <= 0 {
		return w, w * 2 / 3
	}
	h := vg.Length(float64(w)*in.H/in.W) + extraHeightForHeading
	return w, h
}

func save(p *plot.Plot, w, h vg.Length, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &domain.OpError{Op: "figures.mkdir", Kind: domain.KindExecution, Path: path, Err: err}
	}
	if err := p.Save(w, h, path); err != nil {
		return &domain.OpError{Op: "figures.save", Kind: domain.KindExecution, Path: path, Err: err}
	}
	return nil
}

func newPlatePlot(title string, in domain.InputData) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x [m]"
	p.Y.Label.Text = "y [m]"
	pad := 0.03 * math.Max(in.W, in.H)
	p.X.Min, p.X.Max = -pad, in.W+pad
	p.Y.Min, p.Y.Max = -pad, in.H+pad
	return p
}

func geometryPlot(out *domain.OutputData) (*plot.Plot, error) {
	geo := out.Geometry
	if len(geo.Points) == 0 {
		geo = out.Input.Geometry()
	}
	p := newPlatePlot("Geometry", out.Input)

	for _, c := range geo.Curves {
		a, b := geo.Points[c.From], geo.Points[c.To]
		l, err := plotter.NewLine(plotter.XYs{{X: a.X, Y: a.Y}, {X: b.X, Y: b.Y}})
		if err != nil {
			return nil, err
		}
		l.Color = edgeColor
		l.Width = vg.Points(1)
		switch c.Marker {
		case domain.MarkerLoad:
			l.Color = loadColor
			l.Width = vg.Points(2.5)
			p.Legend.Add(fmt.Sprintf("load q (marker %d)", c.Marker), l)
		case domain.MarkerClamp:
			l.Color = clampColor
			l.Width = vg.Points(2.5)
			p.Legend.Add(fmt.Sprintf("clamped (marker %d)", c.Marker), l)
		}
		p.Add(l)
	}

	pts := make(plotter.XYs, len(geo.Points))
	for i, pt := range geo.Points {
		pts[i] = plotter.XY{X: pt.X, Y: pt.Y}
	}
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	sc.Color = edgeColor
	p.Add(sc)
	return p, nil
}

func requireResult(out *domain.OutputData) error {
	if out.Empty() {
		return domain.ErrNoResult
	}
	return nil
}

// elementPolygons builds one polygon per element from the given node coordinates.
func elementPolygons(coords [][]float64, topo [][]int, fill func(e int) color.Color, line color.Color) ([]plot.Plotter, error) {
	out := make([]plot.Plotter, 0, len(topo))
	for e, nodes := range topo {
		xys := make(plotter.XYs, len(nodes))
		for k, n := range nodes {
			xys[k] = plotter.XY{X: coords[n][0], Y: coords[n][1]}
		}
		poly, err := plotter.NewPolygon(xys)
		if err != nil {
			return nil, err
		}
		poly.Color = nil
		if fill != nil {
			poly.Color = fill(e)
		}
		poly.LineStyle.Color = line
		poly.LineStyle.Width = vg.Points(0.3)
		out = append(out, poly)
	}
	return out, nil
}

func meshPlot(out *domain.OutputData) (*plot.Plot, error) {
	if err := requireResult(out); err != nil {
		return nil, err
	}
	p := newPlatePlot(fmt.Sprintf("Mesh (%d elements, %s)", len(out.Topo), out.ElType), out.Input)
	polys, err := elementPolygons(out.Coords, out.Topo, func(int) color.Color { return meshFill }, edgeColor)
	if err != nil {
		return nil, err
	}
	p.Add(polys...)
	return p, nil
}

// Deform returns the node coordinates moved by the magnified displacements.
func Deform(out *domain.OutputData, magnification float64) [][]float64 {
	moved := make([][]float64, len(out.Coords))
	for n, c := range out.Coords {
		moved[n] = []float64{
			c[0] + magnification*out.A[n*domain.DofsPerNode],
			c[1] + magnification*out.A[n*domain.DofsPerNode+1],
		}
	}
	return moved
}

func displacementPlot(out *domain.OutputData, opts domain.FigureOptions) (*plot.Plot, error) {
	if err := requireResult(out); err != nil {
		return nil, err
	}
	mag := opts.Magnification
	if mag <= 0 {
		mag = defaultMagnification
	}
	p := newPlatePlot(fmt.Sprintf("Displacements (magnified by %g)", mag), out.Input)

	if opts.ShowUndisplaced {
		base, err := elementPolygons(out.Coords, out.Topo, nil, undisplaced)
		if err != nil {
			return nil, err
		}
		p.Add(base...)
	}

	moved, err := elementPolygons(Deform(out, mag), out.Topo, func(int) color.Color { return meshFill }, edgeColor)
	if err != nil {
		return nil, err
	}
	p.Add(moved...)

	// Let the axes grow with the deformation.
	p.X.Min, p.X.Max, p.Y.Min, p.Y.Max = math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)
	for _, pl := range moved {
		if dr, ok := pl.(plot.DataRanger); ok {
			xmin, xmax, ymin, ymax := dr.DataRange()
			p.X.Min, p.X.Max = math.Min(p.X.Min, xmin), math.Max(p.X.Max, xmax)
			p.Y.Min, p.Y.Max = math.Min(p.Y.Min, ymin), math.Max(p.Y.Max, ymax)
		}
	}
	if opts.ShowUndisplaced {
		p.X.Min, p.Y.Min = math.Min(p.X.Min, 0), math.Min(p.Y.Min, 0)
		p.X.Max, p.Y.Max = math.Max(p.X.Max, out.Input.W), math.Max(p.Y.Max, out.Input.H)
	}
	return p, nil
}

func elementValuesPlot(out *domain.OutputData) (*plot.Plot, error) {
	if err := requireResult(out); err != nil {
		return nil, err
	}
	vals := out.Mises
	if len(vals) != len(out.Topo) {
		return nil, fmt.Errorf("have %d element values for %d elements", len(vals), len(out.Topo))
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	cm := moreland.SmoothBlueRed()
	if hi <= lo {
		hi = lo + 1
	}
	cm.SetMin(lo)
	cm.SetMax(hi)

	p := newPlatePlot(fmt.Sprintf("Effective stress [Pa] (min %.3g, max %.3g)", lo, hi), out.Input)
	polys, err := elementPolygons(out.Coords, out.Topo, func(e int) color.Color {
		c, err := cm.At(vals[e])
		if err != nil {
			return edgeColor
		}
		return c
	}, nil)
	if err != nil {
		return nil, err
	}
	p.Add(polys...)
	return p, nil
}
