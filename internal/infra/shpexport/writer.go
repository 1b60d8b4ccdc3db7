// Package shpexport writes the mesh as an ESRI shapefile: one polygon per
// element with its stresses as attributes.
package shpexport

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/pnordq/pnfem/internal/domain"
	"github.com/pnordq/pnfem/internal/infra/femsolver"
	"github.com/pnordq/pnfem/internal/ports"
)

type Exporter struct{}

func New() *Exporter { return &Exporter{} }

var _ ports.ResultExporter = (*Exporter)(nil)

func (e *Exporter) Ext() string { return ".shp" }

// Attribute columns, in order.
var fields = []shp.Field{
	shp.NumberField("ELEM", 10),
	shp.FloatField("MISES", 24, 6),
	shp.FloatField("SX", 24, 6),
	shp.FloatField("SY", 24, 6),
	shp.FloatField("TXY", 24, 6),
	shp.FloatField("S1", 24, 6),
	shp.FloatField("S2", 24, 6),
}

func (e *Exporter) Export(path string, out *domain.OutputData) error {
	if out.Empty() {
		return &domain.OpError{Op: "shp.export", Kind: domain.KindExecution, Path: path, Err: domain.ErrNoResult}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &domain.OpError{Op: "shp.mkdir", Kind: domain.KindExecution, Path: path, Err: err}
	}
	if !strings.HasSuffix(path, ".shp") {
		path += ".shp"
	}

	w, err := shp.Create(path, shp.POLYGON)
	if err != nil {
		return &domain.OpError{Op: "shp.create", Kind: domain.KindExecution, Path: path, Err: err}
	}
	defer w.Close()

	w.SetFields(fields)

	for el, nodes := range out.Topo {
		// Shapefile outer rings run clockwise; the mesh is counter-clockwise.
		ring := make([]shp.Point, 0, len(nodes)+1)
		for k := len(nodes) - 1; k >= 0; k-- {
			c := out.Coords[nodes[k]]
			ring = append(ring, shp.Point{X: c[0], Y: c[1]})
		}
		ring = append(ring, ring[0])

		poly := (*shp.Polygon)(shp.NewPolyLine([][]shp.Point{ring}))
		row := int(w.Write(poly))

		attrs := []interface{}{el + 1, at(out.Mises, el), 0.0, 0.0, 0.0, 0.0, 0.0}
		if el < len(out.Es) {
			attrs[2], attrs[3], attrs[4] = out.Es[el][0], out.Es[el][1], out.Es[el][2]
			s1, s2, _ := femsolver.Principal(out.Es[el][0], out.Es[el][1], out.Es[el][2])
			attrs[5], attrs[6] = s1, s2
		}
		for i, v := range attrs {
			w.WriteAttribute(row, i, v)
		}
	}
	return nil
}

func at(xs []float64, i int) float64 {
	if i < len(xs) {
		return xs[i]
	}
	return 0
}
