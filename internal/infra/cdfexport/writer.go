// Package cdfexport stores the numerical results in a NetCDF classic file so they
// can be loaded by numerical tools (Python, MATLAB, Julia).
package cdfexport

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ctessum/cdf"
	"github.com/pnordq/pnfem/internal/domain"
	"github.com/pnordq/pnfem/internal/ports"
)

type Exporter struct{}

func New() *Exporter { return &Exporter{} }

var _ ports.ResultExporter = (*Exporter)(nil)

func (e *Exporter) Ext() string { return ".nc" }

type variable struct {
	name  string
	dims  []string
	data  interface{}
	units string
	long  string
}

func (e *Exporter) Export(path string, out *domain.OutputData) error {
	if out.Empty() {
		return &domain.OpError{Op: "cdf.export", Kind: domain.KindExecution, Path: path, Err: domain.ErrNoResult}
	}

	nNodes := len(out.Coords)
	nEl := len(out.Topo)
	nen := len(out.Topo[0])
	nDofs := len(out.A)

	// A zero length would make "bc" the record dimension.
	if len(out.Bc) == 0 {
		return &domain.OpError{Op: "cdf.export", Kind: domain.KindExecution, Path: path,
			Err: fmt.Errorf("result has no boundary conditions")}
	}
	dims := []string{"node", "xy", "elem", "nen", "edofw", "dof", "comp", "bc"}
	lengths := []int{nNodes, 2, nEl, nen, nen * domain.DofsPerNode, nDofs, 3, len(out.Bc)}

	vars := []variable{
		{"coords", []string{"node", "xy"}, flatFloat(out.Coords), "m", "node coordinates"},
		{"dofs", []string{"node", "xy"}, flatInt(out.Dofs), "", "node degrees of freedom (1-based)"},
		{"edof", []string{"elem", "edofw"}, flatInt(out.Edof), "", "element degrees of freedom (1-based)"},
		{"topo", []string{"elem", "nen"}, flatInt(out.Topo), "", "element nodes (0-based)"},
		{"a", []string{"dof"}, append([]float64(nil), out.A...), "m", "nodal displacements"},
		{"r", []string{"dof"}, append([]float64(nil), out.R...), "N", "reaction forces"},
		{"ed", []string{"elem", "edofw"}, flatFloat(out.Ed), "m", "element displacements"},
		{"es", []string{"elem", "comp"}, flatFloat(out.Es), "Pa", "element stresses sx sy txy"},
		{"et", []string{"elem", "comp"}, flatFloat(out.Et), "1", "element strains ex ey gxy"},
		{"eseff", []string{"elem"}, append([]float64(nil), out.Eseff...), "Pa", "element von Mises stress"},
		{"eseffnod", []string{"node"}, append([]float64(nil), out.Eseffnod...), "Pa", "nodal von Mises stress"},
		{"bc", []string{"bc"}, toInt32(out.Bc), "", "prescribed degrees of freedom (1-based)"},
	}

	h := cdf.NewHeader(dims, lengths)
	h.AddAttribute("", "title", "pnfem notched plate results")
	h.AddAttribute("", "el_type", []int32{int32(out.ElType)})
	h.AddAttribute("", "E", []float64{out.Input.E})
	h.AddAttribute("", "v", []float64{out.Input.V})
	h.AddAttribute("", "t", []float64{out.Input.T})
	h.AddAttribute("", "q", []float64{out.Input.Q})
	for _, v := range vars {
		switch v.data.(type) {
		case []float64:
			h.AddVariable(v.name, v.dims, []float64{0})
		case []int32:
			h.AddVariable(v.name, v.dims, []int32{0})
		}
		h.AddAttribute(v.name, "long_name", v.long)
		if v.units != "" {
			h.AddAttribute(v.name, "units", v.units)
		}
	}
	h.Define()
	if errs := h.Check(); len(errs) > 0 {
		return &domain.OpError{Op: "cdf.header", Kind: domain.KindExecution, Path: path, Err: errs[0]}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &domain.OpError{Op: "cdf.mkdir", Kind: domain.KindExecution, Path: path, Err: err}
	}
	ff, err := os.Create(path)
	if err != nil {
		return &domain.OpError{Op: "cdf.create", Kind: domain.KindExecution, Path: path, Err: err}
	}
	defer ff.Close()

	f, err := cdf.Create(ff, h)
	if err != nil {
		return &domain.OpError{Op: "cdf.create", Kind: domain.KindExecution, Path: path, Err: err}
	}
	for _, v := range vars {
		w := f.Writer(v.name, nil, nil)
		if _, err := w.Write(v.data); err != nil {
			return &domain.OpError{Op: "cdf.write", Kind: domain.KindExecution, Path: path,
				Err: fmt.Errorf("variable %s: %w", v.name, err)}
		}
	}
	return nil
}

func flatFloat(rows [][]float64) []float64 {
	var out []float64
	for _, r := range rows {
		out = append(out, r...)
	}
	return out
}

func flatInt(rows [][]int) []int32 {
	var out []int32
	for _, r := range rows {
		out = append(out, toInt32(r)...)
	}
	return out
}

func toInt32(xs []int) []int32 {
	out := make([]int32, len(xs))
	for i, x := range xs {
		out[i] = int32(x)
	}
	return out
}
