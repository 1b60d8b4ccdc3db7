// Package vtkexport writes results as legacy ASCII VTK poly data, readable by
// ParaView and VisIt.
package vtkexport

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pnordq/pnfem/internal/domain"
	"github.com/pnordq/pnfem/internal/ports"
)

const title = "pnfem notched plate results"

type Exporter struct{}

func New() *Exporter { return &Exporter{} }

var _ ports.ResultExporter = (*Exporter)(nil)

func (e *Exporter) Ext() string { return ".vtk" }

// Export writes the file, creating parent directories as needed.
func (e *Exporter) Export(path string, out *domain.OutputData) error {
	if out.Empty() {
		return &domain.OpError{Op: "vtk.export", Kind: domain.KindExecution, Path: path, Err: domain.ErrNoResult}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &domain.OpError{Op: "vtk.mkdir", Kind: domain.KindExecution, Path: path, Err: err}
	}

	f, err := os.Create(path)
	if err != nil {
		return &domain.OpError{Op: "vtk.create", Kind: domain.KindExecution, Path: path, Err: err}
	}
	if err := Write(f, out); err != nil {
		_ = f.Close()
		return &domain.OpError{Op: "vtk.write", Kind: domain.KindExecution, Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &domain.OpError{Op: "vtk.close", Kind: domain.KindExecution, Path: path, Err: err}
	}
	return nil
}

// Write encodes points, polygons, cell data (mises, principal_stress_1,
// principal_stress_2) and point data (displacements).
func Write(w io.Writer, out *domain.OutputData) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "# vtk DataFile Version 2.0")
	fmt.Fprintln(bw, title)
	fmt.Fprintln(bw, "ASCII")
	fmt.Fprintln(bw, "DATASET POLYDATA")

	fmt.Fprintf(bw, "POINTS %d float\n", len(out.Coords))
	for _, c := range out.Coords {
		fmt.Fprintf(bw, "%s %s 0\n", num(c[0]), num(c[1]))
	}

	size := 0
	for _, nodes := range out.Topo {
		size += 1 + len(nodes)
	}
	fmt.Fprintf(bw, "POLYGONS %d %d\n", len(out.Topo), size)
	for _, nodes := range out.Topo {
		bw.WriteString(strconv.Itoa(len(nodes)))
		for _, n := range nodes {
			bw.WriteByte(' ')
			bw.WriteString(strconv.Itoa(n))
		}
		bw.WriteByte('\n')
	}

	fmt.Fprintf(bw, "CELL_DATA %d\n", len(out.Topo))
	fmt.Fprintln(bw, "SCALARS mises float 1")
	fmt.Fprintln(bw, "LOOKUP_TABLE default")
	for _, v := range out.Mises {
		fmt.Fprintln(bw, num(v))
	}
	writeVectors(bw, "principal_stress_1", out.Stress1)
	writeVectors(bw, "principal_stress_2", out.Stress2)

	fmt.Fprintf(bw, "POINT_DATA %d\n", len(out.Coords))
	writeVectors(bw, "displacements", out.Displ)

	return bw.Flush()
}

func writeVectors(bw *bufio.Writer, name string, vs []domain.Vec3) {
	fmt.Fprintf(bw, "VECTORS %s float\n", name)
	for _, v := range vs {
		fmt.Fprintf(bw, "%s %s %s\n", num(v[0]), num(v[1]), num(v[2]))
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
