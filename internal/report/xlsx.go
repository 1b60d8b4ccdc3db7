package report

import (
	"os"
	"path/filepath"

	"github.com/pnordq/pnfem/internal/domain"
	"github.com/pnordq/pnfem/internal/ports"
	"github.com/tealeg/xlsx"
)

// Workbook writes the report tables into an .xlsx file, one sheet per table.
type Workbook struct{}

func NewWorkbook() *Workbook { return &Workbook{} }

var _ ports.ResultExporter = (*Workbook)(nil)

func (w *Workbook) Ext() string { return ".xlsx" }

func (w *Workbook) Export(path string, out *domain.OutputData) error {
	if out.Empty() {
		return &domain.OpError{Op: "xlsx.export", Kind: domain.KindExecution, Path: path, Err: domain.ErrNoResult}
	}

	f := xlsx.NewFile()
	if err := addInputSheet(f, out); err != nil {
		return &domain.OpError{Op: "xlsx.sheet", Kind: domain.KindExecution, Path: path, Err: err}
	}
	for _, t := range Tables(out) {
		if err := addTable(f, t); err != nil {
			return &domain.OpError{Op: "xlsx.sheet", Kind: domain.KindExecution, Path: path, Err: err}
		}
	}
	return save(f, path)
}

// ExportStudy writes the parameter study table into its own workbook.
func (w *Workbook) ExportStudy(path string, res *domain.StudyResult) error {
	f := xlsx.NewFile()
	if err := addTable(f, StudyTable(res)); err != nil {
		return &domain.OpError{Op: "xlsx.sheet", Kind: domain.KindExecution, Path: path, Err: err}
	}
	return save(f, path)
}

func save(f *xlsx.File, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &domain.OpError{Op: "xlsx.mkdir", Kind: domain.KindExecution, Path: path, Err: err}
	}
	if err := f.Save(path); err != nil {
		return &domain.OpError{Op: "xlsx.save", Kind: domain.KindExecution, Path: path, Err: err}
	}
	return nil
}

func addInputSheet(f *xlsx.File, out *domain.OutputData) error {
	sh, err := f.AddSheet("Input")
	if err != nil {
		return err
	}
	in := out.Input
	rows := []struct {
		key  string
		val  float64
		unit string
	}{
		{"w", in.W, "m"},
		{"h", in.H, "m"},
		{"a", in.A, "m"},
		{"b", in.B, "m"},
		{"t", in.T, "m"},
		{"E", in.E, "Pa"},
		{"v", in.V, ""},
		{"q", in.Q, "N"},
		{"el_size_factor", in.ElSizeFactor, ""},
		{"el_type", float64(in.ElType), ""},
	}
	for _, r := range rows {
		row := sh.AddRow()
		row.AddCell().SetString(r.key)
		row.AddCell().SetFloat(r.val)
		row.AddCell().SetString(r.unit)
	}
	return nil
}

func addTable(f *xlsx.File, t Table) error {
	sh, err := f.AddSheet(t.Sheet)
	if err != nil {
		return err
	}
	if len(t.Headers) > 0 {
		hr := sh.AddRow()
		for _, h := range t.Headers {
			hr.AddCell().SetString(h)
		}
	}
	for _, r := range t.Rows {
		row := sh.AddRow()
		for _, v := range r {
			c := row.AddCell()
			if t.Decimals < 0 {
				c.SetInt(int(v))
			} else {
				c.SetFloat(v)
			}
		}
	}
	return nil
}
