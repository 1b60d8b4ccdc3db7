package usecase

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pnordq/pnfem/internal/domain"
	"github.com/pnordq/pnfem/internal/ports"
)

// ExportResult writes a solve result in one of the registered formats. The
// format name is the exporter's extension without the dot (vtk, nc, xlsx, shp).
type ExportResult struct {
	exporters map[string]ports.ResultExporter
}

func NewExportResult(exporters ...ports.ResultExporter) *ExportResult {
	uc := &ExportResult{exporters: map[string]ports.ResultExporter{}}
	for _, e := range exporters {
		uc.exporters[strings.TrimPrefix(e.Ext(), ".")] = e
	}
	return uc
}

// Formats lists the registered format names, sorted.
func (uc *ExportResult) Formats() []string {
	out := make([]string, 0, len(uc.exporters))
	for k := range uc.exporters {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Execute exports out to dir/<base>.<ext> and returns the written path.
func (uc *ExportResult) Execute(format, dir, base string, out *domain.OutputData) (string, error) {
	format = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
	e, ok := uc.exporters[format]
	if !ok {
		return "", &domain.OpError{
			Op:   "export.format",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("unsupported format %q (expected %s): %w", format, strings.Join(uc.Formats(), "|"), domain.ErrInvalidConfig),
		}
	}
	if out.Empty() {
		return "", &domain.OpError{Op: "export." + format, Kind: domain.KindExecution, Err: domain.ErrNoResult}
	}
	p := filepath.Join(dir, base+e.Ext())
	if err := e.Export(p, out); err != nil {
		return "", err
	}
	return p, nil
}
