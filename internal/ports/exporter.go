package ports

import "github.com/pnordq/pnfem/internal/domain"

// ResultExporter writes a solve result to a file in one external format.
type ResultExporter interface {
	// Ext is the file extension including the dot, e.g. ".vtk".
	Ext() string
	Export(path string, out *domain.OutputData) error
}
