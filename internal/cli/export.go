package cli

import (
	"fmt"

	"github.com/pnordq/pnfem/internal/domain"
	"github.com/pnordq/pnfem/internal/usecase"
	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	var workspace string
	var formats []string
	var outDir string

	c := &cobra.Command{
		Use:   "export [run-id]",
		Short: "Export a saved solve result (vtk, nc, xlsx, shp)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}
			run, err := usecase.NewQueryRun(ws.store).Load(firstArg(args))
			if err != nil {
				return err
			}
			if run.Output == nil {
				return &domain.OpError{
					Op:   "cli.export",
					Kind: domain.KindNotFound,
					Err:  fmt.Errorf("run %s has no solve result: %w", run.ID, domain.ErrNoResult),
				}
			}

			uc := ws.exportResult()
			for _, f := range formats {
				dir := outDir
				if dir == "" {
					dir = exportDir(ws, f)
				}
				p, err := uc.Execute(f, dir, run.ID, run.Output)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringSliceVarP(&formats, "format", "f", []string{"vtk"}, "Export formats: vtk,nc,xlsx,shp")
	c.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default: vtks/ for vtk, exports/ otherwise)")
	return c
}
