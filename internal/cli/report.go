package cli

import (
	"fmt"
	"path/filepath"

	"github.com/pnordq/pnfem/internal/domain"
	"github.com/pnordq/pnfem/internal/report"
	"github.com/pnordq/pnfem/internal/usecase"
	"github.com/spf13/cobra"
)

func reportCmd() *cobra.Command {
	var workspace string
	var xlsxOut bool

	c := &cobra.Command{
		Use:   "report [run-id]",
		Short: "Print the result report of a saved run (default: latest)",
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

			w := cmd.OutOrStdout()
			switch {
			case run.Output != nil && !run.Output.Empty():
				if err := report.Write(w, run.Output); err != nil {
					return err
				}
			case run.Study != nil:
				t := report.StudyTable(run.Study)
				fmt.Fprintf(w, "%s:\n%s\n", t.Title, t.Render())
			default:
				return &domain.OpError{Op: "cli.report", Kind: domain.KindNotFound, Err: domain.ErrNoResult}
			}

			if !xlsxOut {
				return nil
			}
			p := filepath.Join(ws.dir(ws.cfg.Paths.ExportsDir), run.ID+".xlsx")
			if run.Output != nil && !run.Output.Empty() {
				err = ws.workbook.Export(p, run.Output)
			} else {
				err = ws.workbook.ExportStudy(p, run.Study)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported %s\n", p)
			return nil
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().BoolVar(&xlsxOut, "xlsx", false, "Also write the report tables to exports/<run-id>.xlsx")
	return c
}
