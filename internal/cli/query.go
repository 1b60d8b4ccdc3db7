package cli

import (
	"fmt"

	"github.com/pnordq/pnfem/internal/usecase"
	"github.com/pnordq/pnfem/internal/usecase/extract"
	"github.com/spf13/cobra"
)

func queryCmd() *cobra.Command {
	var workspace string
	var runID string

	c := &cobra.Command{
		Use:   "query <jsonpath>",
		Short: "Evaluate a JSONPath expression against a saved run",
		Example: `  pnfem query '$.Output.Summary.MaxVonMises'
  pnfem query --run 20240101T120000Z_plate '$.Study.Steps[*].MaxVonMises'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}

			v, err := usecase.NewQueryRun(ws.store).Execute(runID, args[0])
			if err != nil {
				return err
			}
			s, err := extract.Format(v)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVar(&runID, "run", usecase.Latest, "Run ID")
	return c
}
