package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pnordq/pnfem/internal/domain"
	"github.com/spf13/cobra"
)

func runsCmd() *cobra.Command {
	var workspace string
	var format string

	c := &cobra.Command{
		Use:   "runs",
		Short: "List saved runs, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}
			refs, err := ws.store.ListRuns()
			if err != nil {
				return err
			}
			return printRuns(cmd.OutOrStdout(), refs, format)
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	return c
}

func printRuns(w io.Writer, refs []domain.RunRef, format string) error {
	switch format {
	case "json":
		if refs == nil {
			refs = []domain.RunRef{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(refs)
	case "pretty", "":
		if len(refs) == 0 {
			fmt.Fprintln(w, "(no runs found)")
			return nil
		}
		for _, r := range refs {
			fmt.Fprintf(w, "- %s  %-5s  %s  %s\n", r.ID, r.Kind, r.ModelName, r.StartedAt.Format(time.RFC3339))
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
	}
}
