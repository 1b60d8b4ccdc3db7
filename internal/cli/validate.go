package cli

import (
	"fmt"

	"github.com/pnordq/pnfem/internal/domain"
	"github.com/pnordq/pnfem/internal/usecase"
	"github.com/spf13/cobra"
)

func validateCmd() *cobra.Command {
	var workspace string

	c := &cobra.Command{
		Use:   "validate [model]",
		Short: "Validate a model file (no solve)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}

			path, err := resolveModelPath(ws, firstArg(args))
			if err != nil {
				return err
			}

			uc := usecase.NewValidateModel(ws.models)
			in, verr, err := uc.Execute(path)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if verr == nil {
				fmt.Fprintln(w, "OK")
				return nil
			}

			printIssues(w, verr)
			if calc := verr.Filter(domain.GroupCalcInputs); calc != nil {
				return calc
			}
			for _, p := range []domain.StudyParam{domain.StudyB, domain.StudyQ} {
				if usecase.Check(in, p) != nil {
					fmt.Fprintf(w, "model solves, but the %s study is blocked\n", p)
				}
			}
			return nil
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	return c
}
