package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/pnordq/pnfem/internal/domain"
	"github.com/pnordq/pnfem/internal/usecase"
	"github.com/spf13/cobra"
)

func studyCmd() *cobra.Command {
	var workspace string
	var param string
	var noSave bool
	var format string
	var xlsxOut bool

	c := &cobra.Command{
		Use:   "study [model]",
		Short: "Run a parameter study on the notch depth b or the load q",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := domain.ParseStudyParam(param)
			if err != nil {
				return err
			}

			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}
			path, err := resolveModelPath(ws, firstArg(args))
			if err != nil {
				return err
			}
			in, err := ws.models.LoadModel(path)
			if err != nil {
				return err
			}

			progress := func(step domain.StudyStep, total int) {
				if format == "json" {
					return
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "step %d/%d: %s = %g, max von Mises = %.4g Pa\n",
					step.Index+1, total, p, step.Value, step.MaxVonMises)
			}

			run, runID, err := ws.paramStudy(noSave).Execute(cmd.Context(), usecase.StudyRequest{
				Input:    in,
				Param:    p,
				Source:   usecase.ModelSource{Name: modelName(path), Path: path},
				Progress: progress,
			})
			if err != nil {
				var verr *domain.ValidationError
				if errors.As(err, &verr) {
					printIssues(cmd.ErrOrStderr(), verr)
				}
				if run.Study != nil && len(run.Study.Steps) > 0 {
					_ = printRun(cmd.OutOrStdout(), run, runID, format)
				}
				return err
			}

			if err := printRun(cmd.OutOrStdout(), run, runID, format); err != nil {
				return err
			}

			if xlsxOut {
				name := modelName(path) + "_" + run.Study.Spec.BaseName() + ".xlsx"
				out := filepath.Join(ws.dir(ws.cfg.Paths.ExportsDir), name)
				if err := ws.workbook.ExportStudy(out, run.Study); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "exported %s\n", out)
			}
			return checksError(run)
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVarP(&param, "param", "p", "b", "Study parameter: b|q")
	c.Flags().BoolVar(&noSave, "no-save", false, "Do not save run artifact under runs/")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	c.Flags().BoolVar(&xlsxOut, "xlsx", false, "Write the study table to exports/ as .xlsx")
	return c
}
