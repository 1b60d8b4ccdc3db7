package cli

import (
	"errors"
	"fmt"

	"github.com/pnordq/pnfem/internal/domain"
	"github.com/pnordq/pnfem/internal/usecase"
	"github.com/spf13/cobra"
)

func solveCmd() *cobra.Command {
	var workspace string
	var noSave bool
	var format string
	var exports []string
	var withFigures bool
	var open bool
	var undisplaced bool

	c := &cobra.Command{
		Use:   "solve [model]",
		Short: "Solve a model and save the run under runs/",
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
			in, err := ws.models.LoadModel(path)
			if err != nil {
				return err
			}

			name := modelName(path)
			run, runID, err := ws.executeModel(noSave).Execute(cmd.Context(), in, usecase.ModelSource{Name: name, Path: path})
			if err != nil {
				var verr *domain.ValidationError
				if errors.As(err, &verr) {
					printIssues(cmd.ErrOrStderr(), verr)
				}
				return err
			}

			if err := printRun(cmd.OutOrStdout(), run, runID, format); err != nil {
				return err
			}

			base := name
			if runID != "" {
				base = runID
			}
			if err := writeOutputs(cmd, ws, run.Output, base, exports, withFigures, open, undisplaced); err != nil {
				return err
			}
			return checksError(run)
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().BoolVar(&noSave, "no-save", false, "Do not save run artifact under runs/")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	c.Flags().StringSliceVar(&exports, "export", nil, "Also export the result: vtk,nc,xlsx,shp")
	c.Flags().BoolVar(&withFigures, "figures", false, "Render every figure into figures/")
	c.Flags().BoolVar(&open, "open", false, "Open rendered figures in the system viewer")
	c.Flags().BoolVar(&undisplaced, "undisplaced", false, "Draw the undisplaced mesh under the deformed one")
	return c
}

// writeOutputs runs the optional exports and figures after a solve.
func writeOutputs(cmd *cobra.Command, ws *workspaceCtx, out *domain.OutputData, base string, exports []string, withFigures, open, undisplaced bool) error {
	for _, f := range exports {
		p, err := ws.exportResult().Execute(f, exportDir(ws, f), base, out)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "exported %s\n", p)
	}

	if !withFigures {
		return nil
	}
	opts := domain.FigureOptions{Magnification: ws.cfg.Solver.Magnification, ShowUndisplaced: undisplaced}
	paths, err := ws.renderFigures().Execute(out, ws.dir(ws.cfg.Paths.FiguresDir), base, domain.FigureKinds(), opts, open)
	for _, p := range paths {
		fmt.Fprintf(cmd.ErrOrStderr(), "figure %s\n", p)
	}
	return err
}

// exportDir puts VTK files under vtks/ and every other format under exports/.
func exportDir(ws *workspaceCtx, format string) string {
	if format == "vtk" || format == ".vtk" {
		return ws.dir(ws.cfg.Paths.VTKDir)
	}
	return ws.dir(ws.cfg.Paths.ExportsDir)
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
