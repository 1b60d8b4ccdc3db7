package cli

import (
	"fmt"

	"github.com/pnordq/pnfem/internal/domain"
	"github.com/pnordq/pnfem/internal/usecase"
	"github.com/spf13/cobra"
)

func plotCmd() *cobra.Command {
	var workspace string
	var kinds []string
	var open bool
	var undisplaced bool
	var magnification float64

	c := &cobra.Command{
		Use:   "plot [run-id]",
		Short: "Render figures of a saved run into figures/",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			selected, err := parseKinds(kinds)
			if err != nil {
				return err
			}

			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}
			run, err := usecase.NewQueryRun(ws.store).Load(firstArg(args))
			if err != nil {
				return err
			}

			out := run.Output
			if out == nil {
				// Study runs only carry the input: the geometry can still be drawn.
				out = &domain.OutputData{Input: run.Input}
			}

			if magnification <= 0 {
				magnification = ws.cfg.Solver.Magnification
			}
			opts := domain.FigureOptions{Magnification: magnification, ShowUndisplaced: undisplaced}

			paths, err := ws.renderFigures().Execute(out, ws.dir(ws.cfg.Paths.FiguresDir), run.ID, selected, opts, open)
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return err
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringSliceVarP(&kinds, "kind", "k", nil, "Figures: geometry,mesh,displacement,element-values (default: all)")
	c.Flags().BoolVar(&open, "open", false, "Open the figures in the system viewer")
	c.Flags().BoolVar(&undisplaced, "undisplaced", false, "Draw the undisplaced mesh under the deformed one")
	c.Flags().Float64Var(&magnification, "magnification", 0, "Displacement magnification (default from pnfem.yaml)")
	return c
}

func parseKinds(in []string) ([]domain.FigureKind, error) {
	if len(in) == 0 {
		return domain.FigureKinds(), nil
	}
	out := make([]domain.FigureKind, 0, len(in))
	for _, s := range in {
		k, err := domain.ParseFigureKind(s)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}
