package cli

import (
	"github.com/pnordq/pnfem/internal/httpapi"
	"github.com/pnordq/pnfem/internal/infra/logger"
	"github.com/pnordq/pnfem/internal/infra/vtkexport"
	"github.com/pnordq/pnfem/internal/usecase"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var workspace string
	var addr string

	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API (validate, solve, runs)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}

			h := httpapi.NewHandler(httpapi.Deps{
				Execute:  ws.executeModel(false),
				Thread:   usecase.NewSolverThread(usecase.WithLogger(logger.L())),
				Runs:     ws.store,
				WriteVTK: vtkexport.Write,
				Logger:   logger.L(),
			})

			logger.L().Info("http.listen", "addr", addr, "workspace", ws.root)
			cmd.PrintErrf("listening on %s\n", addr)
			return httpapi.Serve(cmd.Context(), addr, httpapi.NewRouter(h))
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "Listen address")
	return c
}
