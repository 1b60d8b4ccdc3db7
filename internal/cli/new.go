package cli

import (
	"fmt"
	"path/filepath"

	"github.com/pnordq/pnfem/internal/domain"
	"github.com/pnordq/pnfem/internal/infra/jsonmodel"
	"github.com/spf13/cobra"
)

func newCmd() *cobra.Command {
	var workspace string
	var force bool

	c := &cobra.Command{
		Use:   "new <name>",
		Short: "Write a model with default values to models/",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}

			path := ws.models.ResolvePath(ws.root, args[0])
			if !filepath.IsAbs(path) {
				path = filepath.Join(ws.root, path)
			}
			if filepath.Ext(path) == "" {
				path += jsonmodel.Ext
			}
			if fileExists(path) && !force {
				return &domain.OpError{
					Op:   "cli.new",
					Kind: domain.KindInvalidConfig,
					Path: path,
					Err:  fmt.Errorf("model already exists (use --force to overwrite): %w", domain.ErrInvalidConfig),
				}
			}

			if err := ws.models.SaveModel(path, domain.DefaultInputData()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
			return nil
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().BoolVar(&force, "force", false, "Overwrite an existing model")
	return c
}
