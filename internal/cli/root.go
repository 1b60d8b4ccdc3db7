package cli

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pnordq/pnfem/internal/domain"
	"github.com/pnordq/pnfem/internal/infra/config"
	"github.com/pnordq/pnfem/internal/infra/logger"
	"github.com/pnordq/pnfem/internal/infra/workspacefinder"
	"github.com/pnordq/pnfem/internal/ui/tui"
	"github.com/pnordq/pnfem/internal/usecase"
	"github.com/spf13/cobra"
)

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var debug bool
	var closeLog func() error

	cmd := &cobra.Command{
		Use:          "pnfem",
		Short:        "pnfem: plane-stress analysis of a notched plate",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			closeLog = setupLogging(logRoot(cmd, args), debug)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if closeLog != nil {
				_ = closeLog()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), debug)
		},
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable verbose logging to .pnfem/logs/pnfem.log")

	cmd.AddCommand(
		initCmd(),
		newCmd(),
		validateCmd(),
		solveCmd(),
		studyCmd(),
		reportCmd(),
		exportCmd(),
		plotCmd(),
		queryCmd(),
		runsCmd(),
		serveCmd(),
		versionCmd(),
	)
	return cmd
}

// logRoot picks the workspace a command works on: its --workspace flag, the
// directory passed to init, or the workspace around the working directory.
func logRoot(cmd *cobra.Command, args []string) string {
	if f := cmd.Flags().Lookup("workspace"); f != nil && f.Value.String() != "" {
		if abs, err := filepath.Abs(f.Value.String()); err == nil {
			return abs
		}
	}
	if cmd.Name() == "init" && len(args) > 0 {
		if abs, err := filepath.Abs(args[0]); err == nil {
			return abs
		}
	}

	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	wd, _ = filepath.Abs(wd)
	if root, ferr := workspacefinder.NewFinder().FindRoot(wd); ferr == nil && root != "" {
		return root
	}
	return wd
}

func setupLogging(root string, debug bool) func() error {
	rotation := domain.DefaultConfig().Logging
	if cfg, err := config.Load(root); err == nil {
		rotation = cfg.Logging
	}

	cleanup, _ := logger.Setup(logger.Config{
		Root:     root,
		Debug:    debug,
		Rotation: rotation,
	})
	return cleanup
}

// runTUI starts the main window. Outside a workspace it works in the current
// directory with default settings and does not save runs.
func runTUI(ctx context.Context, debug bool) error {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	wd, _ = filepath.Abs(wd)

	root, cfg, found := wd, domain.DefaultConfig(), false
	if w, err := workspacefinder.Open(wd, workspacefinder.WithLogger(logger.L())); err == nil {
		root, cfg, found = w.Root, w.Config, true
	} else if w.Root != "" {
		// A workspace with a broken pnfem.yaml is an error, not a fallback.
		return err
	}

	ws := newWorkspaceCtx(root, cfg)
	deps := tui.Deps{
		Root:           root,
		WorkspaceFound: found,
		Config:         cfg,
		Models:         ws.models,
		Execute:        ws.executeModel(!found),
		Study:          ws.paramStudy(!found),
		Thread:         usecase.NewSolverThread(usecase.WithLogger(logger.L())),
		Figures:        ws.renderFigures(),
		Logger:         logger.L(),
		Debug:          debug,
	}
	return tui.Run(ctx, deps)
}
