package workspacefinder

import (
	"github.com/pnordq/pnfem/internal/domain"
	"github.com/pnordq/pnfem/internal/infra/config"
)

// Workspace is a located workspace root with its loaded configuration.
type Workspace struct {
	Root       string
	ConfigPath string
	Config     domain.Config
}

// Open finds the workspace containing startDir and loads its pnfem.yaml. When
// the file is found but broken, Root and ConfigPath are still set.
func Open(startDir string, opts ...Option) (Workspace, error) {
	f := NewFinder(opts...)
	root, err := f.FindRoot(startDir)
	if err != nil {
		return Workspace{}, err
	}
	ws := Workspace{Root: root, ConfigPath: f.ConfigPath(root)}
	cfg, err := config.Load(root)
	ws.Config = cfg
	if err != nil {
		f.log.Warn("workspace.config_invalid", "config", ws.ConfigPath, "error", err)
		return ws, err
	}
	f.log.Info("workspace.open", "root", root, "config", ws.ConfigPath)
	return ws, nil
}
