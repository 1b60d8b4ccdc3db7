package fsworkspace

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pnordq/pnfem/internal/app/template"
	"github.com/pnordq/pnfem/internal/domain"
	"github.com/pnordq/pnfem/internal/infra/jsonmodel"
	"github.com/pnordq/pnfem/internal/infra/logger"
	"github.com/pnordq/pnfem/internal/ports"
)

// DefaultModel is the model file every new workspace starts with.
const DefaultModel = "default" + jsonmodel.Ext

type Initializer struct {
	cfg domain.Config
}

func NewInitializer() *Initializer {
	return &Initializer{cfg: domain.DefaultConfig()}
}

var _ ports.WorkspaceInitializer = (*Initializer)(nil)

func (i *Initializer) Init(spec domain.WorkspaceSpec, force bool) error {
	root := filepath.Clean(spec.Root)
	p := i.cfg.Paths

	dirs := []string{
		filepath.Join(root, p.ModelsDir),
		filepath.Join(root, p.RunsDir),
		filepath.Join(root, p.FiguresDir),
		filepath.Join(root, p.VTKDir),
		filepath.Join(root, p.ExportsDir),
		logger.Dir(root),
	}

	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return &domain.OpError{Op: "fsworkspace.mkdir", Kind: domain.KindExecution, Path: d, Err: err}
		}
	}

	if err := ensureGitignore(root, i.cfg.Paths); err != nil {
		return &domain.OpError{Op: "fsworkspace.gitignore", Kind: domain.KindExecution, Path: root, Err: err}
	}

	if err := i.writeTemplates(root, force); err != nil {
		return err
	}

	return writeDefaultModel(filepath.Join(root, p.ModelsDir, DefaultModel), force)
}

func (i *Initializer) writeTemplates(root string, force bool) error {
	vars := template.ConfigVars(filepath.Base(root), i.cfg)

	return fs.WalkDir(templatesFS, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel := strings.TrimPrefix(p, "templates/")
		dst := filepath.Join(root, rel)

		if !force {
			if _, statErr := os.Stat(dst); statErr == nil {
				return nil
			}
		}

		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}

		b, err := fs.ReadFile(templatesFS, p)
		if err != nil {
			return err
		}

		out, err := template.RenderString(string(b), vars)
		if err != nil {
			return &domain.OpError{Op: "fsworkspace.template", Kind: domain.KindInvalidConfig, Path: p, Err: err}
		}

		return os.WriteFile(dst, []byte(out), 0o644)
	})
}

func writeDefaultModel(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return nil
		}
	}
	return jsonmodel.NewStore().SaveModel(path, domain.DefaultInputData())
}

func ensureGitignore(root string, paths domain.PathsConfig) error {
	const header = "# pnfem"
	entries := []string{
		strings.TrimSuffix(paths.RunsDir, "/") + "/",
		strings.TrimSuffix(paths.FiguresDir, "/") + "/",
		strings.TrimSuffix(paths.VTKDir, "/") + "/",
		strings.TrimSuffix(paths.ExportsDir, "/") + "/",
		".pnfem/",
		".env",
	}

	path := filepath.Join(root, ".gitignore")
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			lines := append([]string{header}, entries...)
			lines = append(lines, "")
			return os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644)
		}
		return err
	}

	existing := string(b)
	present := map[string]bool{}
	for _, line := range strings.Split(existing, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		present[trimmed] = true
	}

	var missing []string
	for _, e := range entries {
		if !present[e] {
			missing = append(missing, e)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	var out strings.Builder
	out.Grow(len(existing) + 64)

	out.WriteString(existing)
	if existing != "" && !strings.HasSuffix(existing, "\n") {
		out.WriteByte('\n')
	}
	out.WriteByte('\n')
	if !present[header] {
		out.WriteString(header)
		out.WriteByte('\n')
	}
	for _, e := range missing {
		out.WriteString(e)
		out.WriteByte('\n')
	}

	return os.WriteFile(path, []byte(out.String()), 0o644)
}
