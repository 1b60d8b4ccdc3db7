package workspacefinder

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pnordq/pnfem/internal/domain"
)

func writeConfig(t *testing.T, root string) {
	t.Helper()
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "pnfem.yaml"), []byte("pnfem: {}\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestFindRoot_FromNestedDirAndModelFile(t *testing.T) {
	root := filepath.Join(t.TempDir(), "ws")
	writeConfig(t, root)
	models := filepath.Join(root, "models", "plates")
	if err := os.MkdirAll(models, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	model := filepath.Join(models, "plate.json")
	if err := os.WriteFile(model, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}

	var buf bytes.Buffer
	f := NewFinder(WithLogger(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	for _, start := range []string{models, model} {
		got, err := f.FindRoot(start)
		if err != nil {
			t.Fatalf("%s: FindRoot error: %v", start, err)
		}
		if got != root {
			t.Fatalf("%s: expected root=%s, got=%s", start, root, got)
		}
	}

	logs := buf.String()
	if !strings.Contains(logs, `"msg":"workspace.found"`) || !strings.Contains(logs, `"levels_up":2`) {
		t.Fatalf("expected found event in logs: %s", logs)
	}
	if !strings.Contains(logs, filepath.Join(root, "pnfem.yaml")) {
		t.Fatalf("expected config path in logs: %s", logs)
	}
}

func TestFindRoot_SkipsDirectoryNamedLikeConfig(t *testing.T) {
	root := filepath.Join(t.TempDir(), "ws")
	writeConfig(t, root)
	inner := filepath.Join(root, "sub")
	if err := os.MkdirAll(filepath.Join(inner, "pnfem.yaml"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got, err := NewFinder().FindRoot(inner)
	if err != nil {
		t.Fatalf("FindRoot error: %v", err)
	}
	if got != root {
		t.Fatalf("expected root=%s, got=%s", root, got)
	}
}

func TestFindRoot_StopsAtBoundary(t *testing.T) {
	tmp := t.TempDir()
	writeConfig(t, tmp)
	start := filepath.Join(tmp, "a", "b")
	if err := os.MkdirAll(start, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	_, err := NewFinder(WithStopAt(filepath.Join(tmp, "a"))).FindRoot(start)
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected KindNotFound, got: %v", err)
	}
	if !strings.Contains(err.Error(), "pnfem.yaml") {
		t.Fatalf("expected the config file name in %v", err)
	}

	if got, err := NewFinder(WithStopAt(tmp)).FindRoot(start); err != nil || got != tmp {
		t.Fatalf("expected %s at the boundary, got %q (%v)", tmp, got, err)
	}
}

func TestFindRoot_CustomConfigFile(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "plate.yaml"), []byte("pnfem: {}\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	f := NewFinder(WithConfigFile("plate.yaml"), WithStopAt(root))
	if got, err := f.FindRoot(root); err != nil || got != root {
		t.Fatalf("expected %s, got %q (%v)", root, got, err)
	}
	if f.ConfigPath(root) != filepath.Join(root, "plate.yaml") {
		t.Fatalf("unexpected config path %s", f.ConfigPath(root))
	}
}

func TestFindRoot_EmptyStart(t *testing.T) {
	_, err := NewFinder().FindRoot("")
	if !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected KindInvalidConfig, got %v", err)
	}
}
