package logger

import (
	"os"
	"strings"
	"testing"

	"github.com/pnordq/pnfem/internal/domain"
)

func TestSetup_WritesJSONAndCleansUp(t *testing.T) {
	root := t.TempDir()
	cleanup, err := Setup(Config{Root: root, Debug: true, Rotation: domain.LoggingConfig{MaxSizeMB: 1}})
	if err != nil {
		t.Fatalf("Setup error: %v", err)
	}
	if err := IsReady(); err != nil {
		t.Fatalf("expected ready logger: %v", err)
	}
	p := Path()
	if !strings.HasPrefix(p, Dir(root)) {
		t.Fatalf("log path %s outside %s", p, Dir(root))
	}

	L().Debug("solve.mesh", "nodes", 213)
	if err := cleanup(); err != nil {
		t.Fatalf("cleanup error: %v", err)
	}

	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, `"msg":"logger.initialized"`) || !strings.Contains(s, `"nodes":213`) {
		t.Fatalf("unexpected log content:\n%s", s)
	}
	if IsReady() == nil {
		t.Fatalf("expected logger reset after cleanup")
	}
}

func TestL_DiscardsBeforeSetup(t *testing.T) {
	if L() == nil {
		t.Fatalf("expected a logger before setup")
	}
	L().Info("ignored")
}
