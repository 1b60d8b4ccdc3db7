package viewer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pnordq/pnfem/internal/domain"
)

func TestOpen_PassesPath(t *testing.T) {
	p := filepath.Join(t.TempDir(), "mesh.png")
	if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	var got string
	v := New(WithRunner(func(s string) error { got = s; return nil }))
	if err := v.Open(p); err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if got != p {
		t.Fatalf("expected %s, got %s", p, got)
	}
}

func TestOpen_MissingFile(t *testing.T) {
	v := New(WithRunner(func(string) error { t.Fatal("runner called"); return nil }))
	err := v.Open(filepath.Join(t.TempDir(), "nope.png"))
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
