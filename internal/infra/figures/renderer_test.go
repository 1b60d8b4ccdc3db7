package figures

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pnordq/pnfem/internal/domain"
	"github.com/pnordq/pnfem/internal/infra/femsolver"
)

func solved(t *testing.T) *domain.OutputData {
	t.Helper()
	in := domain.DefaultInputData()
	in.ElSizeFactor = 0.99
	out, err := femsolver.New(femsolver.DefaultConfig()).Execute(context.Background(), in)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	return &out
}

func assertPNG(t *testing.T, p string) {
	t.Helper()
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read %s: %v", p, err)
	}
	if len(b) < 8 || string(b[1:4]) != "PNG" {
		t.Fatalf("%s is not a PNG", p)
	}
}

func TestRender_AllKinds(t *testing.T) {
	out := solved(t)
	dir := filepath.Join(t.TempDir(), "figures")
	r := New()

	for _, k := range domain.FigureKinds() {
		p := filepath.Join(dir, string(k)+".png")
		opts := domain.FigureOptions{Magnification: 500, ShowUndisplaced: true}
		if err := r.Render(p, k, out, opts); err != nil {
			t.Fatalf("Render(%s) error: %v", k, err)
		}
		assertPNG(t, p)
	}
}

func TestRender_GeometryWithoutSolve(t *testing.T) {
	out := &domain.OutputData{Input: domain.DefaultInputData()}
	p := filepath.Join(t.TempDir(), "geometry.png")
	if err := New().Render(p, domain.FigureGeometry, out, domain.FigureOptions{}); err != nil {
		t.Fatalf("Render error: %v", err)
	}
	assertPNG(t, p)
}

func TestRender_MeshNeedsResult(t *testing.T) {
	out := &domain.OutputData{Input: domain.DefaultInputData()}
	err := New().Render(filepath.Join(t.TempDir(), "mesh.png"), domain.FigureMesh, out, domain.FigureOptions{})
	if !domain.IsKind(err, domain.KindExecution) {
		t.Fatalf("expected execution error, got %v", err)
	}
}

func TestRenderStudy(t *testing.T) {
	res := &domain.StudyResult{
		Spec: domain.StudySpec{Param: domain.StudyQ, Start: 1, End: 3, Steps: 3},
		Steps: []domain.StudyStep{
			{Index: 0, Value: 1, MaxVonMises: 10},
			{Index: 1, Value: 2, MaxVonMises: 20},
			{Index: 2, Value: 3, MaxVonMises: 30},
		},
	}
	p := filepath.Join(t.TempDir(), "max_mises_vs_q.png")
	if err := New().RenderStudy(p, res); err != nil {
		t.Fatalf("RenderStudy error: %v", err)
	}
	assertPNG(t, p)

	if err := New().RenderStudy(p, &domain.StudyResult{}); err == nil {
		t.Fatalf("expected error for empty study")
	}
}

func TestDeform(t *testing.T) {
	out := &domain.OutputData{
		Coords: [][]float64{{0, 0}, {1, 0}},
		A:      []float64{0, 0, 0.001, -0.002},
	}
	got := Deform(out, 1000)
	if got[1][0] != 2 || got[1][1] != -2 {
		t.Fatalf("unexpected deformed node %v", got[1])
	}
	if out.Coords[1][0] != 1 {
		t.Fatalf("input coordinates modified")
	}
}
