package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/pnordq/pnfem/internal/domain"
	"github.com/pnordq/pnfem/internal/ports"
)

// --- fakes shared by the use case tests ---

// fakeSolver records the inputs it was called with and returns a tiny result
// whose von Mises stress equals the load q.
type fakeSolver struct {
	mu     sync.Mutex
	inputs []domain.InputData
	err    error
	failAt int // 1-based call that fails, 0 = never
	hook   func(call int)
}

func (f *fakeSolver) Execute(_ context.Context, in domain.InputData) (domain.OutputData, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, in)
	call := len(f.inputs)
	f.mu.Unlock()

	if f.hook != nil {
		f.hook(call)
	}
	if f.err != nil && (f.failAt == 0 || f.failAt == call) {
		return domain.OutputData{}, f.err
	}
	return domain.OutputData{
		Input:  in,
		Coords: [][]float64{{0, 0}, {in.W, 0}, {in.W, in.H}},
		Topo:   [][]int{{0, 1, 2}},
		A:      []float64{0, 0, in.B, 0, 0, 0},
		Mises:  []float64{in.Q},
		Summary: domain.Summary{
			Nodes:           3,
			Elements:        1,
			MaxVonMises:     in.Q,
			MaxDisplacement: in.B,
			ReactionX:       -in.Q,
		},
	}, nil
}

func (f *fakeSolver) calls() []domain.InputData {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.InputData(nil), f.inputs...)
}

type fakeStore struct {
	mu    sync.Mutex
	saved []domain.RunArtifact
	err   error
}

func (s *fakeStore) SaveRun(run domain.RunArtifact) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, run)
	return "run-123", nil
}

func (s *fakeStore) LoadRun(id string) (domain.RunArtifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.saved) - 1; i >= 0; i-- {
		if s.saved[i].ID == id {
			return s.saved[i], nil
		}
	}
	return domain.RunArtifact{}, &domain.OpError{Op: "fake.load", Kind: domain.KindNotFound, Err: domain.ErrNotFound}
}

func (s *fakeStore) ListRuns() ([]domain.RunRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.RunRef, 0, len(s.saved))
	for i := len(s.saved) - 1; i >= 0; i-- {
		out = append(out, domain.RunRef{ID: s.saved[i].ID, Kind: s.saved[i].Kind})
	}
	return out, nil
}

type fakeExporter struct {
	ext   string
	paths []string
	err   error
}

func (e *fakeExporter) Ext() string { return e.ext }

func (e *fakeExporter) Export(path string, _ *domain.OutputData) error {
	if e.err != nil {
		return e.err
	}
	e.paths = append(e.paths, path)
	return nil
}

type fakeRenderer struct {
	rendered []string
	study    []string
	err      error
}

func (r *fakeRenderer) Render(path string, _ domain.FigureKind, _ *domain.OutputData, _ domain.FigureOptions) error {
	if r.err != nil {
		return r.err
	}
	r.rendered = append(r.rendered, path)
	return nil
}

func (r *fakeRenderer) RenderStudy(path string, _ *domain.StudyResult) error {
	if r.err != nil {
		return r.err
	}
	r.study = append(r.study, path)
	return nil
}

type fakeViewer struct{ opened []string }

func (v *fakeViewer) Open(path string) error {
	v.opened = append(v.opened, path)
	return nil
}

type fakeModels struct {
	in  domain.InputData
	err error
}

func (m fakeModels) LoadModel(string) (domain.InputData, error)  { return m.in, m.err }
func (m fakeModels) SaveModel(string, domain.InputData) error     { return m.err }
func (m fakeModels) ListModels(string) ([]domain.ModelRef, error) { return nil, m.err }

var errBoom = errors.New("boom")

var (
	_ ports.Solver         = (*fakeSolver)(nil)
	_ ports.ArtifactStore  = (*fakeStore)(nil)
	_ ports.ResultExporter = (*fakeExporter)(nil)
	_ ports.FigureRenderer = (*fakeRenderer)(nil)
	_ ports.Viewer         = (*fakeViewer)(nil)
	_ ports.ModelStore     = fakeModels{}
)
