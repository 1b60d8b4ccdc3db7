package tui

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pnordq/pnfem/internal/domain"
	"github.com/pnordq/pnfem/internal/infra/femsolver"
	"github.com/pnordq/pnfem/internal/infra/jsonmodel"
	"github.com/pnordq/pnfem/internal/usecase"
)

func testDeps(t *testing.T) Deps {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "models"), 0o755); err != nil {
		t.Fatal(err)
	}
	cfg := domain.DefaultConfig()
	solver := femsolver.New(femsolver.ConfigFrom(cfg.Solver))
	return Deps{
		Root:    root,
		Config:  cfg,
		Models:  jsonmodel.NewStore(jsonmodel.WithModelsDir(cfg.Paths.ModelsDir)),
		Execute: usecase.NewExecuteModel(solver, nil, cfg.Checks),
		Study:   usecase.NewParamStudy(solver, nil, nil, nil, usecase.StudyDirs{}, cfg),
		Thread:  usecase.NewSolverThread(),
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+p":
		return tea.KeyMsg{Type: tea.KeyCtrlP}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+o":
		return tea.KeyMsg{Type: tea.KeyCtrlO}
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyCtrlN}
	case "ctrl+g":
		return tea.KeyMsg{Type: tea.KeyCtrlG}
	case "alt+s":
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}, Alt: true}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "f2":
		return tea.KeyMsg{Type: tea.KeyF2}
	case "f3":
		return tea.KeyMsg{Type: tea.KeyF3}
	case "f4":
		return tea.KeyMsg{Type: tea.KeyF4}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m model, k string) (model, tea.Cmd) {
	t.Helper()
	tm, cmd := m.Update(key(k))
	mm, ok := tm.(model)
	if !ok {
		t.Fatalf("expected model, got %T", tm)
	}
	return mm, cmd
}

func deliver(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	tm, _ := m.Update(msg)
	return tm.(model)
}

func setField(t *testing.T, m *model, k, v string) {
	t.Helper()
	for i := range m.form.fields {
		if m.form.fields[i].key == k {
			m.form.fields[i].input.SetValue(v)
			return
		}
	}
	t.Fatalf("no field %q", k)
}

func fieldValue(m model, k string) string {
	for _, f := range m.form.fields {
		if f.key == k {
			return f.input.Value()
		}
	}
	return ""
}

func TestExecute_FillsReportAndEnablesFigures(t *testing.T) {
	m := newModel(context.Background(), testDeps(t))

	m, cmd := press(t, m, "ctrl+r")
	if !m.running || cmd == nil {
		t.Fatalf("expected a running job, popup=%+v", m.popup)
	}

	// The form is disabled while the job runs.
	before := fieldValue(m, "w")
	m, _ = press(t, m, "9")
	if fieldValue(m, "w") != before {
		t.Fatalf("form accepted input while running")
	}

	done, ok := cmd().(solverDoneMsg)
	if !ok {
		t.Fatalf("expected solverDoneMsg")
	}
	m = deliver(t, m, done)

	if m.running || !m.calcDone || m.out == nil {
		t.Fatalf("expected a finished calculation, running=%v calcDone=%v", m.running, m.calcDone)
	}
	if !strings.Contains(m.report.View(), "Model input") {
		t.Fatalf("expected report content, got:\n%s", m.report.View())
	}
	if !strings.HasPrefix(m.status, "Calculation finished") {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestExecute_TextInputShowsCriticalPopup(t *testing.T) {
	m := newModel(context.Background(), testDeps(t))
	setField(t, &m, "b", "abc")

	m, cmd := press(t, m, "ctrl+r")
	if cmd != nil || m.running {
		t.Fatal("expected no job for invalid input")
	}
	if m.popup == nil || !m.popup.critical || !strings.Contains(m.popup.body, domain.NotANumberMessage) {
		t.Fatalf("expected critical popup, got %+v", m.popup)
	}

	m, _ = press(t, m, "enter")
	if m.popup != nil {
		t.Fatal("expected popup to close")
	}
}

func TestExecute_NonFiniteInputShowsCriticalPopup(t *testing.T) {
	m := newModel(context.Background(), testDeps(t))
	setField(t, &m, "w", "NaN")

	m, cmd := press(t, m, "ctrl+r")
	if cmd != nil || m.running {
		t.Fatal("expected no job for a non-finite width")
	}
	if m.popup == nil || !m.popup.critical || !strings.Contains(m.popup.body, "not a finite number") {
		t.Fatalf("expected critical popup, got %+v", m.popup)
	}
}

func TestExecute_StudyFieldTextDoesNotBlock(t *testing.T) {
	m := newModel(context.Background(), testDeps(t))
	setField(t, &m, "q, end", "lots")

	m, cmd := press(t, m, "ctrl+r")
	if cmd == nil || !m.running {
		t.Fatalf("expected the solve to start, popup=%+v", m.popup)
	}
	m = deliver(t, m, cmd())
	if !m.calcDone {
		t.Fatal("expected a finished calculation")
	}

	// ...but the q study is blocked.
	m, _ = press(t, m, "f3")
	m, cmd = press(t, m, "ctrl+p")
	if cmd != nil || m.popup == nil || !m.popup.critical {
		t.Fatalf("expected q study to be blocked, popup=%+v", m.popup)
	}
}

func TestExecute_BusyWorker(t *testing.T) {
	deps := testDeps(t)
	release := make(chan struct{})
	_, done, err := deps.Thread.Start(context.Background(), func(ctx context.Context) (domain.RunArtifact, string, error) {
		<-release
		return domain.RunArtifact{}, "", nil
	})
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		close(release)
		<-done
	}()

	m := newModel(context.Background(), deps)
	m, cmd := press(t, m, "ctrl+r")
	if cmd != nil || m.popup == nil || !strings.Contains(m.popup.body, "still running") {
		t.Fatalf("expected busy popup, got %+v", m.popup)
	}
}

func TestShowFigures_DisabledBeforeSolve(t *testing.T) {
	m := newModel(context.Background(), testDeps(t))
	m, cmd := press(t, m, "ctrl+g")
	if cmd != nil || m.status != "Execute the model first" {
		t.Fatalf("expected figures to be disabled, status=%q", m.status)
	}
}

func TestParamStudy_BendBlocksB(t *testing.T) {
	m := newModel(context.Background(), testDeps(t))
	setField(t, &m, "b, end", "0.2")

	m, cmd := press(t, m, "ctrl+p")
	if cmd != nil || m.popup == nil || !strings.Contains(m.popup.body, "b, end") {
		t.Fatalf("expected b study to be blocked, popup=%+v", m.popup)
	}
	m, _ = press(t, m, "esc")

	// The same model can still be studied on q.
	setField(t, &m, "paramSteps", "2")
	m, _ = press(t, m, "f3")
	m, cmd = press(t, m, "ctrl+p")
	if cmd == nil {
		t.Fatalf("expected q study to start, popup=%+v", m.popup)
	}
	m = deliver(t, m, cmd())
	if m.running || m.popup == nil || m.popup.critical || !strings.Contains(m.popup.body, "paramStudy_02") {
		t.Fatalf("expected success popup, got %+v", m.popup)
	}
	if m.calcDone {
		t.Fatal("a study does not enable the figures")
	}
}

func TestSliderAndToggles(t *testing.T) {
	m := newModel(context.Background(), testDeps(t))
	start := m.form.slider
	factor := m.form.elSizeFactor()

	m, _ = press(t, m, "]")
	if m.form.slider != start+1 || m.form.elSizeFactor() >= factor {
		t.Fatalf("expected a smaller element size, slider=%d factor=%v", m.form.slider, m.form.elSizeFactor())
	}
	m, _ = press(t, m, "[")
	m, _ = press(t, m, "[")
	if m.form.slider != start-1 {
		t.Fatalf("expected slider %d, got %d", start-1, m.form.slider)
	}

	m, _ = press(t, m, "f2")
	m, _ = press(t, m, "f4")
	in, verr := m.form.read(m.in)
	if verr != nil {
		t.Fatalf("unexpected issues: %v", verr)
	}
	if in.ElType != domain.ElementQuad || !m.form.undisplaced {
		t.Fatalf("expected quads and undisplaced mesh, got %v %v", in.ElType, m.form.undisplaced)
	}
	if in.ElSizeFactor != domain.ElSizeFactorFromSlider(start-1) {
		t.Fatalf("unexpected factor %v", in.ElSizeFactor)
	}
}

func TestSaveAsThenOpen(t *testing.T) {
	deps := testDeps(t)
	m := newModel(context.Background(), deps)
	setField(t, &m, "b", "0.03")

	m, _ = press(t, m, "alt+s")
	if m.prompt == nil || m.prompt.action != promptSaveAs {
		t.Fatalf("expected save-as prompt")
	}
	m.prompt.input.SetValue("plate")
	m, cmd := press(t, m, "enter")
	if cmd == nil {
		t.Fatal("expected save command")
	}
	m = deliver(t, m, cmd())

	want := filepath.Join(deps.Root, "models", "plate.json")
	if m.filename != want || m.popup == nil || m.popup.critical {
		t.Fatalf("unexpected state after save: %q %+v", m.filename, m.popup)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("expected saved model: %v", err)
	}

	m, _ = press(t, m, "enter")
	m, _ = press(t, m, "ctrl+n")
	if fieldValue(m, "b") != "0.025" || m.filename != "" {
		t.Fatalf("expected defaults after New, b=%q", fieldValue(m, "b"))
	}

	m.calcDone = true
	m, _ = press(t, m, "ctrl+o")
	m.prompt.input.SetValue("plate")
	m, cmd = press(t, m, "enter")
	m = deliver(t, m, cmd())

	if fieldValue(m, "b") != "0.03" || m.calcDone || m.filename != want {
		t.Fatalf("unexpected state after open: b=%q calcDone=%v", fieldValue(m, "b"), m.calcDone)
	}
}

func TestSave_InvalidInputRefused(t *testing.T) {
	m := newModel(context.Background(), testDeps(t))
	setField(t, &m, "h", "-1")

	m, cmd := press(t, m, "ctrl+s")
	if cmd != nil || m.prompt != nil {
		t.Fatal("expected save to be refused")
	}
	if m.popup == nil || !strings.Contains(m.popup.body, "can't save") {
		t.Fatalf("expected critical popup, got %+v", m.popup)
	}
}

func TestOpen_MissingFile(t *testing.T) {
	m := newModel(context.Background(), testDeps(t))
	m, _ = press(t, m, "ctrl+o")
	m.prompt.input.SetValue("nope")
	m, cmd := press(t, m, "enter")
	m = deliver(t, m, cmd())
	if m.popup == nil || !m.popup.critical || m.popup.body != "Model file not found" {
		t.Fatalf("expected not found popup, got %+v", m.popup)
	}
}

func TestView(t *testing.T) {
	m := newModel(context.Background(), testDeps(t))
	out := m.View()
	for _, want := range []string{"PNFEM", "Width w", "Element size", "ctrl+r execute", "No workspace found"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in view", want)
		}
	}

	m = m.critical("Invalid input", "bad")
	if !strings.Contains(m.View(), "Invalid input") {
		t.Error("expected popup in view")
	}
}

type panicky struct{ inView bool }

func (p panicky) Init() tea.Cmd { return nil }

func (p panicky) Update(tea.Msg) (tea.Model, tea.Cmd) { panic("boom") }

func (p panicky) View() string {
	if p.inView {
		panic("boom")
	}
	return "ok"
}

func TestSafeModel_PassesThrough(t *testing.T) {
	s := wrapSafe(newModel(context.Background(), testDeps(t)), nil)
	tm, _ := s.Update(key("]"))
	sm, ok := tm.(safeModel)
	if !ok {
		t.Fatalf("expected safeModel, got %T", tm)
	}
	if m := sm.inner.(model); m.form.slider != 51 {
		t.Fatalf("expected the update to reach the main window, slider=%d", m.form.slider)
	}
}

func TestSafeModel_RecoversAndLogs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	tm, cmd := wrapSafe(panicky{}, log).Update(key("x"))
	if _, ok := tm.(safeModel); !ok || cmd != nil {
		t.Fatalf("expected recovered safeModel, got %T", tm)
	}
	if !strings.Contains(buf.String(), `"msg":"panic.recovered"`) || !strings.Contains(buf.String(), `"where":"tui.update"`) {
		t.Fatalf("expected panic log, got %s", buf.String())
	}

	if out := wrapSafe(panicky{inView: true}, log).View(); out != panicMessage {
		t.Fatalf("unexpected view %q", out)
	}
}

func TestAfterPanic_ShowsPopupAndClosesPrompt(t *testing.T) {
	m := newModel(context.Background(), testDeps(t))
	m.prompt = &prompt{action: promptOpen}

	got := afterPanic(m).(model)
	if got.prompt != nil || got.popup == nil || !got.popup.critical || got.popup.body != panicMessage {
		t.Fatalf("unexpected state %+v %+v", got.prompt, got.popup)
	}
}
