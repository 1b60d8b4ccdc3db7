package tui

import (
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
)

const panicMessage = "Unexpected error (see logs)"

// safeModel keeps the program alive when Update or View panics. The main
// window gets a critical popup; a job in flight keeps the form disabled until
// its Done arrives.
type safeModel struct {
	inner tea.Model
	log   *slog.Logger
}

func wrapSafe(inner tea.Model, log *slog.Logger) safeModel {
	if log == nil {
		log = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return safeModel{inner: inner, log: log}
}

func (s safeModel) Init() tea.Cmd {
	return s.inner.Init()
}

func (s safeModel) Update(msg tea.Msg) (tm tea.Model, cmd tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			s.logPanic("tui.update", r, msg)
			s.inner = afterPanic(s.inner)
			tm, cmd = s, nil
		}
	}()

	inner, c := s.inner.Update(msg)
	if sm, ok := inner.(safeModel); ok {
		inner = sm.inner
	}
	s.inner = inner
	return s, c
}

func (s safeModel) View() (out string) {
	defer func() {
		if r := recover(); r != nil {
			s.logPanic("tui.view", r, nil)
			out = panicMessage
		}
	}()
	return s.inner.View()
}

func (s safeModel) logPanic(where string, r any, msg tea.Msg) {
	attrs := []any{
		"where", where,
		"panic", fmt.Sprint(r),
		"stack", string(debug.Stack()),
	}
	if msg != nil {
		attrs = append(attrs, "msg", fmt.Sprintf("%T", msg))
	}
	if m, ok := s.inner.(model); ok {
		attrs = append(attrs, "model", modelName(m.filename), "running", m.running, "job_id", m.jobID)
	}
	s.log.Error("panic.recovered", attrs...)
}

// afterPanic drops an open prompt and shows the error popup.
func afterPanic(inner tea.Model) tea.Model {
	m, ok := inner.(model)
	if !ok {
		return inner
	}
	m.prompt = nil
	return m.critical("Error", panicMessage)
}

var _ tea.Model = (*safeModel)(nil)
