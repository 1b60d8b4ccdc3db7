package tui

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pnordq/pnfem/internal/domain"
	"github.com/pnordq/pnfem/internal/report"
	"github.com/pnordq/pnfem/internal/usecase"
)

type promptAction int

const (
	promptOpen promptAction = iota
	promptSaveAs
)

type prompt struct {
	action promptAction
	input  textinput.Model
	hint   string
	// in is the model to save for promptSaveAs.
	in domain.InputData
}

type popup struct {
	title    string
	body     string
	critical bool
}

type model struct {
	theme Theme
	deps  Deps
	log   *slog.Logger
	ctx   context.Context

	in       domain.InputData
	filename string
	form     form

	out      *domain.OutputData
	calcDone bool
	running  bool
	jobID    string

	report viewport.Model
	popup  *popup
	prompt *prompt
	status string

	width, height int
}

// Run shows the main window until the user exits. A job still running at
// exit is cancelled.
func Run(ctx context.Context, deps Deps) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newModel(ctx, deps)
	p := tea.NewProgram(wrapSafe(m, m.log), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func newModel(ctx context.Context, deps Deps) model {
	log := deps.Logger
	if log == nil {
		log = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if ctx == nil {
		ctx = context.Background()
	}

	in := domain.DefaultInputData()
	return model{
		theme:  DefaultTheme(),
		deps:   deps,
		log:    log,
		ctx:    ctx,
		in:     in,
		form:   newForm(in),
		report: viewport.New(60, 20),
	}
}

func (m model) Init() tea.Cmd { return textinput.Blink }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.report.Width = max(msg.Width-formWidth-10, 30)
		m.report.Height = max(msg.Height-10, 8)
		return m, nil

	case modelLoadedMsg:
		if msg.err != nil {
			return m.critical("Open failed", userMessage(msg.err)), nil
		}
		m.in = msg.in
		m.filename = msg.path
		m.form.fill(msg.in)
		m.resetResult()
		return m.info(fmt.Sprintf("The model was successfully loaded from the file %s!", msg.path)), nil

	case modelSavedMsg:
		if msg.err != nil {
			return m.critical("Save failed", userMessage(msg.err)), nil
		}
		m.filename = msg.path
		return m.info(fmt.Sprintf("The model was saved in the file %s!", msg.path)), nil

	case modelsListedMsg:
		if m.prompt != nil && msg.err == nil && len(msg.refs) > 0 {
			names := make([]string, 0, len(msg.refs))
			for _, r := range msg.refs {
				names = append(names, r.Name)
			}
			m.prompt.hint = "Models: " + clampString(strings.Join(names, ", "), 70)
		}
		return m, nil

	case solverDoneMsg:
		return m.onSolverFinished(msg), nil

	case figuresDoneMsg:
		if msg.err != nil {
			return m.critical("Figure failed", userMessage(msg.err)), nil
		}
		if len(msg.paths) > 0 {
			m.status = "Figure written to " + msg.paths[0]
		}
		return m, nil

	case tea.KeyMsg:
		return m.onKey(msg)
	}

	if m.prompt != nil {
		var cmd tea.Cmd
		m.prompt.input, cmd = m.prompt.input.Update(msg)
		return m, cmd
	}
	if !m.running {
		var cmd tea.Cmd
		m.form, cmd = m.form.update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+q" || key == "ctrl+c" {
		return m, tea.Quit
	}

	if m.popup != nil {
		switch key {
		case "enter", "esc", " ":
			m.popup = nil
		}
		return m, nil
	}

	if m.prompt != nil {
		return m.onPromptKey(msg)
	}

	switch key {
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.report, cmd = m.report.Update(msg)
		return m, cmd
	}

	if m.running {
		return m, nil
	}

	switch key {
	case "ctrl+n":
		return m.onNew(), nil
	case "ctrl+o":
		return m.openPrompt(promptOpen, domain.InputData{})
	case "ctrl+s":
		return m.onSave(false)
	case "alt+s":
		return m.onSave(true)
	case "ctrl+r":
		return m.onExecute()
	case "ctrl+p":
		return m.onParamStudy()
	case "ctrl+g":
		return m.onShow(domain.FigureGeometry)
	case "ctrl+e":
		return m.onShow(domain.FigureMesh)
	case "ctrl+d":
		return m.onShow(domain.FigureDisplacement)
	case "ctrl+t":
		return m.onShow(domain.FigureElementValues)
	case "[":
		m.form.nudgeSlider(-1)
		return m, nil
	case "]":
		m.form.nudgeSlider(1)
		return m, nil
	case "f2":
		m.form.toggleElType()
		return m, nil
	case "f3":
		m.form.toggleParam()
		return m, nil
	case "f4":
		m.form.undisplaced = !m.form.undisplaced
		return m, nil
	case "tab", "down":
		return m, m.form.move(1)
	case "shift+tab", "up":
		return m, m.form.move(-1)
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m model) onPromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.prompt = nil
		return m, nil
	case "enter":
		p := m.prompt
		m.prompt = nil
		path := resolveModelPath(m.deps, p.input.Value())
		if path == "" {
			return m, nil
		}
		if p.action == promptOpen {
			return m, cmdLoadModel(m.deps.Models, path)
		}
		m.in = p.in
		return m, cmdSaveModel(m.deps.Models, path, p.in)
	}

	var cmd tea.Cmd
	m.prompt.input, cmd = m.prompt.input.Update(msg)
	return m, cmd
}

func (m model) openPrompt(action promptAction, in domain.InputData) (tea.Model, tea.Cmd) {
	ti := textinput.New()
	ti.Placeholder = "model name or path"
	ti.CharLimit = 256
	ti.Width = 50
	if action == promptSaveAs && m.filename != "" {
		ti.SetValue(m.filename)
	}
	focus := ti.Focus()

	m.prompt = &prompt{action: action, input: ti, in: in}
	return m, tea.Batch(focus, cmdListModels(m.deps.Models, m.deps.Root))
}

// onNew starts over from the default model.
func (m model) onNew() model {
	m.in = domain.DefaultInputData()
	m.filename = ""
	m.form.fill(m.in)
	m.resetResult()
	m.status = "New model"
	return m
}

func (m *model) resetResult() {
	m.out = nil
	m.calcDone = false
	m.report.SetContent("")
}

func (m model) onSave(as bool) (tea.Model, tea.Cmd) {
	in, verr := m.form.read(m.in)
	if blocked := saveIssues(verr); blocked != nil {
		return m.critical("Invalid input",
			"You still have an invalid input, and therefore can't save!\n\n"+renderIssues(blocked)), nil
	}
	m.in = in
	if as || m.filename == "" {
		return m.openPrompt(promptSaveAs, in)
	}
	return m, cmdSaveModel(m.deps.Models, m.filename, in)
}

func (m model) onExecute() (tea.Model, tea.Cmd) {
	in, verr := m.form.read(m.in)
	if blocked := calcIssues(verr); blocked != nil {
		return m.critical("Invalid input", renderIssues(blocked)), nil
	}
	m.in = in

	src := usecase.ModelSource{Name: modelName(m.filename), Path: m.filename}
	exec := m.deps.Execute
	id, cmd, err := startJob(m.ctx, m.deps.Thread, domain.RunSolve, func(ctx context.Context) (domain.RunArtifact, string, error) {
		return exec.Execute(ctx, in, src)
	})
	if err != nil {
		return m.critical("Execute failed", userMessage(err)), nil
	}
	m.running = true
	m.jobID = id
	m.status = "Solving…"
	return m, cmd
}

func (m model) onParamStudy() (tea.Model, tea.Cmd) {
	param := m.form.param
	in, verr := m.form.read(m.in)
	if blocked := studyIssues(in, verr, param); blocked != nil {
		return m.critical("Invalid input", renderIssues(blocked)), nil
	}
	m.in = in

	req := usecase.StudyRequest{
		Input:  in,
		Param:  param,
		Source: usecase.ModelSource{Name: modelName(m.filename), Path: m.filename},
	}
	study := m.deps.Study
	id, cmd, err := startJob(m.ctx, m.deps.Thread, domain.RunStudy, func(ctx context.Context) (domain.RunArtifact, string, error) {
		return study.Execute(ctx, req)
	})
	if err != nil {
		return m.critical("Parameter study failed", userMessage(err)), nil
	}
	m.running = true
	m.jobID = id
	m.status = fmt.Sprintf("Running parameter study on %s…", param)
	return m, cmd
}

// onSolverFinished re-enables the form and stores the result.
func (m model) onSolverFinished(msg solverDoneMsg) model {
	m.running = false
	m.jobID = ""
	d := msg.done

	if d.Err != nil {
		m.status = ""
		m.log.Warn("tui.job_failed", "kind", string(msg.kind), "error", d.Err)
		return m.critical("Calculation failed", userMessage(d.Err))
	}

	switch msg.kind {
	case domain.RunStudy:
		res := d.Artifact.Study
		if res == nil {
			return m
		}
		t := report.StudyTable(res)
		m.report.SetContent(t.Title + ":\n" + t.Render())
		m.report.GotoTop()
		m.status = fmt.Sprintf("Parameter study finished (%d steps)", len(res.Steps))
		return m.info(fmt.Sprintf("The parameter study was successful!\nIt is saved in the .vtk files which start with %s!", res.Spec.BaseName()))

	default:
		m.out = d.Artifact.Output
		m.calcDone = m.out != nil && !m.out.Empty()

		var buf bytes.Buffer
		if err := report.Write(&buf, m.out); err != nil {
			buf.WriteString(userMessage(err))
		}
		if n := d.Artifact.FailedChecks(); n > 0 {
			fmt.Fprintf(&buf, "\n%d check(s) failed:\n", n)
			for _, c := range d.Artifact.Checks {
				if !c.Passed {
					fmt.Fprintf(&buf, "  ✗ %s: %s\n", c.Name, c.Message)
				}
			}
		}
		m.report.SetContent(buf.String())
		m.report.GotoTop()

		m.status = "Calculation finished"
		if d.RunID != "" {
			m.status += " (run " + d.RunID + ")"
		}
		return m
	}
}

func (m model) onShow(kind domain.FigureKind) (tea.Model, tea.Cmd) {
	if !m.calcDone {
		m.status = "Execute the model first"
		return m, nil
	}
	opts := domain.FigureOptions{
		Magnification:   m.deps.Config.Solver.Magnification,
		ShowUndisplaced: m.form.undisplaced,
	}
	dir := m.deps.Config.Paths.FiguresDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(m.deps.Root, dir)
	}
	m.status = "Rendering " + string(kind) + "…"
	return m, cmdRenderFigure(m.deps.Figures, m.out, dir, kind, opts)
}

func (m model) critical(title, body string) model {
	m.popup = &popup{title: title, body: body, critical: true}
	return m
}

func (m model) info(body string) model {
	m.popup = &popup{title: "Message", body: body}
	return m
}

const formWidth = 52

func (m model) View() string {
	wrap := lipgloss.NewStyle().Padding(1, 2)
	header := m.theme.Title.Render("PNFEM") + "  " +
		m.theme.Subtitle.Render("plane stress analysis of a notched plate") + "\n"

	var banner string
	if m.deps.WorkspaceFound {
		banner = m.theme.Help.Render(fmt.Sprintf("Workspace: %s", m.deps.Root))
	} else {
		banner = m.theme.Help.Render("No workspace found: runs are not saved (tip: pnfem init)")
	}
	file := m.filename
	if file == "" {
		file = "(unsaved model)"
	}
	banner += "\n" + m.theme.Help.Render("Model: "+file)

	if m.popup != nil {
		style := m.theme.Info
		if m.popup.critical {
			style = m.theme.Critical
		}
		card := style.Render(m.theme.Title.Render(m.popup.title) + "\n\n" + m.popup.body + "\n\n" +
			m.theme.Help.Render("enter/esc close"))
		return wrap.Render(header + "\n" + banner + "\n\n" + card)
	}

	if m.prompt != nil {
		title := "Open model"
		if m.prompt.action == promptSaveAs {
			title = "Save model as"
		}
		body := m.theme.Title.Render(title) + "\n\n" + m.prompt.input.View()
		if m.prompt.hint != "" {
			body += "\n\n" + m.theme.Help.Render(m.prompt.hint)
		}
		body += "\n\n" + m.theme.Help.Render("enter confirm • esc cancel")
		return wrap.Render(header + "\n" + banner + "\n\n" + m.theme.Card.Render(body))
	}

	formCard := m.theme.Card.Width(formWidth).Render(renderForm(m.theme, m.form, m.running))
	reportBody := m.report.View()
	if strings.TrimSpace(reportBody) == "" {
		reportBody = m.theme.Help.Render("Execute the model (ctrl+r) to see the report.")
	}
	reportCard := m.theme.Card.Render(reportBody)
	body := lipgloss.JoinHorizontal(lipgloss.Top, formCard, " ", reportCard)

	figures := "ctrl+g geometry • ctrl+e mesh • ctrl+d displacements • ctrl+t element values"
	if !m.calcDone {
		figures = m.theme.Disabled.Render(figures)
	}
	help := m.theme.Help.Render("ctrl+n new • ctrl+o open • ctrl+s save • alt+s save as • ctrl+r execute • ctrl+p study • ctrl+q exit") +
		"\n" + figures
	status := ""
	if m.status != "" {
		status = "\n" + m.theme.Focused.Render(m.status)
	}
	return wrap.Render(header + "\n" + banner + "\n\n" + body + "\n" + help + status)
}
