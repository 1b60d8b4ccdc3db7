package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pnordq/pnfem/internal/domain"
)

type field struct {
	key     string
	label   string
	unit    string
	integer bool
	input   textinput.Model
}

// form holds the editable view of a model. Values stay text until read.
type form struct {
	fields      []field
	focus       int
	slider      int
	elType      domain.ElementType
	param       domain.StudyParam
	undisplaced bool
}

func newForm(in domain.InputData) form {
	specs := []struct {
		key, label, unit string
		integer          bool
	}{
		{"w", "Width w", "m", false},
		{"h", "Height h", "m", false},
		{"a", "Notch width a", "m", false},
		{"b", "Notch depth b", "m", false},
		{"t", "Thickness t", "m", false},
		{"E", "Young's modulus E", "Pa", false},
		{"v", "Poisson's ratio v", "", false},
		{"q", "Load q", "N", false},
		{"b, end", "b, end", "m", false},
		{"q, end", "q, end", "N", false},
		{"paramSteps", "Study steps", "", true},
	}

	f := form{param: domain.StudyB}
	for _, s := range specs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 24
		ti.Width = 14
		f.fields = append(f.fields, field{key: s.key, label: s.label, unit: s.unit, integer: s.integer, input: ti})
	}
	f.fill(in)
	f.fields[0].input.Focus()
	return f
}

// fill writes the model into the form.
func (f *form) fill(in domain.InputData) {
	vals := map[string]string{
		"w":          num(in.W),
		"h":          num(in.H),
		"a":          num(in.A),
		"b":          num(in.B),
		"t":          num(in.T),
		"E":          num(in.E),
		"v":          num(in.V),
		"q":          num(in.Q),
		"b, end":     num(in.BEnd),
		"q, end":     num(in.QEnd),
		"paramSteps": strconv.Itoa(in.ParamSteps),
	}
	for i := range f.fields {
		f.fields[i].input.SetValue(vals[f.fields[i].key])
	}
	f.slider = domain.SliderFromElSizeFactor(in.ElSizeFactor)
	f.elType = in.ElType
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (f form) elSizeFactor() float64 {
	return domain.ElSizeFactorFromSlider(f.slider)
}

// read parses the form on top of base and validates the result. Fields that do
// not parse keep the value of base and are reported as text_input issues.
func (f form) read(base domain.InputData) (domain.InputData, *domain.ValidationError) {
	in := base
	in.ElSizeFactor = f.elSizeFactor()
	in.ElType = f.elType

	var issues []domain.Issue
	for _, fl := range f.fields {
		s := strings.TrimSpace(fl.input.Value())
		if fl.integer {
			n, err := strconv.Atoi(s)
			if err != nil {
				issues = append(issues, domain.Issue{Field: fl.key, Group: domain.GroupTextInput, Message: domain.NotANumberMessage})
				continue
			}
			in.ParamSteps = n
			continue
		}

		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			issues = append(issues, domain.Issue{Field: fl.key, Group: domain.GroupTextInput, Message: domain.NotANumberMessage})
			continue
		}
		switch fl.key {
		case "w":
			in.W = v
		case "h":
			in.H = v
		case "a":
			in.A = v
		case "b":
			in.B = v
		case "t":
			in.T = v
		case "E":
			in.E = v
		case "v":
			in.V = v
		case "q":
			in.Q = v
		case "b, end":
			in.BEnd = v
		case "q, end":
			in.QEnd = v
		}
	}

	if verr := domain.Validate(in); verr != nil {
		issues = append(issues, verr.Issues...)
	}
	if len(issues) == 0 {
		return in, nil
	}
	return in, &domain.ValidationError{Issues: issues}
}

func (f *form) move(delta int) tea.Cmd {
	f.fields[f.focus].input.Blur()
	n := len(f.fields)
	f.focus = ((f.focus+delta)%n + n) % n
	return f.fields[f.focus].input.Focus()
}

func (f *form) nudgeSlider(delta int) {
	f.slider += delta
	if f.slider < domain.SliderMin {
		f.slider = domain.SliderMin
	}
	if f.slider > domain.SliderMax {
		f.slider = domain.SliderMax
	}
}

func (f *form) toggleElType() {
	if f.elType == domain.ElementQuad {
		f.elType = domain.ElementTriangle
		return
	}
	f.elType = domain.ElementQuad
}

func (f *form) toggleParam() {
	if f.param == domain.StudyQ {
		f.param = domain.StudyB
		return
	}
	f.param = domain.StudyQ
}

func (f form) update(msg tea.Msg) (form, tea.Cmd) {
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return f, cmd
}
