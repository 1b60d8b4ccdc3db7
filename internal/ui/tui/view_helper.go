package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pnordq/pnfem/internal/domain"
)

const sliderWidth = 20

func clampString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))

	n := 0
	for _, r := range s {
		if n >= maxLen {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String() + "…"
}

func radio(on bool) string {
	if on {
		return "(•)"
	}
	return "( )"
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

// slider draws the element-size slider; a larger position means smaller elements.
func slider(pos int) string {
	filled := pos * sliderWidth / domain.SliderMax
	return "[" + strings.Repeat("■", filled) + strings.Repeat("·", sliderWidth-filled) + "]"
}

func renderForm(t Theme, f form, disabled bool) string {
	var b strings.Builder
	for i, fl := range f.fields {
		label := t.Label.Render(fl.label)
		value := fl.input.View()
		switch {
		case disabled:
			label = t.Disabled.Render(label)
			value = t.Disabled.Render(fl.input.Value())
		case i == f.focus:
			label = t.Focused.Render(label)
		}
		fmt.Fprintf(&b, "%s %s %s\n", label, value, fl.unit)
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %v  %s  [ ]\n", t.Label.Render("Element size"), f.elSizeFactor(), slider(f.slider))
	fmt.Fprintf(&b, "%s %s triangles %s quads  f2\n", t.Label.Render("Element type"),
		radio(f.elType == domain.ElementTriangle), radio(f.elType == domain.ElementQuad))
	fmt.Fprintf(&b, "%s %s b %s q  f3\n", t.Label.Render("Study parameter"),
		radio(f.param == domain.StudyB), radio(f.param == domain.StudyQ))
	fmt.Fprintf(&b, "%s %s show undisplaced mesh  f4", t.Label.Render("Displacements"), checkbox(f.undisplaced))

	if disabled {
		return t.Disabled.Render(b.String())
	}
	return b.String()
}

func renderIssues(verr *domain.ValidationError) string {
	if verr == nil {
		return ""
	}
	var b strings.Builder
	for _, is := range verr.Issues {
		fmt.Fprintf(&b, "• %s: %s\n", is.Field, is.Message)
	}
	return strings.TrimRight(b.String(), "\n")
}
