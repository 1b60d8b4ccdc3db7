package domain

import (
	"fmt"
	"path/filepath"

	"gonum.org/v1/gonum/floats"
)

// StudyParam names the parameter varied by a parameter study.
type StudyParam string

const (
	StudyB StudyParam = "b"
	StudyQ StudyParam = "q"
)

// ParseStudyParam accepts "b" or "q".
func ParseStudyParam(s string) (StudyParam, error) {
	switch StudyParam(s) {
	case StudyB, StudyQ:
		return StudyParam(s), nil
	default:
		return "", fmt.Errorf("unsupported study parameter %q (expected b|q): %w", s, ErrInvalidModel)
	}
}

// StudySpec is an evenly spaced sweep of one parameter.
type StudySpec struct {
	Param StudyParam
	Start float64
	End   float64
	Steps int
}

// NewStudySpec derives the sweep from the model: it starts at the current b or q
// and ends at bend or qend.
func NewStudySpec(in InputData, p StudyParam) StudySpec {
	s := StudySpec{Param: p, Steps: in.ParamSteps}
	switch p {
	case StudyB:
		s.Start, s.End = in.B, in.BEnd
	case StudyQ:
		s.Start, s.End = in.Q, in.QEnd
	}
	return s
}

// Number is the study number used in file names: 01 for b, 02 for q.
func (s StudySpec) Number() int {
	if s.Param == StudyQ {
		return 2
	}
	return 1
}

// Values returns Steps values from Start to End, both included.
func (s StudySpec) Values() []float64 {
	switch {
	case s.Steps <= 0:
		return nil
	case s.Steps == 1:
		return []float64{s.Start}
	}
	return floats.Span(make([]float64, s.Steps), s.Start, s.End)
}

// Apply returns a copy of in with the study parameter set to v.
func (s StudySpec) Apply(in InputData, v float64) InputData {
	out := in
	switch s.Param {
	case StudyB:
		out.B = v
	case StudyQ:
		out.Q = v
	}
	return out
}

// Dir is the sub directory for the study's VTK files.
func (s StudySpec) Dir() string {
	return string(s.Param) + "Param"
}

// BaseName is the file prefix shared by all steps, e.g. "paramStudy_01".
func (s StudySpec) BaseName() string {
	return fmt.Sprintf("paramStudy_%02d", s.Number())
}

// FileName returns the VTK file for the zero-based step, relative to the VTK root,
// e.g. "bParam/paramStudy_01_03.vtk" for the third step.
func (s StudySpec) FileName(step int) string {
	return filepath.Join(s.Dir(), fmt.Sprintf("%s_%02d.vtk", s.BaseName(), step+1))
}

// StudyStep is the outcome of one solve of a parameter study.
type StudyStep struct {
	Index           int
	Value           float64
	MaxVonMises     float64
	MaxDisplacement float64
	Metrics         map[string]float64
	VTKFile         string
}

// StudyResult collects every step of a parameter study.
type StudyResult struct {
	Spec     StudySpec
	Steps    []StudyStep
	PlotFile string
}
