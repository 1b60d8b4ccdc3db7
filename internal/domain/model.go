package domain

import (
	"fmt"
	"math"
)

// ElementType selects the finite element used by the mesher.
type ElementType int

const (
	ElementTriangle ElementType = 2
	ElementQuad     ElementType = 3
)

func (t ElementType) String() string {
	switch t {
	case ElementTriangle:
		return "triangles"
	case ElementQuad:
		return "quads"
	default:
		return fmt.Sprintf("el_type(%d)", int(t))
	}
}

// Nodes returns the number of nodes per element, or 0 for an unknown type.
func (t ElementType) Nodes() int {
	switch t {
	case ElementTriangle:
		return 3
	case ElementQuad:
		return 4
	default:
		return 0
	}
}

// CurrentVersion is written into every saved model.
const CurrentVersion = 1

// InputData defines the notched plate problem: geometry, material, load,
// mesh settings and the parameter-study range.
//
//	      a
//	┌────┐  ┌────┐
//	│    └──┘ b  │
//	│▷           │→ q
//	│    ┌──┐    │ h
//	└────┘  └────┘
//	      w
type InputData struct {
	Version int

	H float64 // plate height
	W float64 // plate width
	A float64 // notch width
	B float64 // notch depth

	ElSizeFactor float64
	ElType       ElementType

	E float64 // Young's modulus
	V float64 // Poisson's ratio
	Q float64 // total force on the right edge, positive pulls outward
	T float64 // thickness

	BEnd       float64
	QEnd       float64
	ParamSteps int
}

// DefaultInputData returns the model a "New" action starts from.
func DefaultInputData() InputData {
	return InputData{
		Version:      CurrentVersion,
		H:            0.1,
		W:            0.3,
		A:            0.05,
		B:            0.025,
		ElSizeFactor: 0.5,
		ElType:       ElementTriangle,
		E:            2.08e10,
		V:            0.2,
		Q:            100e3,
		T:            0.15,
		BEnd:         0.0001,
		QEnd:         -100e3,
		ParamSteps:   10,
	}
}

// Element size slider range used by the UI.
const (
	SliderMin = 0
	SliderMax = 100
)

const (
	sliderSlope  = -9.8e-3
	sliderOffset = 0.99
)

// ElSizeFactorFromSlider converts a slider position into an element size factor,
// rounded to 4 decimals. Position 0 gives 0.99, position 100 gives 0.01.
func ElSizeFactorFromSlider(pos int) float64 {
	pos = clampInt(pos, SliderMin, SliderMax)
	f := sliderSlope*float64(pos) + sliderOffset
	return math.Round(f*1e4) / 1e4
}

// SliderFromElSizeFactor is the inverse of ElSizeFactorFromSlider.
func SliderFromElSizeFactor(f float64) int {
	pos := int(math.Round((f - sliderOffset) / sliderSlope))
	return clampInt(pos, SliderMin, SliderMax)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ModelRef points to a saved model file.
type ModelRef struct {
	Name string
	Path string
}
