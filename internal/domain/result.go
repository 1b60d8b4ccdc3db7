package domain

import "time"

// Vec3 is a 3-component vector; the z component of plane results is always 0.
type Vec3 [3]float64

// DofsPerNode is fixed for plane stress.
const DofsPerNode = 2

// OutputData holds the results of one solve. Matrices are row-major slices:
// one row per node or per element. Dof numbers in Dofs, Edof and Bc are 1-based,
// node indices in Topo are 0-based.
type OutputData struct {
	Input    InputData
	Geometry Geometry

	ElType      ElementType
	DofsPerNode int

	Coords [][]float64 // node -> [x, y]
	Dofs   [][]int     // node -> [dof x, dof y]
	Edof   [][]int     // element -> dofs of its nodes
	Topo   [][]int     // element -> nodes
	Ex     [][]float64 // element -> node x coordinates
	Ey     [][]float64 // element -> node y coordinates
	Bc     []int       // prescribed dofs

	A  []float64   // nodal displacements
	R  []float64   // reactions
	Ed [][]float64 // element displacements

	Es [][]float64 // element stresses [sx, sy, txy]
	Et [][]float64 // element strains [ex, ey, gxy]

	Eseff    []float64 // element von Mises stress
	MaxEseff float64
	Eseffnod []float64 // nodal averaged von Mises stress

	Mises   []float64
	Stress1 []Vec3
	Stress2 []Vec3
	Displ   []Vec3

	Summary Summary
}

// Summary condenses a solve into the values reports and checks use.
type Summary struct {
	Nodes     int
	Elements  int
	Dofs      int
	FixedDofs int

	MaxVonMises        float64
	MaxVonMisesElement int
	MinVonMises        float64

	MaxDisplacement     float64
	MaxDisplacementNode int

	AppliedLoad float64
	ReactionX   float64
	ReactionY   float64

	LinearSolver string
	Iterations   int
	Duration     time.Duration
}

// Empty reports whether no solve has filled the output.
func (o *OutputData) Empty() bool {
	return o == nil || len(o.Coords) == 0
}
