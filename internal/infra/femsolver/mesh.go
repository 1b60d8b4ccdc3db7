package femsolver

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/pnordq/pnfem/internal/domain"
)

// ceilTol absorbs rounding in len/he so that 0.125/0.0125 gives 10 parts, not 11.
const ceilTol = 1e-9

// Mesh is a structured plate mesh. Node indices are 0-based.
type Mesh struct {
	ElType domain.ElementType
	Coords [][]float64 // node -> [x, y]
	Topo   [][]int     // element -> nodes, counter-clockwise

	// Nodes on the boundary curves, keyed by marker.
	Marked map[domain.Marker][]int
}

// grid describes the lines of the structured mesh and the size of the notch cutouts.
type grid struct {
	xs, ys []float64
	na, nb int // parts across the notch width and depth
}

// ElementSize returns the target element edge length for the model.
func ElementSize(in domain.InputData) float64 {
	return in.ElSizeFactor * in.H / 4
}

func parts(length, he float64) int {
	n := int(math.Ceil(length/he - ceilTol))
	if n < 1 {
		return 1
	}
	return n
}

// subdivide splits each interval between consecutive breaks into parts of at most he.
func subdivide(breaks []float64, he float64) ([]float64, []int) {
	out := []float64{breaks[0]}
	counts := make([]int, 0, len(breaks)-1)
	for i := 1; i < len(breaks); i++ {
		lo, hi := breaks[i-1], breaks[i]
		n := parts(hi-lo, he)
		counts = append(counts, n)
		for k := 1; k < n; k++ {
			out = append(out, lo+(hi-lo)*float64(k)/float64(n))
		}
		out = append(out, hi)
	}
	return out, counts
}

// estimateDofs counts the dofs of the mesh without building it.
// Intervals are counted in float to stay safe for absurdly small elements.
func estimateDofs(in domain.InputData) float64 {
	he := ElementSize(in)
	cx := func(l float64) float64 { return math.Max(1, math.Ceil(l/he-ceilTol)) }
	side := cx((in.W - in.A) / 2)
	na := cx(in.A)
	nb := cx(in.B)
	nm := cx(in.H - 2*in.B)

	nx := 2*side + na + 1
	ny := 2*nb + nm + 1
	nodes := nx*ny - 2*(na-1)*nb
	return nodes * domain.DofsPerNode
}

func newGrid(in domain.InputData) grid {
	he := ElementSize(in)
	xs, cx := subdivide([]float64{0, (in.W - in.A) / 2, (in.W + in.A) / 2, in.W}, he)
	ys, cy := subdivide([]float64{0, in.B, in.H - in.B, in.H}, he)
	return grid{xs: xs, ys: ys, na: cx[1], nb: cy[0]}
}

// BuildMesh meshes the plate. Cells whose centre falls outside the outline
// (inside a notch) are dropped.
func BuildMesh(in domain.InputData, geo domain.Geometry, maxDofs int) (*Mesh, error) {
	if n := in.ElType.Nodes(); n == 0 {
		return nil, fmt.Errorf("mesh: %w: element type %d", domain.ErrInvalidModel, int(in.ElType))
	}
	if maxDofs > 0 {
		if est := estimateDofs(in); est > float64(maxDofs) {
			return nil, fmt.Errorf("mesh: %w: %.0f dofs exceed the limit of %d", domain.ErrMeshTooFine, est, maxDofs)
		}
	}

	g := newGrid(in)
	nx, ny := len(g.xs), len(g.ys)
	at := func(i, j int) int { return j*nx + i }

	outline := geo.Polygon()
	keep := make([]bool, (nx-1)*(ny-1))
	used := make([]bool, nx*ny)
	for j := 0; j < ny-1; j++ {
		for i := 0; i < nx-1; i++ {
			centre := geom.Point{X: (g.xs[i] + g.xs[i+1]) / 2, Y: (g.ys[j] + g.ys[j+1]) / 2}
			if centre.Within(outline) == geom.Outside {
				continue
			}
			keep[j*(nx-1)+i] = true
			used[at(i, j)] = true
			used[at(i+1, j)] = true
			used[at(i+1, j+1)] = true
			used[at(i, j+1)] = true
		}
	}

	id := make([]int, nx*ny)
	m := &Mesh{ElType: in.ElType, Marked: map[domain.Marker][]int{}}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			k := at(i, j)
			if !used[k] {
				id[k] = -1
				continue
			}
			id[k] = len(m.Coords)
			m.Coords = append(m.Coords, []float64{g.xs[i], g.ys[j]})
		}
	}

	for j := 0; j < ny-1; j++ {
		for i := 0; i < nx-1; i++ {
			if !keep[j*(nx-1)+i] {
				continue
			}
			n00, n10 := id[at(i, j)], id[at(i+1, j)]
			n11, n01 := id[at(i+1, j+1)], id[at(i, j+1)]

			if in.ElType == domain.ElementQuad {
				m.Topo = append(m.Topo, []int{n00, n10, n11, n01})
				continue
			}
			// Alternate the diagonal so the mesh has no preferred direction.
			if (i+j)%2 == 0 {
				m.Topo = append(m.Topo, []int{n00, n10, n11}, []int{n00, n11, n01})
			} else {
				m.Topo = append(m.Topo, []int{n00, n10, n01}, []int{n10, n11, n01})
			}
		}
	}

	for _, c := range geo.Curves {
		if c.Marker == domain.MarkerNone {
			continue
		}
		p0, p1 := geo.Points[c.From], geo.Points[c.To]
		for n, xy := range m.Coords {
			if onSegment(xy[0], xy[1], p0.X, p0.Y, p1.X, p1.Y) {
				m.Marked[c.Marker] = append(m.Marked[c.Marker], n)
			}
		}
	}

	return m, nil
}

func onSegment(x, y, x0, y0, x1, y1 float64) bool {
	scale := math.Max(math.Hypot(x1-x0, y1-y0), 1e-300)
	tol := 1e-9 * scale
	cross := (x1-x0)*(y-y0) - (y1-y0)*(x-x0)
	if math.Abs(cross) > tol*scale {
		return false
	}
	return x >= math.Min(x0, x1)-tol && x <= math.Max(x0, x1)+tol &&
		y >= math.Min(y0, y1)-tol && y <= math.Max(y0, y1)+tol
}

// ExEy returns the node coordinates of every element.
func (m *Mesh) ExEy() (ex, ey [][]float64) {
	ex = make([][]float64, len(m.Topo))
	ey = make([][]float64, len(m.Topo))
	for e, nodes := range m.Topo {
		ex[e] = make([]float64, len(nodes))
		ey[e] = make([]float64, len(nodes))
		for k, n := range nodes {
			ex[e][k] = m.Coords[n][0]
			ey[e][k] = m.Coords[n][1]
		}
	}
	return ex, ey
}

// Dofs numbers the dofs node by node, starting at 1.
func (m *Mesh) Dofs() [][]int {
	dofs := make([][]int, len(m.Coords))
	for n := range m.Coords {
		dofs[n] = []int{n*domain.DofsPerNode + 1, n*domain.DofsPerNode + 2}
	}
	return dofs
}

// Edof lists the 1-based dofs of every element.
func (m *Mesh) Edof() [][]int {
	edof := make([][]int, len(m.Topo))
	for e, nodes := range m.Topo {
		row := make([]int, 0, len(nodes)*domain.DofsPerNode)
		for _, n := range nodes {
			row = append(row, n*domain.DofsPerNode+1, n*domain.DofsPerNode+2)
		}
		edof[e] = row
	}
	return edof
}
