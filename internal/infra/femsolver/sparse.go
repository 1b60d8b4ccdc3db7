package femsolver

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// triplets collects matrix entries; duplicates are summed on compression.
type triplets struct {
	n    int
	rows []int
	cols []int
	vals []float64
}

func newTriplets(n, capacity int) *triplets {
	return &triplets{
		n:    n,
		rows: make([]int, 0, capacity),
		cols: make([]int, 0, capacity),
		vals: make([]float64, 0, capacity),
	}
}

func (t *triplets) add(i, j int, v float64) {
	if v == 0 {
		return
	}
	t.rows = append(t.rows, i)
	t.cols = append(t.cols, j)
	t.vals = append(t.vals, v)
}

// csr is a square matrix in compressed sparse row form.
type csr struct {
	n      int
	rowPtr []int
	colIdx []int
	vals   []float64
}

func (t *triplets) toCSR() *csr {
	count := make([]int, t.n+1)
	for _, r := range t.rows {
		count[r+1]++
	}
	for i := 0; i < t.n; i++ {
		count[i+1] += count[i]
	}

	cols := make([]int, len(t.rows))
	vals := make([]float64, len(t.rows))
	next := append([]int(nil), count[:t.n]...)
	for k, r := range t.rows {
		p := next[r]
		cols[p] = t.cols[k]
		vals[p] = t.vals[k]
		next[r]++
	}

	m := &csr{n: t.n, rowPtr: make([]int, t.n+1)}
	for i := 0; i < t.n; i++ {
		lo, hi := count[i], count[i+1]
		row := byCol{cols: cols[lo:hi], vals: vals[lo:hi]}
		sort.Sort(row)
		for k := lo; k < hi; k++ {
			last := len(m.colIdx) - 1
			if last >= m.rowPtr[i] && m.colIdx[last] == cols[k] {
				m.vals[last] += vals[k]
				continue
			}
			m.colIdx = append(m.colIdx, cols[k])
			m.vals = append(m.vals, vals[k])
		}
		m.rowPtr[i+1] = len(m.colIdx)
	}
	return m
}

type byCol struct {
	cols []int
	vals []float64
}

func (b byCol) Len() int           { return len(b.cols) }
func (b byCol) Less(i, j int) bool { return b.cols[i] < b.cols[j] }
func (b byCol) Swap(i, j int) {
	b.cols[i], b.cols[j] = b.cols[j], b.cols[i]
	b.vals[i], b.vals[j] = b.vals[j], b.vals[i]
}

// mulVec computes dst = m*x.
func (m *csr) mulVec(dst, x []float64) {
	for i := 0; i < m.n; i++ {
		var s float64
		for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
			s += m.vals[k] * x[m.colIdx[k]]
		}
		dst[i] = s
	}
}

// reduce keeps the rows and columns marked free; index maps full to reduced
// numbering and holds -1 for removed dofs.
func (m *csr) reduce(index []int, nFree int) *csr {
	r := &csr{n: nFree, rowPtr: make([]int, 0, nFree+1)}
	r.rowPtr = append(r.rowPtr, 0)
	for i := 0; i < m.n; i++ {
		if index[i] < 0 {
			continue
		}
		for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
			if c := index[m.colIdx[k]]; c >= 0 {
				r.colIdx = append(r.colIdx, c)
				r.vals = append(r.vals, m.vals[k])
			}
		}
		r.rowPtr = append(r.rowPtr, len(r.colIdx))
	}
	return r
}

func (m *csr) dense() *mat.SymDense {
	s := mat.NewSymDense(m.n, nil)
	for i := 0; i < m.n; i++ {
		for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
			if j := m.colIdx[k]; j >= i {
				s.SetSym(i, j, m.vals[k])
			}
		}
	}
	return s
}

func (m *csr) diagonal() []float64 {
	d := make([]float64, m.n)
	for i := 0; i < m.n; i++ {
		for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
			if m.colIdx[k] == i {
				d[i] = m.vals[k]
			}
		}
	}
	return d
}

var errNotPositiveDefinite = errors.New("stiffness matrix is not positive definite")

// solveDense factorizes the matrix with Cholesky.
func solveDense(m *csr, b []float64) ([]float64, error) {
	var chol mat.Cholesky
	if ok := chol.Factorize(m.dense()); !ok {
		return nil, errNotPositiveDefinite
	}
	var x mat.VecDense
	if err := chol.SolveVecTo(&x, mat.NewVecDense(len(b), b)); err != nil {
		return nil, err
	}
	return mat.Col(nil, 0, &x), nil
}

// checkEvery is how many CG iterations run between context checks.
const checkEvery = 64

// solvePCG runs Jacobi preconditioned conjugate gradients. It returns the solution
// and the number of iterations used.
func solvePCG(ctx context.Context, m *csr, b []float64, tol float64, maxIter int) ([]float64, int, error) {
	n := m.n
	x := make([]float64, n)
	bnorm := floats.Norm(b, 2)
	if bnorm == 0 {
		return x, 0, nil
	}

	inv := m.diagonal()
	for i, d := range inv {
		if d <= 0 {
			return nil, 0, errNotPositiveDefinite
		}
		inv[i] = 1 / d
	}

	r := append([]float64(nil), b...)
	z := make([]float64, n)
	floats.MulTo(z, inv, r)
	p := append([]float64(nil), z...)
	ap := make([]float64, n)
	rz := floats.Dot(r, z)

	for it := 1; it <= maxIter; it++ {
		if it%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, it, err
			}
		}

		m.mulVec(ap, p)
		pap := floats.Dot(p, ap)
		if pap <= 0 {
			return nil, it, errNotPositiveDefinite
		}
		alpha := rz / pap
		floats.AddScaled(x, alpha, p)
		floats.AddScaled(r, -alpha, ap)

		if floats.Norm(r, 2) <= tol*bnorm {
			return x, it, nil
		}

		floats.MulTo(z, inv, r)
		rzNew := floats.Dot(r, z)
		beta := rzNew / rz
		rz = rzNew
		for i := range p {
			p[i] = z[i] + beta*p[i]
		}
	}
	return nil, maxIter, fmt.Errorf("conjugate gradient did not converge in %d iterations (residual %.3g)",
		maxIter, floats.Norm(r, 2)/bnorm)
}

// isFinite reports whether every value is a real number.
func isFinite(xs []float64) bool {
	for _, v := range xs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
