package femsolver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/pnordq/pnfem/internal/domain"
	"github.com/pnordq/pnfem/internal/ports"
	"gonum.org/v1/gonum/mat"
)

const (
	LinearDense = "dense-cholesky"
	LinearPCG   = "jacobi-pcg"
)

type Config struct {
	// MaxDofs rejects larger meshes. Zero disables the limit.
	MaxDofs int
	// Systems with at most DenseLimit free dofs are factorized densely.
	DenseLimit  int
	CGTolerance float64
	CGMaxIter   int
}

func DefaultConfig() Config {
	d := domain.DefaultConfig().Solver
	return Config{
		MaxDofs:     d.MaxDofs,
		DenseLimit:  d.DenseLimit,
		CGTolerance: d.CGTolerance,
		CGMaxIter:   d.CGMaxIter,
	}
}

// ConfigFrom maps the workspace solver settings.
func ConfigFrom(c domain.SolverConfig) Config {
	return Config{
		MaxDofs:     c.MaxDofs,
		DenseLimit:  c.DenseLimit,
		CGTolerance: c.CGTolerance,
		CGMaxIter:   c.CGMaxIter,
	}
}

// Solver is the plane stress engine for the notched plate.
type Solver struct {
	cfg Config
	log *slog.Logger
	now func() time.Time
}

type Option func(*Solver)

func WithLogger(l *slog.Logger) Option {
	return func(s *Solver) {
		if l != nil {
			s.log = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Solver) { s.now = now }
}

func New(cfg Config, opts ...Option) *Solver {
	if cfg.CGTolerance <= 0 {
		cfg.CGTolerance = DefaultConfig().CGTolerance
	}
	if cfg.CGMaxIter <= 0 {
		cfg.CGMaxIter = DefaultConfig().CGMaxIter
	}
	s := &Solver{
		cfg: cfg,
		log: slog.New(slog.NewJSONHandler(io.Discard, nil)),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.Solver = (*Solver)(nil)

// checkMesh rejects a mesh without elements, which assembly cannot index.
func checkMesh(m *Mesh) error {
	if m == nil || len(m.Topo) == 0 {
		return fmt.Errorf("mesh has no elements: %w", domain.ErrExecution)
	}
	return nil
}

// Execute meshes, assembles and solves the model and derives stresses.
func (s *Solver) Execute(ctx context.Context, in domain.InputData) (domain.OutputData, error) {
	start := s.now()

	if verr := domain.Validate(in); verr != nil {
		if calc := verr.Filter(domain.GroupCalcInputs); calc != nil {
			return domain.OutputData{}, calc
		}
	}

	geo := in.Geometry()
	mesh, err := BuildMesh(in, geo, s.cfg.MaxDofs)
	if err != nil {
		return domain.OutputData{}, err
	}
	if err := checkMesh(mesh); err != nil {
		return domain.OutputData{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.OutputData{}, err
	}

	nNodes := len(mesh.Coords)
	nDofs := nNodes * domain.DofsPerNode
	s.log.Debug("solve.mesh", "nodes", nNodes, "elements", len(mesh.Topo), "el_type", in.ElType.String())

	out := domain.OutputData{
		Input:       in,
		Geometry:    geo,
		ElType:      in.ElType,
		DofsPerNode: domain.DofsPerNode,
		Coords:      mesh.Coords,
		Dofs:        mesh.Dofs(),
		Edof:        mesh.Edof(),
		Topo:        mesh.Topo,
	}
	out.Ex, out.Ey = mesh.ExEy()

	D := Hooke(in.E, in.V)

	per := len(out.Edof[0])
	k := newTriplets(nDofs, len(out.Edof)*per*per)
	for e, dofs := range out.Edof {
		ke, err := ElementStiffness(out.Ex[e], out.Ey[e], in.T, D)
		if err != nil {
			return domain.OutputData{}, fmt.Errorf("element %d: %w", e+1, err)
		}
		for a, da := range dofs {
			for b, db := range dofs {
				k.add(da-1, db-1, ke.At(a, b))
			}
		}
	}
	K := k.toCSR()
	if err := ctx.Err(); err != nil {
		return domain.OutputData{}, err
	}

	f := make([]float64, nDofs)
	load := mesh.Marked[domain.MarkerLoad]
	if len(load) == 0 {
		return domain.OutputData{}, fmt.Errorf("mesh has no loaded nodes: %w", domain.ErrExecution)
	}
	for _, n := range load {
		f[n*domain.DofsPerNode] += in.Q / float64(len(load))
	}

	fixed := make([]bool, nDofs)
	for _, n := range mesh.Marked[domain.MarkerClamp] {
		fixed[n*domain.DofsPerNode] = true
		fixed[n*domain.DofsPerNode+1] = true
	}
	for i, fx := range fixed {
		if fx {
			out.Bc = append(out.Bc, i+1)
		}
	}
	if len(out.Bc) == 0 {
		return domain.OutputData{}, fmt.Errorf("mesh has no clamped nodes: %w", domain.ErrExecution)
	}
	sort.Ints(out.Bc)

	index := make([]int, nDofs)
	nFree := 0
	for i := range index {
		if fixed[i] {
			index[i] = -1
			continue
		}
		index[i] = nFree
		nFree++
	}
	ff := make([]float64, nFree)
	for i, r := range index {
		if r >= 0 {
			ff[r] = f[i]
		}
	}

	Kff := K.reduce(index, nFree)
	var (
		af    []float64
		iters int
	)
	if nFree <= s.cfg.DenseLimit {
		out.Summary.LinearSolver = LinearDense
		af, err = solveDense(Kff, ff)
	} else {
		out.Summary.LinearSolver = LinearPCG
		af, iters, err = solvePCG(ctx, Kff, ff, s.cfg.CGTolerance, s.cfg.CGMaxIter)
	}
	if err != nil {
		return domain.OutputData{}, fmt.Errorf("linear solve (%s): %w", out.Summary.LinearSolver, err)
	}
	if !isFinite(af) {
		return domain.OutputData{}, fmt.Errorf("linear solve produced non-finite values: %w", domain.ErrExecution)
	}
	if err := ctx.Err(); err != nil {
		return domain.OutputData{}, err
	}
	out.Summary.Iterations = iters

	out.A = make([]float64, nDofs)
	for i, r := range index {
		if r >= 0 {
			out.A[i] = af[r]
		}
	}
	out.R = make([]float64, nDofs)
	K.mulVec(out.R, out.A)
	for i := range out.R {
		out.R[i] -= f[i]
	}

	if err := postProcess(&out, D); err != nil {
		return domain.OutputData{}, err
	}

	out.Summary.Nodes = nNodes
	out.Summary.Elements = len(out.Topo)
	out.Summary.Dofs = nDofs
	out.Summary.FixedDofs = len(out.Bc)
	out.Summary.AppliedLoad = in.Q
	for _, d := range out.Bc {
		if (d-1)%domain.DofsPerNode == 0 {
			out.Summary.ReactionX += out.R[d-1]
		} else {
			out.Summary.ReactionY += out.R[d-1]
		}
	}
	out.Summary.Duration = s.now().Sub(start)

	s.log.Info("solve.ok",
		"nodes", nNodes,
		"elements", len(out.Topo),
		"solver", out.Summary.LinearSolver,
		"iterations", iters,
		"max_von_mises", out.Summary.MaxVonMises,
		"duration_ms", out.Summary.Duration.Milliseconds(),
	)
	return out, nil
}

func postProcess(out *domain.OutputData, D *mat.Dense) error {
	nEl := len(out.Topo)
	nNodes := len(out.Coords)

	out.Ed = make([][]float64, nEl)
	out.Es = make([][]float64, nEl)
	out.Et = make([][]float64, nEl)
	out.Eseff = make([]float64, nEl)
	out.Stress1 = make([]domain.Vec3, nEl)
	out.Stress2 = make([]domain.Vec3, nEl)

	out.Summary.MinVonMises = math.Inf(1)
	for e, dofs := range out.Edof {
		ed := make([]float64, len(dofs))
		for i, d := range dofs {
			ed[i] = out.A[d-1]
		}
		out.Ed[e] = ed

		es, et, err := ElementStress(out.Ex[e], out.Ey[e], ed, D)
		if err != nil {
			return fmt.Errorf("element %d: %w", e+1, err)
		}
		out.Es[e], out.Et[e] = es, et

		vm := VonMises(es[0], es[1], es[2])
		out.Eseff[e] = vm
		out.Stress1[e], out.Stress2[e] = PrincipalVectors(es[0], es[1], es[2])

		if vm > out.Summary.MaxVonMises {
			out.Summary.MaxVonMises = vm
			out.Summary.MaxVonMisesElement = e
		}
		if vm < out.Summary.MinVonMises {
			out.Summary.MinVonMises = vm
		}
	}
	out.MaxEseff = out.Summary.MaxVonMises
	out.Mises = append([]float64(nil), out.Eseff...)
	out.Eseffnod = nodalAverage(out.Topo, nNodes, out.Eseff)

	out.Displ = make([]domain.Vec3, nNodes)
	for n := 0; n < nNodes; n++ {
		ux := out.A[n*domain.DofsPerNode]
		uy := out.A[n*domain.DofsPerNode+1]
		out.Displ[n] = domain.Vec3{ux, uy, 0}
		if u := math.Hypot(ux, uy); u > out.Summary.MaxDisplacement {
			out.Summary.MaxDisplacement = u
			out.Summary.MaxDisplacementNode = n
		}
	}
	return nil
}
