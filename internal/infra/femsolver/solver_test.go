package femsolver

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/pnordq/pnfem/internal/domain"
)

func TestBuildMesh_DefaultModelCounts(t *testing.T) {
	in := domain.DefaultInputData()

	cases := []struct {
		elType   domain.ElementType
		elements int
	}{
		{domain.ElementQuad, 176},
		{domain.ElementTriangle, 352},
	}
	for _, tc := range cases {
		in.ElType = tc.elType
		m, err := BuildMesh(in, in.Geometry(), 0)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.elType, err)
		}
		// 25 x 9 grid points minus 2 x 3 x 2 points inside the notches.
		if len(m.Coords) != 213 {
			t.Fatalf("%s: expected 213 nodes, got %d", tc.elType, len(m.Coords))
		}
		if len(m.Topo) != tc.elements {
			t.Fatalf("%s: expected %d elements, got %d", tc.elType, tc.elements, len(m.Topo))
		}
		if got := len(m.Marked[domain.MarkerLoad]); got != 9 {
			t.Fatalf("%s: expected 9 loaded nodes, got %d", tc.elType, got)
		}
		if got := len(m.Marked[domain.MarkerClamp]); got != 9 {
			t.Fatalf("%s: expected 9 clamped nodes, got %d", tc.elType, got)
		}
	}
}

func TestBuildMesh_NoElementInsideNotch(t *testing.T) {
	in := domain.DefaultInputData()
	geo := in.Geometry()
	m, err := BuildMesh(in, geo, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for e, nodes := range m.Topo {
		var cx, cy float64
		for _, n := range nodes {
			cx += m.Coords[n][0]
			cy += m.Coords[n][1]
		}
		cx /= float64(len(nodes))
		cy /= float64(len(nodes))
		if !geo.Contains(cx, cy) {
			t.Fatalf("element %d centroid (%g, %g) is outside the plate", e, cx, cy)
		}
	}
}

func TestEstimateDofsMatchesMesh(t *testing.T) {
	for _, f := range []float64{0.99, 0.5, 0.3, 0.17, 0.05} {
		in := domain.DefaultInputData()
		in.ElSizeFactor = f
		m, err := BuildMesh(in, in.Geometry(), 0)
		if err != nil {
			t.Fatalf("factor %v: %v", f, err)
		}
		if got, want := estimateDofs(in), float64(2*len(m.Coords)); got != want {
			t.Fatalf("factor %v: estimate %v, mesh %v", f, got, want)
		}
	}
}

func TestBuildMesh_TooFine(t *testing.T) {
	in := domain.DefaultInputData()
	_, err := BuildMesh(in, in.Geometry(), 100)
	if !errors.Is(err, domain.ErrMeshTooFine) {
		t.Fatalf("expected ErrMeshTooFine, got %v", err)
	}
}

func TestElementStiffness_RigidBodyModes(t *testing.T) {
	D := Hooke(2.1e11, 0.3)
	elems := []struct {
		ex, ey []float64
	}{
		{[]float64{0, 1, 0}, []float64{0, 0, 1}},
		{[]float64{0, 2, 2, 0}, []float64{0, 0, 1, 1}},
	}
	for _, el := range elems {
		ke, err := ElementStiffness(el.ex, el.ey, 0.1, D)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		n := len(el.ex)

		tx := make([]float64, 2*n)
		ty := make([]float64, 2*n)
		rot := make([]float64, 2*n)
		for k := 0; k < n; k++ {
			tx[2*k] = 1
			ty[2*k+1] = 1
			rot[2*k] = -el.ey[k]
			rot[2*k+1] = el.ex[k]
		}
		for _, mode := range [][]float64{tx, ty, rot} {
			for i := 0; i < 2*n; i++ {
				var s float64
				for j := 0; j < 2*n; j++ {
					s += ke.At(i, j) * mode[j]
				}
				if math.Abs(s) > 1e-3 {
					t.Fatalf("%d-node element: rigid body mode gives force %g", n, s)
				}
			}
		}
		for i := 0; i < 2*n; i++ {
			for j := 0; j < 2*n; j++ {
				if math.Abs(ke.At(i, j)-ke.At(j, i)) > 1e-6*math.Abs(ke.At(i, i)) {
					t.Fatalf("%d-node element: Ke not symmetric at (%d,%d)", n, i, j)
				}
			}
		}
	}
}

func TestElementStress_UniformStrain(t *testing.T) {
	const strain = 1e-3
	D := Hooke(1, 0)
	elems := []struct {
		ex, ey []float64
	}{
		{[]float64{0, 2, 0}, []float64{0, 0, 1}},
		{[]float64{0, 2, 2, 0}, []float64{0, 0, 1, 1}},
	}
	for _, el := range elems {
		ed := make([]float64, 2*len(el.ex))
		for k, x := range el.ex {
			ed[2*k] = strain * x
		}
		es, et, err := ElementStress(el.ex, el.ey, ed, D)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(et[0]-strain) > 1e-12 || math.Abs(et[1]) > 1e-12 || math.Abs(et[2]) > 1e-12 {
			t.Fatalf("unexpected strain %v", et)
		}
		if math.Abs(es[0]-strain) > 1e-12 || math.Abs(es[1]) > 1e-12 {
			t.Fatalf("unexpected stress %v", es)
		}
	}
}

func TestElementStiffness_RejectsClockwise(t *testing.T) {
	_, err := ElementStiffness([]float64{0, 0, 1}, []float64{0, 1, 0}, 1, Hooke(1, 0))
	if err == nil {
		t.Fatalf("expected error for clockwise triangle")
	}
}

func TestVonMisesAndPrincipal(t *testing.T) {
	if got := VonMises(100, 0, 0); math.Abs(got-100) > 1e-12 {
		t.Fatalf("uniaxial: expected 100, got %v", got)
	}
	if got := VonMises(0, 0, 50); math.Abs(got-50*math.Sqrt(3)) > 1e-9 {
		t.Fatalf("shear: expected %v, got %v", 50*math.Sqrt(3), got)
	}

	s1, s2, th := Principal(0, 0, 50)
	if math.Abs(s1-50) > 1e-12 || math.Abs(s2+50) > 1e-12 || math.Abs(th-math.Pi/4) > 1e-12 {
		t.Fatalf("shear principal: got %v %v %v", s1, s2, th)
	}

	v1, v2 := PrincipalVectors(100, 20, 0)
	if math.Abs(v1[0]-100) > 1e-9 || math.Abs(v1[1]) > 1e-9 || v1[2] != 0 {
		t.Fatalf("unexpected first principal vector %v", v1)
	}
	if math.Abs(v2[0]) > 1e-9 || math.Abs(v2[1]-20) > 1e-9 {
		t.Fatalf("unexpected second principal vector %v", v2)
	}
}

func TestTripletsToCSR_SumsDuplicates(t *testing.T) {
	tr := newTriplets(2, 8)
	tr.add(1, 1, 2)
	tr.add(0, 1, -1)
	tr.add(0, 0, 3)
	tr.add(1, 1, 2)
	tr.add(1, 0, -1)

	m := tr.toCSR()
	if len(m.vals) != 4 {
		t.Fatalf("expected 4 stored entries, got %d", len(m.vals))
	}
	dst := make([]float64, 2)
	m.mulVec(dst, []float64{1, 1})
	if dst[0] != 2 || dst[1] != 3 {
		t.Fatalf("unexpected product %v", dst)
	}
}

func TestSolvePCG_SmallSystem(t *testing.T) {
	tr := newTriplets(3, 9)
	for _, e := range []struct {
		i, j int
		v    float64
	}{
		{0, 0, 4}, {0, 1, -1},
		{1, 0, -1}, {1, 1, 4}, {1, 2, -1},
		{2, 1, -1}, {2, 2, 4},
	} {
		tr.add(e.i, e.j, e.v)
	}
	m := tr.toCSR()
	b := []float64{3, 2, 3}

	x, _, err := solvePCG(context.Background(), m, b, 1e-12, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	xd, err := solveDense(m, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range x {
		if math.Abs(x[i]-1) > 1e-9 || math.Abs(xd[i]-1) > 1e-9 {
			t.Fatalf("expected ones, got pcg=%v dense=%v", x, xd)
		}
	}
}

func TestExecute_Equilibrium(t *testing.T) {
	for _, elType := range []domain.ElementType{domain.ElementTriangle, domain.ElementQuad} {
		in := domain.DefaultInputData()
		in.ElType = elType

		out, err := New(DefaultConfig()).Execute(context.Background(), in)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", elType, err)
		}

		s := out.Summary
		if math.Abs(s.ReactionX+in.Q) > 1e-6*in.Q {
			t.Fatalf("%s: reaction x %v does not balance q=%v", elType, s.ReactionX, in.Q)
		}
		if math.Abs(s.ReactionY) > 1e-6*in.Q {
			t.Fatalf("%s: reaction y %v should vanish", elType, s.ReactionY)
		}

		nominal := in.Q / (in.H * in.T)
		if s.MaxVonMises <= nominal {
			t.Fatalf("%s: max von Mises %v should exceed the nominal stress %v", elType, s.MaxVonMises, nominal)
		}
		if s.MaxDisplacement <= 0 {
			t.Fatalf("%s: expected a positive displacement", elType)
		}
		if out.Coords[s.MaxDisplacementNode][0] != in.W {
			t.Fatalf("%s: largest displacement should be on the loaded edge", elType)
		}
		if s.LinearSolver != LinearDense {
			t.Fatalf("%s: expected dense solve, got %s", elType, s.LinearSolver)
		}

		if len(out.Eseff) != len(out.Topo) || len(out.Eseffnod) != len(out.Coords) ||
			len(out.Displ) != len(out.Coords) || len(out.Stress1) != len(out.Topo) {
			t.Fatalf("%s: result sizes do not match the mesh", elType)
		}
		if out.MaxEseff != s.MaxVonMises {
			t.Fatalf("%s: MaxEseff mismatch", elType)
		}
		for _, d := range out.Bc {
			if out.A[d-1] != 0 {
				t.Fatalf("%s: clamped dof %d moved", elType, d)
			}
		}
	}
}

func TestExecute_DenseAndIterativeAgree(t *testing.T) {
	in := domain.DefaultInputData()

	dense, err := New(Config{DenseLimit: 1 << 20}).Execute(context.Background(), in)
	if err != nil {
		t.Fatalf("dense: %v", err)
	}
	iter, err := New(Config{DenseLimit: 0, CGTolerance: 1e-12}).Execute(context.Background(), in)
	if err != nil {
		t.Fatalf("pcg: %v", err)
	}
	if iter.Summary.LinearSolver != LinearPCG || iter.Summary.Iterations == 0 {
		t.Fatalf("expected an iterative solve, got %+v", iter.Summary)
	}

	scale := dense.Summary.MaxDisplacement
	for i := range dense.A {
		if math.Abs(dense.A[i]-iter.A[i]) > 1e-6*scale {
			t.Fatalf("dof %d: dense %g vs pcg %g", i+1, dense.A[i], iter.A[i])
		}
	}
}

func TestExecute_NegativeLoadCompresses(t *testing.T) {
	in := domain.DefaultInputData()
	in.Q = -in.Q

	out, err := New(DefaultConfig()).Execute(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n := out.Summary.MaxDisplacementNode
	if out.Displ[n][0] >= 0 {
		t.Fatalf("expected the loaded edge to move left, got %v", out.Displ[n])
	}
}

func TestExecute_RejectsInvalidModel(t *testing.T) {
	in := domain.DefaultInputData()
	in.B = in.H

	_, err := New(DefaultConfig()).Execute(context.Background(), in)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestExecute_RejectsNonFiniteInput(t *testing.T) {
	for name, set := range map[string]func(*domain.InputData){
		"w NaN":  func(in *domain.InputData) { in.W = math.NaN() },
		"E NaN":  func(in *domain.InputData) { in.E = math.NaN() },
		"t +Inf": func(in *domain.InputData) { in.T = math.Inf(1) },
	} {
		in := domain.DefaultInputData()
		set(&in)

		_, err := New(DefaultConfig()).Execute(context.Background(), in)
		var verr *domain.ValidationError
		if !errors.As(err, &verr) || !verr.Blocks(domain.GroupCalcInputs) {
			t.Fatalf("%s: expected ValidationError, got %v", name, err)
		}
	}
}

func TestCheckMesh_NoElements(t *testing.T) {
	if err := checkMesh(&Mesh{Coords: [][]float64{{0, 0}}}); !errors.Is(err, domain.ErrExecution) {
		t.Fatalf("expected ErrExecution, got %v", err)
	}
	if err := checkMesh(nil); !errors.Is(err, domain.ErrExecution) {
		t.Fatalf("expected ErrExecution for nil mesh, got %v", err)
	}

	in := domain.DefaultInputData()
	m, err := BuildMesh(in, in.Geometry(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := checkMesh(m); err != nil {
		t.Fatalf("expected default mesh to pass, got %v", err)
	}
}

func TestExecute_IgnoresStudyOnlyIssues(t *testing.T) {
	in := domain.DefaultInputData()
	in.BEnd = in.H

	if _, err := New(DefaultConfig()).Execute(context.Background(), in); err != nil {
		t.Fatalf("bend must not block a single solve: %v", err)
	}
}

func TestExecute_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(DefaultConfig()).Execute(ctx, domain.DefaultInputData())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
