package femsolver

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Hooke returns the plane stress constitutive matrix.
func Hooke(e, v float64) *mat.Dense {
	c := e / (1 - v*v)
	return mat.NewDense(3, 3, []float64{
		c, c * v, 0,
		c * v, c, 0,
		0, 0, c * (1 - v) / 2,
	})
}

// cstB returns the strain-displacement matrix and the area of a linear triangle.
func cstB(ex, ey []float64) (*mat.Dense, float64, error) {
	x1, x2, x3 := ex[0], ex[1], ex[2]
	y1, y2, y3 := ey[0], ey[1], ey[2]

	twoA := (x2-x1)*(y3-y1) - (x3-x1)*(y2-y1)
	if twoA <= 0 {
		return nil, 0, fmt.Errorf("degenerate or clockwise triangle (2A=%g)", twoA)
	}

	b1, b2, b3 := y2-y3, y3-y1, y1-y2
	c1, c2, c3 := x3-x2, x1-x3, x2-x1

	s := 1 / twoA
	B := mat.NewDense(3, 6, []float64{
		b1 * s, 0, b2 * s, 0, b3 * s, 0,
		0, c1 * s, 0, c2 * s, 0, c3 * s,
		c1 * s, b1 * s, c2 * s, b2 * s, c3 * s, b3 * s,
	})
	return B, twoA / 2, nil
}

// q4B evaluates the strain-displacement matrix of a bilinear quad at (xi, eta)
// and returns it with the Jacobian determinant.
func q4B(ex, ey []float64, xi, eta float64) (*mat.Dense, float64, error) {
	dNxi := [4]float64{-(1 - eta), 1 - eta, 1 + eta, -(1 + eta)}
	dNeta := [4]float64{-(1 - xi), -(1 + xi), 1 + xi, 1 - xi}
	for k := range dNxi {
		dNxi[k] /= 4
		dNeta[k] /= 4
	}

	var j11, j12, j21, j22 float64
	for k := 0; k < 4; k++ {
		j11 += dNxi[k] * ex[k]
		j12 += dNxi[k] * ey[k]
		j21 += dNeta[k] * ex[k]
		j22 += dNeta[k] * ey[k]
	}
	det := j11*j22 - j12*j21
	if det <= 0 {
		return nil, 0, fmt.Errorf("degenerate or clockwise quad (detJ=%g)", det)
	}

	B := mat.NewDense(3, 8, nil)
	for k := 0; k < 4; k++ {
		dx := (j22*dNxi[k] - j12*dNeta[k]) / det
		dy := (-j21*dNxi[k] + j11*dNeta[k]) / det
		B.Set(0, 2*k, dx)
		B.Set(1, 2*k+1, dy)
		B.Set(2, 2*k, dy)
		B.Set(2, 2*k+1, dx)
	}
	return B, det, nil
}

var gauss2 = [2]float64{-1 / math.Sqrt(3), 1 / math.Sqrt(3)}

// ElementStiffness returns Ke for a triangle (3 nodes) or a bilinear quad (4 nodes).
func ElementStiffness(ex, ey []float64, t float64, D *mat.Dense) (*mat.Dense, error) {
	switch len(ex) {
	case 3:
		B, area, err := cstB(ex, ey)
		if err != nil {
			return nil, err
		}
		return btdb(B, D, t*area), nil
	case 4:
		ke := mat.NewDense(8, 8, nil)
		for _, xi := range gauss2 {
			for _, eta := range gauss2 {
				B, det, err := q4B(ex, ey, xi, eta)
				if err != nil {
					return nil, err
				}
				ke.Add(ke, btdb(B, D, t*det))
			}
		}
		return ke, nil
	default:
		return nil, fmt.Errorf("unsupported element with %d nodes", len(ex))
	}
}

// ElementStress returns stresses [sx, sy, txy] and strains [ex, ey, gxy] from the
// element displacements. Quads are evaluated at the centroid.
func ElementStress(ex, ey, ed []float64, D *mat.Dense) (es, et []float64, err error) {
	var B *mat.Dense
	switch len(ex) {
	case 3:
		B, _, err = cstB(ex, ey)
	case 4:
		B, _, err = q4B(ex, ey, 0, 0)
	default:
		err = fmt.Errorf("unsupported element with %d nodes", len(ex))
	}
	if err != nil {
		return nil, nil, err
	}

	var eps, sig mat.VecDense
	eps.MulVec(B, mat.NewVecDense(len(ed), ed))
	sig.MulVec(D, &eps)

	et = []float64{eps.AtVec(0), eps.AtVec(1), eps.AtVec(2)}
	es = []float64{sig.AtVec(0), sig.AtVec(1), sig.AtVec(2)}
	return es, et, nil
}

func btdb(B, D *mat.Dense, scale float64) *mat.Dense {
	var db, ke mat.Dense
	db.Mul(D, B)
	ke.Mul(B.T(), &db)
	ke.Scale(scale, &ke)
	return &ke
}
