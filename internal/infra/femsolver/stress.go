package femsolver

import (
	"math"

	"github.com/pnordq/pnfem/internal/domain"
)

// VonMises returns the plane stress von Mises stress.
func VonMises(sx, sy, txy float64) float64 {
	return math.Sqrt(sx*sx - sx*sy + sy*sy + 3*txy*txy)
}

// Principal returns the principal stresses (s1 >= s2) and the angle of s1.
func Principal(sx, sy, txy float64) (s1, s2, theta float64) {
	mean := (sx + sy) / 2
	radius := math.Hypot((sx-sy)/2, txy)
	theta = 0.5 * math.Atan2(2*txy, sx-sy)
	return mean + radius, mean - radius, theta
}

// PrincipalVectors scales the principal directions by their stresses.
func PrincipalVectors(sx, sy, txy float64) (v1, v2 domain.Vec3) {
	s1, s2, theta := Principal(sx, sy, txy)
	v1 = domain.Vec3{s1 * math.Cos(theta), s1 * math.Sin(theta), 0}
	v2 = domain.Vec3{s2 * math.Cos(theta+math.Pi/2), s2 * math.Sin(theta+math.Pi/2), 0}
	return v1, v2
}

// nodalAverage spreads element values to the nodes by plain averaging.
func nodalAverage(topo [][]int, nNodes int, elem []float64) []float64 {
	sum := make([]float64, nNodes)
	count := make([]int, nNodes)
	for e, nodes := range topo {
		for _, n := range nodes {
			sum[n] += elem[e]
			count[n]++
		}
	}
	for n := range sum {
		if count[n] > 0 {
			sum[n] /= float64(count[n])
		}
	}
	return sum
}
