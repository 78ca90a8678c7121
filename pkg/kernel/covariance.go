// Package kernel implements the cubic-spline-family covariance used by the
// potential-field method. The kernel has compact support: the covariance,
// and its first derivative, decay smoothly to zero at the range and stay
// exactly zero beyond it.
package kernel

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/CGR-Aachen/gempy/pkg/geometry"
)

// Params are the kernel constants. They are supplied by the caller, never
// estimated by the core.
type Params struct {
	// Range is the distance at which covariance reaches zero.
	Range float64

	// CovarianceAtZero is the covariance at distance zero.
	CovarianceAtZero float64

	// GradientNugget is added to the diagonal of the gradient block.
	GradientNugget float64

	// ScalarNugget is added twice to the diagonal of the interface block.
	ScalarNugget float64

	// InterfaceRescale weights interface covariances against gradients.
	InterfaceRescale float64

	// GradientRescale weights cross-covariance and drift terms.
	GradientRescale float64
}

// Covariance evaluates the spline covariance at distance d. The polynomial
// is degree seven in the normalized distance d/Range, equals
// CovarianceAtZero at d = 0 and vanishes with continuous first derivative
// at d = Range.
func (p Params) Covariance(d float64) float64 {
	if d >= p.Range {
		return 0
	}
	r := d / p.Range
	r2 := r * r
	r3 := r2 * r
	return p.CovarianceAtZero * (1 - 7*r2 + 35.0/4.0*r3 - 7.0/2.0*r3*r2 + 3.0/4.0*r3*r3*r)
}

// FirstDerivativeFactor evaluates the radial factor of the covariance first
// derivative, used directionally weighted in the gradient-interface cross
// covariance and in the gradient rows of field evaluation.
func (p Params) FirstDerivativeFactor(d float64) float64 {
	if d >= p.Range {
		return 0
	}
	a := p.Range
	a2 := a * a
	a3 := a2 * a
	d2 := d * d
	d3 := d2 * d
	return -p.CovarianceAtZero * (-14/a2 + 105.0/4.0*d/a3 - 35.0/2.0*d3/(a3*a2) + 21.0/4.0*d3*d2/(a3*a3*a))
}

// SecondDerivativeFactor evaluates the radial factor of the covariance
// second derivative, used in the gradient-gradient covariance.
func (p Params) SecondDerivativeFactor(d float64) float64 {
	if d >= p.Range {
		return 0
	}
	a := p.Range
	a2 := a * a
	a5 := a2 * a2 * a
	d2 := d * d
	d3 := d2 * d
	return p.CovarianceAtZero * 7 * (9*d3*d2-20*a2*d3+15*a2*a2*d-4*a5) / (2 * a5 * a2)
}

// InterfaceCov builds the covariance block of the interface constraints.
// Each constraint is the difference between a rest point and its surface's
// reference point, so the block combines the four rest/ref pairings. The
// diagonal receives twice the scalar nugget.
func (p Params) InterfaceCov(rest, ref *mat.Dense) *mat.Dense {
	dRR := geometry.DistanceMatrix(rest, rest)
	dFR := geometry.DistanceMatrix(ref, rest)
	dRF := geometry.DistanceMatrix(rest, ref)
	dFF := geometry.DistanceMatrix(ref, ref)

	n, _ := rest.Dims()
	c := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := p.InterfaceRescale * (p.Covariance(dRR.At(i, j)) -
				p.Covariance(dFR.At(i, j)) -
				p.Covariance(dRF.At(i, j)) +
				p.Covariance(dFF.At(i, j)))
			if i == j {
				v += 2 * p.ScalarNugget
			}
			c.Set(i, j, v)
		}
	}
	return c
}

// GradientCov builds the 3m x 3m covariance block of the orientation data:
// one row per orientation per spatial direction, with cross terms between
// the x/y/z directional derivatives. The diagonal receives the gradient
// nugget.
func (p Params) GradientCov(dips *mat.Dense) *mat.Dense {
	m, _ := dips.Dims()
	n := 3 * m
	c := mat.NewDense(n, n, nil)
	for bi := 0; bi < n; bi++ {
		di, i := bi/m, bi%m
		pi := dips.RawRowView(i)
		for bj := 0; bj < n; bj++ {
			dj, j := bj/m, bj%m
			pj := dips.RawRowView(j)

			dx := pi[0] - pj[0]
			dy := pi[1] - pj[1]
			dz := pi[2] - pj[2]
			d := math.Sqrt(math.Max(dx*dx+dy*dy+dz*dz, 1e-12))

			// Directional weight: difference along the row direction
			// times difference along the column direction.
			huhv := (pj[di] - pi[di]) * (pi[dj] - pj[dj])

			f1 := p.FirstDerivativeFactor(d)
			f2 := p.SecondDerivativeFactor(d)

			v := huhv / (d * d) * (f1 + f2)
			if di == dj {
				v += f1
			}
			if bi == bj {
				v += p.GradientNugget
			}
			c.Set(bi, bj, v)
		}
	}
	return c
}

// GradientInterfaceCov builds the r x 3m cross-covariance between the
// interface constraints and the orientation data, directionally weighted by
// the first derivative of the spline.
func (p Params) GradientInterfaceCov(dips, rest, ref *mat.Dense) *mat.Dense {
	m, _ := dips.Dims()
	r, _ := rest.Dims()
	c := mat.NewDense(r, 3*m, nil)
	for j := 0; j < r; j++ {
		restJ := rest.RawRowView(j)
		refJ := ref.RawRowView(j)
		for bi := 0; bi < 3*m; bi++ {
			di, i := bi/m, bi%m
			pi := dips.RawRowView(i)

			dRest := pointDistance(pi, restJ)
			dRef := pointDistance(pi, refJ)

			v := p.GradientRescale * ((pi[di]-restJ[di])*p.FirstDerivativeFactor(dRest) -
				(pi[di]-refJ[di])*p.FirstDerivativeFactor(dRef))
			c.Set(j, bi, v)
		}
	}
	return c
}

func pointDistance(a, b []float64) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	dz := a[2] - b[2]
	return math.Sqrt(math.Max(dx*dx+dy*dy+dz*dz, 1e-12))
}
