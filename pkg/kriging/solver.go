package kriging

import (
	"gonum.org/v1/gonum/mat"
)

// Solve computes the dual-kriging weights w of C*w = b by LU decomposition
// with partial pivoting. A singular or ill-conditioned system is returned
// as an error rather than silently regularized; the caller decides whether
// the series is unusable.
func Solve(c *mat.Dense, b *mat.VecDense) ([]float64, error) {
	var lu mat.LU
	lu.Factorize(c)

	var w mat.VecDense
	if err := lu.SolveVecTo(&w, false, b); err != nil {
		return nil, err
	}

	out := make([]float64, w.Len())
	copy(out, w.RawVector().Data)
	return out, nil
}
