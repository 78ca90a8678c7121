// Package faults implements the finite-fault influence test: an
// ellipsoidal bound, fitted to a fault's own surface points, that decides
// which evaluation points feel the fault's sharp truncation.
package faults

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/CGR-Aachen/gempy/pkg/model"
)

// InfluenceZone flags the evaluation points lying inside the fault's zone
// of influence. The zone is an ellipse on the fault's two principal axes:
// the axes come from the covariance of the fault's surface points, the
// half-width per axis is half the projected extent of those points plus
// the configured inflation.
//
// faultPoints holds the fault series' own surface points (reference first,
// then rest), one row per point; evalPoints is the shared evaluation set.
func InfluenceZone(faultPoints, evalPoints *mat.Dense, inflation float64) ([]bool, error) {
	nf, _ := faultPoints.Dims()
	if nf < 2 {
		return nil, &model.DataError{Series: -1, Msg: "finite-fault test needs at least two fault points"}
	}

	// Principal axes of the fault point cloud. The covariance matrix is
	// the scatter matrix scaled by 1/(n-1), so it has the same axes.
	cov := mat.NewSymDense(3, nil)
	stat.CovarianceMatrix(cov, faultPoints, nil)

	var svd mat.SVD
	if ok := svd.Factorize(mat.DenseCopyOf(cov), mat.SVDFull); !ok {
		return nil, &model.DataError{Series: -1, Msg: "principal-axis decomposition of fault points failed"}
	}
	var axes mat.Dense
	svd.UTo(&axes)

	var rotFault mat.Dense
	rotFault.Mul(faultPoints, &axes)

	// Half-widths along the two major axes, inflated so the ellipse
	// reaches past the data extent.
	ctr0 := stat.Mean(mat.Col(nil, 0, &rotFault), nil)
	ctr1 := stat.Mean(mat.Col(nil, 1, &rotFault), nil)
	min0, max0 := colRange(&rotFault, 0)
	min1, max1 := colRange(&rotFault, 1)
	aRad := (max0-min0)/2 + inflation
	bRad := (max1-min1)/2 + inflation
	if aRad <= 0 || bRad <= 0 {
		return nil, &model.DataError{Series: -1, Msg: "degenerate fault extent: ellipse half-width is zero"}
	}

	var rotEval mat.Dense
	rotEval.Mul(evalPoints, &axes)

	ne, _ := evalPoints.Dims()
	sel := make([]bool, ne)
	for k := 0; k < ne; k++ {
		u := (rotEval.At(k, 0) - ctr0) / aRad
		v := (rotEval.At(k, 1) - ctr1) / bRad
		sel[k] = u*u+v*v < 1
	}
	return sel, nil
}

func colRange(m *mat.Dense, col int) (min, max float64) {
	rows, _ := m.Dims()
	min = m.At(0, col)
	max = min
	for i := 1; i < rows; i++ {
		v := m.At(i, col)
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
