// Package geometry prepares the spatial inputs of the cokriging system:
// the reference/rest split of interface points required by the dual-kriging
// formulation, pairwise distance matrices, the tiling of orientation
// positions over the three spatial directions, and the conversion of
// dip/azimuth/polarity readings into unit gradient vectors.
package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/CGR-Aachen/gempy/pkg/model"
)

// distanceFloor keeps squared distances away from zero so that the
// gradient covariance stays finite for co-located orientation components.
const distanceFloor = 1e-12

// SplitRestRef splits the surface points of one series into the reference
// set and the rest set. The first point of each surface becomes that
// surface's reference and is repeated once per remaining point, so ref and
// rest rows align pairwise for the difference-based interface constraints.
//
// points holds one row per surface point (x, y, z), grouped by surface in
// the order of pointsPerSurface. A surface with fewer than two points
// leaves its interface underdetermined and is rejected.
func SplitRestRef(points *mat.Dense, pointsPerSurface []int) (ref, rest *mat.Dense, err error) {
	rows, _ := points.Dims()
	total := 0
	for s, c := range pointsPerSurface {
		if c < 2 {
			return nil, nil, &model.DataError{Series: -1, Msg: fmt.Sprintf("surface %d has %d points, need at least 2", s, c)}
		}
		total += c
	}
	if total != rows {
		return nil, nil, &model.DataError{Series: -1, Msg: fmt.Sprintf("count table expects %d points, got %d rows", total, rows)}
	}

	nRest := total - len(pointsPerSurface)
	ref = mat.NewDense(nRest, 3, nil)
	rest = mat.NewDense(nRest, 3, nil)

	start := 0
	out := 0
	for _, c := range pointsPerSurface {
		refRow := points.RawRowView(start)
		for i := 1; i < c; i++ {
			ref.SetRow(out, refRow)
			rest.SetRow(out, points.RawRowView(start+i))
			out++
		}
		start += c
	}
	return ref, rest, nil
}

// RestOffsets returns, for each surface, the offset of its first rest point
// within the series' rest block. The scalar-field value at that offset is
// the iso-value segmenting the surface.
func RestOffsets(pointsPerSurface []int) []int {
	offsets := make([]int, len(pointsPerSurface))
	acc := 0
	for s, c := range pointsPerSurface {
		offsets[s] = acc
		acc += c - 1
	}
	return offsets
}

// DistanceMatrix computes the pairwise Euclidean distances between the rows
// of a and the rows of b. The squared distance is floored at 1e-12 before
// the square root, which avoids negative round-off and keeps co-located
// pairs strictly positive.
func DistanceMatrix(a, b *mat.Dense) *mat.Dense {
	ra, _ := a.Dims()
	rb, _ := b.Dims()
	d := mat.NewDense(ra, rb, nil)
	for i := 0; i < ra; i++ {
		ai := a.RawRowView(i)
		for j := 0; j < rb; j++ {
			bj := b.RawRowView(j)
			dx := ai[0] - bj[0]
			dy := ai[1] - bj[1]
			dz := ai[2] - bj[2]
			d.Set(i, j, math.Sqrt(math.Max(dx*dx+dy*dy+dz*dz, distanceFloor)))
		}
	}
	return d
}

// TileDips stacks the orientation positions three times vertically. The
// tiled matrix addresses the x, y and z directional-derivative rows of the
// gradient covariance blocks.
func TileDips(dips *mat.Dense) *mat.Dense {
	m, _ := dips.Dims()
	tiled := mat.NewDense(3*m, 3, nil)
	for i := 0; i < m; i++ {
		row := dips.RawRowView(i)
		tiled.SetRow(i, row)
		tiled.SetRow(m+i, row)
		tiled.SetRow(2*m+i, row)
	}
	return tiled
}

// DipVectors converts dip angle, azimuth (both in degrees) and polarity
// into the Cartesian components of the unit gradient vector at each
// orientation. The returned slice is the concatenation [Gx..., Gy..., Gz...]
// matching the gradient rows of the cokriging system.
func DipVectors(dip, azimuth, polarity []float64) []float64 {
	m := len(dip)
	g := make([]float64, 3*m)
	for i := 0; i < m; i++ {
		d := dip[i] * math.Pi / 180
		a := azimuth[i] * math.Pi / 180
		g[i] = math.Sin(d) * math.Sin(a) * polarity[i]
		g[m+i] = math.Sin(d) * math.Cos(a) * polarity[i]
		g[2*m+i] = math.Cos(d) * polarity[i]
	}
	return g
}
