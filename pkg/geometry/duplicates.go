package geometry

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/CGR-Aachen/gempy/pkg/model"
)

// duplicateTol is the squared distance below which two surface points are
// considered coincident. Coincident points make the interface covariance
// block singular.
const duplicateTol = 1e-20

// Point3D represents a 3D point in the KD-tree used for duplicate checks.
type Point3D struct {
	X, Y, Z float64
}

// Compare implements the kdtree.Comparable interface.
func (p Point3D) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(Point3D)
	switch d {
	case 0:
		return p.X - q.X
	case 1:
		return p.Y - q.Y
	case 2:
		return p.Z - q.Z
	default:
		panic("illegal dimension")
	}
}

// Dims returns the number of dimensions for the KD-tree.
func (p Point3D) Dims() int { return 3 }

// Distance returns the squared Euclidean distance between two points.
func (p Point3D) Distance(c kdtree.Comparable) float64 {
	q := c.(Point3D)
	dx := p.X - q.X
	dy := p.Y - q.Y
	dz := p.Z - q.Z
	return dx*dx + dy*dy + dz*dz
}

// Points3D is a collection of Point3D that satisfies kdtree.Interface.
type Points3D []Point3D

func (p Points3D) Index(i int) kdtree.Comparable { return p[i] }
func (p Points3D) Len() int                      { return len(p) }
func (p Points3D) Slice(start, end int) kdtree.Interface { return p[start:end] }

// Pivot implements the kdtree.Interface method.
func (p Points3D) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(pointPlane{Points3D: p, Dim: d}, kdtree.MedianOfRandoms(pointPlane{Points3D: p, Dim: d}, 100))
}

// pointPlane implements sort.Interface and kdtree.SortSlicer for Points3D.
type pointPlane struct {
	Points3D
	kdtree.Dim
}

func (p pointPlane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.Points3D[i].X < p.Points3D[j].X
	case 1:
		return p.Points3D[i].Y < p.Points3D[j].Y
	case 2:
		return p.Points3D[i].Z < p.Points3D[j].Z
	default:
		panic("illegal dimension")
	}
}

func (p pointPlane) Slice(start, end int) kdtree.SortSlicer {
	return pointPlane{Points3D: p.Points3D[start:end], Dim: p.Dim}
}

func (p pointPlane) Swap(i, j int) {
	p.Points3D[i], p.Points3D[j] = p.Points3D[j], p.Points3D[i]
}

// CheckDuplicates rejects point sets containing exactly (or nearly)
// coincident rows. It builds a KD-tree over the points and inspects each
// point's nearest neighbor other than itself.
func CheckDuplicates(points *mat.Dense) error {
	rows, _ := points.Dims()
	if rows < 2 {
		return nil
	}

	pts := make(Points3D, rows)
	for i := 0; i < rows; i++ {
		row := points.RawRowView(i)
		pts[i] = Point3D{X: row[0], Y: row[1], Z: row[2]}
	}
	tree := kdtree.New(pts, false)

	for i := range pts {
		keeper := kdtree.NewNKeeper(2)
		tree.NearestSet(keeper, pts[i])

		// The query point always matches itself at distance zero, so a
		// second near-zero hit means a coincident pair.
		hits := 0
		for _, item := range keeper.Heap {
			if item.Comparable == nil {
				continue
			}
			if item.Dist < duplicateTol {
				hits++
			}
		}
		if hits > 1 {
			return &model.DataError{Series: -1, Msg: fmt.Sprintf("coincident points at (%g, %g, %g)", pts[i].X, pts[i].Y, pts[i].Z)}
		}
	}
	return nil
}
