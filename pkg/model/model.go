// Package model defines the input data model for the potential-field
// interpolation: surface points, orientations, series descriptors and the
// fault relation table. All values are expected to be rescaled by the
// caller to a common reference frame before a solve begins.
package model

// SurfacePoint is a single observation lying on a geological interface.
// Points are immutable once a solve has started.
type SurfacePoint struct {
	// X, Y, Z are the rescaled coordinates of the point.
	X, Y, Z float64

	// Surface is the index of the interface this point belongs to,
	// counted within its series.
	Surface int

	// Series is the index of the owning series.
	Series int
}

// Orientation is a gradient observation of the potential field: a location
// plus the dip/azimuth/polarity of the interface normal measured there.
type Orientation struct {
	// X, Y, Z are the rescaled coordinates of the measurement.
	X, Y, Z float64

	// Dip is the dip angle in degrees measured from the horizontal.
	Dip float64

	// Azimuth is the dip direction in degrees clockwise from north.
	Azimuth float64

	// Polarity is +1 for a normal-younging measurement and -1 for a
	// reversed one.
	Polarity float64

	// Series is the index of the owning series.
	Series int
}

// Series describes one ordered unit of computation. Each series owns a
// contiguous run of surface points and orientations and produces one row
// of the block model.
type Series struct {
	// Name identifies the series in errors and logs.
	Name string

	// DriftDegree is the degree of the universal (polynomial) drift:
	// 0 means no drift terms, 1 adds the linear terms, 2 adds the
	// quadratic and cross terms as well.
	DriftDegree int

	// IsFault marks the series as a fault. Fault blocks become drift
	// inputs for the later series they truncate.
	IsFault bool

	// UnitIDs are the rock-unit identifiers produced by this series:
	// one per surface plus the unit below the deepest surface.
	UnitIDs []float64

	// PointsPerSurface lists how many surface points each surface of
	// the series contributes, in surface order. Every surface needs at
	// least two points.
	PointsPerSurface []int

	// NumOrientations is the number of orientations owned by the series.
	NumOrientations int
}

// NumSurfaces returns the number of interfaces in the series.
func (s *Series) NumSurfaces() int { return len(s.PointsPerSurface) }

// NumPoints returns the total number of surface points in the series.
func (s *Series) NumPoints() int {
	n := 0
	for _, c := range s.PointsPerSurface {
		n += c
	}
	return n
}

// NumRestPoints returns the number of points left after removing one
// reference point per surface.
func (s *Series) NumRestPoints() int {
	return s.NumPoints() - s.NumSurfaces()
}

// GeoModel is the complete input of one solve: the evaluation grid, the
// ordered series and their data, and the fault relation table.
type GeoModel struct {
	// Grid holds the evaluation points as a flat row-major array of
	// (x, y, z) triplets.
	Grid []float64

	// Series are the ordered computation units. Order is computation
	// order; later series may be truncated by earlier fault series.
	Series []Series

	// SurfacePoints are grouped by series and, within a series, by
	// surface, matching Series.PointsPerSurface.
	SurfacePoints []SurfacePoint

	// Orientations are grouped by series, matching Series.NumOrientations.
	Orientations []Orientation

	// FaultRelation is a square matrix sized to the number of series.
	// FaultRelation[i][j] states that series i truncates series j; it is
	// only honored when i < j and series i is a fault.
	FaultRelation [][]bool
}

// NumGridPoints returns the number of points in the evaluation grid.
func (m *GeoModel) NumGridPoints() int { return len(m.Grid) / 3 }
