// Package interpolator drives the potential-field reconstruction across an
// ordered list of series. For every series it assembles and solves the
// cokriging system, evaluates the scalar field over the shared evaluation
// set, and segments the field into a block row; completed fault blocks feed
// later series as drift inputs according to the fault relation table.
//
// The computation follows the methodology of Lajaunie, Courrioux & Manuel
// (1997), "Foliation fields and 3D cartography in geology", as implemented
// by the GemPy project.
package interpolator

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/CGR-Aachen/gempy/pkg/config"
	"github.com/CGR-Aachen/gempy/pkg/faults"
	"github.com/CGR-Aachen/gempy/pkg/geometry"
	"github.com/CGR-Aachen/gempy/pkg/kernel"
	"github.com/CGR-Aachen/gempy/pkg/kriging"
	"github.com/CGR-Aachen/gempy/pkg/model"
	"github.com/CGR-Aachen/gempy/pkg/segmentation"
)

// ProgressCallback reports per-series progress during a solve. If message
// is empty the callback should update a progress indicator.
type ProgressCallback func(completed, total int, message string)

// Solution accumulates the outputs of one solve. It is owned by the call
// that produced it and must not be shared across concurrent computations.
type Solution struct {
	// Blocks holds one row per series with the segmented unit labels at
	// every evaluation point (grid, then rest, then reference points).
	Blocks *mat.Dense

	// ScalarFields holds one row per series with the potential-field
	// values at every evaluation point.
	ScalarFields *mat.Dense

	// Weights holds the dual-kriging weights per series. They are valid
	// only for the series they were solved for.
	Weights [][]float64

	// SurfaceFieldValues holds, per series, the field value at each of
	// its surfaces: the iso-values separating the units.
	SurfaceFieldValues [][]float64

	// NumGridPoints is the number of grid points at the front of every
	// evaluation row.
	NumGridPoints int
}

// FinalBlock returns the last series' unit labels over the grid points:
// the discrete geological model.
func (s *Solution) FinalBlock() []float64 {
	rows, _ := s.Blocks.Dims()
	row := s.Blocks.RawRowView(rows - 1)
	out := make([]float64, s.NumGridPoints)
	copy(out, row[:s.NumGridPoints])
	return out
}

// seriesData holds the per-series slices of the model, precomputed once so
// the series loop only wires them together.
type seriesData struct {
	points      *mat.Dense // the series' own surface points
	ref, rest   *mat.Dense
	dips        *mat.Dense
	dipAngles   []float64
	azimuth     []float64
	polarity    []float64
	restStart   int   // offset of the series' rest block in the global rest tail
	restOffsets []int // per-surface offsets within the series' rest block
}

// Interpolator runs the full multi-series computation for one model. A
// single Interpolator must not run concurrent Compute calls on shared
// accumulators; each Compute owns its Solution.
type Interpolator struct {
	cfg  *config.Config
	geo  *model.GeoModel
	kern kernel.Params
	prog ProgressCallback

	evalPoints *mat.Dense
	nGrid      int
	totalRest  int
	series     []seriesData
}

// New validates the model against the configuration and precomputes the
// per-series data slices and the shared evaluation set.
func New(cfg *config.Config, geo *model.GeoModel) (*Interpolator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := validateModel(geo); err != nil {
		return nil, err
	}

	it := &Interpolator{
		cfg: cfg,
		geo: geo,
		kern: kernel.Params{
			Range:            cfg.Kriging.Range,
			CovarianceAtZero: cfg.Kriging.CovarianceAtZero,
			GradientNugget:   cfg.Kriging.GradientNugget,
			ScalarNugget:     cfg.Kriging.ScalarNugget,
			InterfaceRescale: cfg.Kriging.InterfaceRescale,
			GradientRescale:  cfg.Kriging.GradientRescale,
		},
		nGrid: geo.NumGridPoints(),
	}

	if err := it.prepareSeries(); err != nil {
		return nil, err
	}
	it.buildEvalPoints()
	return it, nil
}

// SetProgressCallback sets a callback reporting per-series progress.
func (it *Interpolator) SetProgressCallback(cb ProgressCallback) { it.prog = cb }

// EvalPoints exposes the shared evaluation set: the grid followed by the
// rest and reference points of every series.
func (it *Interpolator) EvalPoints() *mat.Dense { return it.evalPoints }

// prepareSeries slices the flat point and orientation arrays per series and
// performs the reference/rest split.
func (it *Interpolator) prepareSeries() error {
	it.series = make([]seriesData, len(it.geo.Series))

	pointCursor := 0
	orientCursor := 0
	restStart := 0
	for i := range it.geo.Series {
		s := &it.geo.Series[i]

		nPts := s.NumPoints()
		pts := mat.NewDense(nPts, 3, nil)
		for p := 0; p < nPts; p++ {
			sp := it.geo.SurfacePoints[pointCursor+p]
			pts.SetRow(p, []float64{sp.X, sp.Y, sp.Z})
		}
		pointCursor += nPts

		if err := geometry.CheckDuplicates(pts); err != nil {
			return tagSeries(err, i)
		}
		ref, rest, err := geometry.SplitRestRef(pts, s.PointsPerSurface)
		if err != nil {
			return tagSeries(err, i)
		}

		m := s.NumOrientations
		dips := mat.NewDense(m, 3, nil)
		angles := make([]float64, m)
		azimuth := make([]float64, m)
		polarity := make([]float64, m)
		for o := 0; o < m; o++ {
			or := it.geo.Orientations[orientCursor+o]
			dips.SetRow(o, []float64{or.X, or.Y, or.Z})
			angles[o] = or.Dip
			azimuth[o] = or.Azimuth
			polarity[o] = or.Polarity
		}
		orientCursor += m

		it.series[i] = seriesData{
			points:      pts,
			ref:         ref,
			rest:        rest,
			dips:        dips,
			dipAngles:   angles,
			azimuth:     azimuth,
			polarity:    polarity,
			restStart:   restStart,
			restOffsets: geometry.RestOffsets(s.PointsPerSurface),
		}
		restStart += s.NumRestPoints()
	}
	it.totalRest = restStart
	return nil
}

// buildEvalPoints concatenates grid, all rest points and all reference
// points into the evaluation set shared by every series. Fault block rows
// evaluated over this set carry values at every series' surface points,
// which later series slice for their fault-drift columns.
func (it *Interpolator) buildEvalPoints() {
	n := it.nGrid + 2*it.totalRest
	eval := mat.NewDense(n, 3, nil)

	for g := 0; g < it.nGrid; g++ {
		eval.SetRow(g, it.geo.Grid[3*g:3*g+3])
	}
	row := it.nGrid
	for _, sd := range it.series {
		r, _ := sd.rest.Dims()
		for j := 0; j < r; j++ {
			eval.SetRow(row, sd.rest.RawRowView(j))
			row++
		}
	}
	for _, sd := range it.series {
		r, _ := sd.ref.Dims()
		for j := 0; j < r; j++ {
			eval.SetRow(row, sd.ref.RawRowView(j))
			row++
		}
	}
	it.evalPoints = eval
}

// Compute runs the series loop in index order and returns the accumulated
// solution. The loop is strictly sequential: later series may depend on
// earlier fault blocks through the drift channel.
func (it *Interpolator) Compute() (*Solution, error) {
	nSeries := len(it.geo.Series)
	nEval, _ := it.evalPoints.Dims()

	sol := &Solution{
		Blocks:             mat.NewDense(nSeries, nEval, nil),
		ScalarFields:       mat.NewDense(nSeries, nEval, nil),
		Weights:            make([][]float64, nSeries),
		SurfaceFieldValues: make([][]float64, nSeries),
		NumGridPoints:      it.nGrid,
	}

	for i := range it.geo.Series {
		if err := it.computeSeries(i, sol); err != nil {
			return nil, err
		}
		it.reportProgress(i+1, nSeries, "")
	}
	return sol, nil
}

// computeSeries runs one transition of the scheduler state machine:
// gather fault drift, build and solve the system, evaluate the field,
// segment it, and write the results into the accumulators.
func (it *Interpolator) computeSeries(i int, sol *Solution) error {
	s := &it.geo.Series[i]
	sd := &it.series[i]
	r, _ := sd.rest.Dims()

	ctx := &kriging.SeriesContext{
		Kernel:      it.kern,
		Dips:        sd.dips,
		DipAngles:   sd.dipAngles,
		Azimuth:     sd.azimuth,
		Polarity:    sd.polarity,
		Ref:         sd.ref,
		Rest:        sd.rest,
		DriftDegree: s.DriftDegree,
	}

	// Fault drift: block rows of the earlier fault series that truncate
	// this one, plus their values at this series' own points.
	faultRows := it.truncatingFaults(i)
	if len(faultRows) > 0 {
		nEval, _ := it.evalPoints.Dims()
		drift := mat.NewDense(len(faultRows), nEval, nil)
		for f, j := range faultRows {
			drift.SetRow(f, sol.Blocks.RawRowView(j))
		}
		restCol := it.nGrid + sd.restStart
		refCol := it.nGrid + it.totalRest + sd.restStart
		ctx.FaultDrift = drift
		ctx.FaultDriftAtRest = drift.Slice(0, len(faultRows), restCol, restCol+r).(*mat.Dense)
		ctx.FaultDriftAtRef = drift.Slice(0, len(faultRows), refCol, refCol+r).(*mat.Dense)
	}

	c, b, err := kriging.BuildSystem(ctx)
	if err != nil {
		return err
	}
	weights, err := kriging.Solve(c, b)
	if err != nil {
		return &model.NumericalError{Series: i, Err: err}
	}

	field, err := kriging.EvaluateField(ctx, weights, it.evalPoints,
		it.cfg.Evaluation.MaxChunkElements, it.cfg.Evaluation.NumWorkers)
	if err != nil {
		return tagSeries(err, i)
	}
	surfaceValues := kriging.SurfaceFieldValues(field, it.nGrid, sd.restStart, sd.restOffsets)

	slopes, err := it.seriesSlopes(i, len(field))
	if err != nil {
		return tagSeries(err, i)
	}

	block, err := segmentation.Segment(field, surfaceValues, s.UnitIDs, slopes, s.IsFault)
	if err != nil {
		return tagSeries(err, i)
	}

	sol.Blocks.SetRow(i, block)
	sol.ScalarFields.SetRow(i, field)
	sol.Weights[i] = weights
	sol.SurfaceFieldValues[i] = surfaceValues
	return nil
}

// truncatingFaults lists the earlier fault series marked by the fault
// relation table as truncating series i.
func (it *Interpolator) truncatingFaults(i int) []int {
	if it.geo.FaultRelation == nil {
		return nil
	}
	var rows []int
	for j := 0; j < i; j++ {
		if it.geo.Series[j].IsFault && it.geo.FaultRelation[j][i] {
			rows = append(rows, j)
		}
	}
	return rows
}

// seriesSlopes builds the per-point slope constants for segmentation. A
// formation series uses the fixed formation slope everywhere; a fault
// series uses the steep inner slope inside its ellipsoidal zone of
// influence and the gentle outer slope elsewhere.
func (it *Interpolator) seriesSlopes(i, n int) ([]float64, error) {
	s := &it.geo.Series[i]
	slopes := make([]float64, n)

	if !s.IsFault {
		for k := range slopes {
			slopes[k] = it.cfg.Segmentation.FormationSlope
		}
		return slopes, nil
	}

	sd := &it.series[i]
	r, _ := sd.rest.Dims()
	faultPts := mat.NewDense(r+1, 3, nil)
	faultPts.SetRow(0, sd.ref.RawRowView(0))
	for j := 0; j < r; j++ {
		faultPts.SetRow(j+1, sd.rest.RawRowView(j))
	}

	sel, err := faults.InfluenceZone(faultPts, it.evalPoints, it.cfg.Faults.InfluenceInflation)
	if err != nil {
		return nil, err
	}
	for k := range slopes {
		if sel[k] {
			slopes[k] = it.cfg.Segmentation.FaultInnerSlope
		} else {
			slopes[k] = it.cfg.Segmentation.FaultOuterSlope
		}
	}
	return slopes, nil
}

func (it *Interpolator) reportProgress(completed, total int, message string) {
	if it.prog != nil {
		it.prog(completed, total, message)
	}
}

// validateModel checks the model shape before any matrix assembly.
func validateModel(geo *model.GeoModel) error {
	if len(geo.Series) == 0 {
		return &model.DataError{Series: -1, Msg: "model has no series"}
	}
	if len(geo.Grid) == 0 || len(geo.Grid)%3 != 0 {
		return &model.DataError{Series: -1, Msg: "grid must be a non-empty flat array of (x, y, z) triplets"}
	}
	if geo.FaultRelation != nil {
		if len(geo.FaultRelation) != len(geo.Series) {
			return &model.DataError{Series: -1, Msg: fmt.Sprintf("fault relation has %d rows for %d series", len(geo.FaultRelation), len(geo.Series))}
		}
		for i, row := range geo.FaultRelation {
			if len(row) != len(geo.Series) {
				return &model.DataError{Series: -1, Msg: fmt.Sprintf("fault relation row %d has %d columns for %d series", i, len(row), len(geo.Series))}
			}
		}
	}

	totalPoints := 0
	totalOrients := 0
	for i := range geo.Series {
		s := &geo.Series[i]
		if s.DriftDegree < 0 || s.DriftDegree > 2 {
			return &model.ConfigurationError{Msg: fmt.Sprintf("series %d: drift degree must be 0, 1 or 2, got %d", i, s.DriftDegree)}
		}
		if s.NumSurfaces() == 0 {
			return &model.DataError{Series: i, Msg: "series has no surfaces"}
		}
		for surf, c := range s.PointsPerSurface {
			if c < 2 {
				return &model.DataError{Series: i, Msg: fmt.Sprintf("surface %d has %d points, need at least 2", surf, c)}
			}
		}
		if s.NumOrientations < 1 {
			return &model.DataError{Series: i, Msg: "series needs at least one orientation"}
		}
		if len(s.UnitIDs) != s.NumSurfaces()+1 {
			return &model.DataError{Series: i, Msg: fmt.Sprintf("expected %d unit ids for %d surfaces, got %d", s.NumSurfaces()+1, s.NumSurfaces(), len(s.UnitIDs))}
		}
		totalPoints += s.NumPoints()
		totalOrients += s.NumOrientations
	}
	if totalPoints != len(geo.SurfacePoints) {
		return &model.DataError{Series: -1, Msg: fmt.Sprintf("count tables expect %d surface points, model has %d", totalPoints, len(geo.SurfacePoints))}
	}
	if totalOrients != len(geo.Orientations) {
		return &model.DataError{Series: -1, Msg: fmt.Sprintf("count tables expect %d orientations, model has %d", totalOrients, len(geo.Orientations))}
	}
	return nil
}

// tagSeries attaches the series index to data errors raised by components
// that do not know which series they serve.
func tagSeries(err error, series int) error {
	if de, ok := err.(*model.DataError); ok && de.Series < 0 {
		de.Series = series
	}
	return err
}
