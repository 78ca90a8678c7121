package interpolator

import (
	"math"
	"testing"

	"github.com/CGR-Aachen/gempy/pkg/config"
	"github.com/CGR-Aachen/gempy/pkg/model"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Evaluation.NumWorkers = 2
	cfg.Faults.InfluenceInflation = 0.5
	return cfg
}

// columnGrid builds a vertical column of n grid points at (0.5, 0.5, z).
func columnGrid(n int) []float64 {
	grid := make([]float64, 0, 3*n)
	for i := 0; i < n; i++ {
		grid = append(grid, 0.5, 0.5, float64(i)/float64(n-1))
	}
	return grid
}

// singleLayerModel builds one formation series: a horizontal surface at
// z = 0.7 with unit 2 above and unit 3 below.
func singleLayerModel() *model.GeoModel {
	return &model.GeoModel{
		Grid: columnGrid(11),
		Series: []model.Series{{
			Name:             "Strata",
			DriftDegree:      1,
			UnitIDs:          []float64{2, 3},
			PointsPerSurface: []int{3},
			NumOrientations:  1,
		}},
		SurfacePoints: []model.SurfacePoint{
			{X: 0.25, Y: 0.25, Z: 0.7},
			{X: 0.75, Y: 0.25, Z: 0.7},
			{X: 0.5, Y: 0.75, Z: 0.7},
		},
		Orientations: []model.Orientation{
			{X: 0.5, Y: 0.5, Z: 0.5, Dip: 0, Azimuth: 0, Polarity: 1},
		},
	}
}

// faultedModel builds the two-series case: a vertical fault truncating a
// layered formation series.
func faultedModel() *model.GeoModel {
	geo := &model.GeoModel{
		Grid: columnGrid(5),
		Series: []model.Series{
			{
				Name:             "Fault",
				DriftDegree:      1,
				IsFault:          true,
				UnitIDs:          []float64{1, 1},
				PointsPerSurface: []int{4},
				NumOrientations:  1,
			},
			{
				Name:             "Strata",
				DriftDegree:      1,
				UnitIDs:          []float64{2, 3},
				PointsPerSurface: []int{3},
				NumOrientations:  1,
			},
		},
		FaultRelation: [][]bool{
			{false, true},
			{false, false},
		},
	}
	geo.SurfacePoints = []model.SurfacePoint{
		{X: 0.5, Y: 0.2, Z: 0.2, Series: 0},
		{X: 0.5, Y: 0.8, Z: 0.2, Series: 0},
		{X: 0.5, Y: 0.2, Z: 0.8, Series: 0},
		{X: 0.5, Y: 0.8, Z: 0.8, Series: 0},
		{X: 0.25, Y: 0.25, Z: 0.6, Series: 1},
		{X: 0.75, Y: 0.25, Z: 0.6, Series: 1},
		{X: 0.5, Y: 0.75, Z: 0.6, Series: 1},
	}
	geo.Orientations = []model.Orientation{
		{X: 0.5, Y: 0.5, Z: 0.5, Dip: 90, Azimuth: 90, Polarity: 1, Series: 0},
		{X: 0.5, Y: 0.5, Z: 0.4, Dip: 0, Azimuth: 0, Polarity: 1, Series: 1},
	}
	return geo
}

// TestComputeSingleLayer verifies the end-to-end pipeline on one horizontal
// layer: a field increasing with z and crisp unit labels away from the
// boundary.
func TestComputeSingleLayer(t *testing.T) {
	geo := singleLayerModel()
	it, err := New(testConfig(), geo)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	sol, err := it.Compute()
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	nGrid := geo.NumGridPoints()
	if sol.NumGridPoints != nGrid {
		t.Fatalf("Expected %d grid points, got %d", nGrid, sol.NumGridPoints)
	}

	// The field increases along the column: the gradient points up.
	field := sol.ScalarFields.RawRowView(0)
	for i := 1; i < nGrid; i++ {
		if field[i] <= field[i-1] {
			t.Errorf("field not increasing along z: field[%d] = %f, field[%d] = %f",
				i-1, field[i-1], i, field[i])
		}
	}

	// Unit 2 above z = 0.7, unit 3 below, away from the boundary.
	block := sol.FinalBlock()
	for i := 0; i < nGrid; i++ {
		z := geo.Grid[3*i+2]
		if math.Abs(z-0.7) < 0.15 {
			continue
		}
		want := 3.0
		if z > 0.7 {
			want = 2.0
		}
		if math.Abs(block[i]-want) > 0.01 {
			t.Errorf("grid point at z=%f: label %f, expected %f", z, block[i], want)
		}
	}

	if len(sol.SurfaceFieldValues[0]) != 1 {
		t.Fatalf("Expected 1 surface field value, got %d", len(sol.SurfaceFieldValues[0]))
	}
}

// TestComputeFaultedModel verifies the two-series schedule: the fault system
// solves first and the formation system carries one fault-drift row.
func TestComputeFaultedModel(t *testing.T) {
	geo := faultedModel()
	it, err := New(testConfig(), geo)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var calls int
	it.SetProgressCallback(func(completed, total int, message string) {
		calls++
		if total != 2 {
			t.Errorf("progress total = %d, expected 2", total)
		}
	})

	sol, err := it.Compute()
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if calls != 2 {
		t.Errorf("Expected 2 progress calls, got %d", calls)
	}

	// Fault series: 3 gradient rows, 3 rest rows, 3 drift rows.
	if got := len(sol.Weights[0]); got != 9 {
		t.Errorf("Fault system size = %d, expected 9", got)
	}
	// Formation series: 3 gradient rows, 2 rest rows, 3 drift rows and
	// one fault-drift row.
	if got := len(sol.Weights[1]); got != 9 {
		t.Errorf("Formation system size = %d, expected 9", got)
	}

	// The fault block separates the two sides of the plane x = 0.5 at the
	// formation's own surface points, which straddle it.
	rows, cols := sol.Blocks.Dims()
	if rows != 2 {
		t.Fatalf("Expected 2 block rows, got %d", rows)
	}
	nEval, _ := it.EvalPoints().Dims()
	if cols != nEval {
		t.Fatalf("Expected %d block columns, got %d", nEval, cols)
	}
}

// TestEvalPointsLayout verifies the shared evaluation set: grid first, then
// every series' rest points, then every series' reference points.
func TestEvalPointsLayout(t *testing.T) {
	geo := faultedModel()
	it, err := New(testConfig(), geo)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	nGrid := geo.NumGridPoints()
	totalRest := geo.Series[0].NumRestPoints() + geo.Series[1].NumRestPoints()
	eval := it.EvalPoints()
	n, _ := eval.Dims()
	if n != nGrid+2*totalRest {
		t.Fatalf("Expected %d evaluation points, got %d", nGrid+2*totalRest, n)
	}

	// First rest row is the second point of the fault surface.
	sp := geo.SurfacePoints[1]
	row := eval.RawRowView(nGrid)
	if row[0] != sp.X || row[1] != sp.Y || row[2] != sp.Z {
		t.Errorf("First rest row = %v, expected (%f, %f, %f)", row, sp.X, sp.Y, sp.Z)
	}

	// First reference row is the first point of the fault surface,
	// located after the full rest tail.
	ref := geo.SurfacePoints[0]
	row = eval.RawRowView(nGrid + totalRest)
	if row[0] != ref.X || row[1] != ref.Y || row[2] != ref.Z {
		t.Errorf("First reference row = %v, expected (%f, %f, %f)", row, ref.X, ref.Y, ref.Z)
	}
}

// TestNewValidation verifies the rejection of malformed models.
func TestNewValidation(t *testing.T) {
	cfg := testConfig()

	cases := []struct {
		name   string
		mutate func(*model.GeoModel)
	}{
		{"no series", func(g *model.GeoModel) { g.Series = nil }},
		{"empty grid", func(g *model.GeoModel) { g.Grid = nil }},
		{"ragged grid", func(g *model.GeoModel) { g.Grid = g.Grid[:len(g.Grid)-1] }},
		{"single-point surface", func(g *model.GeoModel) {
			g.Series[0].PointsPerSurface = []int{1}
			g.SurfacePoints = g.SurfacePoints[:1]
		}},
		{"no orientations", func(g *model.GeoModel) { g.Series[0].NumOrientations = 0; g.Orientations = nil }},
		{"unit id count", func(g *model.GeoModel) { g.Series[0].UnitIDs = []float64{2} }},
		{"point count mismatch", func(g *model.GeoModel) { g.SurfacePoints = g.SurfacePoints[:2] }},
		{"orientation count mismatch", func(g *model.GeoModel) {
			g.Orientations = append(g.Orientations, model.Orientation{})
		}},
		{"fault relation shape", func(g *model.GeoModel) { g.FaultRelation = [][]bool{{false}} }},
		{"duplicate points", func(g *model.GeoModel) {
			g.SurfacePoints[1] = g.SurfacePoints[2]
		}},
	}

	for _, c := range cases {
		geo := singleLayerModel()
		c.mutate(geo)
		if _, err := New(cfg, geo); err == nil {
			t.Errorf("%s: expected validation error", c.name)
		}
	}
}

// TestNewInvalidDriftDegree verifies the configuration error for a drift
// degree outside the supported set.
func TestNewInvalidDriftDegree(t *testing.T) {
	geo := singleLayerModel()
	geo.Series[0].DriftDegree = 3
	_, err := New(testConfig(), geo)
	if err == nil {
		t.Fatal("Expected error for drift degree 3")
	}
	if _, ok := err.(*model.ConfigurationError); !ok {
		t.Errorf("Expected *model.ConfigurationError, got %T", err)
	}
}

// TestDataErrorCarriesSeries verifies that per-series data problems report
// the offending series index.
func TestDataErrorCarriesSeries(t *testing.T) {
	geo := faultedModel()
	// Duplicate a formation point: series index 1.
	geo.SurfacePoints[5] = geo.SurfacePoints[6]

	_, err := New(testConfig(), geo)
	if err == nil {
		t.Fatal("Expected error for duplicate points")
	}
	de, ok := err.(*model.DataError)
	if !ok {
		t.Fatalf("Expected *model.DataError, got %T", err)
	}
	if de.Series != 1 {
		t.Errorf("Expected series 1 in error, got %d", de.Series)
	}
}
