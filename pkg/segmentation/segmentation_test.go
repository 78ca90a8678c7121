package segmentation

import (
	"math"
	"testing"

	"github.com/CGR-Aachen/gempy/pkg/model"
)

func uniformSlopes(n int, v float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return s
}

// TestSegmentTwoUnits verifies that a single surface splits the field into
// the unit above and the unit below, with labels converging to the unit ids
// away from the boundary.
func TestSegmentTwoUnits(t *testing.T) {
	field := []float64{1.0, 0.9, 0.8, 0.55, 0.45, 0.2, 0.1, 0.0}
	surfaceValues := []float64{0.5}
	unitIDs := []float64{2, 3}

	labels, err := Segment(field, surfaceValues, unitIDs, uniformSlopes(len(field), 5000), false)
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}

	for i, z := range field {
		var want float64
		if z > 0.5 {
			want = 2
		} else {
			want = 3
		}
		if math.Abs(labels[i]-want) > 1e-3 {
			t.Errorf("point %d (field %f): label %f, expected %f", i, z, labels[i], want)
		}
	}
}

// TestSegmentThreeUnits verifies the stacked-sigmoid sum for two surfaces.
func TestSegmentThreeUnits(t *testing.T) {
	field := []float64{1.0, 0.8, 0.5, 0.3, 0.0}
	surfaceValues := []float64{0.7, 0.4}
	unitIDs := []float64{2, 3, 4}

	labels, err := Segment(field, surfaceValues, unitIDs, uniformSlopes(len(field), 5000), false)
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}

	want := []float64{2, 2, 3, 4, 4}
	for i := range want {
		if math.Abs(labels[i]-want[i]) > 1e-3 {
			t.Errorf("point %d: label %f, expected %f", i, labels[i], want[i])
		}
	}
}

// TestSegmentFaultBlock verifies the fault variant: the side with the higher
// field value collapses to the pinned edge marker, the other side keeps the
// unit below.
func TestSegmentFaultBlock(t *testing.T) {
	field := []float64{1.0, 0.8, 0.2, 0.0}
	surfaceValues := []float64{0.5}
	unitIDs := []float64{1, 1}

	labels, err := Segment(field, surfaceValues, unitIDs, uniformSlopes(len(field), 5000), true)
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}

	for i, z := range field {
		var want float64
		if z > 0.5 {
			want = -1
		} else {
			want = 1
		}
		if math.Abs(labels[i]-want) > 1e-3 {
			t.Errorf("point %d (field %f): label %f, expected %f", i, z, labels[i], want)
		}
	}
}

// TestSegmentDeterministic verifies purity: identical inputs give identical
// labels.
func TestSegmentDeterministic(t *testing.T) {
	field := []float64{0.9, 0.6, 0.3, 0.1}
	surfaceValues := []float64{0.5}
	unitIDs := []float64{2, 3}
	slopes := uniformSlopes(len(field), 50)

	a, err := Segment(field, surfaceValues, unitIDs, slopes, false)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Segment(field, surfaceValues, unitIDs, slopes, false)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("point %d: %g then %g for identical inputs", i, a[i], b[i])
		}
	}
}

// TestSegmentEqualSurfaceValues verifies that coincident iso-values are
// rejected as degenerate.
func TestSegmentEqualSurfaceValues(t *testing.T) {
	field := []float64{1, 0.5, 0}
	_, err := Segment(field, []float64{0.5, 0.5}, []float64{1, 2, 3}, uniformSlopes(3, 5000), false)
	if err == nil {
		t.Fatal("Expected error for equal consecutive surface values")
	}
	if _, ok := err.(*model.DataError); !ok {
		t.Errorf("Expected *model.DataError, got %T", err)
	}
}

// TestSegmentConstantField verifies that a flat field is rejected.
func TestSegmentConstantField(t *testing.T) {
	field := []float64{0.5, 0.5, 0.5}
	if _, err := Segment(field, []float64{0.5}, []float64{1, 2}, uniformSlopes(3, 5000), false); err == nil {
		t.Fatal("Expected error for a constant field")
	}
}

// TestSegmentInputValidation verifies the length checks on unit ids and
// slopes.
func TestSegmentInputValidation(t *testing.T) {
	field := []float64{1, 0}

	if _, err := Segment(field, nil, []float64{1}, uniformSlopes(2, 5000), false); err == nil {
		t.Error("Expected error for empty surface values")
	}
	if _, err := Segment(field, []float64{0.5}, []float64{1}, uniformSlopes(2, 5000), false); err == nil {
		t.Error("Expected error for short unit id list")
	}
	if _, err := Segment(field, []float64{0.5}, []float64{1, 2}, uniformSlopes(1, 5000), false); err == nil {
		t.Error("Expected error for mismatched slope vector")
	}
}
