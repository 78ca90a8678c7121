// Package segmentation converts scalar potential-field values into discrete
// rock-unit identifiers. The conversion is a sum of smooth sigmoid steps
// anchored at the field values observed at the series' own surface points,
// a differentiable stand-in for hard nearest-threshold classification.
package segmentation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/CGR-Aachen/gempy/pkg/model"
)

// edgeSentinel pins the outermost doubled-id slots so that field values
// outside the padded range collapse to a recognizable marker instead of an
// extrapolated unit id.
const edgeSentinel = -1.0

// Segment maps every field value to a numeric unit label.
//
// surfaceValues are the field values at the series' surfaces in series
// order (descending field value); unitIDs carries one identifier per
// surface plus the unit below the deepest surface. slopes holds the
// per-point slope constant: the fixed formation slope everywhere, or the
// steep fault slope inside a fault's zone of influence. isFault switches to
// the fault-block variant, which populates the block from the first unit
// id only and pins its second slot to the sentinel.
//
// The function is pure: identical inputs produce identical labels.
func Segment(field, surfaceValues, unitIDs, slopes []float64, isFault bool) ([]float64, error) {
	k := len(surfaceValues)
	if k == 0 {
		return nil, &model.DataError{Series: -1, Msg: "segmentation needs at least one surface field value"}
	}
	if len(unitIDs) != k+1 {
		return nil, &model.DataError{Series: -1, Msg: fmt.Sprintf("expected %d unit ids for %d surfaces, got %d", k+1, k, len(unitIDs))}
	}
	if len(slopes) != len(field) {
		return nil, &model.DataError{Series: -1, Msg: "slope vector must match the field length"}
	}
	for i := 1; i < k; i++ {
		if surfaceValues[i] == surfaceValues[i-1] {
			return nil, &model.DataError{Series: -1, Msg: fmt.Sprintf("surfaces %d and %d share the field value %g", i-1, i, surfaceValues[i])}
		}
	}

	maxZ := floats.Max(field)
	minZ := floats.Min(field)
	span := maxZ - minZ
	if span == 0 {
		return nil, &model.DataError{Series: -1, Msg: "scalar field is constant, nothing to segment"}
	}
	pad := span * 0.01

	// Thresholds bracket the surface values with padded field extremes.
	thresholds := make([]float64, 0, k+2)
	thresholds = append(thresholds, maxZ+pad)
	thresholds = append(thresholds, surfaceValues...)
	thresholds = append(thresholds, minZ-pad)

	ids, drift := sigmoidSlots(unitIDs, isFault)

	labels := make([]float64, len(field))
	for i := 0; i <= k; i++ {
		a := thresholds[i]
		b := thresholds[i+1]
		idLow := ids[2*i]
		idHigh := ids[2*i+1]
		dr := drift[2*i]

		for p, z := range field {
			l := slopes[p] / span
			labels[p] += -idLow/(1+math.Exp(-l*(z-a))) - idHigh/(1+math.Exp(l*(z-b))) + dr
		}
	}
	return labels, nil
}

// sigmoidSlots doubles the unit ids into per-threshold-pair (low, high)
// slots and derives the additive drift per pair. The outermost slots are
// pinned to the sentinel: formations pin the first and last slot, fault
// blocks pin the second and last.
func sigmoidSlots(unitIDs []float64, isFault bool) (ids, drift []float64) {
	n := len(unitIDs)
	ids = make([]float64, 2*n)
	for t, v := range unitIDs {
		ids[2*t] = v
		ids[2*t+1] = v
	}
	if isFault {
		ids[1] = edgeSentinel
	} else {
		ids[0] = edgeSentinel
	}
	ids[2*n-1] = edgeSentinel

	drift = make([]float64, 2*n)
	copy(drift, ids)
	drift[0] = ids[1]
	return ids, drift
}
