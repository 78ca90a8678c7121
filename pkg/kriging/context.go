// Package kriging assembles, solves and evaluates the universal cokriging
// system of one series: the block covariance matrix over orientation and
// interface data, the dual-kriging weight solve, and the chunked
// superposition of the weight contributions over arbitrary 3-D point sets.
package kriging

import (
	"gonum.org/v1/gonum/mat"

	"github.com/CGR-Aachen/gempy/pkg/kernel"
	"github.com/CGR-Aachen/gempy/pkg/model"
)

// SeriesContext bundles the immutable per-series inputs of the cokriging
// system. It replaces shared mutable state: every component receives the
// same value and nothing is reassigned between stages.
type SeriesContext struct {
	// Kernel holds the covariance constants shared by all blocks.
	Kernel kernel.Params

	// Dips are the orientation positions, one row per orientation.
	Dips *mat.Dense

	// DipAngles, Azimuth and Polarity parameterize the unit gradient
	// vector at each orientation.
	DipAngles []float64
	Azimuth   []float64
	Polarity  []float64

	// Ref and Rest are the aligned reference/rest interface points of
	// the series (see geometry.SplitRestRef).
	Ref  *mat.Dense
	Rest *mat.Dense

	// DriftDegree is the universal drift degree (0, 1 or 2).
	DriftDegree int

	// FaultDrift holds one row per truncating fault: that fault's block
	// values at every evaluation point. Nil when no fault affects the
	// series.
	FaultDrift *mat.Dense

	// FaultDriftAtRest and FaultDriftAtRef are the fault block values at
	// this series' rest and reference points, aligned with Rest/Ref rows.
	FaultDriftAtRest *mat.Dense
	FaultDriftAtRef  *mat.Dense
}

// NumOrientations returns the number of orientations in the series.
func (c *SeriesContext) NumOrientations() int {
	if c.Dips == nil {
		return 0
	}
	m, _ := c.Dips.Dims()
	return m
}

// NumGradientRows returns the number of gradient rows (one per orientation
// per spatial direction).
func (c *SeriesContext) NumGradientRows() int { return 3 * c.NumOrientations() }

// NumInterfaceRows returns the number of interface-constraint rows.
func (c *SeriesContext) NumInterfaceRows() int {
	if c.Rest == nil {
		return 0
	}
	r, _ := c.Rest.Dims()
	return r
}

// NumDriftRows returns the number of universal-drift rows for the series'
// drift degree: none for degree 0, the three linear terms for degree 1, and
// the full nine polynomial terms for degree 2.
func (c *SeriesContext) NumDriftRows() (int, error) {
	switch c.DriftDegree {
	case 0:
		return 0, nil
	case 1:
		return 3, nil
	case 2:
		return 9, nil
	default:
		return 0, &model.ConfigurationError{Msg: "drift degree must be 0, 1 or 2"}
	}
}

// NumFaultRows returns the number of incoming fault-drift rows.
func (c *SeriesContext) NumFaultRows() int {
	if c.FaultDrift == nil {
		return 0
	}
	f, _ := c.FaultDrift.Dims()
	return f
}

// SystemSize returns the full size of the cokriging system.
func (c *SeriesContext) SystemSize() (int, error) {
	u, err := c.NumDriftRows()
	if err != nil {
		return 0, err
	}
	return c.NumGradientRows() + c.NumInterfaceRows() + u + c.NumFaultRows(), nil
}
