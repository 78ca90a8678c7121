package model

import "fmt"

// DataError reports malformed per-series input: a surface with fewer than
// two points, mismatched count tables, coincident points, or a fault
// relation table of the wrong shape. It is detected before matrix assembly
// and is terminal for the solve.
type DataError struct {
	// Series is the index of the offending series, or -1 when the error
	// concerns the model as a whole.
	Series int

	// Msg describes the problem.
	Msg string
}

func (e *DataError) Error() string {
	if e.Series < 0 {
		return fmt.Sprintf("data error: %s", e.Msg)
	}
	return fmt.Sprintf("data error in series %d: %s", e.Series, e.Msg)
}

// NumericalError reports a singular or ill-conditioned cokriging system at
// solve time. The scheduler never downgrades it to a best-effort result
// because later series may depend on the failed one through fault drift.
type NumericalError struct {
	// Series is the index of the series whose system failed.
	Series int

	// Err is the underlying solver error.
	Err error
}

func (e *NumericalError) Error() string {
	return fmt.Sprintf("numerical error in series %d: %v", e.Series, e.Err)
}

// Unwrap exposes the underlying solver error.
func (e *NumericalError) Unwrap() error { return e.Err }

// ConfigurationError reports invalid interpolation constants: a drift
// degree outside {0, 1, 2}, a non-positive kernel range, or similar.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Msg)
}
