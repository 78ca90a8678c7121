package model

import (
	"errors"
	"fmt"
	"testing"
)

// TestDataErrorMessage verifies the series-aware formatting.
func TestDataErrorMessage(t *testing.T) {
	withSeries := &DataError{Series: 2, Msg: "bad points"}
	if got := withSeries.Error(); got != "data error in series 2: bad points" {
		t.Errorf("Unexpected message: %q", got)
	}

	modelWide := &DataError{Series: -1, Msg: "bad grid"}
	if got := modelWide.Error(); got != "data error: bad grid" {
		t.Errorf("Unexpected message: %q", got)
	}
}

// TestNumericalErrorUnwrap verifies that the underlying solver error stays
// reachable through errors.Is.
func TestNumericalErrorUnwrap(t *testing.T) {
	cause := errors.New("matrix singular")
	err := &NumericalError{Series: 1, Err: cause}

	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to find the underlying cause")
	}
	wrapped := fmt.Errorf("solve: %w", err)
	var ne *NumericalError
	if !errors.As(wrapped, &ne) {
		t.Fatal("Expected errors.As to recover *NumericalError")
	}
	if ne.Series != 1 {
		t.Errorf("Expected series 1, got %d", ne.Series)
	}
}
