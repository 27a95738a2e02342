package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors
	ErrMissingColumn = errors.New("required column missing")
	ErrEmptyCell     = errors.New("empty cell")
	ErrNotNumeric    = errors.New("cell is not numeric")
	ErrNoRows        = errors.New("table has no data rows")

	// Computation errors
	ErrZeroImpressions = errors.New("impressions must be positive")

	// Precondition errors
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrZeroRange        = errors.New("sample has zero range")
	ErrTooManySamples   = errors.New("sample too large for test")
)

// Error constructors with context
func NewCellError(sheet string, row int, column string, err error) error {
	return fmt.Errorf("%w: sheet %q row %d column %q", err, sheet, row, column)
}

func NewSampleSizeError(test string, got, want int) error {
	return fmt.Errorf("%w: %s needs at least %d values, got %d", ErrInsufficientData, test, want, got)
}

// Error checking helpers
func IsInputError(err error) bool {
	return errors.Is(err, ErrMissingColumn) ||
		errors.Is(err, ErrEmptyCell) ||
		errors.Is(err, ErrNotNumeric) ||
		errors.Is(err, ErrNoRows)
}

func IsPreconditionError(err error) bool {
	return errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrZeroRange) ||
		errors.Is(err, ErrTooManySamples)
}
