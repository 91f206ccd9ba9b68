package schema

import "errors"

// Sentinel errors shared by the analysis steps. A step that returns one of them
// is skipped for the repository without failing it.
var (
	// ErrInsufficientData means there are too few points for the computation.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrConstantSeries means a series has zero variance.
	ErrConstantSeries = errors.New("constant series")

	// ErrNoData means a series is empty.
	ErrNoData = errors.New("no data")
)

// IsSkippable reports whether err only means that a step had nothing to work with.
func IsSkippable(err error) bool {
	return errors.Is(err, ErrInsufficientData) || errors.Is(err, ErrConstantSeries) || errors.Is(err, ErrNoData)
}
