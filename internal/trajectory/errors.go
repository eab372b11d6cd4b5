package trajectory

import "errors"

// Error taxonomy shared by the aggregation pipeline. Callers wrap these with
// context via fmt.Errorf("...: %w", err) and test with errors.Is.
var (
	// ErrInvalidInput covers missing quantity columns, trajectories that are
	// too short or unordered, and empty input sets.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedMeasure is returned for unrecognised expectation or
	// deviation measures.
	ErrUnsupportedMeasure = errors.New("unsupported measure")

	// ErrDegenerateDensity reports a density field whose global range is zero.
	// It is recoverable: the field falls back to a uniform value.
	ErrDegenerateDensity = errors.New("degenerate density")
)
