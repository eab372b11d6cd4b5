package aggregate

import (
	"fmt"
	"strings"

	"github.com/banshee-data/trajectory.report/internal/trajectory"
)

// ExpectationMeasure selects the per-column central tendency.
type ExpectationMeasure int

// The zero value is deliberately invalid so an unset measure is caught.
const (
	Mean ExpectationMeasure = iota + 1
	Median
	Average
)

// DeviationMeasure selects the per-column dispersion.
type DeviationMeasure int

const (
	// Std is level × population standard deviation.
	Std DeviationMeasure = iota + 1
	// Pct is the half-width of the central level-percent interval.
	Pct
)

// ParseExpectationMeasure maps a configuration string to a measure.
func ParseExpectationMeasure(s string) (ExpectationMeasure, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mean":
		return Mean, nil
	case "median":
		return Median, nil
	case "average":
		return Average, nil
	}
	return 0, fmt.Errorf("%w: expectation measure not recognized: %q", trajectory.ErrUnsupportedMeasure, s)
}

// ParseDeviationMeasure maps a configuration string to a measure.
func ParseDeviationMeasure(s string) (DeviationMeasure, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "std":
		return Std, nil
	case "pct":
		return Pct, nil
	}
	return 0, fmt.Errorf("%w: deviation measure not recognized: %q", trajectory.ErrUnsupportedMeasure, s)
}

func (m ExpectationMeasure) String() string {
	switch m {
	case Mean:
		return "mean"
	case Median:
		return "median"
	case Average:
		return "average"
	}
	return fmt.Sprintf("ExpectationMeasure(%d)", int(m))
}

// Valid reports whether m is one of the declared measures.
func (m ExpectationMeasure) Valid() bool {
	return m >= Mean && m <= Average
}

// PathLabel is the legend label of the expectation path, e.g. "Mean Path".
func (m ExpectationMeasure) PathLabel() string {
	switch m {
	case Mean:
		return "Mean Path"
	case Median:
		return "Median Path"
	case Average:
		return "Average Path"
	}
	return "Path"
}

// Reduce applies the measure to a flat sample, e.g. flight durations when
// sizing the shared time axis of a shaded plot.
func (m ExpectationMeasure) Reduce(xs []float64) (float64, error) {
	if len(xs) == 0 {
		return 0, fmt.Errorf("%w: cannot reduce empty sample", trajectory.ErrInvalidInput)
	}
	switch m {
	case Mean, Average:
		return mean(xs, nil), nil
	case Median:
		return Percentile(xs, 50), nil
	}
	return 0, fmt.Errorf("%w: %v", trajectory.ErrUnsupportedMeasure, m)
}

func (m DeviationMeasure) String() string {
	switch m {
	case Std:
		return "std"
	case Pct:
		return "pct"
	}
	return fmt.Sprintf("DeviationMeasure(%d)", int(m))
}

// Valid reports whether m is one of the declared measures.
func (m DeviationMeasure) Valid() bool {
	return m == Std || m == Pct
}

// IntervalLabel is the legend label of one dispersion band.
func (m DeviationMeasure) IntervalLabel(level float64) string {
	switch m {
	case Std:
		return fmt.Sprintf("%.1fσ interval", level)
	case Pct:
		return fmt.Sprintf("%.1f%% interval", level)
	}
	return fmt.Sprintf("%.1f interval", level)
}

// MarshalText lets measures round-trip through JSON configuration.
func (m ExpectationMeasure) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %v", trajectory.ErrUnsupportedMeasure, m)
	}
	return []byte(m.String()), nil
}

// UnmarshalText parses a measure name.
func (m *ExpectationMeasure) UnmarshalText(b []byte) error {
	v, err := ParseExpectationMeasure(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// MarshalText lets measures round-trip through JSON configuration.
func (m DeviationMeasure) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %v", trajectory.ErrUnsupportedMeasure, m)
	}
	return []byte(m.String()), nil
}

// UnmarshalText parses a measure name.
func (m *DeviationMeasure) UnmarshalText(b []byte) error {
	v, err := ParseDeviationMeasure(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
