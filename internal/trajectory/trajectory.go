// Package trajectory defines the flight time-series model shared by the
// resampling, aggregation and rendering packages.
package trajectory

import (
	"fmt"
	"math"
	"sort"
)

// Trajectory is one flight's state vectors in columnar form. Time is sorted
// strictly ascending and every column has one value per time.
type Trajectory struct {
	ID      string
	Time    []float64
	Columns map[string][]float64
}

// Sample is a row view of a trajectory.
type Sample struct {
	Time       float64
	Quantities map[Quantity]float64
}

// New builds a trajectory from a time column and named quantity columns and
// validates it.
func New(id string, times []float64, columns map[string][]float64) (Trajectory, error) {
	t := Trajectory{ID: id, Time: times, Columns: columns}
	if t.Columns == nil {
		t.Columns = make(map[string][]float64)
	}
	if err := t.Validate(); err != nil {
		return Trajectory{}, err
	}
	return t, nil
}

// Len returns the number of samples.
func (t Trajectory) Len() int {
	return len(t.Time)
}

// Start returns the first sample time.
func (t Trajectory) Start() float64 { return t.Time[0] }

// End returns the last sample time.
func (t Trajectory) End() float64 { return t.Time[len(t.Time)-1] }

// Duration returns End - Start.
func (t Trajectory) Duration() float64 { return t.End() - t.Start() }

// Has reports whether the quantity column is present.
func (t Trajectory) Has(q Quantity) bool {
	_, ok := t.Columns[string(q)]
	return ok
}

// Column returns the values for q, or ErrInvalidInput if the column is absent.
func (t Trajectory) Column(q Quantity) ([]float64, error) {
	c, ok := t.Columns[string(q)]
	if !ok {
		return nil, fmt.Errorf("%w: quantity %q not found in trajectory %q", ErrInvalidInput, q, t.ID)
	}
	return c, nil
}

// Quantities returns the names of the known quantities present, in
// KnownQuantities order.
func (t Trajectory) Quantities() []Quantity {
	var out []Quantity
	for _, q := range KnownQuantities {
		if t.Has(q) {
			out = append(out, q)
		}
	}
	return out
}

// Sample returns row i.
func (t Trajectory) Sample(i int) Sample {
	s := Sample{Time: t.Time[i], Quantities: make(map[Quantity]float64, len(t.Columns))}
	for name, col := range t.Columns {
		s.Quantities[Quantity(name)] = col[i]
	}
	return s
}

// Validate checks the trajectory invariants: at least two samples, finite
// strictly increasing times, and columns of matching length.
func (t Trajectory) Validate() error {
	if len(t.Time) < 2 {
		return fmt.Errorf("%w: trajectory %q has %d samples, need at least 2", ErrInvalidInput, t.ID, len(t.Time))
	}
	for i, v := range t.Time {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: trajectory %q has non-finite time at sample %d", ErrInvalidInput, t.ID, i)
		}
		if i > 0 && v <= t.Time[i-1] {
			return fmt.Errorf("%w: trajectory %q time not strictly increasing at sample %d", ErrInvalidInput, t.ID, i)
		}
	}
	for name, col := range t.Columns {
		if len(col) != len(t.Time) {
			return fmt.Errorf("%w: trajectory %q column %q has %d values, want %d",
				ErrInvalidInput, t.ID, name, len(col), len(t.Time))
		}
	}
	return nil
}

// SortByTime returns a copy of t with rows ordered by time and rows sharing a
// timestamp collapsed to the first occurrence. Decoders use it before
// validation since raw state-vector exports are not guaranteed to be ordered.
func SortByTime(t Trajectory) Trajectory {
	idx := make([]int, len(t.Time))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return t.Time[idx[a]] < t.Time[idx[b]] })

	keep := idx[:0:0]
	for _, i := range idx {
		if len(keep) > 0 && t.Time[keep[len(keep)-1]] == t.Time[i] {
			continue
		}
		keep = append(keep, i)
	}

	out := Trajectory{ID: t.ID, Time: make([]float64, len(keep)), Columns: make(map[string][]float64, len(t.Columns))}
	for j, i := range keep {
		out.Time[j] = t.Time[i]
	}
	for name, col := range t.Columns {
		c := make([]float64, len(keep))
		for j, i := range keep {
			c[j] = col[i]
		}
		out.Columns[name] = c
	}
	return out
}
