package resample

import (
	"fmt"
	"math"

	"github.com/banshee-data/trajectory.report/internal/trajectory"
)

// Stack is one quantity of several trajectories resampled onto a shared grid
// of Points columns. Columns where any trajectory produced a non-finite value
// have been removed; Columns lists the original indices that survived.
type Stack struct {
	Quantity  trajectory.Quantity
	IDs       []string
	Values    [][]float64
	Durations []float64
	Columns   []int
	Points    int
}

// Rows returns the number of trajectories in the stack.
func (s Stack) Rows() int { return len(s.Values) }

// Width returns the number of surviving columns.
func (s Stack) Width() int { return len(s.Columns) }

// Axis returns the shared time axis running from 0 to total seconds over the
// full grid, restricted to the surviving columns.
func (s Stack) Axis(total float64) []float64 {
	full := Grid(0, total, s.Points)
	out := make([]float64, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = full[c]
	}
	return out
}

// ResampleStack resamples q from every trajectory onto n grid points and
// stacks the results by column index. Circularity comes from the quantity.
func ResampleStack(ts []trajectory.Trajectory, q trajectory.Quantity, n int) (Stack, error) {
	return ResampleStackMode(ts, q, n, q.Circular())
}

// ResampleStackMode is ResampleStack with explicit control over the
// modulo-360 reduction.
func ResampleStackMode(ts []trajectory.Trajectory, q trajectory.Quantity, n int, circular bool) (Stack, error) {
	if len(ts) == 0 {
		return Stack{}, fmt.Errorf("%w: no trajectories to stack", trajectory.ErrInvalidInput)
	}

	s := Stack{
		Quantity:  q,
		IDs:       make([]string, len(ts)),
		Durations: make([]float64, len(ts)),
		Points:    n,
	}
	rows := make([][]float64, len(ts))
	for i, t := range ts {
		series, err := resample(t, []trajectory.Quantity{q}, n, false)
		if err != nil {
			return Stack{}, fmt.Errorf("trajectory %d: %w", i, err)
		}
		vals := series.Values[q]
		if circular {
			for j, v := range vals {
				vals[j] = Mod360(v)
			}
		}
		rows[i] = vals
		s.IDs[i] = t.ID
		s.Durations[i] = series.Duration()
	}

	s.Columns = FiniteColumns(rows)
	s.Values = SelectColumns(rows, s.Columns)
	return s, nil
}

// FiniteColumns returns the indices of the columns in which every row holds a
// finite value.
func FiniteColumns(rows [][]float64) []int {
	if len(rows) == 0 {
		return nil
	}
	var cols []int
	for j := range rows[0] {
		ok := true
		for _, r := range rows {
			if !finite(r[j]) {
				ok = false
				break
			}
		}
		if ok {
			cols = append(cols, j)
		}
	}
	return cols
}

// SelectColumns copies the given columns out of rows.
func SelectColumns(rows [][]float64, cols []int) [][]float64 {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = make([]float64, len(cols))
		for k, c := range cols {
			out[i][k] = r[c]
		}
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
