// Package aggregate reduces a stack of aligned trajectories (rows) to a
// per-column expectation path and dispersion bands.
package aggregate

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/trajectory.report/internal/trajectory"
)

// Result holds one expectation value per column and, for each level in
// descending order, one dispersion value per column.
type Result struct {
	Expectation []float64
	Levels      []float64
	Dispersions [][]float64
}

// Lower returns expectation - dispersion for band i.
func (r Result) Lower(i int) []float64 {
	out := make([]float64, len(r.Expectation))
	for j, e := range r.Expectation {
		out[j] = e - r.Dispersions[i][j]
	}
	return out
}

// Upper returns expectation + dispersion for band i.
func (r Result) Upper(i int) []float64 {
	out := make([]float64, len(r.Expectation))
	for j, e := range r.Expectation {
		out[j] = e + r.Dispersions[i][j]
	}
	return out
}

type options struct {
	weights []float64
}

// Option configures Aggregate.
type Option func(*options)

// WithWeights sets per-row weights for the Average measure. Other measures
// ignore them. It is for library callers that hold per-flight weights; the
// configuration has no weights key, so plots built from configuration use
// uniform weights and Average then equals Mean, as an unweighted average does.
func WithWeights(w []float64) Option {
	return func(o *options) { o.weights = w }
}

// Aggregate computes the expectation path and one dispersion band per level
// over values (rows × columns). Standard deviation is the population form
// (divide by N), matching the plots this pipeline feeds.
func Aggregate(values [][]float64, exp ExpectationMeasure, dev DeviationMeasure, levels []float64, opts ...Option) (Result, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if !exp.Valid() {
		return Result{}, fmt.Errorf("%w: %v", trajectory.ErrUnsupportedMeasure, exp)
	}
	if !dev.Valid() {
		return Result{}, fmt.Errorf("%w: %v", trajectory.ErrUnsupportedMeasure, dev)
	}
	cols, err := columns(values)
	if err != nil {
		return Result{}, err
	}
	if o.weights != nil {
		if err := checkWeights(o.weights, len(values)); err != nil {
			return Result{}, err
		}
	}
	sorted, err := SortLevels(dev, levels)
	if err != nil {
		return Result{}, err
	}

	r := Result{
		Expectation: make([]float64, len(cols)),
		Levels:      sorted,
		Dispersions: make([][]float64, len(sorted)),
	}
	for i := range r.Dispersions {
		r.Dispersions[i] = make([]float64, len(cols))
	}

	for j, col := range cols {
		switch exp {
		case Mean:
			r.Expectation[j] = mean(col, nil)
		case Median:
			r.Expectation[j] = Percentile(col, 50)
		case Average:
			r.Expectation[j] = mean(col, o.weights)
		}

		switch dev {
		case Std:
			sd := stat.PopStdDev(col, nil)
			for i, l := range sorted {
				r.Dispersions[i][j] = l * sd
			}
		case Pct:
			for i, l := range sorted {
				r.Dispersions[i][j] = (Percentile(col, 50+l/2) - Percentile(col, 50-l/2)) / 2
			}
		}
	}
	return r, nil
}

// SortLevels validates dispersion levels and returns them sorted descending,
// widest band first.
func SortLevels(dev DeviationMeasure, levels []float64) ([]float64, error) {
	out := make([]float64, len(levels))
	for i, l := range levels {
		if math.IsNaN(l) || math.IsInf(l, 0) || l < 0 {
			return nil, fmt.Errorf("%w: deviation level %v", trajectory.ErrInvalidInput, l)
		}
		if dev == Pct && l > 100 {
			return nil, fmt.Errorf("%w: percentile level %v exceeds 100", trajectory.ErrInvalidInput, l)
		}
		out[i] = l
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(out)))
	return out, nil
}

// Percentile returns the p-th percentile (0..100) of xs using linear
// interpolation between closest ranks, the same definition numpy uses by
// default. xs is not modified.
func Percentile(xs []float64, p float64) float64 {
	s := make([]float64, len(xs))
	copy(s, xs)
	sort.Float64s(s)

	h := float64(len(s)-1) * p / 100
	lo := math.Floor(h)
	hi := math.Ceil(h)
	vlo := s[int(lo)]
	if lo == hi {
		return vlo
	}
	return vlo + (h-lo)*(s[int(hi)]-vlo)
}

func mean(xs, weights []float64) float64 {
	return stat.Mean(xs, weights)
}

// columns transposes the rows into per-column slices.
func columns(values [][]float64) ([][]float64, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: empty stack", trajectory.ErrInvalidInput)
	}
	width := len(values[0])
	if width == 0 {
		return nil, fmt.Errorf("%w: stack has no columns", trajectory.ErrInvalidInput)
	}
	for i, row := range values {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", trajectory.ErrInvalidInput, i, len(row), width)
		}
	}
	cols := make([][]float64, width)
	for j := range cols {
		cols[j] = make([]float64, len(values))
		for i, row := range values {
			cols[j][i] = row[j]
		}
	}
	return cols, nil
}

func checkWeights(w []float64, rows int) error {
	if len(w) != rows {
		return fmt.Errorf("%w: %d weights for %d rows", trajectory.ErrInvalidInput, len(w), rows)
	}
	var sum float64
	for _, v := range w {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: invalid weight %v", trajectory.ErrInvalidInput, v)
		}
		sum += v
	}
	if sum == 0 {
		return fmt.Errorf("%w: weights sum to zero", trajectory.ErrInvalidInput)
	}
	return nil
}
