// Package resample aligns irregularly sampled trajectories onto evenly spaced
// sample grids.
//
// Each trajectory is resampled on its own [start, end] interval, so stacks
// built from several flights are aligned by grid index (fraction of flight
// completed) rather than by absolute time.
package resample

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"

	"github.com/banshee-data/trajectory.report/internal/trajectory"
)

// Series is one trajectory resampled onto n evenly spaced times.
type Series struct {
	ID     string
	Time   []float64
	Values map[trajectory.Quantity][]float64
}

// Duration returns the span of the series' time grid.
func (s Series) Duration() float64 {
	return s.Time[len(s.Time)-1] - s.Time[0]
}

// Resample interpolates the named quantities of t onto n evenly spaced times
// covering [t.Start(), t.End()]. Circular quantities are reduced modulo 360
// after interpolation, so a wrap between two raw samples (350 -> 10) sweeps
// through intermediate values such as 180 rather than crossing 0.
func Resample(t trajectory.Trajectory, quantities []trajectory.Quantity, n int) (Series, error) {
	return resample(t, quantities, n, true)
}

// ResampleRaw is Resample without the modulo-360 reduction. Route plots use
// it for longitude so tracks crossing the antimeridian stay continuous in the
// source's own longitude convention.
func ResampleRaw(t trajectory.Trajectory, quantities []trajectory.Quantity, n int) (Series, error) {
	return resample(t, quantities, n, false)
}

func resample(t trajectory.Trajectory, quantities []trajectory.Quantity, n int, wrap bool) (Series, error) {
	if n < 2 {
		return Series{}, fmt.Errorf("%w: need at least 2 grid points, got %d", trajectory.ErrInvalidInput, n)
	}
	if err := t.Validate(); err != nil {
		return Series{}, err
	}

	grid := Grid(t.Start(), t.End(), n)
	out := Series{ID: t.ID, Time: grid, Values: make(map[trajectory.Quantity][]float64, len(quantities))}
	for _, q := range quantities {
		col, err := t.Column(q)
		if err != nil {
			return Series{}, err
		}
		vals, err := Interp(grid, t.Time, col)
		if err != nil {
			return Series{}, fmt.Errorf("%s: %w", q, err)
		}
		if wrap && q.Circular() {
			for i, v := range vals {
				vals[i] = Mod360(v)
			}
		}
		out.Values[q] = vals
	}
	return out, nil
}

// Grid returns n evenly spaced values from start to end inclusive.
func Grid(start, end float64, n int) []float64 {
	g := floats.Span(make([]float64, n), start, end)
	g[n-1] = end
	return g
}

// Interp linearly interpolates the samples (xp, fp) at each x. xp must be
// strictly increasing. Points outside [xp[0], xp[len-1]] take the nearest
// endpoint value. NaN samples propagate to the interpolated values that
// depend on them.
func Interp(x, xp, fp []float64) ([]float64, error) {
	if len(xp) != len(fp) {
		return nil, fmt.Errorf("%w: %d sample times, %d values", trajectory.ErrInvalidInput, len(xp), len(fp))
	}
	var pl interp.PiecewiseLinear
	if err := pl.Fit(xp, fp); err != nil {
		return nil, fmt.Errorf("%w: %v", trajectory.ErrInvalidInput, err)
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = pl.Predict(v)
	}
	return out, nil
}

// Mod360 reduces v into [0, 360). NaN and infinities become NaN.
func Mod360(v float64) float64 {
	m := math.Mod(v, 360)
	if m < 0 {
		m += 360
	}
	if m >= 360 {
		m = 0
	}
	return m
}
