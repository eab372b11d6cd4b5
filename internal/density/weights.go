package density

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/banshee-data/trajectory.report/internal/trajectory"
)

// DegenerateWeight is assigned to every point when the density field has no
// range to normalise over.
const DegenerateWeight = 0.5

// Colormap maps a weight in [0, 1] to a colour.
type Colormap func(float64) color.RGBA

type options struct {
	maxPoints int
}

// Option configures Weights.
type Option func(*options)

// WithMaxPoints rejects clouds larger than n points. Zero disables the limit.
func WithMaxPoints(n int) Option {
	return func(o *options) { o.maxPoints = n }
}

// Weights fits a KDE over the pooled cloud, evaluates it at every point and
// normalises the result to [0, 1] by the global minimum and maximum. A cloud
// whose density is constant (for instance all points identical) yields
// DegenerateWeight everywhere.
func Weights(points []Point, opts ...Option) ([]float64, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: empty point cloud", trajectory.ErrInvalidInput)
	}
	if o.maxPoints > 0 && len(points) > o.maxPoints {
		return nil, fmt.Errorf("%w: point cloud has %d points, limit is %d", trajectory.ErrInvalidInput, len(points), o.maxPoints)
	}
	if len(points) == 1 {
		return []float64{DegenerateWeight}, nil
	}

	k, err := Fit(points)
	if err != nil {
		return nil, err
	}
	w, err := Normalize(k.Evaluate(points))
	if err != nil && !errors.Is(err, trajectory.ErrDegenerateDensity) {
		return nil, err
	}
	return w, nil
}

// Normalize rescales ds to [0, 1] by (d - min) / (max - min). When max equals
// min it returns DegenerateWeight for every entry together with
// ErrDegenerateDensity.
func Normalize(ds []float64) ([]float64, error) {
	out := make([]float64, len(ds))
	if len(ds) == 0 {
		return out, nil
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, d := range ds {
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	if !(hi > lo) {
		for i := range out {
			out[i] = DegenerateWeight
		}
		return out, fmt.Errorf("%w: density range [%g, %g]", trajectory.ErrDegenerateDensity, lo, hi)
	}
	span := hi - lo
	for i, d := range ds {
		out[i] = (d - lo) / span
	}
	return out, nil
}

// Cloud pools rows of paired coordinates into one point slice, row-major.
func Cloud(xs, ys [][]float64) ([]Point, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%w: %d x rows, %d y rows", trajectory.ErrInvalidInput, len(xs), len(ys))
	}
	var pts []Point
	for i := range xs {
		if len(xs[i]) != len(ys[i]) {
			return nil, fmt.Errorf("%w: row %d has %d x and %d y values", trajectory.ErrInvalidInput, i, len(xs[i]), len(ys[i]))
		}
		for j := range xs[i] {
			pts = append(pts, Point{X: xs[i][j], Y: ys[i][j]})
		}
	}
	return pts, nil
}

// Reshape splits a flat slice into rows of cols values.
func Reshape(flat []float64, cols int) [][]float64 {
	if cols <= 0 {
		return nil
	}
	rows := make([][]float64, 0, len(flat)/cols)
	for i := 0; i+cols <= len(flat); i += cols {
		rows = append(rows, flat[i:i+cols:i+cols])
	}
	return rows
}

// LineAlpha is the stroke opacity for n overlapping trajectories, 1/sqrt(n).
func LineAlpha(n int) float64 {
	if n <= 1 {
		return 1
	}
	return 1 / math.Sqrt(float64(n))
}

// SegmentColors colours segment j of row i (from point j to j+1) by the
// weight of point j.
func SegmentColors(weights [][]float64, cmap Colormap) [][]color.RGBA {
	out := make([][]color.RGBA, len(weights))
	for i, row := range weights {
		if len(row) < 2 {
			continue
		}
		out[i] = make([]color.RGBA, len(row)-1)
		for j := range out[i] {
			out[i][j] = cmap(row[j])
		}
	}
	return out
}
