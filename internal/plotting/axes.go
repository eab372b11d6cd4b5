package plotting

import (
	"math"

	"github.com/paulmach/orb"
)

// padFraction widens multi-flight axes beyond the data range on both sides.
const padFraction = 0.1

// rangeOf returns the min and max of the finite values in rows.
func rangeOf(rows ...[]float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, r := range rows {
		for _, v := range r {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}

// padded widens [lo, hi] by padFraction of its span on each side. An empty
// span is widened by one unit.
func padded(lo, hi float64) (float64, float64) {
	span := hi - lo
	if span == 0 {
		return lo - 1, hi + 1
	}
	return lo - span*padFraction, hi + span*padFraction
}

// boundOf collects every finite (x, y) pair into a bound.
func boundOf(xs, ys [][]float64) (orb.Bound, bool) {
	var (
		b  orb.Bound
		ok bool
	)
	for i := range xs {
		for j := range xs[i] {
			p := orb.Point{xs[i][j], ys[i][j]}
			if !finitePoint(p) {
				continue
			}
			if !ok {
				b, ok = p.Bound(), true
				continue
			}
			b = b.Extend(p)
		}
	}
	return b, ok
}

// squareExtent returns the square bound centred on b whose side is b's
// longer side, so map plots keep equal degree scaling on both axes.
func squareExtent(b orb.Bound) orb.Bound {
	side := math.Max(b.Max[0]-b.Min[0], b.Max[1]-b.Min[1])
	if side == 0 {
		side = 0.01
	}
	c := b.Center()
	h := side / 2
	return orb.Bound{Min: orb.Point{c[0] - h, c[1] - h}, Max: orb.Point{c[0] + h, c[1] + h}}
}

func finitePoint(p orb.Point) bool {
	return !math.IsNaN(p[0]) && !math.IsInf(p[0], 0) && !math.IsNaN(p[1]) && !math.IsInf(p[1], 0)
}
