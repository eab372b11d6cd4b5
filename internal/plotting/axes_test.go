package plotting

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestRangeOf(t *testing.T) {
	lo, hi := rangeOf([]float64{3, math.NaN(), -1}, []float64{math.Inf(1), 7})
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 7.0, hi)

	lo, hi = rangeOf([]float64{math.NaN()})
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 0.0, hi)
}

func TestPadded(t *testing.T) {
	tests := []struct {
		lo, hi         float64
		wantLo, wantHi float64
	}{
		{0, 10, -1, 11},
		{5, 5, 4, 6},
		{-20, -10, -21, -9},
	}
	for _, tt := range tests {
		lo, hi := padded(tt.lo, tt.hi)
		assert.InDelta(t, tt.wantLo, lo, 1e-12)
		assert.InDelta(t, tt.wantHi, hi, 1e-12)
	}
}

func TestBoundOfSkipsNonFinite(t *testing.T) {
	b, ok := boundOf([][]float64{{1, math.NaN(), 3}}, [][]float64{{2, 5, 4}})
	assert.True(t, ok)
	assert.Equal(t, orb.Bound{Min: orb.Point{1, 2}, Max: orb.Point{3, 4}}, b)

	_, ok = boundOf([][]float64{{math.NaN()}}, [][]float64{{1}})
	assert.False(t, ok)
}

func TestSquareExtent(t *testing.T) {
	sq := squareExtent(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{4, 2}})
	assert.Equal(t, orb.Bound{Min: orb.Point{0, -1}, Max: orb.Point{4, 3}}, sq)

	pt := squareExtent(orb.Point{10, 20}.Bound())
	assert.InDelta(t, 0.01, pt.Max[0]-pt.Min[0], 1e-12)
	assert.InDelta(t, 0.01, pt.Max[1]-pt.Min[1], 1e-12)
}
