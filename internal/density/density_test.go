package density

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/trajectory.report/internal/trajectory"
)

var refPoints = []Point{{0, 0}, {1, 0}, {0, 2}, {1, 1}, {2, 3}}

// Reference values computed with the scipy gaussian_kde formulation
// (sample covariance, Scott's factor).
func TestKDEMatchesReference(t *testing.T) {
	k, err := Fit(refPoints)
	require.NoError(t, err)
	assert.False(t, k.Diagonal)

	want := []float64{0.08952757308419951, 0.09916194328183388, 0.06409457019215542, 0.1120130642383267, 0.06516366929147614}
	assert.InDeltaSlice(t, want, k.Evaluate(refPoints), 1e-12)
	assert.InDelta(t, 0.11430083477652264, k.At(Point{0.5, 0.5}), 1e-12)
}

func TestWeightsNormalised(t *testing.T) {
	w, err := Weights(refPoints)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.53075547131215, 0.7318129208294759, 0, 1, 0.022310782519388127}, w, 1e-9)
}

func TestWeightsDenseClusterOutweighsOutlier(t *testing.T) {
	pts := []Point{{0, 0}, {0.1, 0}, {0, 0.1}, {0.1, 0.1}, {0.05, 0.05}, {5, 5}}
	w, err := Weights(pts)
	require.NoError(t, err)
	require.Len(t, w, len(pts))

	for i, v := range w {
		assert.GreaterOrEqual(t, v, 0.0, "i=%d", i)
		assert.LessOrEqual(t, v, 1.0, "i=%d", i)
	}
	assert.Equal(t, 0.0, w[5], "outlier should carry the minimum weight")
	assert.Equal(t, 1.0, w[4], "cluster centre should carry the maximum weight")
}

func TestWeightsIdenticalPointsFallBack(t *testing.T) {
	pts := []Point{{3, 7}, {3, 7}, {3, 7}, {3, 7}}
	w, err := Weights(pts)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.5, 0.5, 0.5}, w)

	k, err := Fit(pts)
	require.NoError(t, err)
	assert.True(t, k.Diagonal)
}

func TestWeightsAxisAlignedCloud(t *testing.T) {
	// Constant y: the covariance is singular and the estimate falls back to
	// independent axes; weights still vary along x.
	pts := []Point{{0, 1}, {1, 1}, {2, 1}, {10, 1}}
	w, err := Weights(pts)
	require.NoError(t, err)
	assert.Equal(t, 0.0, w[3])
	for _, v := range w {
		assert.False(t, math.IsNaN(v))
	}
}

func TestWeightsErrors(t *testing.T) {
	_, err := Weights(nil)
	assert.ErrorIs(t, err, trajectory.ErrInvalidInput)

	_, err = Weights(refPoints, WithMaxPoints(4))
	assert.ErrorIs(t, err, trajectory.ErrInvalidInput)

	_, err = Weights([]Point{{0, 0}, {math.NaN(), 1}})
	assert.ErrorIs(t, err, trajectory.ErrInvalidInput)

	w, err := Weights([]Point{{1, 1}})
	require.NoError(t, err)
	assert.Equal(t, []float64{DegenerateWeight}, w)
}

func TestNormalize(t *testing.T) {
	w, err := Normalize([]float64{2, 4, 3})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0.5}, w)

	w, err = Normalize([]float64{7, 7})
	assert.ErrorIs(t, err, trajectory.ErrDegenerateDensity)
	assert.Equal(t, []float64{0.5, 0.5}, w)
}

func TestCloudAndReshape(t *testing.T) {
	pts, err := Cloud([][]float64{{0, 1}, {2, 3}}, [][]float64{{10, 11}, {12, 13}})
	require.NoError(t, err)
	assert.Equal(t, []Point{{0, 10}, {1, 11}, {2, 12}, {3, 13}}, pts)

	_, err = Cloud([][]float64{{0}}, nil)
	assert.ErrorIs(t, err, trajectory.ErrInvalidInput)

	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, Reshape([]float64{1, 2, 3, 4}, 2))
}

func TestLineAlpha(t *testing.T) {
	assert.Equal(t, 1.0, LineAlpha(1))
	assert.Equal(t, 0.5, LineAlpha(4))
	assert.InDelta(t, 0.1, LineAlpha(100), 1e-12)
}

func TestSegmentColors(t *testing.T) {
	gray := func(v float64) color.RGBA {
		c := uint8(v * 255)
		return color.RGBA{R: c, G: c, B: c, A: 255}
	}
	got := SegmentColors([][]float64{{0, 1, 0.5}, {1}}, gray)
	require.Len(t, got, 2)
	assert.Equal(t, []color.RGBA{{0, 0, 0, 255}, {255, 255, 255, 255}}, got[0])
	assert.Nil(t, got[1])
}
