// Package density weights the points of a pooled trajectory cloud by a
// Gaussian kernel density estimate so that denser regions can be drawn with
// more visual weight.
//
// Evaluating the estimate at every point of the cloud is O(n²) in the number
// of pooled points; callers bound n with WithMaxPoints.
package density

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/trajectory.report/internal/trajectory"
)

// Point is one sample of the pooled cloud, e.g. (time, value) for quantity
// plots or (lon, lat) for route plots.
type Point struct {
	X, Y float64
}

// KDE is a bivariate Gaussian kernel density estimate with Scott's rule
// bandwidth.
type KDE struct {
	points []Point
	// inverse kernel covariance, symmetric: [a b; b c]
	a, b, c float64
	norm    float64
	// Diagonal is true when the data covariance was singular and the
	// estimate fell back to independent axes.
	Diagonal bool
}

// Fit builds the estimate over points. At least two points are required.
func Fit(points []Point) (*KDE, error) {
	n := len(points)
	if n < 2 {
		return nil, fmt.Errorf("%w: kernel density needs at least 2 points, got %d", trajectory.ErrInvalidInput, n)
	}
	for i, p := range points {
		if !finite(p.X) || !finite(p.Y) {
			return nil, fmt.Errorf("%w: non-finite point %d", trajectory.ErrInvalidInput, i)
		}
	}

	data := mat.NewDense(n, 2, nil)
	for i, p := range points {
		data.Set(i, 0, p.X)
		data.Set(i, 1, p.Y)
	}
	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, data, nil)

	factor := ScottFactor(n, 2)
	cov.ScaleSym(factor*factor, &cov)

	k := &KDE{points: points}
	var chol mat.Cholesky
	if ok := chol.Factorize(&cov); ok {
		var inv mat.SymDense
		if err := chol.InverseTo(&inv); err == nil {
			k.a, k.b, k.c = inv.At(0, 0), inv.At(0, 1), inv.At(1, 1)
			k.norm = 1 / (float64(n) * math.Sqrt(chol.Det()) * 2 * math.Pi)
			return k, nil
		}
	}

	// Singular covariance (identical or axis-aligned points): treat the axes
	// as independent. A zero-variance axis never contributes to the exponent
	// since every point shares its coordinate, so any positive stand-in works.
	vx, vy := cov.At(0, 0), cov.At(1, 1)
	if !(vx > 0) {
		vx = 1
	}
	if !(vy > 0) {
		vy = 1
	}
	k.a, k.b, k.c = 1/vx, 0, 1/vy
	k.norm = 1 / (float64(n) * math.Sqrt(vx*vy) * 2 * math.Pi)
	k.Diagonal = true
	return k, nil
}

// ScottFactor is Scott's bandwidth factor n^(-1/(d+4)).
func ScottFactor(n, d int) float64 {
	return math.Pow(float64(n), -1/float64(d+4))
}

// At evaluates the density at p.
func (k *KDE) At(p Point) float64 {
	var sum float64
	for _, q := range k.points {
		dx, dy := p.X-q.X, p.Y-q.Y
		m := k.a*dx*dx + 2*k.b*dx*dy + k.c*dy*dy
		sum += math.Exp(-0.5 * m)
	}
	return sum * k.norm
}

// Evaluate returns the density at every point of ps.
func (k *KDE) Evaluate(ps []Point) []float64 {
	out := make([]float64, len(ps))
	for i, p := range ps {
		out[i] = k.At(p)
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
