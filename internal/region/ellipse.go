package region

import (
	"math"

	"github.com/paulmach/orb"
)

// DefaultSegments approximates a circle with 16 segments per quadrant.
const DefaultSegments = 64

// Ellipse returns a closed ring approximating the ellipse centred on (cx, cy)
// with semi-axes sx and sy: a unit disk scaled about its own centre.
func Ellipse(cx, cy, sx, sy float64, segments int) orb.Ring {
	if segments < 3 {
		segments = DefaultSegments
	}
	r := make(orb.Ring, 0, segments+1)
	for i := 0; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		r = append(r, orb.Point{cx + sx*math.Cos(a), cy + sy*math.Sin(a)})
	}
	return append(r, r[0])
}

// convexOverlap reports whether two convex closed rings share interior,
// using the separating axis test over both rings' edge normals. Rings that
// only touch are treated as disjoint.
func convexOverlap(a, b orb.Ring) bool {
	return !separated(a, b) && !separated(b, a)
}

func separated(a, b orb.Ring) bool {
	for i := 0; i < len(a)-1; i++ {
		nx := -(a[i+1][1] - a[i][1])
		ny := a[i+1][0] - a[i][0]
		if nx == 0 && ny == 0 {
			continue
		}
		amin, amax := project(a, nx, ny)
		bmin, bmax := project(b, nx, ny)
		if amax <= bmin || bmax <= amin {
			return true
		}
	}
	return false
}

func project(r orb.Ring, nx, ny float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, p := range r {
		d := p[0]*nx + p[1]*ny
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return lo, hi
}
