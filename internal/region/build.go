package region

import (
	"fmt"
	"math"
	"sort"

	polyclip "github.com/ctessum/polyclip-go"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/banshee-data/trajectory.report/internal/trajectory"
)

// Path is an expectation path in plot coordinates, e.g. (lon, lat).
type Path struct {
	X, Y []float64
}

// Len returns the number of path positions.
func (p Path) Len() int { return len(p.X) }

// Builder builds regions with a fixed ellipse resolution.
type Builder struct {
	// Segments is the number of vertices per ellipse.
	Segments int
}

// Build is Builder{}.Build.
func Build(xs, ys, sx, sy []float64) (Region, error) {
	return Builder{}.Build(xs, ys, sx, sy)
}

// BuildConfidenceRegions builds one region per dispersion level around path.
// sigmaX[l] and sigmaY[l] hold the per-position semi-axes of level l.
func BuildConfidenceRegions(path Path, sigmaX, sigmaY [][]float64) ([]Region, error) {
	return Builder{}.BuildConfidenceRegions(path, sigmaX, sigmaY)
}

// BuildConfidenceRegions builds one region per dispersion level around path.
func (b Builder) BuildConfidenceRegions(path Path, sigmaX, sigmaY [][]float64) ([]Region, error) {
	if len(sigmaX) != len(sigmaY) {
		return nil, fmt.Errorf("%w: %d x levels, %d y levels", trajectory.ErrInvalidInput, len(sigmaX), len(sigmaY))
	}
	out := make([]Region, len(sigmaX))
	for l := range sigmaX {
		r, err := b.Build(path.X, path.Y, sigmaX[l], sigmaY[l])
		if err != nil {
			return nil, fmt.Errorf("level %d: %w", l, err)
		}
		out[l] = r
	}
	return out, nil
}

// Build unions the ellipses centred on (xs[i], ys[i]) with semi-axes
// (sx[i], sy[i]). Ellipses without a positive finite extent on both axes are
// skipped.
func (b Builder) Build(xs, ys, sx, sy []float64) (Region, error) {
	n := len(xs)
	if len(ys) != n || len(sx) != n || len(sy) != n {
		return nil, fmt.Errorf("%w: mismatched lengths x=%d y=%d sx=%d sy=%d",
			trajectory.ErrInvalidInput, len(xs), len(ys), len(sx), len(sy))
	}
	segs := b.Segments
	if segs < 3 {
		segs = DefaultSegments
	}

	var rings []orb.Ring
	for i := 0; i < n; i++ {
		if !positive(sx[i]) || !positive(sy[i]) || !finite(xs[i]) || !finite(ys[i]) {
			continue
		}
		rings = append(rings, Ellipse(xs[i], ys[i], sx[i], sy[i], segs))
	}

	var polys []orb.Polygon
	for _, comp := range components(rings) {
		polys = append(polys, union(comp)...)
	}
	sort.SliceStable(polys, func(i, j int) bool {
		return math.Abs(planar.Area(polys[i])) > math.Abs(planar.Area(polys[j]))
	})

	if len(polys) == 1 {
		return Single{Polygon: polys[0]}, nil
	}
	return Multiple{MultiPolygon: orb.MultiPolygon(polys)}, nil
}

// components groups rings into connected sets of overlapping ellipses.
func components(rings []orb.Ring) [][]orb.Ring {
	parent := make([]int, len(rings))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}

	bounds := make([]orb.Bound, len(rings))
	byMinX := make([]int, len(rings))
	for i, r := range rings {
		bounds[i] = r.Bound()
		byMinX[i] = i
	}
	// Sweep along x: once a ring starts right of ring i's bound, no later
	// ring in the order can touch it.
	sort.Slice(byMinX, func(a, b int) bool { return bounds[byMinX[a]].Min[0] < bounds[byMinX[b]].Min[0] })
	for a, i := range byMinX {
		for _, j := range byMinX[a+1:] {
			if bounds[j].Min[0] > bounds[i].Max[0] {
				break
			}
			if find(i) == find(j) || !bounds[i].Intersects(bounds[j]) {
				continue
			}
			if convexOverlap(rings[i], rings[j]) {
				parent[find(j)] = find(i)
			}
		}
	}

	groups := make(map[int][]orb.Ring)
	var order []int
	for i, r := range rings {
		root := find(i)
		if _, ok := groups[root]; !ok {
			order = append(order, root)
		}
		groups[root] = append(groups[root], r)
	}
	out := make([][]orb.Ring, 0, len(order))
	for _, root := range order {
		out = append(out, groups[root])
	}
	return out
}

// union merges one connected group of rings and converts the resulting
// contours back into polygons with holes.
func union(rings []orb.Ring) []orb.Polygon {
	if len(rings) == 1 {
		return []orb.Polygon{{orient(rings[0], orb.CCW)}}
	}

	acc := cascade(rings)

	contours := make([]orb.Ring, 0, len(acc))
	for _, c := range acc {
		if len(c) < 3 {
			continue
		}
		contours = append(contours, toRing(c))
	}
	return assemble(contours)
}

// cascade unions rings as a balanced tree: neighbours are merged pairwise,
// then pairs of results, so each round handles every vertex once and no
// operand grows ahead of the others. Rings arrive in path order, so
// neighbours mostly overlap and intermediate results stay compact.
func cascade(rings []orb.Ring) polyclip.Polygon {
	level := make([]polyclip.Polygon, len(rings))
	for i, r := range rings {
		level[i] = polyclip.Polygon{toContour(r)}
	}
	for len(level) > 1 {
		next := make([]polyclip.Polygon, 0, (len(level)+1)/2)
		for i := 0; i+1 < len(level); i += 2 {
			next = append(next, level[i].Construct(polyclip.UNION, level[i+1]))
		}
		if len(level)%2 == 1 {
			next = append(next, level[len(level)-1])
		}
		level = next
	}
	return level[0]
}

// assemble classifies contours by nesting depth: even depth contours are
// exteriors, odd depth contours are holes of the smallest exterior that
// contains them.
func assemble(contours []orb.Ring) []orb.Polygon {
	areas := make([]float64, len(contours))
	for i, c := range contours {
		areas[i] = math.Abs(planar.Area(c))
	}

	depth := make([]int, len(contours))
	for i, c := range contours {
		for j, o := range contours {
			if i != j && areas[j] > areas[i] && planar.RingContains(o, c[0]) {
				depth[i]++
			}
		}
	}

	var polys []orb.Polygon
	index := make(map[int]int)
	for i, c := range contours {
		if depth[i]%2 == 0 {
			index[i] = len(polys)
			polys = append(polys, orb.Polygon{orient(c, orb.CCW)})
		}
	}
	for i, c := range contours {
		if depth[i]%2 == 0 {
			continue
		}
		owner := -1
		for j := range contours {
			if depth[j]%2 != 0 || areas[j] <= areas[i] || !planar.RingContains(contours[j], c[0]) {
				continue
			}
			if owner < 0 || areas[j] < areas[owner] {
				owner = j
			}
		}
		if owner >= 0 {
			k := index[owner]
			polys[k] = append(polys[k], orient(c, orb.CW))
		}
	}
	return polys
}

func toContour(r orb.Ring) polyclip.Contour {
	// polyclip contours are implicitly closed.
	c := make(polyclip.Contour, 0, len(r))
	for i, p := range r {
		if i == len(r)-1 && p == r[0] {
			break
		}
		c = append(c, polyclip.Point{X: p[0], Y: p[1]})
	}
	return c
}

func toRing(c polyclip.Contour) orb.Ring {
	r := make(orb.Ring, 0, len(c)+1)
	for _, p := range c {
		r = append(r, orb.Point{p.X, p.Y})
	}
	if r[0] != r[len(r)-1] {
		r = append(r, r[0])
	}
	return r
}

func orient(r orb.Ring, o orb.Orientation) orb.Ring {
	if r.Orientation() != o {
		r = append(orb.Ring(nil), r...)
		r.Reverse()
	}
	return r
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
