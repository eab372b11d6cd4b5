// Package region builds planar confidence regions around an expectation path
// as the union of per-point uncertainty ellipses.
package region

import (
	"github.com/paulmach/orb"
)

// Region is the union of a level's ellipses: either one connected polygon or
// several disjoint ones. The interface is sealed; switch on Single and
// Multiple.
type Region interface {
	// Polygons returns the components, largest first for Multiple.
	Polygons() []orb.Polygon
	// Geometry returns the region as an orb.Polygon or orb.MultiPolygon.
	Geometry() orb.Geometry
	region()
}

// Single is a connected region.
type Single struct {
	Polygon orb.Polygon
}

// Multiple is a region made of disjoint components. It may be empty when no
// ellipse had a positive extent.
type Multiple struct {
	MultiPolygon orb.MultiPolygon
}

func (s Single) Polygons() []orb.Polygon { return []orb.Polygon{s.Polygon} }
func (s Single) Geometry() orb.Geometry   { return s.Polygon }
func (Single) region()                    {}

func (m Multiple) Polygons() []orb.Polygon { return m.MultiPolygon }
func (m Multiple) Geometry() orb.Geometry   { return m.MultiPolygon }
func (Multiple) region()                    {}

// Labeled pairs a polygon with its legend label. Label is empty for every
// component after the first so a legend lists each level once.
type Labeled struct {
	Polygon orb.Polygon
	Label   string
}

// LegendEntries flattens r into drawable polygons, attaching label to the
// first component only.
func LegendEntries(r Region, label string) []Labeled {
	polys := r.Polygons()
	out := make([]Labeled, len(polys))
	for i, p := range polys {
		out[i] = Labeled{Polygon: p}
		if i == 0 {
			out[i].Label = label
		}
	}
	return out
}
