// Package plotting assembles plain-data figure models from trajectories:
// time-series plots of one quantity and map plots of routes, each as a
// single flight, a density-coloured bundle, or an expectation path with
// dispersion bands. Renderers draw these models without further analysis.
package plotting

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/paulmach/orb"

	"github.com/banshee-data/trajectory.report/internal/trajectory"
)

// Target is what a figure plots against.
type Target string

const (
	// QuantityTarget plots one quantity against elapsed time.
	QuantityTarget Target = "quantity"
	// RouteTarget plots latitude against longitude.
	RouteTarget Target = "route"
)

// Kind selects how several flights are combined.
type Kind string

const (
	Single Kind = "single"
	Multi  Kind = "multi"
	Shaded Kind = "shaded"
)

// ParseTarget validates a target name.
func ParseTarget(s string) (Target, error) {
	switch t := Target(strings.ToLower(s)); t {
	case QuantityTarget, RouteTarget:
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown plot target %q", trajectory.ErrInvalidInput, s)
}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(s)); k {
	case Single, Multi, Shaded:
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown plot kind %q", trajectory.ErrInvalidInput, s)
}

// Line is a polyline in one colour.
type Line struct {
	Label string
	X, Y  []float64
	Color color.RGBA
	Alpha float64
	Width float64
}

// SegmentedLine is a polyline whose segment i (point i to i+1) has its own
// colour, used for density-coloured flight bundles.
type SegmentedLine struct {
	ID     string
	X, Y   []float64
	Colors []color.RGBA
	Alpha  float64
	Width  float64
}

// Band is a filled interval between Lower and Upper over X.
type Band struct {
	Label        string
	X            []float64
	Lower, Upper []float64
	Color        color.RGBA
	Alpha        float64
}

// Area is a filled polygon. Only the first component of a region carries a
// label.
type Area struct {
	Label   string
	Polygon orb.Polygon
	Color   color.RGBA
	Alpha   float64
}

// Axes holds labels and data limits.
type Axes struct {
	XLabel, YLabel string
	Min, Max       orb.Point
}

// Fonts holds text sizes in points.
type Fonts struct {
	Title, Axis, Legend, Tick float64
}

// Figure is everything a renderer needs to draw one plot.
type Figure struct {
	Name   string
	Title  string
	Target Target
	Kind   Kind
	// Width and Height are in inches. Route figures are square.
	Width, Height float64
	Axes          Axes
	Fonts         Fonts
	Legend        bool

	Bands    []Band
	Areas    []Area
	Segments []SegmentedLine
	Lines    []Line

	// Flights lists the trajectories drawn; Dropped those excluded because
	// of non-finite positions.
	Flights []string
	Dropped []string
}

// Labeled returns the labels of bands, areas and lines in drawing order,
// skipping empty ones.
func (f Figure) Labeled() []string {
	var out []string
	for _, b := range f.Bands {
		if b.Label != "" {
			out = append(out, b.Label)
		}
	}
	for _, a := range f.Areas {
		if a.Label != "" {
			out = append(out, a.Label)
		}
	}
	for _, l := range f.Lines {
		if l.Label != "" {
			out = append(out, l.Label)
		}
	}
	return out
}
