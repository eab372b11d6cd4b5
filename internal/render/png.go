package render

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/trajectory.report/internal/plotting"
	"github.com/banshee-data/trajectory.report/internal/render/colormap"
)

// Fallback page size when a figure carries none, in inches.
const (
	defaultWidth  = 10
	defaultHeight = 6
)

func renderPNG(w io.Writer, fig plotting.Figure) error {
	p, err := buildPlot(fig)
	if err != nil {
		return err
	}
	width, height := fig.Width, fig.Height
	if width <= 0 || height <= 0 {
		width, height = defaultWidth, defaultHeight
	}
	wt, err := p.WriterTo(vg.Length(width)*vg.Inch, vg.Length(height)*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("failed to create png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write png: %w", err)
	}
	return nil
}

// buildPlot draws bands and areas first, then bundles, then lines, so the
// expectation path stays on top.
func buildPlot(fig plotting.Figure) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fig.Title
	p.X.Label.Text = fig.Axes.XLabel
	p.Y.Label.Text = fig.Axes.YLabel
	applyFonts(p, fig.Fonts)

	for _, b := range fig.Bands {
		poly, err := bandPolygon(b)
		if err != nil {
			return nil, fmt.Errorf("band %q: %w", b.Label, err)
		}
		if poly == nil {
			continue
		}
		p.Add(poly)
		if b.Label != "" && fig.Legend {
			p.Legend.Add(b.Label, poly)
		}
	}

	for _, a := range fig.Areas {
		rings := make([]plotter.XYer, 0, len(a.Polygon))
		for _, r := range a.Polygon {
			xys := make(plotter.XYs, len(r))
			for i, pt := range r {
				xys[i] = plotter.XY{X: pt[0], Y: pt[1]}
			}
			rings = append(rings, xys)
		}
		if len(rings) == 0 {
			continue
		}
		poly, err := plotter.NewPolygon(rings...)
		if err != nil {
			return nil, fmt.Errorf("area %q: %w", a.Label, err)
		}
		poly.Color = colormap.WithAlpha(a.Color, a.Alpha)
		poly.LineStyle.Width = 0
		p.Add(poly)
		if a.Label != "" && fig.Legend {
			p.Legend.Add(a.Label, poly)
		}
	}

	for _, s := range fig.Segments {
		for j, c := range s.Colors {
			if j+1 >= len(s.X) || !finite(s.X[j], s.Y[j], s.X[j+1], s.Y[j+1]) {
				continue
			}
			l, err := plotter.NewLine(plotter.XYs{{X: s.X[j], Y: s.Y[j]}, {X: s.X[j+1], Y: s.Y[j+1]}})
			if err != nil {
				return nil, fmt.Errorf("flight %s: %w", s.ID, err)
			}
			l.Color = colormap.WithAlpha(c, s.Alpha)
			l.Width = vg.Points(s.Width)
			p.Add(l)
		}
	}

	for _, line := range fig.Lines {
		runs := finiteRuns(line.X, line.Y)
		for i, run := range runs {
			l, err := plotter.NewLine(run)
			if err != nil {
				return nil, fmt.Errorf("line %q: %w", line.Label, err)
			}
			l.Color = colormap.WithAlpha(line.Color, line.Alpha)
			l.Width = vg.Points(line.Width)
			p.Add(l)
			if i == 0 && line.Label != "" && fig.Legend {
				p.Legend.Add(line.Label, l)
			}
		}
	}

	if fig.Axes.Max[0] > fig.Axes.Min[0] {
		p.X.Min, p.X.Max = fig.Axes.Min[0], fig.Axes.Max[0]
	}
	if fig.Axes.Max[1] > fig.Axes.Min[1] {
		p.Y.Min, p.Y.Max = fig.Axes.Min[1], fig.Axes.Max[1]
	}
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

func applyFonts(p *plot.Plot, f plotting.Fonts) {
	if f.Title > 0 {
		p.Title.TextStyle.Font.Size = vg.Points(f.Title)
	}
	if f.Axis > 0 {
		p.X.Label.TextStyle.Font.Size = vg.Points(f.Axis)
		p.Y.Label.TextStyle.Font.Size = vg.Points(f.Axis)
	}
	if f.Tick > 0 {
		p.X.Tick.Label.Font.Size = vg.Points(f.Tick)
		p.Y.Tick.Label.Font.Size = vg.Points(f.Tick)
	}
	if f.Legend > 0 {
		p.Legend.TextStyle.Font.Size = vg.Points(f.Legend)
	}
}

// bandPolygon outlines the band along Upper and back along Lower, skipping
// positions where either bound is not finite. It returns nil for bands with
// fewer than two drawable positions.
func bandPolygon(b plotting.Band) (*plotter.Polygon, error) {
	var upper, lower plotter.XYs
	for i, x := range b.X {
		if !finite(x, b.Lower[i], b.Upper[i]) {
			continue
		}
		upper = append(upper, plotter.XY{X: x, Y: b.Upper[i]})
		lower = append(lower, plotter.XY{X: x, Y: b.Lower[i]})
	}
	if len(upper) < 2 {
		return nil, nil
	}
	ring := make(plotter.XYs, 0, 2*len(upper))
	ring = append(ring, upper...)
	for i := len(lower) - 1; i >= 0; i-- {
		ring = append(ring, lower[i])
	}
	poly, err := plotter.NewPolygon(ring)
	if err != nil {
		return nil, err
	}
	poly.Color = colormap.WithAlpha(b.Color, b.Alpha)
	poly.LineStyle.Width = 0
	return poly, nil
}

// finiteRuns splits a polyline at non-finite points; plotter.NewLine rejects
// NaN and Inf.
func finiteRuns(xs, ys []float64) []plotter.XYs {
	var (
		out []plotter.XYs
		cur plotter.XYs
	)
	for i := range xs {
		if !finite(xs[i], ys[i]) {
			if len(cur) > 1 {
				out = append(out, cur)
			}
			cur = nil
			continue
		}
		cur = append(cur, plotter.XY{X: xs[i], Y: ys[i]})
	}
	if len(cur) > 1 {
		out = append(out, cur)
	}
	return out
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
