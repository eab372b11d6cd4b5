package render

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/trajectory.report/internal/plotting"
)

// pixelsPerInch converts figure sizes to page sizes.
const pixelsPerInch = 90

// renderHTML draws fig as one go-echarts line chart on value axes. Bands and
// areas are drawn as outlines, and each flight of a bundle takes the colour
// of its middle segment; the PNG renderer is the full-fidelity output.
func renderHTML(w io.Writer, fig plotting.Figure) error {
	width, height := fig.Width, fig.Height
	if width <= 0 || height <= 0 {
		width, height = defaultWidth, defaultHeight
	}

	chart := charts.NewLine()
	chart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: fig.Title,
			Width:     fmt.Sprintf("%dpx", int(width*pixelsPerInch)),
			Height:    fmt.Sprintf("%dpx", int(height*pixelsPerInch)),
		}),
		charts.WithTitleOpts(opts.Title{Title: fig.Title, Subtitle: subtitle(fig)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(fig.Legend), Right: "10"}),
		charts.WithXAxisOpts(xAxis(fig.Axes)),
		charts.WithYAxisOpts(yAxis(fig.Axes)),
	)

	for _, b := range fig.Bands {
		name := b.Label
		c := rgba(b.Color, b.Alpha)
		chart.AddSeries(name, lineData(b.X, b.Upper), seriesStyle(c)...)
		chart.AddSeries(name, lineData(b.X, b.Lower), seriesStyle(c)...)
	}
	for _, a := range fig.Areas {
		c := rgba(a.Color, a.Alpha)
		for _, r := range a.Polygon {
			xs := make([]float64, len(r))
			ys := make([]float64, len(r))
			for i, pt := range r {
				xs[i], ys[i] = pt[0], pt[1]
			}
			chart.AddSeries(a.Label, lineData(xs, ys), seriesStyle(c)...)
		}
	}
	for _, s := range fig.Segments {
		if len(s.Colors) == 0 {
			continue
		}
		c := rgba(s.Colors[len(s.Colors)/2], s.Alpha)
		chart.AddSeries(s.ID, lineData(s.X, s.Y), seriesStyle(c)...)
	}
	for _, l := range fig.Lines {
		chart.AddSeries(l.Label, lineData(l.X, l.Y), seriesStyle(rgba(l.Color, l.Alpha))...)
	}

	if err := chart.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func subtitle(fig plotting.Figure) string {
	s := fmt.Sprintf("flights=%d", len(fig.Flights))
	if len(fig.Dropped) > 0 {
		s += fmt.Sprintf(" dropped=%d", len(fig.Dropped))
	}
	return s
}

func xAxis(a plotting.Axes) opts.XAxis {
	ax := opts.XAxis{Type: "value", Name: a.XLabel, NameLocation: "middle", NameGap: 25}
	if a.Max[0] > a.Min[0] {
		ax.Min, ax.Max = a.Min[0], a.Max[0]
	}
	return ax
}

func yAxis(a plotting.Axes) opts.YAxis {
	ax := opts.YAxis{Type: "value", Name: a.YLabel, NameLocation: "middle", NameGap: 40}
	if a.Max[1] > a.Min[1] {
		ax.Min, ax.Max = a.Min[1], a.Max[1]
	}
	return ax
}

// lineData pairs xs and ys as [x, y] values. Non-finite points become gaps.
func lineData(xs, ys []float64) []opts.LineData {
	out := make([]opts.LineData, len(xs))
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) || math.IsInf(xs[i], 0) || math.IsInf(ys[i], 0) {
			out[i] = opts.LineData{Value: "-"}
			continue
		}
		out[i] = opts.LineData{Value: []interface{}{xs[i], ys[i]}}
	}
	return out
}

func seriesStyle(c string) []charts.SeriesOpts {
	return []charts.SeriesOpts{
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: c}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: c}),
	}
}

func rgba(c color.RGBA, alpha float64) string {
	return fmt.Sprintf("rgba(%d,%d,%d,%.3f)", c.R, c.G, c.B, math.Max(0, math.Min(1, alpha)))
}
