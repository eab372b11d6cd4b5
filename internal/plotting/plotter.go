package plotting

import (
	"fmt"
	"image/color"

	"github.com/paulmach/orb"

	"github.com/banshee-data/trajectory.report/internal/aggregate"
	"github.com/banshee-data/trajectory.report/internal/config"
	"github.com/banshee-data/trajectory.report/internal/density"
	"github.com/banshee-data/trajectory.report/internal/region"
	"github.com/banshee-data/trajectory.report/internal/render/colormap"
	"github.com/banshee-data/trajectory.report/internal/resample"
	"github.com/banshee-data/trajectory.report/internal/trajectory"
	"github.com/banshee-data/trajectory.report/internal/units"
)

// Styling shared by every figure.
const (
	lineWidth = 2.0
	fillAlpha = 0.5
)

// Request describes one plot.
type Request struct {
	Target   Target
	Kind     Kind
	Quantity trajectory.Quantity // QuantityTarget only
	Title    string              // empty selects the default title
}

// Plotter builds figures according to a plotting configuration.
type Plotter struct {
	cfg  *config.PlotConfig
	cmap density.Colormap
}

// New returns a Plotter for cfg. A nil cfg uses the defaults.
func New(cfg *config.PlotConfig) (*Plotter, error) {
	if cfg == nil {
		cfg = config.DefaultPlotConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cmap, err := colormap.Lookup(cfg.GetCmap())
	if err != nil {
		return nil, err
	}
	return &Plotter{cfg: cfg, cmap: cmap}, nil
}

// Colormap returns the configured colormap.
func (p *Plotter) Colormap() density.Colormap { return p.cmap }

// Plot dispatches req to the matching builder.
func (p *Plotter) Plot(req Request, ts []trajectory.Trajectory) (Figure, error) {
	if len(ts) == 0 {
		return Figure{}, fmt.Errorf("%w: no flights to plot", trajectory.ErrInvalidInput)
	}
	if req.Kind == Multi {
		if limit := p.cfg.GetMaxDensityFlights(); limit > 0 && len(ts) > limit {
			return Figure{}, fmt.Errorf("%w: %d flights exceed the limit of %d for %s plots (max_cloud_points / point_precision)",
				trajectory.ErrInvalidInput, len(ts), limit, req.Kind)
		}
	}
	var (
		f   Figure
		err error
	)
	switch req.Target {
	case QuantityTarget:
		if !req.Quantity.Known() {
			return Figure{}, fmt.Errorf("%w: unknown quantity %q", trajectory.ErrInvalidInput, req.Quantity)
		}
		switch req.Kind {
		case Single:
			if len(ts) != 1 {
				return Figure{}, fmt.Errorf("%w: single plots take one flight, got %d", trajectory.ErrInvalidInput, len(ts))
			}
			f, err = p.Quantity(ts[0], req.Quantity)
		case Multi:
			f, err = p.QuantityMulti(ts, req.Quantity)
		case Shaded:
			f, err = p.QuantityShaded(ts, req.Quantity)
		default:
			return Figure{}, fmt.Errorf("%w: unknown plot kind %q", trajectory.ErrInvalidInput, req.Kind)
		}
	case RouteTarget:
		switch req.Kind {
		case Single:
			if len(ts) != 1 {
				return Figure{}, fmt.Errorf("%w: single plots take one flight, got %d", trajectory.ErrInvalidInput, len(ts))
			}
			f, err = p.Route(ts[0])
		case Multi:
			f, err = p.Routes(ts)
		case Shaded:
			f, err = p.RoutesShaded(ts)
		default:
			return Figure{}, fmt.Errorf("%w: unknown plot kind %q", trajectory.ErrInvalidInput, req.Kind)
		}
	default:
		return Figure{}, fmt.Errorf("%w: unknown plot target %q", trajectory.ErrInvalidInput, req.Target)
	}
	if err != nil {
		return Figure{}, err
	}
	if req.Title != "" {
		f.Title = req.Title
	}
	return f, nil
}

// Quantity plots q of one flight against seconds since its first sample.
func (p *Plotter) Quantity(t trajectory.Trajectory, q trajectory.Quantity) (Figure, error) {
	s, err := resample.Resample(t, []trajectory.Quantity{q}, p.cfg.GetPointPrecision())
	if err != nil {
		return Figure{}, err
	}
	xs := make([]float64, len(s.Time))
	for i, v := range s.Time {
		xs[i] = v - s.Time[0]
	}
	ys := p.convert(q, s.Values[q])

	f := p.quantityFigure(q, Single, "Flight's "+q.Name())
	f.Flights = []string{t.ID}
	f.Lines = []Line{{X: xs, Y: ys, Color: p.cmap(1), Alpha: 1, Width: lineWidth}}
	f.Axes.Min[0], f.Axes.Max[0] = rangeOf(xs)
	f.Axes.Min[1], f.Axes.Max[1] = rangeOf(ys)
	return f, nil
}

// QuantityMulti overlays q of several flights on a shared time axis from 0
// to the mean duration, colouring each segment by the density of the pooled
// (time, value) cloud. Stroke opacity falls with the square root of the
// number of flights.
func (p *Plotter) QuantityMulti(ts []trajectory.Trajectory, q trajectory.Quantity) (Figure, error) {
	stack, err := p.stack(ts, q)
	if err != nil {
		return Figure{}, err
	}
	meanDuration, err := aggregate.Mean.Reduce(stack.Durations)
	if err != nil {
		return Figure{}, err
	}
	axis := stack.Axis(meanDuration)
	xs := make([][]float64, stack.Rows())
	for i := range xs {
		xs[i] = axis
	}

	colors, err := p.densityColors(xs, stack.Values)
	if err != nil {
		return Figure{}, err
	}

	f := p.quantityFigure(q, Multi, "Flights' "+q.Name())
	f.Flights = stack.IDs
	alpha := density.LineAlpha(stack.Rows())
	for i, row := range stack.Values {
		f.Segments = append(f.Segments, SegmentedLine{
			ID: stack.IDs[i], X: axis, Y: row, Colors: colors[i], Alpha: alpha, Width: lineWidth,
		})
	}
	f.Axes.Min[0], f.Axes.Max[0] = padded(rangeOf(axis))
	f.Axes.Min[1], f.Axes.Max[1] = padded(rangeOf(stack.Values...))
	return f, nil
}

// QuantityShaded draws the expectation path of q with one filled band per
// dispersion level, widest first. The time axis runs to the configured
// expectation measure of the flight durations.
func (p *Plotter) QuantityShaded(ts []trajectory.Trajectory, q trajectory.Quantity) (Figure, error) {
	stack, err := p.stack(ts, q)
	if err != nil {
		return Figure{}, err
	}
	exp, dev := p.cfg.GetExpectationMeasure(), p.cfg.GetDeviationMeasure()
	res, err := aggregate.Aggregate(stack.Values, exp, dev, p.cfg.GetDeviationValues())
	if err != nil {
		return Figure{}, err
	}
	tFinal, err := exp.Reduce(stack.Durations)
	if err != nil {
		return Figure{}, err
	}
	axis := stack.Axis(tFinal)

	f := p.quantityFigure(q, Shaded, "Distribution of Flights' "+q.Name())
	f.Flights = stack.IDs
	f.Legend = true
	for i, level := range res.Levels {
		f.Bands = append(f.Bands, Band{
			Label: dev.IntervalLabel(level),
			X:     axis,
			Lower: res.Lower(i),
			Upper: res.Upper(i),
			Color: p.bandColor(i, len(res.Levels)),
			Alpha: fillAlpha,
		})
	}
	f.Lines = []Line{{Label: exp.PathLabel(), X: axis, Y: res.Expectation, Color: p.cmap(1), Alpha: 1, Width: lineWidth}}
	f.Axes.Min[0], f.Axes.Max[0] = rangeOf(axis)
	f.Axes.Min[1], f.Axes.Max[1] = padded(rangeOf(stack.Values...))
	return f, nil
}

// Route draws one flight's ground track. Longitude is not wrapped.
func (p *Plotter) Route(t trajectory.Trajectory) (Figure, error) {
	s, err := resample.ResampleRaw(t, []trajectory.Quantity{trajectory.Lon, trajectory.Lat}, p.cfg.GetPointPrecision())
	if err != nil {
		return Figure{}, err
	}
	lon, lat := s.Values[trajectory.Lon], s.Values[trajectory.Lat]

	f := p.routeFigure(Single, "Aircraft Route")
	f.Flights = []string{t.ID}
	f.Lines = []Line{{X: lon, Y: lat, Color: p.cmap(1), Alpha: 1, Width: lineWidth}}
	b, ok := boundOf([][]float64{lon}, [][]float64{lat})
	if !ok {
		return Figure{}, fmt.Errorf("%w: flight %q has no finite positions", trajectory.ErrInvalidInput, t.ID)
	}
	p.setExtent(&f, b)
	return f, nil
}

// Routes overlays several ground tracks coloured by the density of the
// pooled (lon, lat) cloud. Flights with any non-finite position are dropped.
func (p *Plotter) Routes(ts []trajectory.Trajectory) (Figure, error) {
	rs, err := resample.ResampleRoutes(ts, p.cfg.GetPointPrecision())
	if err != nil {
		return Figure{}, err
	}
	colors, err := p.densityColors(rs.Lon, rs.Lat)
	if err != nil {
		return Figure{}, err
	}

	f := p.routeFigure(Multi, "Aircraft Routes")
	f.Flights, f.Dropped = rs.IDs, rs.Dropped
	alpha := density.LineAlpha(rs.Rows())
	for i := range rs.Lon {
		f.Segments = append(f.Segments, SegmentedLine{
			ID: rs.IDs[i], X: rs.Lon[i], Y: rs.Lat[i], Colors: colors[i], Alpha: alpha, Width: lineWidth,
		})
	}
	b, _ := boundOf(rs.Lon, rs.Lat)
	p.setExtent(&f, b)
	return f, nil
}

// RoutesShaded draws the expectation route and, per dispersion level, the
// confidence region formed by the union of per-position ellipses with
// semi-axes equal to the longitude and latitude dispersions.
func (p *Plotter) RoutesShaded(ts []trajectory.Trajectory) (Figure, error) {
	rs, err := resample.ResampleRoutes(ts, p.cfg.GetPointPrecision())
	if err != nil {
		return Figure{}, err
	}
	exp, dev := p.cfg.GetExpectationMeasure(), p.cfg.GetDeviationMeasure()
	levels := p.cfg.GetDeviationValues()
	lon, err := aggregate.Aggregate(rs.Lon, exp, dev, levels)
	if err != nil {
		return Figure{}, fmt.Errorf("longitude: %w", err)
	}
	lat, err := aggregate.Aggregate(rs.Lat, exp, dev, levels)
	if err != nil {
		return Figure{}, fmt.Errorf("latitude: %w", err)
	}

	path := region.Path{X: lon.Expectation, Y: lat.Expectation}
	builder := region.Builder{Segments: p.cfg.GetEllipseSegments()}
	regions, err := builder.BuildConfidenceRegions(path, lon.Dispersions, lat.Dispersions)
	if err != nil {
		return Figure{}, err
	}

	f := p.routeFigure(Shaded, "Aircraft Route Distribution")
	f.Flights, f.Dropped = rs.IDs, rs.Dropped
	f.Legend = true
	b, _ := boundOf([][]float64{path.X}, [][]float64{path.Y})
	for i, r := range regions {
		c := p.bandColor(i, len(regions))
		for _, e := range region.LegendEntries(r, dev.IntervalLabel(lon.Levels[i])) {
			f.Areas = append(f.Areas, Area{Label: e.Label, Polygon: e.Polygon, Color: c, Alpha: fillAlpha})
			b = b.Union(e.Polygon.Bound())
		}
	}
	f.Lines = []Line{{Label: exp.PathLabel(), X: path.X, Y: path.Y, Color: p.cmap(1), Alpha: 1, Width: lineWidth}}
	p.setExtent(&f, b)
	return f, nil
}

// stack resamples q for every flight and converts it to display units.
func (p *Plotter) stack(ts []trajectory.Trajectory, q trajectory.Quantity) (resample.Stack, error) {
	stack, err := resample.ResampleStack(ts, q, p.cfg.GetPointPrecision())
	if err != nil {
		return resample.Stack{}, err
	}
	if stack.Width() == 0 {
		return resample.Stack{}, fmt.Errorf("%w: no time step has %s for every flight", trajectory.ErrInvalidInput, q)
	}
	for i, row := range stack.Values {
		stack.Values[i] = p.convert(q, row)
	}
	return stack, nil
}

// densityColors colours segment j of row i by the normalised density of
// point (xs[i][j], ys[i][j]) in the pooled cloud.
func (p *Plotter) densityColors(xs, ys [][]float64) ([][]color.RGBA, error) {
	cloud, err := density.Cloud(xs, ys)
	if err != nil {
		return nil, err
	}
	w, err := density.Weights(cloud, density.WithMaxPoints(p.cfg.GetMaxCloudPoints()))
	if err != nil {
		return nil, err
	}
	cols := 0
	if len(xs) > 0 {
		cols = len(xs[0])
	}
	return density.SegmentColors(density.Reshape(w, cols), p.cmap), nil
}

// bandColor is the colour of band i of n: cmap(i/n), so the widest band
// takes the low end of the map and the expectation path cmap(1).
func (p *Plotter) bandColor(i, n int) color.RGBA {
	return p.cmap(float64(i) / float64(n))
}

func (p *Plotter) quantityFigure(q trajectory.Quantity, k Kind, title string) Figure {
	w, h := p.cfg.GetFigSize()
	return Figure{
		Name:   fmt.Sprintf("%s-%s", q, k),
		Title:  title,
		Target: QuantityTarget,
		Kind:   k,
		Width:  w,
		Height: h,
		Axes:   Axes{XLabel: "Time (s)", YLabel: p.label(q)},
		Fonts:  p.fonts(),
	}
}

func (p *Plotter) routeFigure(k Kind, title string) Figure {
	w, _ := p.cfg.GetFigSize()
	return Figure{
		Name:   fmt.Sprintf("route-%s", k),
		Title:  title,
		Target: RouteTarget,
		Kind:   k,
		Width:  w,
		Height: w,
		Axes:   Axes{XLabel: trajectory.Lon.Label(), YLabel: trajectory.Lat.Label()},
		Fonts:  p.fonts(),
	}
}

// setExtent applies the configured map extent, or else a square extent
// around b.
func (p *Plotter) setExtent(f *Figure, b orb.Bound) {
	if e, ok := p.cfg.GetMapExtent(); ok {
		f.Axes.Min = orb.Point{e[0], e[2]}
		f.Axes.Max = orb.Point{e[1], e[3]}
		return
	}
	sq := squareExtent(b)
	f.Axes.Min, f.Axes.Max = sq.Min, sq.Max
}

func (p *Plotter) fonts() Fonts {
	return Fonts{
		Title:  p.cfg.GetTitleFontSize(),
		Axis:   p.cfg.GetAxisFontSize(),
		Legend: p.cfg.GetLegendFontSize(),
		Tick:   p.cfg.GetTickFontSize(),
	}
}

// label is the axis label of q in the configured display units.
func (p *Plotter) label(q trajectory.Quantity) string {
	switch q {
	case trajectory.Velocity:
		return fmt.Sprintf("%s (%s)", q.Name(), units.SpeedLabel(p.cfg.GetSpeedUnits()))
	case trajectory.BaroAltitude, trajectory.GeoAltitude:
		return fmt.Sprintf("%s (%s)", q.Name(), units.AltitudeLabel(p.cfg.GetAltitudeUnits()))
	}
	return q.Label()
}

// convert returns vs in the configured display units of q.
func (p *Plotter) convert(q trajectory.Quantity, vs []float64) []float64 {
	var f func(float64) float64
	switch q {
	case trajectory.Velocity:
		u := p.cfg.GetSpeedUnits()
		f = func(v float64) float64 { return units.ConvertSpeed(v, u) }
	case trajectory.BaroAltitude, trajectory.GeoAltitude:
		u := p.cfg.GetAltitudeUnits()
		f = func(v float64) float64 { return units.ConvertAltitude(v, u) }
	default:
		return vs
	}
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = f(v)
	}
	return out
}
