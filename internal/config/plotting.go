package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/trajectory.report/internal/aggregate"
	"github.com/banshee-data/trajectory.report/internal/render/colormap"
	"github.com/banshee-data/trajectory.report/internal/units"
)

// DefaultConfigPath is the path to the canonical plotting defaults file.
const DefaultConfigPath = "config/plotting.defaults.json"

// Defaults used by the Get* accessors when a field is absent.
const (
	DefaultPointPrecision    = 100
	DefaultMaxPointPrecision = 10000
	DefaultMaxCloudPoints    = 20000
	DefaultEllipseSegments   = 64
	DefaultTitleFontSize     = 16
	DefaultAxisFontSize      = 12
	DefaultLegendFontSize    = 10
	DefaultTickFontSize      = 10
)

// PlotConfig is the plotting configuration. Every field is optional; the
// Get* accessors supply defaults for anything left out of the JSON.
type PlotConfig struct {
	// Resampling
	PointPrecision    *int `json:"point_precision,omitempty"`
	MaxPointPrecision *int `json:"max_point_precision,omitempty"`

	// Statistics
	ExpectationMeasure *string    `json:"expectation_measure,omitempty"` // mean | median | average
	DeviationMeasure   *string    `json:"deviation_measure,omitempty"`   // std | pct
	DeviationValues    *[]float64 `json:"deviation_values,omitempty"`

	// Density colouring; the KDE is quadratic in the cloud size
	MaxCloudPoints *int `json:"max_cloud_points,omitempty"`

	// Confidence regions
	EllipseSegments *int `json:"ellipse_segments,omitempty"`

	// Presentation
	Cmap           *string     `json:"cmap,omitempty"`
	FigSize        *[2]float64 `json:"fig_size,omitempty"`   // inches, width x height
	MapExtent      *[4]float64 `json:"map_extent,omitempty"` // lon_min, lon_max, lat_min, lat_max
	TitleFontSize  *float64    `json:"title_fontsize,omitempty"`
	AxisFontSize   *float64    `json:"axis_fontsize,omitempty"`
	LegendFontSize *float64    `json:"legend_fontsize,omitempty"`
	TickFontSize   *float64    `json:"tick_fontsize,omitempty"`

	// Display units
	SpeedUnits    *string `json:"speed_units,omitempty"`
	AltitudeUnits *string `json:"altitude_units,omitempty"`
	Timezone      *string `json:"timezone,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyPlotConfig returns a PlotConfig with all fields set to nil.
func EmptyPlotConfig() *PlotConfig {
	return &PlotConfig{}
}

// DefaultPlotConfig returns a PlotConfig with every field set to its default.
func DefaultPlotConfig() *PlotConfig {
	levels := []float64{1, 2}
	fig := [2]float64{10, 6}
	return &PlotConfig{
		PointPrecision:     ptrInt(DefaultPointPrecision),
		MaxPointPrecision:  ptrInt(DefaultMaxPointPrecision),
		ExpectationMeasure: ptrString("mean"),
		DeviationMeasure:   ptrString("std"),
		DeviationValues:    &levels,
		MaxCloudPoints:     ptrInt(DefaultMaxCloudPoints),
		EllipseSegments:    ptrInt(DefaultEllipseSegments),
		Cmap:               ptrString(colormap.Default),
		FigSize:            &fig,
		TitleFontSize:      ptrFloat64(DefaultTitleFontSize),
		AxisFontSize:       ptrFloat64(DefaultAxisFontSize),
		LegendFontSize:     ptrFloat64(DefaultLegendFontSize),
		TickFontSize:       ptrFloat64(DefaultTickFontSize),
		SpeedUnits:         ptrString(units.MPS),
		AltitudeUnits:      ptrString(units.Metres),
		Timezone:           ptrString("UTC"),
	}
}

// LoadPlotConfig loads a PlotConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file fall back to defaults through the Get*
// accessors, so partial configs are safe.
func LoadPlotConfig(path string) (*PlotConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParsePlotConfig(data)
}

// ParsePlotConfig decodes and validates a JSON document.
func ParsePlotConfig(data []byte) (*PlotConfig, error) {
	cfg := EmptyPlotConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical plotting defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *PlotConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from internal/render/colormap/
		"../../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadPlotConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid. The closed enums
// (measures, colormap, units) are rejected here rather than at plot time.
func (c *PlotConfig) Validate() error {
	if c.PointPrecision != nil && *c.PointPrecision < 2 {
		return fmt.Errorf("point_precision must be at least 2, got %d", *c.PointPrecision)
	}
	if c.MaxPointPrecision != nil && *c.MaxPointPrecision < 2 {
		return fmt.Errorf("max_point_precision must be at least 2, got %d", *c.MaxPointPrecision)
	}
	if p, limit := c.GetPointPrecision(), c.GetMaxPointPrecision(); p > limit {
		return fmt.Errorf("point_precision %d exceeds max_point_precision %d", p, limit)
	}
	if c.MaxCloudPoints != nil && *c.MaxCloudPoints < 0 {
		return fmt.Errorf("max_cloud_points must be non-negative, got %d", *c.MaxCloudPoints)
	}
	if c.EllipseSegments != nil && *c.EllipseSegments < 3 {
		return fmt.Errorf("ellipse_segments must be at least 3, got %d", *c.EllipseSegments)
	}

	if c.ExpectationMeasure != nil {
		if _, err := aggregate.ParseExpectationMeasure(*c.ExpectationMeasure); err != nil {
			return fmt.Errorf("expectation_measure: %w", err)
		}
	}
	dev := aggregate.Std
	if c.DeviationMeasure != nil {
		d, err := aggregate.ParseDeviationMeasure(*c.DeviationMeasure)
		if err != nil {
			return fmt.Errorf("deviation_measure: %w", err)
		}
		dev = d
	}
	if c.DeviationValues != nil {
		if len(*c.DeviationValues) == 0 {
			return fmt.Errorf("deviation_values must not be empty")
		}
		if _, err := aggregate.SortLevels(dev, *c.DeviationValues); err != nil {
			return fmt.Errorf("deviation_values: %w", err)
		}
	}

	if c.Cmap != nil && !colormap.Known(*c.Cmap) {
		return fmt.Errorf("unknown cmap %q", *c.Cmap)
	}
	if c.FigSize != nil && (c.FigSize[0] <= 0 || c.FigSize[1] <= 0) {
		return fmt.Errorf("fig_size must be positive, got %v", *c.FigSize)
	}
	if e := c.MapExtent; e != nil && (e[1] <= e[0] || e[3] <= e[2]) {
		return fmt.Errorf("map_extent must be [lon_min, lon_max, lat_min, lat_max] with min < max, got %v", *e)
	}
	for name, v := range map[string]*float64{
		"title_fontsize":  c.TitleFontSize,
		"axis_fontsize":   c.AxisFontSize,
		"legend_fontsize": c.LegendFontSize,
		"tick_fontsize":   c.TickFontSize,
	} {
		if v != nil && *v <= 0 {
			return fmt.Errorf("%s must be positive, got %g", name, *v)
		}
	}

	if err := units.Validate(c.GetSpeedUnits(), c.GetAltitudeUnits()); err != nil {
		return err
	}
	if c.Timezone != nil && !units.IsTimezoneValid(*c.Timezone) {
		return fmt.Errorf("invalid timezone %q", *c.Timezone)
	}
	return nil
}

// GetPointPrecision returns the point_precision value or the default.
func (c *PlotConfig) GetPointPrecision() int {
	if c.PointPrecision == nil {
		return DefaultPointPrecision
	}
	return *c.PointPrecision
}

// GetMaxPointPrecision returns the max_point_precision value or the default.
func (c *PlotConfig) GetMaxPointPrecision() int {
	if c.MaxPointPrecision == nil {
		return DefaultMaxPointPrecision
	}
	return *c.MaxPointPrecision
}

// GetExpectationMeasure returns the parsed expectation_measure or Mean.
// Validate has already rejected unknown names.
func (c *PlotConfig) GetExpectationMeasure() aggregate.ExpectationMeasure {
	if c.ExpectationMeasure == nil {
		return aggregate.Mean
	}
	m, err := aggregate.ParseExpectationMeasure(*c.ExpectationMeasure)
	if err != nil {
		return aggregate.Mean
	}
	return m
}

// GetDeviationMeasure returns the parsed deviation_measure or Std.
func (c *PlotConfig) GetDeviationMeasure() aggregate.DeviationMeasure {
	if c.DeviationMeasure == nil {
		return aggregate.Std
	}
	m, err := aggregate.ParseDeviationMeasure(*c.DeviationMeasure)
	if err != nil {
		return aggregate.Std
	}
	return m
}

// GetDeviationValues returns a copy of deviation_values or [1, 2].
func (c *PlotConfig) GetDeviationValues() []float64 {
	if c.DeviationValues == nil || len(*c.DeviationValues) == 0 {
		return []float64{1, 2}
	}
	return append([]float64(nil), (*c.DeviationValues)...)
}

// GetMaxCloudPoints returns the max_cloud_points value or the default.
func (c *PlotConfig) GetMaxCloudPoints() int {
	if c.MaxCloudPoints == nil {
		return DefaultMaxCloudPoints
	}
	return *c.MaxCloudPoints
}

// GetMaxDensityFlights returns how many flights fit in one density-shaded
// plot: max_cloud_points divided by point_precision, at least 1. Zero means
// unlimited, matching a zero max_cloud_points.
func (c *PlotConfig) GetMaxDensityFlights() int {
	limit := c.GetMaxCloudPoints()
	if limit == 0 {
		return 0
	}
	return max(1, limit/c.GetPointPrecision())
}

// GetEllipseSegments returns the ellipse_segments value or the default.
func (c *PlotConfig) GetEllipseSegments() int {
	if c.EllipseSegments == nil {
		return DefaultEllipseSegments
	}
	return *c.EllipseSegments
}

// GetCmap returns the cmap value or the default.
func (c *PlotConfig) GetCmap() string {
	if c.Cmap == nil || *c.Cmap == "" {
		return colormap.Default
	}
	return *c.Cmap
}

// GetFigSize returns the figure size in inches.
func (c *PlotConfig) GetFigSize() (width, height float64) {
	if c.FigSize == nil {
		return 10, 6
	}
	return c.FigSize[0], c.FigSize[1]
}

// GetMapExtent returns the fixed route extent and whether one is configured.
func (c *PlotConfig) GetMapExtent() ([4]float64, bool) {
	if c.MapExtent == nil {
		return [4]float64{}, false
	}
	return *c.MapExtent, true
}

// GetTitleFontSize returns the title_fontsize value or the default.
func (c *PlotConfig) GetTitleFontSize() float64 {
	return orDefault(c.TitleFontSize, DefaultTitleFontSize)
}

// GetAxisFontSize returns the axis_fontsize value or the default.
func (c *PlotConfig) GetAxisFontSize() float64 {
	return orDefault(c.AxisFontSize, DefaultAxisFontSize)
}

// GetLegendFontSize returns the legend_fontsize value or the default.
func (c *PlotConfig) GetLegendFontSize() float64 {
	return orDefault(c.LegendFontSize, DefaultLegendFontSize)
}

// GetTickFontSize returns the tick_fontsize value or the default.
func (c *PlotConfig) GetTickFontSize() float64 {
	return orDefault(c.TickFontSize, DefaultTickFontSize)
}

// GetSpeedUnits returns the speed_units value or m/s.
func (c *PlotConfig) GetSpeedUnits() string {
	if c.SpeedUnits == nil || *c.SpeedUnits == "" {
		return units.MPS
	}
	return *c.SpeedUnits
}

// GetAltitudeUnits returns the altitude_units value or metres.
func (c *PlotConfig) GetAltitudeUnits() string {
	if c.AltitudeUnits == nil || *c.AltitudeUnits == "" {
		return units.Metres
	}
	return *c.AltitudeUnits
}

// GetTimezone returns the timezone value or UTC.
func (c *PlotConfig) GetTimezone() string {
	if c.Timezone == nil || *c.Timezone == "" {
		return "UTC"
	}
	return *c.Timezone
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
