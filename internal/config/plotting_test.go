package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/trajectory.report/internal/aggregate"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultPlotConfig(t *testing.T) {
	cfg := DefaultPlotConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 100, cfg.GetPointPrecision())
	assert.Equal(t, aggregate.Mean, cfg.GetExpectationMeasure())
	assert.Equal(t, aggregate.Std, cfg.GetDeviationMeasure())
	assert.Equal(t, []float64{1, 2}, cfg.GetDeviationValues())
	assert.Equal(t, "viridis", cfg.GetCmap())
	w, h := cfg.GetFigSize()
	assert.Equal(t, 10.0, w)
	assert.Equal(t, 6.0, h)
	_, ok := cfg.GetMapExtent()
	assert.False(t, ok)
}

func TestLoadPlotConfig(t *testing.T) {
	path := writeConfig(t, "plot.json", `{
  "point_precision": 250,
  "expectation_measure": "median",
  "deviation_measure": "pct",
  "deviation_values": [90, 50],
  "cmap": "coolwarm",
  "map_extent": [-92, -90, 29.5, 31.5],
  "speed_units": "kt",
  "altitude_units": "ft"
}`)

	cfg, err := LoadPlotConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 250, cfg.GetPointPrecision())
	assert.Equal(t, aggregate.Median, cfg.GetExpectationMeasure())
	assert.Equal(t, aggregate.Pct, cfg.GetDeviationMeasure())
	assert.Equal(t, []float64{90, 50}, cfg.GetDeviationValues())
	assert.Equal(t, "coolwarm", cfg.GetCmap())
	extent, ok := cfg.GetMapExtent()
	require.True(t, ok)
	assert.Equal(t, [4]float64{-92, -90, 29.5, 31.5}, extent)
	assert.Equal(t, "kt", cfg.GetSpeedUnits())
	assert.Equal(t, "ft", cfg.GetAltitudeUnits())
}

func TestLoadPlotConfigPartial(t *testing.T) {
	path := writeConfig(t, "partial.json", `{"point_precision": 40}`)

	cfg, err := LoadPlotConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 40, cfg.GetPointPrecision())
	// Everything else keeps its default.
	assert.Equal(t, DefaultMaxPointPrecision, cfg.GetMaxPointPrecision())
	assert.Equal(t, DefaultMaxCloudPoints, cfg.GetMaxCloudPoints())
	assert.Equal(t, DefaultEllipseSegments, cfg.GetEllipseSegments())
	assert.Equal(t, aggregate.Mean, cfg.GetExpectationMeasure())
	assert.Equal(t, "UTC", cfg.GetTimezone())
	assert.Equal(t, float64(DefaultTitleFontSize), cfg.GetTitleFontSize())
}

func TestLoadPlotConfigErrors(t *testing.T) {
	testCases := []struct {
		name string
		path func(t *testing.T) string
	}{
		{
			name: "missing file",
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.json") },
		},
		{
			name: "non json extension",
			path: func(t *testing.T) string { return "/some/path/config.yaml" },
		},
		{
			name: "path without extension",
			path: func(t *testing.T) string { return "../../etc/passwd" },
		},
		{
			name: "invalid json",
			path: func(t *testing.T) string { return writeConfig(t, "bad.json", `{"point_precision": "many"`) },
		},
		{
			name: "too large",
			path: func(t *testing.T) string {
				return writeConfig(t, "large.json", string(make([]byte, 2*1024*1024)))
			},
		},
		{
			name: "unknown measure",
			path: func(t *testing.T) string { return writeConfig(t, "measure.json", `{"expectation_measure": "mode"}`) },
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadPlotConfig(tc.path(t))
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	levels := func(v ...float64) *[]float64 { return &v }
	extent := func(v [4]float64) *[4]float64 { return &v }

	testCases := []struct {
		name    string
		cfg     *PlotConfig
		wantErr bool
	}{
		{name: "defaults", cfg: DefaultPlotConfig()},
		{name: "empty config is valid", cfg: &PlotConfig{}},
		{name: "precision below two", cfg: &PlotConfig{PointPrecision: ptrInt(1)}, wantErr: true},
		{name: "precision above limit", cfg: &PlotConfig{PointPrecision: ptrInt(500), MaxPointPrecision: ptrInt(100)}, wantErr: true},
		{name: "unknown expectation", cfg: &PlotConfig{ExpectationMeasure: ptrString("mode")}, wantErr: true},
		{name: "unknown deviation", cfg: &PlotConfig{DeviationMeasure: ptrString("iqr")}, wantErr: true},
		{name: "empty levels", cfg: &PlotConfig{DeviationValues: levels()}, wantErr: true},
		{name: "negative level", cfg: &PlotConfig{DeviationValues: levels(-1)}, wantErr: true},
		{name: "pct above hundred", cfg: &PlotConfig{DeviationMeasure: ptrString("pct"), DeviationValues: levels(120)}, wantErr: true},
		{name: "std above hundred is fine", cfg: &PlotConfig{DeviationValues: levels(120)}},
		{name: "unknown cmap", cfg: &PlotConfig{Cmap: ptrString("jet")}, wantErr: true},
		{name: "inverted extent", cfg: &PlotConfig{MapExtent: extent([4]float64{10, 0, 0, 10})}, wantErr: true},
		{name: "zero font", cfg: &PlotConfig{AxisFontSize: ptrFloat64(0)}, wantErr: true},
		{name: "unknown speed unit", cfg: &PlotConfig{SpeedUnits: ptrString("furlongs")}, wantErr: true},
		{name: "unknown timezone", cfg: &PlotConfig{Timezone: ptrString("Mars/Olympus")}, wantErr: true},
		{name: "few ellipse segments", cfg: &PlotConfig{EllipseSegments: ptrInt(2)}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetDeviationValuesReturnsCopy(t *testing.T) {
	cfg := DefaultPlotConfig()
	v := cfg.GetDeviationValues()
	v[0] = 99
	assert.Equal(t, 1.0, cfg.GetDeviationValues()[0])
}

func TestGetMaxDensityFlights(t *testing.T) {
	testCases := []struct {
		name      string
		precision *int
		cloud     *int
		want      int
	}{
		{name: "defaults", want: DefaultMaxCloudPoints / DefaultPointPrecision},
		{name: "rounds down", precision: ptrInt(300), cloud: ptrInt(1000), want: 3},
		{name: "at least one", precision: ptrInt(500), cloud: ptrInt(100), want: 1},
		{name: "unlimited", cloud: ptrInt(0), want: 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := EmptyPlotConfig()
			cfg.PointPrecision = tc.precision
			cfg.MaxCloudPoints = tc.cloud
			assert.Equal(t, tc.want, cfg.GetMaxDensityFlights())
		})
	}
}

func TestLoadDefaultConfigFile(t *testing.T) {
	cfg, err := LoadPlotConfig("../../" + DefaultConfigPath)
	require.NoError(t, err)
	assert.Equal(t, DefaultPointPrecision, cfg.GetPointPrecision())
	assert.Equal(t, "viridis", cfg.GetCmap())
}

func TestLoadExampleConfigFile(t *testing.T) {
	cfg, err := LoadPlotConfig("../../config/plotting.example.json")
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.GetPointPrecision())
	assert.Equal(t, aggregate.Pct, cfg.GetDeviationMeasure())
	assert.Equal(t, "America/Chicago", cfg.GetTimezone())
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	assert.Equal(t, DefaultPointPrecision, cfg.GetPointPrecision())
}
