// Package testutil provides shared test utilities and fixtures.
//
// The flight fixtures are synthetic straight-line legs with known
// statistics, so tests across packages can assert exact expectations.
package testutil

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"testing"

	"github.com/banshee-data/trajectory.report/internal/trajectory"
)

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t testing.TB, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// NewTestRequest creates a test HTTP request.
func NewTestRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

// NewTestRequestBody creates a test HTTP request with a body.
func NewTestRequestBody(method, path string, body []byte) *http.Request {
	return httptest.NewRequest(method, path, bytes.NewReader(body))
}

// NewTestRecorder creates a test response recorder.
func NewTestRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}

// Leg describes a synthetic straight flight leg sampled every Step seconds.
type Leg struct {
	ID       string
	Start    float64 // UNIX seconds of the first sample
	Samples  int
	Step     float64
	Lat, Lon float64 // first position, degrees
	DLat     float64 // degrees per sample
	DLon     float64
	Velocity float64 // m/s, constant
	Climb    float64 // metres per sample, from 0
	Heading  float64 // degrees, constant
}

// Trajectory builds the leg, failing the test on invalid parameters.
func (l Leg) Trajectory(t testing.TB) trajectory.Trajectory {
	t.Helper()
	n := l.Samples
	if n == 0 {
		n = 11
	}
	step := l.Step
	if step == 0 {
		step = 10
	}
	times := make([]float64, n)
	cols := map[string][]float64{
		"lat":          make([]float64, n),
		"lon":          make([]float64, n),
		"velocity":     make([]float64, n),
		"baroaltitude": make([]float64, n),
		"geoaltitude":  make([]float64, n),
		"heading":      make([]float64, n),
	}
	for i := 0; i < n; i++ {
		fi := float64(i)
		times[i] = l.Start + fi*step
		cols["lat"][i] = l.Lat + fi*l.DLat
		cols["lon"][i] = l.Lon + fi*l.DLon
		cols["velocity"][i] = l.Velocity
		cols["baroaltitude"][i] = fi * l.Climb
		cols["geoaltitude"][i] = fi*l.Climb + 30
		cols["heading"][i] = l.Heading
	}
	tr, err := trajectory.New(l.ID, times, cols)
	if err != nil {
		t.Fatalf("invalid leg %q: %v", l.ID, err)
	}
	return tr
}

// Bundle returns n parallel legs heading east, flight i offset north by
// i*spacing degrees and lasting 100+10*i seconds, with velocity 100+i m/s.
func Bundle(t testing.TB, n int, spacing float64) []trajectory.Trajectory {
	t.Helper()
	out := make([]trajectory.Trajectory, n)
	for i := range out {
		samples := 11
		out[i] = Leg{
			ID:       fmt.Sprintf("a%05d", i),
			Start:    1676665124 + float64(i)*600,
			Samples:  samples,
			Step:     (100 + 10*float64(i)) / float64(samples-1),
			Lat:      30 + float64(i)*spacing,
			Lon:      -91,
			DLon:     0.01,
			Velocity: 100 + float64(i),
			Climb:    30,
			Heading:  90,
		}.Trajectory(t)
	}
	return out
}

// StateVectorCSV renders trajectories as one CSV export with an icao24
// column, rows ordered by flight then time.
func StateVectorCSV(ts ...trajectory.Trajectory) []byte {
	var buf bytes.Buffer
	WriteStateVectorCSV(&buf, ts...)
	return buf.Bytes()
}

// WriteStateVectorCSV is StateVectorCSV writing to w.
func WriteStateVectorCSV(w io.Writer, ts ...trajectory.Trajectory) {
	names := columnNames(ts)
	fmt.Fprint(w, "time,icao24")
	for _, n := range names {
		fmt.Fprint(w, ","+n)
	}
	fmt.Fprintln(w)
	for _, tr := range ts {
		for i, tm := range tr.Time {
			fmt.Fprint(w, strconv.FormatFloat(tm, 'f', -1, 64), ",", tr.ID)
			for _, n := range names {
				fmt.Fprint(w, ",")
				if col, ok := tr.Columns[n]; ok {
					fmt.Fprint(w, strconv.FormatFloat(col[i], 'f', -1, 64))
				}
			}
			fmt.Fprintln(w)
		}
	}
}

func columnNames(ts []trajectory.Trajectory) []string {
	seen := make(map[string]bool)
	for _, tr := range ts {
		for n := range tr.Columns {
			seen[n] = true
		}
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
