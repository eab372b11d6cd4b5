package decode

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/trajectory.report/internal/fsutil"
	"github.com/banshee-data/trajectory.report/internal/trajectory"
)

const flightsTable = `+----------+--------+------------+------------+---------------------+-------------------+
| callsign | icao24 | firstseen  | lastseen   | estdepartureairport | estarrivalairport |
+----------+--------+------------+------------+---------------------+-------------------+
| SKW5466  | aced8f | 1676665124 | 1676667470 | KBTR                | NULL              |
+----------+--------+------------+------------+---------------------+-------------------+
`

// Rows are deliberately out of order, with a duplicated timestamp, a NULL
// position and a repeated header block as produced by paginated output.
const stateVectors = `+------------+--------+---------+----------+----------+---------+----------+--------------+----------+
| time       | icao24 | lat     | lon      | velocity | heading | callsign | baroaltitude | onground |
+------------+--------+---------+----------+----------+---------+----------+--------------+----------+
| 1676665130 | aced8f | 30.5330 | -91.1490 | 71.2     | 130.0   | SKW5466  | 304.8        | false    |
| 1676665124 | aced8f | 30.5320 | -91.1500 | 70.1     | 128.5   | SKW5466  | 297.2        | false    |
+------------+--------+---------+----------+----------+---------+----------+--------------+----------+
| time       | icao24 | lat     | lon      | velocity | heading | callsign | baroaltitude | onground |
+------------+--------+---------+----------+----------+---------+----------+--------------+----------+
| 1676665136 | aced8f | NULL    | NULL     | 72.9     | 131.0   | SKW5466  | 320.0        | false    |
| 1676665130 | aced8f | 30.5331 | -91.1491 | 71.3     | 130.1   | SKW5466  | 304.9        | false    |
| 1676665142 | aced8f | 30.5350 | -91.1470 | 74.0     | 132.0   | SKW5466  | 335.3        | false    |
+------------+--------+---------+----------+----------+---------+----------+--------------+----------+
5 rows in set (0.01 sec)
`

func TestParsePipeTable(t *testing.T) {
	tbl, err := ParsePipeTable(strings.NewReader(flightsTable))
	require.NoError(t, err)

	assert.Equal(t, []string{"callsign", "icao24", "firstseen", "lastseen", "estdepartureairport", "estarrivalairport"}, tbl.Columns)
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, []string{"SKW5466", "aced8f", "1676665124", "1676667470", "KBTR", "NULL"}, tbl.Rows[0])
}

func TestParsePipeTableSkipsRepeatedHeaders(t *testing.T) {
	tbl, err := ParsePipeTable(strings.NewReader(stateVectors))
	require.NoError(t, err)
	assert.Equal(t, 5, tbl.Len())
	assert.Equal(t, 8, tbl.Index("onground"))
	assert.Equal(t, -1, tbl.Index("squawk"))
}

func TestParsePipeTableEmpty(t *testing.T) {
	for _, input := range []string{"", "\n\n  \n"} {
		tbl, err := ParsePipeTable(strings.NewReader(input))
		require.NoError(t, err)
		assert.Empty(t, tbl.Columns)
		assert.Zero(t, tbl.Len())
	}
}

func TestParsePipeTableRaggedRow(t *testing.T) {
	input := "| time | lat |\n| 1 | 2 | 3 |\n"
	_, err := ParsePipeTable(strings.NewReader(input))
	require.Error(t, err)
	assert.True(t, errors.Is(err, trajectory.ErrInvalidInput))
	assert.Contains(t, err.Error(), "line 2")
}

func TestToNumber(t *testing.T) {
	testCases := []struct {
		in     string
		want   float64
		ok     bool
		isNaN  bool
		reason string
	}{
		{in: "45", want: 45, ok: true},
		{in: "3.14", want: 3.14, ok: true},
		{in: " -91.15 ", want: -91.15, ok: true},
		{in: "1e3", want: 1000, ok: true},
		{in: "NULL", ok: true, isNaN: true},
		{in: "", ok: true, isNaN: true},
		{in: "hello", ok: false},
		{in: "true", ok: false},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ToNumber(tc.in)
			assert.Equal(t, tc.ok, ok)
			if tc.isNaN {
				assert.True(t, math.IsNaN(got))
			} else if tc.ok {
				assert.InDelta(t, tc.want, got, 1e-12)
			}
		})
	}
}

func TestDecodePipeTable(t *testing.T) {
	d := &TableDecoder{}
	tr, err := d.Decode(strings.NewReader(stateVectors))
	require.NoError(t, err)

	assert.Equal(t, "aced8f", tr.ID)
	// sorted, duplicate 1676665130 collapsed to its first occurrence
	assert.Equal(t, []float64{1676665124, 1676665130, 1676665136, 1676665142}, tr.Time)

	lat, err := tr.Column(trajectory.Lat)
	require.NoError(t, err)
	assert.Equal(t, 30.5320, lat[0])
	assert.Equal(t, 30.5330, lat[1])
	assert.True(t, math.IsNaN(lat[2]))

	vel, err := tr.Column(trajectory.Velocity)
	require.NoError(t, err)
	assert.Equal(t, []float64{70.1, 71.2, 72.9, 74.0}, vel)

	// string and boolean columns are not quantities
	assert.NotContains(t, tr.Columns, "callsign")
	assert.NotContains(t, tr.Columns, "onground")
	assert.NotContains(t, tr.Columns, "icao24")
	assert.NotContains(t, tr.Columns, trajectory.TimeColumn)
}

func TestDecodeErrors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "no time column", input: "| lat | lon |\n| 1 | 2 |\n| 3 | 4 |\n"},
		{name: "text time column", input: "| time | lat |\n| noon | 2 |\n| dusk | 4 |\n"},
		{name: "single sample", input: "| time | lat |\n| 1 | 2 |\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := (&TableDecoder{}).Decode(strings.NewReader(tc.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, trajectory.ErrInvalidInput), "got %v", err)
		})
	}
}

func TestDecodeDateTimes(t *testing.T) {
	input := "time,lat\n2023-02-17 20:18:54,2\n2023-02-17T20:18:44Z,1\n1676665144,3\n"
	tr, err := (&TableDecoder{Format: CSV}).Decode(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []float64{1676665124, 1676665134, 1676665144}, tr.Time)
	assert.Equal(t, []float64{1, 2, 3}, tr.Columns["lat"])
}

func TestDecodeCSV(t *testing.T) {
	input := `# exported state vectors
time,lat,lon,geoaltitude
0, 10.0, 20.0, 100
10, 11.0, 21.0, 200
20, 12.0, , 300
`
	d := &TableDecoder{Format: CSV, ID: "N123"}
	tr, err := d.Decode(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, "N123", tr.ID)
	assert.Equal(t, []float64{0, 10, 20}, tr.Time)
	lon, err := tr.Column(trajectory.Lon)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(lon[2]))
	assert.ElementsMatch(t, []trajectory.Quantity{trajectory.Lat, trajectory.Lon, trajectory.GeoAltitude}, tr.Quantities())
}

func TestDecodeFileFromMemory(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile("/data/leg1.tsv", []byte("time\tlat\n0\t1\n5\t2\n"), 0644))
	require.NoError(t, mfs.WriteFile("/data/leg2.txt", []byte("| time | lat |\n| 0 | 1 |\n| 5 | 3 |\n"), 0644))

	tr, err := (&TableDecoder{Format: CSV, FS: mfs}).DecodeFile("/data/leg1.tsv")
	require.NoError(t, err)
	assert.Equal(t, "leg1", tr.ID)
	assert.Equal(t, []float64{1, 2}, tr.Columns["lat"])

	d := ForPath("/data/leg2.txt")
	d.FS = mfs
	tr, err = d.DecodeFile("/data/leg2.txt")
	require.NoError(t, err)
	assert.Equal(t, "leg2", tr.ID)

	_, err = d.DecodeFile("/data/missing.txt")
	assert.Error(t, err)

	d.MaxBytes = 4
	_, err = d.DecodeFile("/data/leg2.txt")
	assert.Error(t, err)
}

func TestDecodeAllSplitsByAircraft(t *testing.T) {
	input := `time,icao24,lat,lon
0,bbb222,1,1
0,aaa111,5,5
10,aaa111,6,6
10,bbb222,2,2
20,ccc333,9,9
`
	trs, err := (&TableDecoder{Format: CSV}).DecodeAll(strings.NewReader(input))
	require.NoError(t, err)

	// ccc333 has a single sample and is skipped
	require.Len(t, trs, 2)
	assert.Equal(t, "aaa111", trs[0].ID)
	assert.Equal(t, "bbb222", trs[1].ID)
	assert.Equal(t, []float64{1, 2}, trs[1].Columns["lat"])
}

func TestDecodeAllWithoutGroupColumn(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile("/states.csv", []byte("time,lat\n0,1\n1,2\n"), 0644))

	d := ForPath("/states.csv")
	d.FS = mfs
	trs, err := d.DecodeAllFile("/states.csv")
	require.NoError(t, err)
	require.Len(t, trs, 1)
	assert.Equal(t, "states", trs[0].ID)
}

func TestForPath(t *testing.T) {
	assert.Equal(t, CSV, ForPath("a/b.CSV").Format)
	assert.Equal(t, CSV, ForPath("b.tsv").Format)
	assert.Equal(t, PipeTable, ForPath("query.txt").Format)
	assert.Equal(t, "pipe", PipeTable.String())
}
