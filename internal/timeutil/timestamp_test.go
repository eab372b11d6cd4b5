package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUnixTimestamp(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	testCases := []struct {
		name  string
		input string
		loc   *time.Location
		want  int64
	}{
		{name: "integer", input: "1641016800", want: 1641016800},
		{name: "float truncates", input: "1641016800.75", want: 1641016800},
		{name: "padded", input: "  1676665124 ", want: 1676665124},
		{name: "date in UTC", input: "2022-01-01", want: 1640995200},
		{name: "nil location is UTC", input: "2022-01-01", loc: nil, want: 1640995200},
		{name: "date in Chicago", input: "2022-01-01", loc: chicago, want: 1641016800},
		{name: "date time", input: "2023-02-17 20:18:44", loc: time.UTC, want: 1676665124},
		{name: "RFC 3339 ignores location", input: "2023-02-17T20:18:44Z", loc: chicago, want: 1676665124},
		{name: "slashes", input: "2022/01/01", loc: time.UTC, want: 1640995200},
		{name: "month name", input: "January 1, 2022", loc: time.UTC, want: 1640995200},
		{name: "month name in Chicago", input: "January 1, 2022", loc: chicago, want: 1641016800},
		{name: "day month year time", input: "12 Feb 2006 19:17", loc: time.UTC, want: 1139771820},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseUnixTimestamp(tc.input, tc.loc)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseUnixTimestampErrors(t *testing.T) {
	for _, input := range []string{"", "yesterday", "NaN", "2022-13-45"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseUnixTimestamp(input, time.UTC)
			assert.Error(t, err)
		})
	}
}

func TestFromUnixSeconds(t *testing.T) {
	ts := time.Date(2023, 2, 17, 20, 18, 44, 500_000_000, time.UTC)
	got := FromUnixSeconds(1676665124.5)
	assert.Equal(t, time.UTC, got.Location())
	assert.WithinDuration(t, ts, got, time.Microsecond)
}
