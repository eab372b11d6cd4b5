package timeutil

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ParseUnixTimestamp normalises s to UNIX seconds. s may be an integer or
// float timestamp (fractions are truncated) or a free-form date string;
// dates without a zone are read in loc, nil meaning UTC.
func ParseUnixTimestamp(s string, loc *time.Location) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("timestamp %q is not finite", s)
		}
		return int64(f), nil
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := dateparse.ParseIn(s, loc)
	if err != nil {
		return 0, fmt.Errorf("unsupported date format %q: %w", s, err)
	}
	return t.Unix(), nil
}

// FromUnixSeconds converts fractional UNIX seconds to a UTC time.
func FromUnixSeconds(sec float64) time.Time {
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC()
}
