package units

import (
	"fmt"
	"time"

	"github.com/banshee-data/trajectory.report/internal/timeutil"
)

// IsTimezoneValid checks if the given timezone is valid by attempting to load it from the tz database
func IsTimezoneValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// LoadLocation resolves tz, treating the empty string as UTC.
func LoadLocation(tz string) (*time.Location, error) {
	if tz == "" || tz == "UTC" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", tz, err)
	}
	return loc, nil
}

// ConvertTime converts a UTC time to the specified timezone.
// State vectors store UNIX seconds; this is for display only.
func ConvertTime(utcTime time.Time, targetTimezone string) (time.Time, error) {
	loc, err := LoadLocation(targetTimezone)
	if err != nil {
		return utcTime, err
	}
	return utcTime.In(loc), nil
}

// FormatUnix renders UNIX seconds in the given timezone as RFC 3339.
func FormatUnix(sec float64, tz string) (string, error) {
	local, err := ConvertTime(timeutil.FromUnixSeconds(sec), tz)
	if err != nil {
		return "", err
	}
	return local.Format(time.RFC3339), nil
}
