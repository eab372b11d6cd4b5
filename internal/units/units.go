// Package units converts stored SI state-vector values into display units.
// State vectors carry velocity in m/s and altitudes in metres.
package units

import (
	"fmt"
	"strings"
)

// Speed unit constants
const (
	MPS  = "mps"
	KT   = "kt"
	MPH  = "mph"
	KMPH = "kmph"
	KPH  = "kph"
)

// Altitude unit constants
const (
	Metres = "m"
	Feet   = "ft"
)

// ValidUnits contains all valid speed unit values
var ValidUnits = []string{MPS, KT, MPH, KMPH, KPH}

// ValidAltitudeUnits contains all valid altitude unit values
var ValidAltitudeUnits = []string{Metres, Feet}

// IsValid checks if the given speed unit is in the list of valid units
func IsValid(unit string) bool {
	return contains(ValidUnits, unit)
}

// IsValidAltitude checks if the given altitude unit is known.
func IsValidAltitude(unit string) bool {
	return contains(ValidAltitudeUnits, unit)
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return strings.Join(ValidUnits, ", ")
}

// ConvertSpeed converts a speed from meters per second to the target units.
// Unknown units fall back to m/s.
func ConvertSpeed(speedMPS float64, targetUnits string) float64 {
	switch targetUnits {
	case KT:
		return speedMPS * 1.9438444924406
	case MPH:
		return speedMPS * 2.2369362920544
	case KMPH, KPH:
		return speedMPS * 3.6
	default:
		return speedMPS
	}
}

// ConvertAltitude converts an altitude in metres to the target units.
func ConvertAltitude(metres float64, targetUnits string) float64 {
	if targetUnits == Feet {
		return metres / 0.3048
	}
	return metres
}

// SpeedLabel is the axis suffix for a speed unit, e.g. "m/s".
func SpeedLabel(unit string) string {
	switch unit {
	case KT:
		return "kt"
	case MPH:
		return "mph"
	case KMPH, KPH:
		return "km/h"
	default:
		return "m/s"
	}
}

// AltitudeLabel is the axis suffix for an altitude unit.
func AltitudeLabel(unit string) string {
	if unit == Feet {
		return "ft"
	}
	return "m"
}

// Validate reports an error naming the valid choices when either unit is
// unknown. Empty strings mean SI.
func Validate(speed, altitude string) error {
	if speed != "" && !IsValid(speed) {
		return fmt.Errorf("invalid speed units %q (valid: %s)", speed, GetValidUnitsString())
	}
	if altitude != "" && !IsValidAltitude(altitude) {
		return fmt.Errorf("invalid altitude units %q (valid: %s)", altitude, strings.Join(ValidAltitudeUnits, ", "))
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
