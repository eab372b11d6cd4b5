package units

import (
	"math"
	"testing"
)

func TestConvertSpeed(t *testing.T) {
	tests := []struct {
		name     string
		speedMPS float64
		units    string
		expected float64
	}{
		{"10 m/s to mph", 10.0, MPH, 22.3694},
		{"10 m/s to kmph", 10.0, KMPH, 36.0},
		{"10 m/s to kph", 10.0, KPH, 36.0},
		{"10 m/s to mps", 10.0, MPS, 10.0},
		{"unknown units default to mps", 10.0, "unknown", 10.0},
		{"cruise 250 m/s to kt", 250.0, KT, 485.961},
		{"approach 72 m/s to kt", 72.0, KT, 139.957},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertSpeed(tt.speedMPS, tt.units)
			if math.Abs(result-tt.expected) > 0.01 {
				t.Errorf("ConvertSpeed(%f, %s) = %f, want %f", tt.speedMPS, tt.units, result, tt.expected)
			}
		})
	}
}

func TestConvertAltitude(t *testing.T) {
	tests := []struct {
		name     string
		metres   float64
		units    string
		expected float64
	}{
		{"FL350 in feet", 10668, Feet, 35000},
		{"metres unchanged", 10668, Metres, 10668},
		{"empty means metres", 300, "", 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertAltitude(tt.metres, tt.units)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("ConvertAltitude(%f, %s) = %f, want %f", tt.metres, tt.units, result, tt.expected)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name     string
		unit     string
		expected bool
	}{
		{"valid mps", MPS, true},
		{"valid kt", KT, true},
		{"valid mph", MPH, true},
		{"valid kmph", KMPH, true},
		{"valid kph", KPH, true},
		{"invalid unit", "invalid", false},
		{"empty string", "", false},
		{"case sensitive", "MPH", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValid(tt.unit)
			if result != tt.expected {
				t.Errorf("IsValid(%s) = %v, want %v", tt.unit, result, tt.expected)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if err := Validate("", ""); err != nil {
		t.Errorf("Validate(empty) = %v, want nil", err)
	}
	if err := Validate(KT, Feet); err != nil {
		t.Errorf("Validate(kt, ft) = %v, want nil", err)
	}
	if err := Validate("furlongs", ""); err == nil {
		t.Error("expected error for unknown speed unit")
	}
	if err := Validate("", "yd"); err == nil {
		t.Error("expected error for unknown altitude unit")
	}
}

func TestLabels(t *testing.T) {
	if got := SpeedLabel(KT); got != "kt" {
		t.Errorf("SpeedLabel(kt) = %q", got)
	}
	if got := SpeedLabel(""); got != "m/s" {
		t.Errorf("SpeedLabel(\"\") = %q", got)
	}
	if got := AltitudeLabel(Feet); got != "ft" {
		t.Errorf("AltitudeLabel(ft) = %q", got)
	}
	if got := GetValidUnitsString(); got != "mps, kt, mph, kmph, kph" {
		t.Errorf("GetValidUnitsString() = %q", got)
	}
}
