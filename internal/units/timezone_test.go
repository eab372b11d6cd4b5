package units

import (
	"testing"
	"time"
)

func TestIsTimezoneValid(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		expected bool
	}{
		{"valid UTC", "UTC", true},
		{"valid US Eastern", "America/New_York", true},
		{"invalid", "Invalid/Timezone", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := IsTimezoneValid(tt.timezone)
			if res != tt.expected {
				t.Errorf("IsTimezoneValid(%s) = %v, want %v", tt.timezone, res, tt.expected)
			}
		})
	}
}

func TestConvertTime(t *testing.T) {
	utcTime := time.Date(2025, 9, 13, 12, 0, 0, 0, time.UTC)
	t.Run("UTC to UTC", func(t *testing.T) {
		out, err := ConvertTime(utcTime, "UTC")
		if err != nil {
			t.Fatalf("ConvertTime error: %v", err)
		}
		if !out.Equal(utcTime) {
			t.Fatalf("ConvertTime returned %v, want %v", out, utcTime)
		}
	})
	t.Run("invalid zone", func(t *testing.T) {
		if _, err := ConvertTime(utcTime, "Nowhere/Special"); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestFormatUnix(t *testing.T) {
	got, err := FormatUnix(1676665124, "UTC")
	if err != nil {
		t.Fatalf("FormatUnix error: %v", err)
	}
	if got != "2023-02-17T20:18:44Z" {
		t.Fatalf("FormatUnix = %s", got)
	}
}
