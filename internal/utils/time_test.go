package utils

import (
	"testing"
	"time"
)

func TestLoadLocation(t *testing.T) {
	for _, tz := range []string{"", "Local"} {
		loc, err := LoadLocation(tz)
		if err != nil {
			t.Fatalf("LoadLocation(%q) error: %v", tz, err)
		}
		if loc != time.Local {
			t.Errorf("LoadLocation(%q) = %v, want Local", tz, loc)
		}
	}

	loc, err := LoadLocation("UTC")
	if err != nil || loc.String() != "UTC" {
		t.Errorf("LoadLocation(UTC) = %v, %v", loc, err)
	}

	if _, err := NowInTimezone("Not/AZone"); err == nil {
		t.Error("NowInTimezone() expected error for invalid timezone")
	}
}

func TestWindowStart(t *testing.T) {
	today := time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC)

	start := WindowStart(today, 365)
	if got := FormatDate(start); got != "2023-03-03" {
		t.Errorf("WindowStart(365) = %s, want 2023-03-03", got)
	}

	if got := FormatDate(WindowStart(today, 1)); got != "2024-03-01" {
		t.Errorf("WindowStart(1) = %s, want 2024-03-01", got)
	}
}

func TestAddDaysAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	// DST starts 2024-03-10 in New York.
	day := time.Date(2024, 3, 9, 23, 0, 0, 0, loc)
	next := AddDays(day, 1)
	if FormatDate(next) != "2024-03-10" || next.Hour() != 0 {
		t.Errorf("AddDays across DST = %v", next)
	}
	if got := FormatDate(AddDays(next, 1)); got != "2024-03-11" {
		t.Errorf("AddDays after DST = %s", got)
	}
}
