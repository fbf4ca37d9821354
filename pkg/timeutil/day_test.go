package timeutil

import (
	"testing"
	"time"
)

func TestDayWindowMidnightBelongsToDay(t *testing.T) {
	loc := time.FixedZone("test", -5*3600)
	midnight := time.Date(2025, 5, 1, 0, 0, 0, 0, loc)
	start, end := DayWindow(midnight)
	if !start.Equal(midnight) {
		t.Fatalf("start = %v, want %v", start, midnight)
	}
	if !end.Equal(midnight.AddDate(0, 0, 1)) {
		t.Fatalf("end = %v", end)
	}
	if !SameDay(midnight, time.Date(2025, 5, 1, 23, 59, 0, 0, loc)) {
		t.Fatalf("midnight should be on its own day")
	}
	if SameDay(midnight, time.Date(2025, 4, 30, 23, 59, 0, 0, loc)) {
		t.Fatalf("midnight should not be on the previous day")
	}
}

func TestSameDayUsesReferenceLocation(t *testing.T) {
	loc := time.FixedZone("east", 9*3600)
	utc := time.Date(2025, 5, 1, 20, 0, 0, 0, time.UTC) // 05:00 on May 2 in loc
	ref := time.Date(2025, 5, 2, 12, 0, 0, 0, loc)
	if !SameDay(utc, ref) {
		t.Fatalf("expected %v on the same local day as %v", utc, ref)
	}
}

func TestDaysIn(t *testing.T) {
	tests := []struct {
		t    time.Time
		want int
	}{
		{time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC), 28},
		{time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), 29},
		{time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), 30},
		{time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), 31},
	}
	for _, tc := range tests {
		if got := DaysIn(tc.t); got != tc.want {
			t.Errorf("DaysIn(%v) = %d, want %d", tc.t, got, tc.want)
		}
	}
}

func TestParseWhen(t *testing.T) {
	loc := time.FixedZone("test", 2*3600)
	now := time.Date(2025, 12, 5, 10, 0, 0, 0, loc)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-05-01T09:00", time.Date(2025, 5, 1, 9, 0, 0, 0, loc)},
		{"2025-05-01", time.Date(2025, 5, 1, 0, 0, 0, 0, loc)},
		{"2025-5-1", time.Date(2025, 5, 1, 0, 0, 0, 0, loc)},
		{"12/24", time.Date(2025, 12, 24, 0, 0, 0, 0, loc)},
		{"1/3", time.Date(2026, 1, 3, 0, 0, 0, 0, loc)},
		{"2025-05-01T07:00:00Z", time.Date(2025, 5, 1, 9, 0, 0, 0, loc)},
	}
	for _, tc := range tests {
		got, err := ParseWhen(tc.in, now)
		if err != nil {
			t.Fatalf("ParseWhen(%q): %v", tc.in, err)
		}
		if !got.Equal(tc.want) {
			t.Errorf("ParseWhen(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	if _, err := ParseWhen("someday", now); err == nil {
		t.Fatalf("expected error for unparseable date")
	}
}

func TestParseMonth(t *testing.T) {
	got, err := ParseMonth("2025-06", time.UTC)
	if err != nil {
		t.Fatalf("ParseMonth: %v", err)
	}
	if !got.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("ParseMonth = %v", got)
	}
	if _, err := ParseMonth("June", time.UTC); err == nil {
		t.Fatalf("expected error")
	}
}
