package service

import (
	"testing"
	"time"
)

func TestDaysChargedMinimumOneDay(t *testing.T) {
	start := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		elapsed time.Duration
		want    int
	}{
		{"five minutes", 5 * time.Minute, 1},
		{"twenty-three hours", 23 * time.Hour, 1},
		{"exactly one day", 24 * time.Hour, 1},
		{"one day three hours", 27 * time.Hour, 1},
		{"two days", 48 * time.Hour, 2},
		{"two days one minute", 48*time.Hour + time.Minute, 2},
		{"a week and a half day", 7*24*time.Hour + 12*time.Hour, 7},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := daysCharged(start, start.Add(tc.elapsed))
			if got != tc.want {
				t.Fatalf("daysCharged(%v) = %d, want %d", tc.elapsed, got, tc.want)
			}
		})
	}
}

func TestDaysChargedAcrossZones(t *testing.T) {
	// Billing normalizes to UTC; the same instant in different zones must
	// bill identically.
	start := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	end := start.Add(49 * time.Hour)

	sp := time.FixedZone("America/Sao_Paulo", -3*60*60)
	if got := daysCharged(start.In(sp), end); got != 2 {
		t.Fatalf("daysCharged with zoned start = %d, want 2", got)
	}
}

func TestRoundCharge(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{100.0, 100.0},
		{33.333, 33.33},
		{99.995, 100.0},
		{0.005, 0.01},
		{149.999, 150.0},
	}

	for _, tc := range cases {
		if got := roundCharge(tc.in); got != tc.want {
			t.Fatalf("roundCharge(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestBillAt(t *testing.T) {
	start := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	bill := billAt(100.0)

	days, total := bill(start, start.Add(5*time.Minute))
	if days != 1 || total != 100.0 {
		t.Fatalf("immediate return billed %d day(s) at %v, want 1 day at 100.00", days, total)
	}

	days, total = bill(start, start.Add(3*24*time.Hour))
	if days != 3 || total != 300.0 {
		t.Fatalf("three-day rental billed %d day(s) at %v, want 3 days at 300.00", days, total)
	}
}
