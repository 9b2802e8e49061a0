package entity

import (
	"math"
	"testing"
	"time"
)

func TestBillableAmountRounding(t *testing.T) {
	rate := 10.0
	elapsed := int64(time.Hour/time.Second + 60) // 1h01m

	cases := []struct {
		rounding RoundingPolicy
		want     string
	}{
		{RoundingUp, "20.00"},
		{RoundingDown, "10.00"},
		{RoundingNone, "10.17"},
	}

	for _, c := range cases {
		tt := TimeTracking{HourlyRate: &rate, Rounding: c.rounding}
		amount, ok := tt.BillableAmount(elapsed)
		if !ok {
			t.Fatalf("%s: expected amount to be computed", c.rounding)
		}
		if got := FormatAmount(amount); got != c.want {
			t.Errorf("%s: expected %s, got %s", c.rounding, c.want, got)
		}
	}
}

func TestBillableAmountRequiresRateAndTime(t *testing.T) {
	tt := TimeTracking{Rounding: RoundingNone}
	if _, ok := tt.BillableAmount(3600); ok {
		t.Error("expected no amount without hourly rate")
	}

	rate := 25.0
	tt.HourlyRate = &rate
	if _, ok := tt.BillableAmount(0); ok {
		t.Error("expected no amount for zero elapsed time")
	}
}

func TestElapsedRunningIsRecomputedFromClock(t *testing.T) {
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	tt := TimeTracking{TotalSeconds: 100, IsRunning: true, CurrentStartTime: &start}

	if got := tt.Elapsed(start.Add(5 * time.Second)); got != 105 {
		t.Errorf("expected 105, got %d", got)
	}
	if got := tt.Elapsed(start.Add(90 * time.Second)); got != 190 {
		t.Errorf("expected 190, got %d", got)
	}
	// часы "отстают" от старта
	if got := tt.Elapsed(start.Add(-time.Minute)); got != 100 {
		t.Errorf("expected negative delta to be ignored, got %d", got)
	}
}

func TestElapsedStoppedIsFixed(t *testing.T) {
	tt := TimeTracking{TotalSeconds: 42}
	if got := tt.Elapsed(time.Now().Add(time.Hour)); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
}

func TestFormatElapsed(t *testing.T) {
	if got := FormatElapsed(3661); got != "1:01:01" {
		t.Errorf("expected 1:01:01, got %s", got)
	}
	if got := FormatElapsed(-5); got != "0:00:00" {
		t.Errorf("expected 0:00:00, got %s", got)
	}
}

func TestParseRounding(t *testing.T) {
	if r, err := ParseRounding(""); err != nil || r != RoundingNone {
		t.Errorf("expected none for empty input, got %q %v", r, err)
	}
	if _, err := ParseRounding("nearest"); err != ErrInvalidRounding {
		t.Errorf("expected ErrInvalidRounding, got %v", err)
	}
}

func TestBillableAmountProportionalPrecision(t *testing.T) {
	rate := 10.0
	tt := TimeTracking{HourlyRate: &rate, Rounding: RoundingNone}
	amount, _ := tt.BillableAmount(3660)
	if math.Abs(amount-10.17) > 0.001 {
		t.Errorf("expected ~10.17, got %f", amount)
	}
}
