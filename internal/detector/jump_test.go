package detector

import (
	"math"
	"testing"
)

func TestJumps_Symmetry(t *testing.T) {
	timestamps := []int64{100, 160, 220}
	series := []float64{100, 150, 100}

	events := Jumps("SAP", timestamps, series, 10, 10)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Timestamp != 160 || math.Abs(events[0].Percent-50.0) > 1e-9 {
		t.Errorf("expected +50%% at ts 160, got %+v", events[0])
	}
	if events[1].Timestamp != 220 || math.Abs(events[1].Percent-(-100.0/3.0)) > 1e-6 {
		t.Errorf("expected -33.33%% at ts 220, got %+v", events[1])
	}

	jumps, drops := SplitJumps(events)
	if len(jumps) != 1 || len(drops) != 1 {
		t.Errorf("expected 1 jump and 1 drop, got %d/%d", len(jumps), len(drops))
	}
}

func TestJumps_LengthMismatch(t *testing.T) {
	events := Jumps("SAP", []int64{1, 2}, []float64{100, 150, 100}, 10, 10)
	if len(events) != 0 {
		t.Errorf("expected no events on mismatched input, got %d", len(events))
	}
}

func TestJumps_BelowThreshold(t *testing.T) {
	timestamps := []int64{1, 2, 3}
	series := []float64{100, 104, 100}
	if events := Jumps("SAP", timestamps, series, 5, 5); len(events) != 0 {
		t.Errorf("expected no events below threshold, got %d", len(events))
	}
}

func TestJumps_NegativeDownThreshold(t *testing.T) {
	// thresholdDown may carry either sign; only its magnitude matters.
	timestamps := []int64{1, 2}
	series := []float64{100, 80}
	if events := Jumps("SAP", timestamps, series, 10, -10); len(events) != 1 {
		t.Fatalf("expected 1 drop with negative threshold, got %d", len(events))
	}
}

func TestRecurring_MapsSamplesToMinutes(t *testing.T) {
	// 24-sample sine over 240 minute-spaced points: period 24 samples at
	// a 1-minute time scale.
	n := 240
	timestamps := make([]int64, n)
	series := make([]float64, n)
	for i := 0; i < n; i++ {
		timestamps[i] = int64(1700000000 + i*60)
		series[i] = 100 + 5*math.Sin(2*math.Pi*float64(i)/24)
	}
	events := Recurring("SAP", timestamps, series, 0.5)
	if len(events) == 0 {
		t.Fatal("expected at least one recurring event")
	}
	found := false
	for _, e := range events {
		if e.MinutesPeriod >= 23 && e.MinutesPeriod <= 25 {
			found = true
		}
		if e.TimeScale != 1.0 {
			t.Errorf("expected 1-minute time scale, got %v", e.TimeScale)
		}
	}
	if !found {
		t.Errorf("expected a ~24 minute period, got %+v", events)
	}
}

func TestRecurring_TooFewTimestamps(t *testing.T) {
	if events := Recurring("SAP", []int64{1}, []float64{100}, 0.5); len(events) != 0 {
		t.Errorf("expected no events, got %d", len(events))
	}
}
