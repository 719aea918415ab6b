package detector

import (
	"math"
	"testing"
)

func TestSlope_Boundaries(t *testing.T) {
	if got := Slope(nil, 5); got != 0.0 {
		t.Errorf("empty series: expected 0.0, got %v", got)
	}
	if got := Slope([]float64{1, 2, 3}, 0); got != 0.0 {
		t.Errorf("zero window: expected 0.0, got %v", got)
	}
	if got := Slope([]float64{1, 2, 3}, 4); got != 0.0 {
		t.Errorf("window beyond length: expected 0.0, got %v", got)
	}
}

func TestSlope_Linear(t *testing.T) {
	// Differences are constant at 2, so the slope over the last 5 points
	// is 4 pairs * 2/5.
	series := []float64{0, 2, 4, 6, 8, 10, 12}
	got := Slope(series, 5)
	want := 4 * 2.0 / 5.0
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSlope_SignFollowsDirection(t *testing.T) {
	rising := []float64{1, 2, 3, 4, 5}
	falling := []float64{5, 4, 3, 2, 1}
	if Slope(rising, 5) <= 0 {
		t.Error("expected positive slope for rising series")
	}
	if Slope(falling, 5) >= 0 {
		t.Error("expected negative slope for falling series")
	}
}

func TestTrend_TooShort(t *testing.T) {
	series := make([]float64, 14)
	if got := Trend(series, 1, 1); got != 0.0 {
		t.Errorf("expected 0.0 for short series, got %v", got)
	}
}

func TestTrend_AcceleratingUp(t *testing.T) {
	// Quadratic growth: recent slopes are strictly steeper, so the
	// 5-point slope is the most extreme and the trend fires.
	series := make([]float64, 20)
	for i := range series {
		series[i] = 100 + float64(i*i)
	}
	got := Trend(series, 1, 1)
	if got <= 0 {
		t.Fatalf("expected positive trend percentage, got %v", got)
	}
	end := len(series) - 1
	want := (series[end] - series[end-5]) / series[end-5] * 100
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestTrend_AcceleratingDown(t *testing.T) {
	series := make([]float64, 20)
	for i := range series {
		series[i] = 500 - float64(i*i)
	}
	got := Trend(series, 1, 1)
	if got >= 0 {
		t.Errorf("expected negative trend percentage, got %v", got)
	}
}

func TestTrend_FlatDoesNotFire(t *testing.T) {
	series := make([]float64, 20)
	for i := range series {
		series[i] = 100
	}
	if got := Trend(series, 1, 1); got != 0.0 {
		t.Errorf("expected 0.0 for flat series, got %v", got)
	}
}

func TestTrend_DeceleratingDoesNotFire(t *testing.T) {
	// Rising but flattening out: the 5-point slope is the least extreme.
	series := make([]float64, 20)
	for i := range series {
		series[i] = 100 + 50*math.Sqrt(float64(i))
	}
	if got := Trend(series, 0.001, 0.001); got != 0.0 {
		t.Errorf("expected 0.0 for decelerating series, got %v", got)
	}
}
