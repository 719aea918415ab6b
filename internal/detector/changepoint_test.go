package detector

import (
	"math"
	"testing"
)

func TestChangepoints_MeanShift(t *testing.T) {
	// Level 100 for 50 points, then 110, with small deterministic jitter.
	series := make([]float64, 100)
	for i := range series {
		level := 100.0
		if i >= 50 {
			level = 110.0
		}
		series[i] = level + 0.3*math.Sin(float64(i)*1.7)
	}
	points := Changepoints(series, false)
	if len(points) == 0 {
		t.Fatal("expected a changepoint")
	}
	found := false
	for _, p := range points {
		if p >= 48 && p <= 58 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a changepoint near index 50, got %v", points)
	}
}

func TestChangepoints_StableSeries(t *testing.T) {
	series := make([]float64, 100)
	for i := range series {
		series[i] = 100 + 0.3*math.Sin(float64(i)*1.7)
	}
	if points := Changepoints(series, false); len(points) != 0 {
		t.Errorf("expected no changepoints on a stable series, got %v", points)
	}
}

func TestChangepoints_ConstantSeries(t *testing.T) {
	series := make([]float64, 50)
	for i := range series {
		series[i] = 7
	}
	if points := Changepoints(series, false); points != nil {
		t.Errorf("expected nil for a zero-variance series, got %v", points)
	}
}

func TestChangepoints_Smoothed(t *testing.T) {
	series := make([]float64, 200)
	for i := range series {
		level := 100.0
		if i >= 100 {
			level = 115.0
		}
		series[i] = level + 0.5*math.Sin(float64(i)*2.3)
	}
	points := Changepoints(series, true)
	if len(points) == 0 {
		t.Fatal("expected a changepoint on the smoothed series")
	}
	// Smoothing in blocks of five divides indices by five.
	found := false
	for _, p := range points {
		if p >= 19 && p <= 24 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a changepoint near index 20, got %v", points)
	}
}
