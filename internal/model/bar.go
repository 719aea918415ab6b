package model

import "time"

// Indicators holds the technical indicators a provider may attach to a bar.
// All fields are zero when the provider cannot compute them; downstream
// detectors never depend on them.
type Indicators struct {
	SMA        float64
	EMA        float64
	RSI        float64
	Stochastic float64
	MACD       float64
	MACDSignal float64
	MACDHist   float64
}

// RawBar is a single OHLCV sample as returned by a provider, before the
// store assigns its canonical timestamp.
type RawBar struct {
	Time       time.Time
	Open       float64
	High       float64
	Low        float64
	Close      float64
	Volume     float64
	Indicators Indicators
}

// Bar is a persisted OHLCV sample. Timestamp is epoch seconds and unique
// within a symbol's series.
type Bar struct {
	Symbol     string
	Timestamp  int64
	Open       float64
	High       float64
	Low        float64
	Close      float64
	Volume     float64
	Indicators Indicators
}

// Closes extracts the close prices of a bar series.
func Closes(bars []Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// Timestamps extracts the timestamps of a bar series.
func Timestamps(bars []Bar) []int64 {
	ts := make([]int64, len(bars))
	for i, b := range bars {
		ts[i] = b.Timestamp
	}
	return ts
}
