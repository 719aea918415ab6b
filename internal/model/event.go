package model

// JumpEvent records a single-step price move that exceeded a threshold.
// Percent is signed: positive for jumps, negative for drops.
type JumpEvent struct {
	Timestamp int64
	Symbol    string
	Percent   float64
}

// RecurringEvent records a periodic component found in a symbol's series.
// MinutesPeriod is the cycle length in minutes, TimeScale the sample
// spacing in minutes of the series it was detected on.
type RecurringEvent struct {
	Symbol        string
	MinutesPeriod int64
	TimeScale     float64
}
