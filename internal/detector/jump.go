package detector

import "StockPulse/internal/model"

// Jumps scans adjacent pairs of the price series and emits an event for
// every percent change that exceeds thresholdUp (rising) or whose
// magnitude exceeds thresholdDown (falling). Percent is signed: negative
// for drops. thresholdDown is compared by absolute value, so callers may
// configure it with either sign. timestamps and series must be parallel;
// a length mismatch yields no events.
func Jumps(symbol string, timestamps []int64, series []float64, thresholdUp, thresholdDown float64) []model.JumpEvent {
	var events []model.JumpEvent
	if len(timestamps) != len(series) {
		return events
	}
	for i := 1; i < len(series); i++ {
		if series[i-1] == 0 {
			continue
		}
		change := series[i] - series[i-1]
		if change < 0 {
			percentage := -change / series[i-1] * 100.0
			if abs(thresholdDown) < percentage {
				events = append(events, model.JumpEvent{
					Timestamp: timestamps[i],
					Symbol:    symbol,
					Percent:   -percentage,
				})
			}
		} else {
			percentage := change / series[i-1] * 100.0
			if thresholdUp < percentage {
				events = append(events, model.JumpEvent{
					Timestamp: timestamps[i],
					Symbol:    symbol,
					Percent:   percentage,
				})
			}
		}
	}
	return events
}

// SplitJumps separates a signed jump event slice into rises and falls.
func SplitJumps(events []model.JumpEvent) (jumps, drops []model.JumpEvent) {
	for _, e := range events {
		if e.Percent < 0 {
			drops = append(drops, e)
		} else {
			jumps = append(jumps, e)
		}
	}
	return jumps, drops
}

// Recurring searches a minute-spaced series for periodic components and
// maps each detected period from samples to minutes using the spacing of
// the first two timestamps. Fewer than two timestamps yields no events.
func Recurring(symbol string, timestamps []int64, series []float64, threshold float64) []model.RecurringEvent {
	var events []model.RecurringEvent
	if len(timestamps) < 2 {
		return events
	}
	timeDiff := (timestamps[1] - timestamps[0]) / 60 // sample spacing in minutes
	if timeDiff <= 0 {
		return events
	}
	for _, p := range Periods(series, 3, 300, threshold, false) {
		events = append(events, model.RecurringEvent{
			Symbol:        symbol,
			MinutesPeriod: timeDiff * int64(p),
			TimeScale:     float64(timeDiff),
		})
	}
	return events
}
