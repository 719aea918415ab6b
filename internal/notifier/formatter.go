package notifier

import (
	"fmt"
	"strings"
	"time"

	"StockPulse/internal/model"
)

// FormatJumpAlert renders minute-level jump/drop events for delivery.
func FormatJumpAlert(symbol string, events []model.JumpEvent) string {
	var b strings.Builder
	for _, e := range events {
		arrow := "📈"
		if e.Percent < 0 {
			arrow = "📉"
		}
		b.WriteString(fmt.Sprintf("%s %s %+.2f%% at %s\n",
			arrow, symbol, e.Percent,
			time.Unix(e.Timestamp, 0).UTC().Format("15:04")))
	}
	return b.String()
}

// FormatTrendAlert renders a sustained trend detection.
func FormatTrendAlert(symbol string, percent float64) string {
	direction := "rising"
	if percent < 0 {
		direction = "falling"
	}
	return fmt.Sprintf("%s is %s: %+.2f%% over the last 5 minutes", symbol, direction, percent)
}

// FormatDailySummary renders the nightly per-symbol detection digest.
func FormatDailySummary(symbol string, newBars, jumps, drops int, recurring []model.RecurringEvent, changepoints, outliers []int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s | %s\n", symbol, time.Now().UTC().Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("new bars: %d, jumps: %d, drops: %d\n", newBars, jumps, drops))
	if len(changepoints) > 0 {
		b.WriteString(fmt.Sprintf("changepoints at %v\n", changepoints))
	}
	if len(outliers) > 0 {
		b.WriteString(fmt.Sprintf("outlying sessions at %v\n", outliers))
	}
	for _, r := range recurring {
		b.WriteString(fmt.Sprintf("recurring cycle: %d min\n", r.MinutesPeriod))
	}
	return b.String()
}
