// Package detector implements the statistical detectors that run over
// stored price series: slope and trend, jump/drop, seasonality,
// changepoint localization, and outlier analysis. All detectors are pure
// functions over float64 slices with no knowledge of storage; malformed
// or insufficient input yields an empty or zero result instead of an
// error.
package detector

// Slope returns the average first-difference over the last lastN points
// of series. It returns 0.0 when lastN is zero, the series is empty, or
// lastN exceeds the series length.
func Slope(series []float64, lastN int) float64 {
	if lastN == 0 || len(series) == 0 || lastN > len(series) {
		return 0.0
	}
	points := series[len(series)-lastN:]
	total := 0.0
	for i := 0; i+1 < len(points); i++ {
		total += (points[i+1] - points[i]) / float64(lastN)
	}
	return total
}

// Trend checks whether the series is accelerating up or down. It computes
// the slopes over the last 5, 10 and 15 points; the trend fires only when
// all three share the same sign, the magnitudes strictly increase toward
// the shortest window, and the percent change from 5 bars ago to now is
// beyond the direction's threshold. It returns that signed percentage,
// else 0.0. Series shorter than 15 points never fire.
func Trend(series []float64, thresholdUp, thresholdDown float64) float64 {
	if len(series) < 15 {
		return 0.0
	}
	slope5 := Slope(series, 5)
	slope10 := Slope(series, 10)
	slope15 := Slope(series, 15)

	end := len(series) - 1
	start := end - 5
	if series[start] == 0 {
		return 0.0
	}
	percentage := (series[end] - series[start]) / series[start] * 100.0

	if slope5 < 0 && slope10 < 0 && slope15 < 0 {
		if slope5 < slope10 && slope10 < slope15 {
			if abs(percentage) > abs(thresholdDown) {
				return percentage
			}
		}
	} else if slope5 > 0 && slope10 > 0 && slope15 > 0 {
		if slope5 > slope10 && slope10 > slope15 {
			if percentage > thresholdUp {
				return percentage
			}
		}
	}
	return 0.0
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
