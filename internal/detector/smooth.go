package detector

// Smooth block-averages the series: every n consecutive points collapse
// into their mean. A trailing partial block is averaged over its own
// length. n < 2 returns a copy of the input.
func Smooth(series []float64, n int) []float64 {
	if n < 2 {
		out := make([]float64, len(series))
		copy(out, series)
		return out
	}
	var out []float64
	sum := 0.0
	count := 0
	for _, v := range series {
		sum += v
		count++
		if count == n {
			out = append(out, sum/float64(count))
			sum = 0.0
			count = 0
		}
	}
	if count > 0 {
		out = append(out, sum/float64(count))
	}
	return out
}

// SplitSeasons chunks a series into consecutive windows of one season
// each, where a season spans minutesPerPeriod at a sample spacing of
// minutesPerStep. A trailing partial window is dropped. Invalid
// parameters yield nil.
func SplitSeasons(series []float64, minutesPerPeriod, minutesPerStep int64) [][]float64 {
	if minutesPerStep <= 0 || minutesPerPeriod < minutesPerStep {
		return nil
	}
	pivot := int(minutesPerPeriod / minutesPerStep)
	var seasons [][]float64
	window := make([]float64, 0, pivot)
	for _, v := range series {
		window = append(window, v)
		if len(window) == pivot {
			seasons = append(seasons, window)
			window = make([]float64, 0, pivot)
		}
	}
	return seasons
}
