package detector

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Periods searches the series for periodic components with period lengths
// (in samples) inside [minPeriod, maxPeriod]. It computes a periodogram
// over the mean-removed series and reports every spectral peak whose
// power reaches threshold times the dominant in-range peak; threshold is
// a significance fraction in (0, 1]. With smooth set, the series is
// block-averaged in groups of five before detection. Series too short to
// carry a full cycle yield no periods.
func Periods(series []float64, minPeriod, maxPeriod int, threshold float64, smooth bool) []int {
	data := series
	if smooth {
		data = Smooth(series, 5)
	}
	n := len(data)
	if minPeriod < 2 {
		minPeriod = 2
	}
	if maxPeriod > n/2 {
		maxPeriod = n / 2
	}
	if n < 4 || maxPeriod < minPeriod {
		return nil
	}
	if threshold <= 0 || threshold > 1 {
		threshold = 0.9
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(n)
	centered := make([]float64, n)
	for i, v := range data {
		centered[i] = v - mean
	}

	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, centered)

	// Power spectrum, skipping the DC bin.
	power := make([]float64, len(coeff))
	for k := 1; k < len(coeff); k++ {
		a := cmplx.Abs(coeff[k])
		power[k] = a * a
	}

	inRange := func(k int) (int, bool) {
		if k == 0 {
			return 0, false
		}
		period := (n + k/2) / k // round(n/k)
		return period, period >= minPeriod && period <= maxPeriod
	}

	maxPower := 0.0
	for k := 1; k < len(power); k++ {
		if _, ok := inRange(k); ok && power[k] > maxPower {
			maxPower = power[k]
		}
	}
	if maxPower == 0 {
		return nil
	}

	var periods []int
	seen := make(map[int]bool)
	for k := 1; k < len(power); k++ {
		period, ok := inRange(k)
		if !ok || power[k] < threshold*maxPower {
			continue
		}
		// Keep only local peaks so harmonics of wide lobes collapse.
		if k > 1 && power[k-1] > power[k] {
			continue
		}
		if k+1 < len(power) && power[k+1] > power[k] {
			continue
		}
		if !seen[period] {
			seen[period] = true
			periods = append(periods, period)
		}
	}
	return periods
}
