package detector

import "math"

// DTW computes the dynamic time warping distance between two series using
// squared pointwise costs, returning the square root of the accumulated
// cost along the optimal alignment. window restricts the warping band
// (Sakoe-Chiba); window <= 0 means unconstrained. Either series being
// empty yields +Inf unless both are empty, which yields 0.
func DTW(a, b []float64, window int) float64 {
	n, m := len(a), len(b)
	if n == 0 && m == 0 {
		return 0
	}
	if n == 0 || m == 0 {
		return math.Inf(1)
	}
	gap := n - m
	if gap < 0 {
		gap = -gap
	}
	if window > 0 && window < gap {
		window = gap
	}

	prev := make([]float64, m+1)
	cur := make([]float64, m+1)
	for j := range prev {
		prev[j] = math.Inf(1)
	}
	prev[0] = 0

	for i := 1; i <= n; i++ {
		for j := range cur {
			cur[j] = math.Inf(1)
		}
		lo, hi := 1, m
		if window > 0 {
			lo = i - window
			if lo < 1 {
				lo = 1
			}
			hi = i + window
			if hi > m {
				hi = m
			}
		}
		for j := lo; j <= hi; j++ {
			d := a[i-1] - b[j-1]
			cost := d * d
			best := prev[j] // insertion
			if prev[j-1] < best {
				best = prev[j-1] // match
			}
			if cur[j-1] < best {
				best = cur[j-1] // deletion
			}
			cur[j] = cost + best
		}
		prev, cur = cur, prev
	}
	return math.Sqrt(prev[m])
}

// euclidean returns the pointwise Euclidean distance between two aligned
// series, truncated to the shorter length.
func euclidean(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// distanceMatrix builds a symmetric pairwise distance matrix over the
// given series collection.
func distanceMatrix(series [][]float64, dist func(a, b []float64) float64) [][]float64 {
	n := len(series)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := dist(series[i], series[j])
			matrix[i][j] = d
			matrix[j][i] = d
		}
	}
	return matrix
}
