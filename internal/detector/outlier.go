package detector

import (
	"math"
	"sort"
)

// Outliers flags series that do not belong to any dense cluster of the
// collection. It clusters the pairwise Euclidean distance matrix with
// DBSCAN; noise series are outliers. sensitivity is in (0, 1] and scales
// the neighborhood radius: higher sensitivity means a tighter radius and
// more outliers. Fewer than three series yield no outliers.
func Outliers(series [][]float64, sensitivity float64) []int {
	if len(series) < 3 {
		return nil
	}
	if sensitivity <= 0 || sensitivity > 1 {
		sensitivity = 0.5
	}
	matrix := distanceMatrix(series, euclidean)
	maxDist := 0.0
	for i := range matrix {
		for _, d := range matrix[i] {
			if d > maxDist {
				maxDist = d
			}
		}
	}
	if maxDist == 0 {
		return nil
	}
	epsilon := (1 - sensitivity) * maxDist
	labels := dbscan(matrix, epsilon, 2)
	var outliers []int
	for i, l := range labels {
		if l == -1 {
			outliers = append(outliers, i)
		}
	}
	return outliers
}

// Clusters groups the series by shape similarity: a DTW distance matrix
// (warping band of 2 samples) clustered with DBSCAN. Labels are 0+ for
// cluster membership, -1 for noise.
func Clusters(series [][]float64, epsilon float64, minClusterSize int) []int {
	if len(series) == 0 {
		return nil
	}
	if minClusterSize < 2 {
		minClusterSize = 2
	}
	matrix := distanceMatrix(series, func(a, b []float64) float64 {
		return DTW(a, b, 2)
	})
	return dbscan(matrix, epsilon, minClusterSize)
}

// IsOutlier folds the candidate series into the historical set and checks
// whether it stands apart from the pointwise median of the combined set
// by more than the sensitivity-scaled robust spread. Empty input is never
// an outlier.
func IsOutlier(historical [][]float64, candidate []float64, sensitivity float64) bool {
	if len(candidate) == 0 || len(historical) == 0 {
		return false
	}
	all := make([][]float64, 0, len(historical)+1)
	all = append(all, historical...)
	all = append(all, candidate)
	for _, i := range madOutliers(all, sensitivity) {
		if i == len(all)-1 {
			return true
		}
	}
	return false
}

// madOutliers scores each series by its mean absolute deviation from the
// pointwise median series, normalized by the robust spread of all
// deviations, and flags scores beyond the sensitivity-derived bound.
func madOutliers(series [][]float64, sensitivity float64) []int {
	if sensitivity <= 0 || sensitivity > 1 {
		sensitivity = 0.5
	}
	n := len(series)
	if n < 2 {
		return nil
	}
	width := len(series[0])
	for _, s := range series[1:] {
		if len(s) < width {
			width = len(s)
		}
	}
	if width == 0 {
		return nil
	}

	var residuals []float64
	scores := make([]float64, n)
	column := make([]float64, n)
	for j := 0; j < width; j++ {
		for i := 0; i < n; i++ {
			column[i] = series[i][j]
		}
		med := median(column)
		for i := 0; i < n; i++ {
			r := math.Abs(series[i][j] - med)
			scores[i] += r
			residuals = append(residuals, r)
		}
	}
	for i := range scores {
		scores[i] /= float64(width)
	}

	// Robust spread: MAD of the residuals, falling back to their mean when
	// more than half the residuals are exactly zero.
	spread := median(residuals) * 1.4826
	if spread == 0 {
		sum := 0.0
		for _, r := range residuals {
			sum += r
		}
		spread = sum / float64(len(residuals))
	}
	if spread == 0 {
		return nil
	}

	bound := 3 * (1 - sensitivity)
	if bound < 0.1 {
		bound = 0.1
	}
	var flagged []int
	for i, s := range scores {
		if s/spread > bound {
			flagged = append(flagged, i)
		}
	}
	return flagged
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
