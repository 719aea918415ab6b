package detector

import "testing"

func constant(n int, v float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return s
}

func TestOutliers_ShiftedSeries(t *testing.T) {
	series := [][]float64{
		{100, 101, 102, 101, 100},
		{100, 102, 101, 100, 101},
		{101, 100, 102, 101, 100},
		{200, 201, 202, 201, 200},
	}
	got := Outliers(series, 0.8)
	if len(got) != 1 || got[0] != 3 {
		t.Errorf("expected [3], got %v", got)
	}
}

func TestOutliers_TooFew(t *testing.T) {
	series := [][]float64{{1, 2}, {100, 200}}
	if got := Outliers(series, 0.8); got != nil {
		t.Errorf("expected nil for fewer than 3 series, got %v", got)
	}
}

func TestOutliers_AllIdentical(t *testing.T) {
	series := [][]float64{constant(5, 7), constant(5, 7), constant(5, 7)}
	if got := Outliers(series, 0.8); got != nil {
		t.Errorf("expected nil for identical series, got %v", got)
	}
}

func TestClusters_TwoGroups(t *testing.T) {
	series := [][]float64{
		{0, 1, 2, 3, 4},
		{0, 1, 2, 3, 4},
		{4, 3, 2, 1, 0},
		{4, 3, 2, 1, 0},
	}
	labels := Clusters(series, 1.0, 2)
	if len(labels) != 4 {
		t.Fatalf("expected 4 labels, got %d", len(labels))
	}
	if labels[0] != labels[1] || labels[2] != labels[3] {
		t.Errorf("expected pairwise grouping, got %v", labels)
	}
	if labels[0] == labels[2] {
		t.Errorf("expected distinct groups, got %v", labels)
	}
}

func TestIsOutlier_ShiftedCandidate(t *testing.T) {
	historical := [][]float64{constant(10, 100), constant(10, 100), constant(10, 100)}
	if !IsOutlier(historical, constant(10, 200), 0.5) {
		t.Error("expected a shifted candidate to be an outlier")
	}
}

func TestIsOutlier_ConformingCandidate(t *testing.T) {
	historical := [][]float64{constant(10, 100), constant(10, 100), constant(10, 100)}
	if IsOutlier(historical, constant(10, 100), 0.5) {
		t.Error("expected a conforming candidate not to be an outlier")
	}
}

func TestIsOutlier_EmptyInput(t *testing.T) {
	if IsOutlier(nil, constant(5, 100), 0.5) {
		t.Error("expected false without history")
	}
	if IsOutlier([][]float64{constant(5, 100)}, nil, 0.5) {
		t.Error("expected false without candidate")
	}
}

func TestDBSCAN_LinePoints(t *testing.T) {
	// Points 0, 1, 2 and a far point at 10 on a line.
	points := []float64{0, 1, 2, 10}
	n := len(points)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
		for j := range matrix[i] {
			d := points[i] - points[j]
			if d < 0 {
				d = -d
			}
			matrix[i][j] = d
		}
	}
	labels := dbscan(matrix, 1.5, 2)
	if labels[0] != 0 || labels[1] != 0 || labels[2] != 0 {
		t.Errorf("expected the near points in cluster 0, got %v", labels)
	}
	if labels[3] != -1 {
		t.Errorf("expected the far point to be noise, got %v", labels)
	}
}
