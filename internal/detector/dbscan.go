package detector

// dbscan clusters points given their pairwise distance matrix. Labels are
// 0+ for cluster membership and -1 for noise. minPts is the minimum
// neighborhood size (the point itself included) for a core point.
func dbscan(matrix [][]float64, epsilon float64, minPts int) []int {
	n := len(matrix)
	const (
		unvisited = -2
		noise     = -1
	)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = unvisited
	}

	neighbors := func(p int) []int {
		var ns []int
		for q := 0; q < n; q++ {
			if matrix[p][q] <= epsilon {
				ns = append(ns, q)
			}
		}
		return ns
	}

	cluster := 0
	for p := 0; p < n; p++ {
		if labels[p] != unvisited {
			continue
		}
		ns := neighbors(p)
		if len(ns) < minPts {
			labels[p] = noise
			continue
		}
		labels[p] = cluster
		// Expand the cluster over the growing seed set.
		for i := 0; i < len(ns); i++ {
			q := ns[i]
			if labels[q] == noise {
				labels[q] = cluster
			}
			if labels[q] != unvisited {
				continue
			}
			labels[q] = cluster
			qns := neighbors(q)
			if len(qns) >= minPts {
				ns = append(ns, qns...)
			}
		}
		cluster++
	}
	return labels
}
