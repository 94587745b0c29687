package patterns

import (
	"math"
	"math/rand"
)

// kMeans clusters rows into k groups with seeded random initialization so
// repeated runs over the same input give the same assignment. Returns false
// when there are fewer rows than clusters.
func kMeans(rows [][]float64, k, maxIter int, seed int64) ([]int, [][]float64, bool) {
	n := len(rows)
	if n < k || k < 1 {
		return nil, nil, false
	}
	dim := len(rows[0])
	rng := rand.New(rand.NewSource(seed))

	centroids := make([][]float64, k)
	for i, p := range rng.Perm(n)[:k] {
		centroids[i] = append([]float64(nil), rows[p]...)
	}

	assignments := make([]int, n)
	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, row := range rows {
			best, bestDist := 0, math.Inf(1)
			for c, centroid := range centroids {
				d := squaredDistance(row, centroid)
				if d < bestDist {
					bestDist = d
					best = c
				}
			}
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}
		counts := make([]int, k)
		sums := make([][]float64, k)
		for c := range sums {
			sums[c] = make([]float64, dim)
		}
		for i, row := range rows {
			c := assignments[i]
			counts[c]++
			for j, v := range row {
				sums[c][j] += v
			}
		}
		for c := range centroids {
			if counts[c] == 0 {
				continue // empty cluster keeps its centroid
			}
			for j := range centroids[c] {
				centroids[c][j] = sums[c][j] / float64(counts[c])
			}
		}
	}
	return assignments, centroids, true
}

func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func euclideanDistance(a, b []float64) float64 {
	return math.Sqrt(squaredDistance(a, b))
}

// silhouette returns the mean silhouette score over all points. Points in
// singleton clusters contribute 0.
func silhouette(rows [][]float64, assignments []int, k int) float64 {
	n := len(rows)
	if n < 2 {
		return 0
	}
	counts := make([]int, k)
	for _, a := range assignments {
		counts[a]++
	}
	var total float64
	for i := range rows {
		own := assignments[i]
		if counts[own] < 2 {
			continue
		}
		// a: mean distance to own cluster, b: mean distance to nearest other.
		sums := make([]float64, k)
		for j := range rows {
			if i == j {
				continue
			}
			sums[assignments[j]] += euclideanDistance(rows[i], rows[j])
		}
		a := sums[own] / float64(counts[own]-1)
		b := math.Inf(1)
		for c := 0; c < k; c++ {
			if c == own || counts[c] == 0 {
				continue
			}
			if m := sums[c] / float64(counts[c]); m < b {
				b = m
			}
		}
		if math.IsInf(b, 1) {
			continue
		}
		if max := math.Max(a, b); max > 0 {
			total += (b - a) / max
		}
	}
	return total / float64(n)
}
