package segmentation

import (
	"math"
	"math/rand"
)

// kMeans partitions points into k clusters by iterative relocation,
// minimizing within-cluster squared distance. It runs nRestarts
// independent k-means++ seeded runs and keeps the best inertia, so a
// fixed seed yields reproducible labels.
func kMeans(points [][]float64, k int, seed int64, nRestarts, maxIter int) []int {
	if len(points) < k || k <= 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(seed))

	bestInertia := math.Inf(1)
	var bestLabels []int
	for run := 0; run < nRestarts; run++ {
		labels, inertia := lloyd(points, k, rng, maxIter)
		if inertia < bestInertia {
			bestInertia = inertia
			bestLabels = labels
		}
	}
	return bestLabels
}

// lloyd runs one k-means++ seeded Lloyd iteration to convergence.
func lloyd(points [][]float64, k int, rng *rand.Rand, maxIter int) ([]int, float64) {
	centroids := seedPlusPlus(points, k, rng)
	dims := len(points[0])
	labels := make([]int, len(points))

	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, p := range points {
			best := nearestCentroid(p, centroids)
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		// Recompute centroids.
		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, dims)
		}
		for i, p := range points {
			c := labels[i]
			counts[c]++
			for d, v := range p {
				sums[c][d] += v
			}
		}
		for c := range centroids {
			if counts[c] == 0 {
				// Re-seed an emptied cluster at a random point.
				centroids[c] = points[rng.Intn(len(points))]
				continue
			}
			centroid := make([]float64, dims)
			for d := range centroid {
				centroid[d] = sums[c][d] / float64(counts[c])
			}
			centroids[c] = centroid
		}
	}

	var inertia float64
	for i, p := range points {
		inertia += sqDist(p, centroids[labels[i]])
	}
	return labels, inertia
}

// seedPlusPlus picks initial centroids with the k-means++ scheme:
// each new centroid is drawn with probability proportional to its
// squared distance from the nearest existing centroid.
func seedPlusPlus(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, points[rng.Intn(len(points))])

	dists := make([]float64, len(points))
	for len(centroids) < k {
		var total float64
		for i, p := range points {
			d := sqDist(p, centroids[0])
			for _, c := range centroids[1:] {
				if dc := sqDist(p, c); dc < d {
					d = dc
				}
			}
			dists[i] = d
			total += d
		}

		if total == 0 {
			// All points coincide with a centroid; any choice works.
			centroids = append(centroids, points[rng.Intn(len(points))])
			continue
		}

		target := rng.Float64() * total
		var cum float64
		picked := len(points) - 1
		for i, d := range dists {
			cum += d
			if cum >= target {
				picked = i
				break
			}
		}
		centroids = append(centroids, points[picked])
	}
	return centroids
}

func nearestCentroid(p []float64, centroids [][]float64) int {
	best := 0
	bestDist := sqDist(p, centroids[0])
	for c := 1; c < len(centroids); c++ {
		if d := sqDist(p, centroids[c]); d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}

func sqDist(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
