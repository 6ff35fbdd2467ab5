// Package stats provides the descriptive statistics shared by the
// analytics packages: means, sample standard deviation, medians,
// linearly interpolated quantiles, ranking and standardization.
package stats

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StdDev returns the sample standard deviation (n-1 denominator).
// Returns 0 when fewer than two values are given.
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := Mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// PopStdDev returns the population standard deviation (n denominator).
func PopStdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := Mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}

// Median returns the middle value (mean of the two middle values for
// even counts), or 0 for an empty slice.
func Median(xs []float64) float64 {
	return Quantile(xs, 0.5)
}

// Quantile returns the q-th quantile (q in [0,1]) using linear
// interpolation between closest ranks. Returns 0 for an empty slice.
func Quantile(xs []float64, q float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, xs)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}

	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// ZScore returns (x - mean) / stddev against the given sample, or 0
// when the sample has no variance.
func ZScore(x float64, sample []float64) float64 {
	sd := StdDev(sample)
	if sd == 0 {
		return 0
	}
	return (x - Mean(sample)) / sd
}

// RankFirst returns 1-based ranks with ties broken by original order,
// i.e. equal values keep their relative input positions.
func RankFirst(xs []float64) []int {
	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return xs[idx[a]] < xs[idx[b]] })

	ranks := make([]int, len(xs))
	for r, i := range idx {
		ranks[i] = r + 1
	}
	return ranks
}

// Standardize rescales each column of rows to zero mean and unit
// variance (population variance). Zero-variance columns become zero.
// The input is not modified.
func Standardize(rows [][]float64) [][]float64 {
	if len(rows) == 0 {
		return nil
	}
	cols := len(rows[0])

	means := make([]float64, cols)
	sds := make([]float64, cols)
	col := make([]float64, len(rows))
	for j := 0; j < cols; j++ {
		for i, row := range rows {
			col[i] = row[j]
		}
		means[j] = Mean(col)
		sds[j] = PopStdDev(col)
	}

	out := make([][]float64, len(rows))
	for i, row := range rows {
		scaled := make([]float64, cols)
		for j, v := range row {
			if sds[j] > 0 {
				scaled[j] = (v - means[j]) / sds[j]
			}
		}
		out[i] = scaled
	}
	return out
}
