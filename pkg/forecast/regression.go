// Package forecast predicts future revenue and product demand from
// historical transactions using linear models fit per call.
package forecast

import "math"

// ridgeEpsilon is added to the normal-equation diagonal to keep the
// system solvable when feature columns are collinear.
const ridgeEpsilon = 1e-8

// linearModel is an ordinary-least-squares fit with an intercept.
type linearModel struct {
	intercept float64
	weights   []float64
}

// fitLinear solves the normal equations for X*w = y with a small ridge
// term. Rows of x are observations; an intercept column is added
// internally.
func fitLinear(x [][]float64, y []float64) linearModel {
	n := len(x)
	if n == 0 || len(x[0]) == 0 {
		return linearModel{}
	}
	p := len(x[0]) + 1

	// A = X'X + eps*I, b = X'y, with X carrying a leading 1s column.
	a := make([][]float64, p)
	for i := range a {
		a[i] = make([]float64, p)
	}
	b := make([]float64, p)

	row := make([]float64, p)
	for i := 0; i < n; i++ {
		row[0] = 1
		copy(row[1:], x[i])
		for j := 0; j < p; j++ {
			for k := 0; k < p; k++ {
				a[j][k] += row[j] * row[k]
			}
			b[j] += row[j] * y[i]
		}
	}
	for j := 0; j < p; j++ {
		a[j][j] += ridgeEpsilon
	}

	w := solveGaussian(a, b)
	return linearModel{intercept: w[0], weights: w[1:]}
}

func (m linearModel) predict(features []float64) float64 {
	out := m.intercept
	for i, w := range m.weights {
		if i < len(features) {
			out += w * features[i]
		}
	}
	return out
}

// solveGaussian solves a*x = b in place with partial pivoting. The
// ridge term guarantees a nonzero pivot in practice; a degenerate pivot
// zeroes that coefficient.
func solveGaussian(a [][]float64, b []float64) []float64 {
	n := len(a)
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		if math.Abs(a[col][col]) < 1e-12 {
			continue
		}
		for r := col + 1; r < n; r++ {
			f := a[r][col] / a[col][col]
			for c := col; c < n; c++ {
				a[r][c] -= f * a[col][c]
			}
			b[r] -= f * b[col]
		}
	}

	x := make([]float64, n)
	for row := n - 1; row >= 0; row-- {
		if math.Abs(a[row][row]) < 1e-12 {
			x[row] = 0
			continue
		}
		sum := b[row]
		for c := row + 1; c < n; c++ {
			sum -= a[row][c] * x[c]
		}
		x[row] = sum / a[row][row]
	}
	return x
}

// linearTrend fits y = slope*t + intercept over t = 0..n-1 with the
// closed-form simple-regression solution.
func linearTrend(y []float64) (slope, intercept float64) {
	n := float64(len(y))
	if n == 0 {
		return 0, 0
	}
	if n == 1 {
		return 0, y[0]
	}

	var sumT, sumY, sumTY, sumTT float64
	for i, v := range y {
		t := float64(i)
		sumT += t
		sumY += v
		sumTY += t * v
		sumTT += t * t
	}
	denom := n*sumTT - sumT*sumT
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumTY - sumT*sumY) / denom
	intercept = (sumY - slope*sumT) / n
	return slope, intercept
}
