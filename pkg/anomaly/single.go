package anomaly

import (
	"fmt"
	"math"

	"github.com/hed1ad/retailsense/pkg/retail"
	"github.com/hed1ad/retailsense/pkg/stats"
)

// DefaultAssessThreshold is the z-score threshold for the
// single-transaction check.
const DefaultAssessThreshold = 2.0

// Assessment is the verdict for a single candidate transaction checked
// against historical data.
type Assessment struct {
	IsAnomaly bool
	// Score is the max of the component z-scores.
	Score float64
	// Reasons are human-readable explanations for the verdict.
	Reasons []string

	AmountZScore   float64
	QuantityZScore float64
	CategoryZScore float64
}

// Assess checks one candidate transaction against history: z-scores of
// amount and quantity against the full history, plus a
// category-conditional amount z-score. The candidate is anomalous when
// any component exceeds threshold (pass <= 0 for the default of 2).
// With no history the verdict is always non-anomalous, with an
// explicit reason.
func (s *Scorer) Assess(candidate retail.Transaction, history []retail.Transaction, threshold float64) Assessment {
	if threshold <= 0 {
		threshold = DefaultAssessThreshold
	}
	if len(history) == 0 {
		return Assessment{Reasons: []string{"no historical data"}}
	}

	amounts := make([]float64, len(history))
	quantities := make([]float64, len(history))
	var categoryAmounts []float64
	for i, tx := range history {
		amounts[i] = tx.TotalAmount
		quantities[i] = float64(tx.Quantity)
		if tx.Category == candidate.Category {
			categoryAmounts = append(categoryAmounts, tx.TotalAmount)
		}
	}

	a := Assessment{
		AmountZScore:   math.Abs(stats.ZScore(candidate.TotalAmount, amounts)),
		QuantityZScore: math.Abs(stats.ZScore(float64(candidate.Quantity), quantities)),
	}
	if len(categoryAmounts) > 0 {
		a.CategoryZScore = math.Abs(stats.ZScore(candidate.TotalAmount, categoryAmounts))
	}

	a.Score = math.Max(a.AmountZScore, math.Max(a.QuantityZScore, a.CategoryZScore))
	a.IsAnomaly = a.AmountZScore > threshold ||
		a.QuantityZScore > threshold ||
		a.CategoryZScore > threshold

	if a.AmountZScore > threshold {
		a.Reasons = append(a.Reasons, fmt.Sprintf("unusual amount (z-score: %.2f)", a.AmountZScore))
	}
	if a.QuantityZScore > threshold {
		a.Reasons = append(a.Reasons, fmt.Sprintf("unusual quantity (z-score: %.2f)", a.QuantityZScore))
	}
	if a.CategoryZScore > threshold {
		a.Reasons = append(a.Reasons, fmt.Sprintf("unusual for category %s (z-score: %.2f)", candidate.Category, a.CategoryZScore))
	}

	return a
}
