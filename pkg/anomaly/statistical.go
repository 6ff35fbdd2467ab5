package anomaly

import (
	"math"

	"github.com/hed1ad/retailsense/pkg/retail"
	"github.com/hed1ad/retailsense/pkg/stats"
)

// Statistical rule thresholds.
const (
	// zScoreThreshold flags amounts and quantities beyond 3 standard
	// deviations.
	zScoreThreshold = 3.0
	// iqrMultiplier is deliberately wide: 3x IQR beyond Q1/Q3.
	iqrMultiplier = 3.0
	// Business hours window; transactions outside it are suspicious.
	openingHour = 6
	closingHour = 23
)

// detectStatistical applies four independent rules and unions their
// flagged rows: |z(amount)|>3, 3xIQR on amount, |z(quantity)|>3, and
// hour outside 06:00-23:00. Rows flagged by the amount z rule score
// that z-score; all other flagged rows score 1.0. Signals with zero
// variance produce no flags.
func (s *Scorer) detectStatistical(txs []retail.Transaction) Detection {
	det := Detection{Status: StatusOK, Method: MethodStatistical}
	if len(txs) == 0 {
		det.Status = StatusEmptyInput
		return det
	}

	amounts := make([]float64, len(txs))
	quantities := make([]float64, len(txs))
	for i, tx := range txs {
		amounts[i] = tx.TotalAmount
		quantities[i] = float64(tx.Quantity)
	}

	flagged := make(map[int]bool)
	amountZ := make(map[int]float64)

	// Rule 1: z-score on total amount.
	if sd := stats.StdDev(amounts); sd > 0 {
		mean := stats.Mean(amounts)
		for i, a := range amounts {
			z := math.Abs((a - mean) / sd)
			if z > zScoreThreshold {
				flagged[i] = true
				amountZ[i] = z
			}
		}
	}

	// Rule 2: interquartile range on total amount. When the IQR
	// collapses to zero the fences degenerate to the quartiles
	// themselves; the strict inequalities keep a constant column from
	// flagging anything.
	q1 := stats.Quantile(amounts, 0.25)
	q3 := stats.Quantile(amounts, 0.75)
	iqr := q3 - q1
	lower := q1 - iqrMultiplier*iqr
	upper := q3 + iqrMultiplier*iqr
	for i, a := range amounts {
		if a < lower || a > upper {
			flagged[i] = true
		}
	}

	// Rule 3: z-score on quantity.
	if sd := stats.StdDev(quantities); sd > 0 {
		mean := stats.Mean(quantities)
		for i, q := range quantities {
			if math.Abs((q-mean)/sd) > zScoreThreshold {
				flagged[i] = true
			}
		}
	}

	// Rule 4: time of day.
	for i, tx := range txs {
		h := tx.Hour()
		if h < openingHour || h > closingHour {
			flagged[i] = true
		}
	}

	for i := range flagged {
		a := Anomaly{
			Index:       i,
			Transaction: txs[i],
			Score:       1.0,
		}
		if z, ok := amountZ[i]; ok {
			a.Score = z
			a.AmountZScore = z
		}
		a.StatisticalScore = a.Score
		det.Anomalies = append(det.Anomalies, a)
	}

	sortByScore(det.Anomalies)
	return det
}
