package anomaly

import "github.com/hed1ad/retailsense/pkg/retail"

// Summary is a rollup of combined-method detection over a dataset.
type Summary struct {
	TotalTransactions     int
	AnomalousTransactions int
	// AnomalyRate is a percentage of total transactions.
	AnomalyRate            float64
	TotalAnomalousRevenue  float64
	AvgAnomalyAmount       float64
	MaxAnomalyAmount       float64
	AnomaliesByCategory    map[retail.Category]int
	AnomaliesByStore       map[string]int
	AnomaliesByHour        map[int]int
}

// Summarize runs combined detection over txs and aggregates the
// flagged transactions by category, store and hour.
func (s *Scorer) Summarize(txs []retail.Transaction) Summary {
	sum := Summary{
		TotalTransactions:   len(txs),
		AnomaliesByCategory: make(map[retail.Category]int),
		AnomaliesByStore:    make(map[string]int),
		AnomaliesByHour:     make(map[int]int),
	}
	if len(txs) == 0 {
		return sum
	}

	det, err := s.Detect(txs, MethodCombined)
	if err != nil || det.Status != StatusOK || len(det.Anomalies) == 0 {
		return sum
	}

	var revenue, max float64
	for _, a := range det.Anomalies {
		tx := a.Transaction
		revenue += tx.TotalAmount
		if tx.TotalAmount > max {
			max = tx.TotalAmount
		}
		sum.AnomaliesByCategory[tx.Category]++
		sum.AnomaliesByStore[tx.StoreID]++
		sum.AnomaliesByHour[tx.Hour()]++
	}

	sum.AnomalousTransactions = len(det.Anomalies)
	sum.AnomalyRate = float64(len(det.Anomalies)) / float64(len(txs)) * 100
	sum.TotalAnomalousRevenue = revenue
	sum.AvgAnomalyAmount = revenue / float64(len(det.Anomalies))
	sum.MaxAnomalyAmount = max
	return sum
}
