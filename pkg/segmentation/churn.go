package segmentation

import (
	"sort"
	"time"

	"github.com/hed1ad/retailsense/pkg/retail"
)

// ChurnRisk levels, ordered by severity.
const (
	RiskActive = "Active"
	RiskLow    = "Low Risk"
	RiskMedium = "Medium Risk"
	RiskHigh   = "High Risk"
)

// defaultPurchaseGapDays stands in for the average purchase gap when a
// customer has no usable gap history.
const defaultPurchaseGapDays = 30.0

// ChurnRisk describes how overdue a customer's next purchase is
// relative to their own cadence.
type ChurnRisk struct {
	CustomerID     string
	TotalSpent     float64
	AvgTransaction float64
	Frequency      int
	FirstPurchase  time.Time
	LastPurchase   time.Time
	DaysSinceLast  int
	// AvgDaysBetweenPurchases is active days divided by frequency.
	AvgDaysBetweenPurchases float64
	Risk                    string
}

// ComputeChurnRisk flags customers whose silence exceeds multiples of
// their own average purchase gap: over 1x is low risk, over 2x medium,
// over 3x high. "Now" is the dataset's maximum timestamp.
func ComputeChurnRisk(txs []retail.Transaction) []ChurnRisk {
	if len(txs) == 0 {
		return nil
	}

	now := retail.MaxTimestamp(txs)

	type agg struct {
		total float64
		count int
		first time.Time
		last  time.Time
	}
	byCustomer := make(map[string]*agg)
	for _, tx := range txs {
		a := byCustomer[tx.CustomerID]
		if a == nil {
			a = &agg{first: tx.Timestamp, last: tx.Timestamp}
			byCustomer[tx.CustomerID] = a
		}
		a.total += tx.TotalAmount
		a.count++
		if tx.Timestamp.Before(a.first) {
			a.first = tx.Timestamp
		}
		if tx.Timestamp.After(a.last) {
			a.last = tx.Timestamp
		}
	}

	out := make([]ChurnRisk, 0, len(byCustomer))
	for id, a := range byCustomer {
		daysSince := int(now.Sub(a.last).Hours() / 24)
		daysActive := a.last.Sub(a.first).Hours()/24 + 1
		avgGap := daysActive / float64(a.count)

		effectiveGap := avgGap
		if effectiveGap == 0 {
			effectiveGap = defaultPurchaseGapDays
		}

		risk := RiskActive
		switch since := float64(daysSince); {
		case since > effectiveGap*3:
			risk = RiskHigh
		case since > effectiveGap*2:
			risk = RiskMedium
		case since > effectiveGap:
			risk = RiskLow
		}

		out = append(out, ChurnRisk{
			CustomerID:              id,
			TotalSpent:              a.total,
			AvgTransaction:          a.total / float64(a.count),
			Frequency:               a.count,
			FirstPurchase:           a.first,
			LastPurchase:            a.last,
			DaysSinceLast:           daysSince,
			AvgDaysBetweenPurchases: avgGap,
			Risk:                    risk,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CustomerID < out[j].CustomerID })
	return out
}
