package analytics

import (
	"time"

	"github.com/hed1ad/retailsense/pkg/retail"
)

// KPIs are rolling-window indicators over the tail of the dataset.
// "Now" is the dataset's maximum timestamp, so replayed historical data
// produces the same KPIs as a live feed would have.
type KPIs struct {
	Window                time.Duration
	WindowEnd             time.Time
	Revenue               float64
	TransactionCount      int
	AvgTransaction        float64
	UnitsSold             int
	ActiveCustomers       int
	ActiveStores          int
	RevenuePerMinute      float64
	TransactionsPerMinute float64
}

// RealTimeKPIs computes KPIs for transactions within lookback of the
// dataset's latest timestamp. A non-positive lookback defaults to one
// hour.
func RealTimeKPIs(txs []retail.Transaction, lookback time.Duration) KPIs {
	if lookback <= 0 {
		lookback = time.Hour
	}
	k := KPIs{Window: lookback}
	if len(txs) == 0 {
		return k
	}

	k.WindowEnd = retail.MaxTimestamp(txs)
	cutoff := k.WindowEnd.Add(-lookback)

	customers := make(map[string]struct{})
	stores := make(map[string]struct{})
	for _, tx := range txs {
		if tx.Timestamp.Before(cutoff) {
			continue
		}
		k.Revenue += tx.TotalAmount
		k.TransactionCount++
		k.UnitsSold += tx.Quantity
		customers[tx.CustomerID] = struct{}{}
		stores[tx.StoreID] = struct{}{}
	}
	k.ActiveCustomers = len(customers)
	k.ActiveStores = len(stores)

	if k.TransactionCount > 0 {
		k.AvgTransaction = k.Revenue / float64(k.TransactionCount)
	}
	minutes := lookback.Minutes()
	if minutes > 0 {
		k.RevenuePerMinute = k.Revenue / minutes
		k.TransactionsPerMinute = float64(k.TransactionCount) / minutes
	}
	return k
}
