package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hed1ad/retailsense/pkg/retail"
)

func demoTransactions() []retail.Transaction {
	base := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	mk := func(i int, hour int, cat retail.Category, store, customer string, amount float64, qty int) retail.Transaction {
		return retail.Transaction{
			ID:          fmt.Sprintf("tx-%03d", i),
			Timestamp:   base.Add(time.Duration(hour) * time.Hour),
			StoreID:     store,
			ProductName: string(cat) + " Item",
			Category:    cat,
			UnitPrice:   amount / float64(qty),
			Quantity:    qty,
			Subtotal:    amount,
			TotalAmount: amount,
			CustomerID:  customer,
		}
	}
	return []retail.Transaction{
		mk(0, 0, retail.CategoryElectronics, "STORE001", "CUST-1", 100, 1),
		mk(1, 0, retail.CategoryElectronics, "STORE001", "CUST-1", 200, 2),
		mk(2, 1, retail.CategoryClothing, "STORE001", "CUST-2", 50, 1),
		mk(3, 2, retail.CategoryClothing, "STORE002", "CUST-2", 50, 1),
		mk(4, 3, retail.CategoryFood, "STORE002", "CUST-3", 25, 5),
		mk(5, 4, retail.CategoryFood, "STORE002", "CUST-3", 75, 3),
	}
}

func TestComputeEmpty(t *testing.T) {
	m := Compute(nil)
	assert.Equal(t, 0, m.Summary.TotalTransactions)
	assert.Empty(t, m.TimeSeries)
}

func TestComputeSummary(t *testing.T) {
	m := Compute(demoTransactions())
	s := m.Summary

	assert.InDelta(t, 500, s.TotalRevenue, 1e-9)
	assert.Equal(t, 6, s.TotalTransactions)
	assert.InDelta(t, 500.0/6, s.AvgTransactionValue, 1e-9)
	assert.Equal(t, 13, s.TotalUnitsSold)
	assert.Equal(t, 3, s.UniqueCustomers)
	assert.Equal(t, 2, s.UniqueStores)
	assert.InDelta(t, 500.0/3, s.RevenuePerCustomer, 1e-9)
	assert.InDelta(t, 2.0, s.TransactionsPerCustomer, 1e-9)
}

func TestComputeTimeSeries(t *testing.T) {
	m := Compute(demoTransactions())
	series := m.TimeSeries
	require.Len(t, series, 5)

	// Chronological order, first bucket holds two transactions.
	assert.InDelta(t, 300, series[0].Revenue, 1e-9)
	assert.Equal(t, 2, series[0].TransactionCount)
	for i := 1; i < len(series); i++ {
		assert.True(t, series[i-1].Hour.Before(series[i].Hour))
	}

	// Trailing 3-point moving average at the third bucket.
	assert.InDelta(t, (300.0+50+50)/3, series[2].RevenueMA3, 1e-9)
}

func TestComputeCategories(t *testing.T) {
	m := Compute(demoTransactions())
	require.Len(t, m.Categories, 3)

	// Descending revenue, shares sum to 100.
	assert.Equal(t, retail.CategoryElectronics, m.Categories[0].Category)
	var share float64
	for _, c := range m.Categories {
		share += c.MarketSharePct
	}
	assert.InDelta(t, 100, share, 1e-9)
}

func TestComputeStores(t *testing.T) {
	m := Compute(demoTransactions())
	require.Len(t, m.Stores, 2)

	assert.Equal(t, "STORE001", m.Stores[0].StoreID)
	assert.InDelta(t, 350, m.Stores[0].Revenue, 1e-9)
	assert.Equal(t, 2, m.Stores[0].UniqueCustomers)
}

func TestComputeProducts(t *testing.T) {
	m := Compute(demoTransactions())
	require.Len(t, m.Products, 3)

	// Top product within each category ranks first.
	for _, p := range m.Products {
		assert.Equal(t, 1, p.CategoryRank)
	}
}

func TestCustomerInsights(t *testing.T) {
	m := Compute(demoTransactions())
	ci := m.Customers

	assert.Equal(t, 3, ci.TotalCustomers)
	assert.InDelta(t, 500.0/3, ci.AvgCustomerValue, 1e-9)
	assert.InDelta(t, 2.0, ci.AvgTransactionsPerCust, 1e-9)
}

func TestRealTimeKPIs(t *testing.T) {
	txs := demoTransactions()
	k := RealTimeKPIs(txs, 90*time.Minute)

	// Window anchors on the latest transaction, covering the last two
	// hourly buckets only.
	assert.InDelta(t, 100, k.Revenue, 1e-9)
	assert.Equal(t, 2, k.TransactionCount)
	assert.Equal(t, 1, k.ActiveCustomers)
	assert.InDelta(t, 100.0/90, k.RevenuePerMinute, 1e-9)
}

func TestRealTimeKPIsDefaults(t *testing.T) {
	k := RealTimeKPIs(nil, 0)
	assert.Equal(t, time.Hour, k.Window)
	assert.Zero(t, k.TransactionCount)
}
