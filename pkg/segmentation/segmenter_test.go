package segmentation

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hed1ad/retailsense/pkg/retail"
)

// purchases builds count transactions of the given amount for one
// customer, one per day ending at end.
func purchases(customerID string, count int, amount float64, end time.Time) []retail.Transaction {
	txs := make([]retail.Transaction, count)
	for i := range txs {
		txs[i] = retail.Transaction{
			ID:          fmt.Sprintf("%s-%d", customerID, i),
			Timestamp:   end.AddDate(0, 0, -i),
			StoreID:     "STORE001",
			ProductName: "Widget",
			Category:    retail.CategoryClothing,
			UnitPrice:   amount,
			Quantity:    1,
			Subtotal:    amount,
			TotalAmount: amount,
			CustomerID:  customerID,
		}
	}
	return txs
}

func TestComputeRFM(t *testing.T) {
	end := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	var txs []retail.Transaction
	txs = append(txs, purchases("CUST-A", 3, 10, end)...)
	txs = append(txs, purchases("CUST-B", 1, 500, end.AddDate(0, 0, -10))...)

	records := ComputeRFM(txs)
	require.Len(t, records, 2)

	// Sorted by customer ID.
	a, b := records[0], records[1]
	require.Equal(t, "CUST-A", a.CustomerID)
	require.Equal(t, "CUST-B", b.CustomerID)

	// Recency is relative to the dataset's latest timestamp.
	assert.Equal(t, 0, a.Recency)
	assert.Equal(t, 10, b.Recency)
	assert.Equal(t, 3, a.Frequency)
	assert.Equal(t, 1, b.Frequency)
	assert.InDelta(t, 30, a.Monetary, 1e-9)
	assert.InDelta(t, 500, b.Monetary, 1e-9)

	for _, r := range records {
		assert.GreaterOrEqual(t, r.RecencyScore, 1)
		assert.LessOrEqual(t, r.RecencyScore, 5)
		assert.GreaterOrEqual(t, r.FrequencyScore, 1)
		assert.LessOrEqual(t, r.FrequencyScore, 5)
		assert.GreaterOrEqual(t, r.MonetaryScore, 1)
		assert.LessOrEqual(t, r.MonetaryScore, 5)
		assert.Len(t, r.Score, 3)
	}
}

func TestComputeRFMDegenerate(t *testing.T) {
	// Identical customers collapse every quantile bin; scoring must not
	// panic and must stay in range.
	end := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	var txs []retail.Transaction
	for i := 0; i < 5; i++ {
		txs = append(txs, purchases(fmt.Sprintf("CUST-%d", i), 2, 25, end)...)
	}

	records := ComputeRFM(txs)
	require.Len(t, records, 5)
	for _, r := range records {
		assert.GreaterOrEqual(t, r.RecencyScore, 1)
		assert.LessOrEqual(t, r.RecencyScore, 5)
		assert.GreaterOrEqual(t, r.MonetaryScore, 1)
		assert.LessOrEqual(t, r.MonetaryScore, 5)
	}
}

func TestSegmentEmptyInput(t *testing.T) {
	res := NewSegmenter().Segment(nil)
	assert.Equal(t, StatusEmptyInput, res.Status)
}

func TestSegmentInsufficientCustomers(t *testing.T) {
	end := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	txs := purchases("CUST-A", 5, 20, end)

	res := NewSegmenter(WithClusters(4)).Segment(txs)
	assert.Equal(t, StatusInsufficientData, res.Status)
	assert.Empty(t, res.Customers)
}

func TestSegmentSeparatesSpendingGroups(t *testing.T) {
	end := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	var txs []retail.Transaction
	txs = append(txs, purchases("CUST-A1", 4, 10, end)...)
	txs = append(txs, purchases("CUST-A2", 4, 10, end)...)
	txs = append(txs, purchases("CUST-B1", 4, 1000, end)...)
	txs = append(txs, purchases("CUST-B2", 4, 1000, end)...)

	res := NewSegmenter(WithClusters(2)).Segment(txs)
	require.Equal(t, StatusOK, res.Status)
	require.Len(t, res.Customers, 4)

	cluster := make(map[string]int)
	for _, c := range res.Customers {
		cluster[c.CustomerID] = c.Cluster
	}
	assert.Equal(t, cluster["CUST-A1"], cluster["CUST-A2"])
	assert.Equal(t, cluster["CUST-B1"], cluster["CUST-B2"])
	assert.NotEqual(t, cluster["CUST-A1"], cluster["CUST-B1"])

	// Every customer carries a segment name, and segment stats cover
	// the whole population.
	total := 0
	for _, st := range res.Segments {
		total += st.CustomerCount
		assert.Greater(t, st.TotalRevenue, 0.0)
		assert.NotEmpty(t, st.PreferredCategories)
	}
	assert.Equal(t, 4, total)
}

func TestSegmentReproducible(t *testing.T) {
	end := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	var txs []retail.Transaction
	for i := 0; i < 12; i++ {
		amount := float64(10 * (1 + i%4))
		txs = append(txs, purchases(fmt.Sprintf("CUST-%02d", i), 1+i%5, amount, end.AddDate(0, 0, -i))...)
	}

	first := NewSegmenter().Segment(txs)
	second := NewSegmenter().Segment(txs)
	require.Equal(t, StatusOK, first.Status)
	require.Equal(t, first.Status, second.Status)

	// Exactly K clusters come back, labeled 0..K-1; names may merge.
	clusters := make(map[int]bool)
	for _, c := range first.Customers {
		assert.GreaterOrEqual(t, c.Cluster, 0)
		assert.Less(t, c.Cluster, DefaultClusters)
		assert.NotEmpty(t, c.Segment)
		clusters[c.Cluster] = true
	}
	assert.Len(t, clusters, DefaultClusters)

	for i := range first.Customers {
		assert.Equal(t, first.Customers[i].Cluster, second.Customers[i].Cluster)
		assert.Equal(t, first.Customers[i].Segment, second.Customers[i].Segment)
	}
}

func TestComputeLifetimeValue(t *testing.T) {
	end := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	var txs []retail.Transaction
	txs = append(txs, purchases("CUST-A", 4, 10, end)...)
	txs = append(txs, purchases("CUST-B", 4, 1000, end)...)

	values := ComputeLifetimeValue(txs)
	require.Len(t, values, 2)

	a, b := values[0], values[1]
	require.Equal(t, "CUST-A", a.CustomerID)

	assert.Equal(t, 3, a.LifespanDays)
	assert.InDelta(t, 10, a.AvgOrderValue, 1e-9)
	assert.InDelta(t, 1.0, a.PurchaseFrequency, 1e-9)
	assert.InDelta(t, 10*1.0*365, a.PredictedCLV, 1e-9)

	assert.Greater(t, b.PredictedCLV, a.PredictedCLV)
	assert.NotEqual(t, a.Tier, b.Tier)
}

func TestComputeChurnRisk(t *testing.T) {
	end := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	var txs []retail.Transaction
	// Daily shopper, last seen today: active.
	txs = append(txs, purchases("CUST-ACTIVE", 10, 20, end)...)
	// Weekly cadence, then silent for 60 days: high risk.
	for i := 0; i < 5; i++ {
		tx := purchases("CUST-GONE", 1, 20, end.AddDate(0, 0, -60-7*i))
		txs = append(txs, tx...)
	}

	risks := ComputeChurnRisk(txs)
	require.Len(t, risks, 2)

	byID := make(map[string]ChurnRisk)
	for _, r := range risks {
		byID[r.CustomerID] = r
	}

	assert.Equal(t, RiskActive, byID["CUST-ACTIVE"].Risk)
	assert.Equal(t, RiskHigh, byID["CUST-GONE"].Risk)
	assert.Equal(t, 60, byID["CUST-GONE"].DaysSinceLast)
}

func TestComputeJourney(t *testing.T) {
	end := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	var txs []retail.Transaction
	txs = append(txs, purchases("CUST-RETURNING", 5, 10, end)...)
	txs = append(txs, purchases("CUST-NEW", 1, 10, end)...)

	// The returning customer also shops a second category.
	cross := purchases("CUST-RETURNING", 1, 30, end)[0]
	cross.ID = "cross-1"
	cross.Category = retail.CategoryElectronics
	txs = append(txs, cross)

	j := ComputeJourney(txs)
	assert.Equal(t, 1, j.NewCustomers)
	assert.Equal(t, 1, j.ReturningCustomers)
	assert.InDelta(t, 0.5, j.RetentionRate, 1e-9)
	assert.InDelta(t, 0.5, j.CrossSellRate, 1e-9)
	assert.NotEmpty(t, j.PopularFirstCategories)
	assert.Equal(t, retail.CategoryClothing, j.PopularFirstCategories[0])
}
