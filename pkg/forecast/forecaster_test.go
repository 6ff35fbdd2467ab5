package forecast

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hed1ad/retailsense/pkg/retail"
)

// hourlyHistory builds one transaction per hour for the given number of
// days with a mild daily revenue cycle.
func hourlyHistory(days int) []retail.Transaction {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	var txs []retail.Transaction
	for h := 0; h < days*24; h++ {
		ts := start.Add(time.Duration(h) * time.Hour)
		amount := 50 + 20*math.Sin(2*math.Pi*float64(ts.Hour())/24)
		txs = append(txs, retail.Transaction{
			ID:          fmt.Sprintf("tx-%04d", h),
			Timestamp:   ts,
			StoreID:     "STORE001",
			ProductName: "Widget",
			Category:    retail.CategoryFood,
			UnitPrice:   amount,
			Quantity:    1,
			Subtotal:    amount,
			TotalAmount: amount,
			CustomerID:  "CUST-1",
		})
	}
	return txs
}

func TestForecastRevenueEmptyInput(t *testing.T) {
	rev := NewForecaster().ForecastRevenue(nil, 7)
	assert.Equal(t, StatusEmptyInput, rev.Status)
}

func TestForecastRevenueInsufficientHistory(t *testing.T) {
	txs := hourlyHistory(10)[:3] // three hourly buckets
	rev := NewForecaster().ForecastRevenue(txs, 7)
	assert.Equal(t, StatusInsufficientData, rev.Status)
	assert.Equal(t, 3, rev.HistoryHours)
	assert.Empty(t, rev.Points)
}

func TestForecastRevenue(t *testing.T) {
	txs := hourlyHistory(10)
	rev := NewForecaster().ForecastRevenue(txs, 2)
	require.Equal(t, StatusOK, rev.Status)
	require.Len(t, rev.Points, 2*24)
	assert.Equal(t, 10*24, rev.HistoryHours)

	var total float64
	prev := txs[len(txs)-1].Timestamp.Truncate(time.Hour)
	for _, p := range rev.Points {
		assert.GreaterOrEqual(t, p.Revenue, 0.0)
		assert.InDelta(t, p.Revenue*0.8, p.Lower, 1e-9)
		assert.InDelta(t, p.Revenue*1.2, p.Upper, 1e-9)
		assert.Equal(t, prev.Add(time.Hour), p.Time)
		prev = p.Time
		total += p.Revenue
	}
	assert.InDelta(t, total, rev.TotalRevenue, 1e-6)

	// The strong daily cycle should be easy to fit.
	assert.Greater(t, rev.Accuracy.R2, 0.5)
	assert.Greater(t, rev.TotalRevenue, 0.0)
}

func TestLinearTrend(t *testing.T) {
	slope, intercept := linearTrend([]float64{1, 3, 5, 7})
	assert.InDelta(t, 2, slope, 1e-9)
	assert.InDelta(t, 1, intercept, 1e-9)

	slope, intercept = linearTrend([]float64{4})
	assert.Equal(t, 0.0, slope)
	assert.Equal(t, 4.0, intercept)

	slope, _ = linearTrend([]float64{5, 5, 5, 5})
	assert.InDelta(t, 0, slope, 1e-9)
}

func TestForecastDemand(t *testing.T) {
	start := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	var txs []retail.Transaction
	for d := 0; d < 10; d++ {
		// "Riser" sells d+1 units on day d, "Flat" a constant 5.
		txs = append(txs, retail.Transaction{
			ID: fmt.Sprintf("r-%d", d), Timestamp: start.AddDate(0, 0, d),
			ProductName: "Riser", Category: retail.CategoryToysGames,
			Quantity: d + 1, UnitPrice: 10, TotalAmount: float64(10 * (d + 1)),
		})
		txs = append(txs, retail.Transaction{
			ID: fmt.Sprintf("f-%d", d), Timestamp: start.AddDate(0, 0, d),
			ProductName: "Flat", Category: retail.CategoryToysGames,
			Quantity: 5, UnitPrice: 10, TotalAmount: 50,
		})
	}

	demands := NewForecaster().ForecastDemand(txs)
	require.Len(t, demands, 2)

	byName := make(map[string]ProductDemand)
	for _, d := range demands {
		byName[d.ProductName] = d
	}

	riser := byName["Riser"]
	assert.Equal(t, TrendIncreasing, riser.Trend)
	assert.InDelta(t, 1.0, riser.Slope, 1e-9)
	assert.Equal(t, 55, riser.TotalSold)
	assert.Greater(t, riser.Predicted7Days, 0.0)

	flat := byName["Flat"]
	assert.Equal(t, TrendStable, flat.Trend)
	assert.InDelta(t, 35, flat.Predicted7Days, 1e-6)

	// Descending total-sold order.
	assert.Equal(t, "Riser", demands[0].ProductName)
}

func TestAnalyzeSeasonality(t *testing.T) {
	txs := hourlyHistory(14)
	s := NewForecaster().AnalyzeSeasonality(txs)

	// Revenue peaks at the sine maximum, hour 6.
	assert.Equal(t, 6, s.PeakHour)
	assert.Len(t, s.HourlyAvgRevenue, 24)
	assert.Len(t, s.DailyAvgRevenue, 7)

	// Flat across days, so no weekend lift.
	assert.InDelta(t, 0, s.WeekendLiftPct, 1.0)
}

func TestClassifyInventory(t *testing.T) {
	start := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	revenues := map[string]float64{
		"Flagship": 50,
		"Second":   25,
		"Third":    15,
		"Tail":     10,
	}
	var txs []retail.Transaction
	i := 0
	for name, rev := range revenues {
		for d := 0; d < 5; d++ {
			txs = append(txs, retail.Transaction{
				ID: fmt.Sprintf("tx-%d-%d", i, d), Timestamp: start.AddDate(0, 0, d),
				ProductName: name, Category: retail.CategoryElectronics,
				Quantity: 1, UnitPrice: rev / 5, TotalAmount: rev / 5,
			})
		}
		i++
	}

	items := NewForecaster().ClassifyInventory(txs)
	require.Len(t, items, 4)

	// Descending revenue with a monotone cumulative share.
	assert.Equal(t, "Flagship", items[0].ProductName)
	assert.Equal(t, "A", items[0].ABCClass)
	assert.Equal(t, "C", items[3].ABCClass)
	assert.InDelta(t, 100, items[3].CumulativeSharePct, 1e-9)

	for _, it := range items {
		assert.Contains(t, []string{"X", "Y", "Z"}, it.XYZClass)
		assert.NotEmpty(t, it.Recommendation)
	}
}
