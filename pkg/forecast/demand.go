package forecast

import (
	"sort"
	"time"

	"github.com/hed1ad/retailsense/pkg/retail"
)

// topProductCount bounds demand forecasting to the highest-volume
// products.
const topProductCount = 10

// trendSlopeThreshold separates stable demand from a real trend, in
// units per day.
const trendSlopeThreshold = 0.1

// Trend directions for product demand.
const (
	TrendIncreasing = "Increasing"
	TrendDecreasing = "Decreasing"
	TrendStable     = "Stable"
)

// ProductDemand is a per-product demand forecast.
type ProductDemand struct {
	ProductName   string
	Category      retail.Category
	TotalSold     int
	AvgDailySales float64
	// Slope is the fitted daily trend in units per day.
	Slope float64
	Trend string
	// Predicted7Days is total predicted demand over the next week,
	// clamped at zero per day.
	Predicted7Days float64
	HistoryDays    int
}

// ForecastDemand fits a daily linear trend for each of the top products
// by units sold and projects demand one week out. Products are returned
// in descending total-sold order.
func (f *Forecaster) ForecastDemand(txs []retail.Transaction) []ProductDemand {
	if len(txs) == 0 {
		return nil
	}

	type productKey struct {
		name     string
		category retail.Category
	}
	totals := make(map[productKey]int)
	daily := make(map[productKey]map[time.Time]int)
	for _, tx := range txs {
		k := productKey{tx.ProductName, tx.Category}
		totals[k] += tx.Quantity
		d := daily[k]
		if d == nil {
			d = make(map[time.Time]int)
			daily[k] = d
		}
		day := tx.Timestamp.Truncate(24 * time.Hour)
		d[day] += tx.Quantity
	}

	keys := make([]productKey, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if totals[keys[i]] != totals[keys[j]] {
			return totals[keys[i]] > totals[keys[j]]
		}
		return keys[i].name < keys[j].name
	})
	if len(keys) > topProductCount {
		keys = keys[:topProductCount]
	}

	out := make([]ProductDemand, 0, len(keys))
	for _, k := range keys {
		series := dailySeries(daily[k])
		slope, intercept := linearTrend(series)

		trend := TrendStable
		switch {
		case slope > trendSlopeThreshold:
			trend = TrendIncreasing
		case slope < -trendSlopeThreshold:
			trend = TrendDecreasing
		}

		var predicted float64
		for d := 0; d < 7; d++ {
			p := slope*float64(len(series)+d) + intercept
			if p < 0 {
				p = 0
			}
			predicted += p
		}

		out = append(out, ProductDemand{
			ProductName:    k.name,
			Category:       k.category,
			TotalSold:      totals[k],
			AvgDailySales:  float64(totals[k]) / float64(len(series)),
			Slope:          slope,
			Trend:          trend,
			Predicted7Days: predicted,
			HistoryDays:    len(series),
		})
	}
	return out
}

// dailySeries expands per-day totals into a contiguous zero-filled
// slice from the first to the last active day.
func dailySeries(byDay map[time.Time]int) []float64 {
	var first, last time.Time
	started := false
	for d := range byDay {
		if !started || d.Before(first) {
			first = d
		}
		if !started || d.After(last) {
			last = d
		}
		started = true
	}

	var out []float64
	for d := first; !d.After(last); d = d.Add(24 * time.Hour) {
		out = append(out, float64(byDay[d]))
	}
	return out
}
