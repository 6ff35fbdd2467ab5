package forecast

import (
	"sort"
	"time"

	"github.com/hed1ad/retailsense/pkg/retail"
	"github.com/hed1ad/retailsense/pkg/stats"
)

// ABC revenue-share boundaries: A items cover the first 70% of
// cumulative revenue, B the next 20%, C the tail.
const (
	abcABoundary = 0.7
	abcBBoundary = 0.9
)

// InventoryItem is one product's ABC/XYZ classification.
type InventoryItem struct {
	ProductName string
	Category    retail.Category
	Revenue     float64
	UnitsSold   int
	// RevenueSharePct is this product's share of total revenue.
	RevenueSharePct float64
	// CumulativeSharePct is the running revenue share at this product's
	// rank.
	CumulativeSharePct float64
	// Variability is the coefficient of variation of daily demand.
	Variability    float64
	ABCClass       string
	XYZClass       string
	Recommendation string
}

// ClassifyInventory ranks products by revenue into ABC classes and by
// demand variability into XYZ classes, and attaches a stocking
// recommendation for each combination. Items are returned in
// descending revenue order.
func (f *Forecaster) ClassifyInventory(txs []retail.Transaction) []InventoryItem {
	if len(txs) == 0 {
		return nil
	}

	type productKey struct {
		name     string
		category retail.Category
	}
	type agg struct {
		revenue float64
		units   int
		daily   map[time.Time]float64
	}
	byProduct := make(map[productKey]*agg)
	var totalRevenue float64
	for _, tx := range txs {
		k := productKey{tx.ProductName, tx.Category}
		a := byProduct[k]
		if a == nil {
			a = &agg{daily: make(map[time.Time]float64)}
			byProduct[k] = a
		}
		a.revenue += tx.TotalAmount
		a.units += tx.Quantity
		a.daily[tx.Timestamp.Truncate(24*time.Hour)] += float64(tx.Quantity)
		totalRevenue += tx.TotalAmount
	}

	items := make([]InventoryItem, 0, len(byProduct))
	for k, a := range byProduct {
		items = append(items, InventoryItem{
			ProductName: k.name,
			Category:    k.category,
			Revenue:     a.revenue,
			UnitsSold:   a.units,
			Variability: demandVariability(a.daily),
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Revenue != items[j].Revenue {
			return items[i].Revenue > items[j].Revenue
		}
		return items[i].ProductName < items[j].ProductName
	})

	var cumulative float64
	for i := range items {
		share := items[i].Revenue / totalRevenue
		cumulative += share
		items[i].RevenueSharePct = share * 100
		items[i].CumulativeSharePct = cumulative * 100
		switch {
		case cumulative <= abcABoundary:
			items[i].ABCClass = "A"
		case cumulative <= abcBBoundary:
			items[i].ABCClass = "B"
		default:
			items[i].ABCClass = "C"
		}
	}

	// XYZ terciles over variability: X is the steadiest third.
	variabilities := make([]float64, len(items))
	for i, it := range items {
		variabilities[i] = it.Variability
	}
	t1 := stats.Quantile(variabilities, 1.0/3.0)
	t2 := stats.Quantile(variabilities, 2.0/3.0)
	for i := range items {
		switch v := items[i].Variability; {
		case v <= t1:
			items[i].XYZClass = "X"
		case v <= t2:
			items[i].XYZClass = "Y"
		default:
			items[i].XYZClass = "Z"
		}
		items[i].Recommendation = stockingAdvice(items[i].ABCClass, items[i].XYZClass)
	}
	return items
}

// demandVariability is the coefficient of variation of daily demand,
// zero-filled across quiet days.
func demandVariability(byDay map[time.Time]float64) float64 {
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

	var series []float64
	for d := first; !d.After(last); d = d.Add(24 * time.Hour) {
		series = append(series, byDay[d])
	}

	mean := stats.Mean(series)
	if mean == 0 {
		return 0
	}
	return stats.StdDev(series) / mean
}

func stockingAdvice(abc, xyz string) string {
	switch abc + xyz {
	case "AX":
		return "High value, stable demand: automate replenishment, keep safety stock low"
	case "AY":
		return "High value, variable demand: review weekly, hold moderate safety stock"
	case "AZ":
		return "High value, erratic demand: monitor closely, buffer stock essential"
	case "BX":
		return "Mid value, stable demand: standard reorder points"
	case "BY":
		return "Mid value, variable demand: periodic review"
	case "BZ":
		return "Mid value, erratic demand: order to demand where possible"
	case "CX":
		return "Low value, stable demand: bulk order infrequently"
	case "CY":
		return "Low value, variable demand: minimal stock, reorder on demand"
	default:
		return "Low value, erratic demand: consider delisting or make-to-order"
	}
}
