package segmentation

import (
	"sort"
	"time"

	"github.com/hed1ad/retailsense/pkg/retail"
	"github.com/hed1ad/retailsense/pkg/stats"
)

// clvHorizonDays is the assumed remaining relationship length for the
// simple CLV projection.
const clvHorizonDays = 365

// LifetimeValue is a customer's projected value.
type LifetimeValue struct {
	CustomerID    string
	TotalSpent    float64
	AvgOrderValue float64
	Frequency     int
	FirstPurchase time.Time
	LastPurchase  time.Time
	LifespanDays  int
	// PurchaseFrequency is orders per day over the observed lifespan.
	PurchaseFrequency float64
	PredictedCLV      float64
	// Tier is the CLV quartile: Low, Medium, High or Premium.
	Tier string
}

var clvTiers = []string{"Low", "Medium", "High", "Premium"}

// ComputeLifetimeValue projects a simple CLV per customer:
// avg order value x purchase frequency x a one-year horizon, with a
// quartile tier label. Quartile bins may collapse on small or tied
// populations.
func ComputeLifetimeValue(txs []retail.Transaction) []LifetimeValue {
	if len(txs) == 0 {
		return nil
	}

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

	out := make([]LifetimeValue, 0, len(byCustomer))
	for id, a := range byCustomer {
		lifespan := int(a.last.Sub(a.first).Hours() / 24)
		avgOrder := a.total / float64(a.count)
		freq := float64(a.count) / float64(lifespan+1)
		out = append(out, LifetimeValue{
			CustomerID:        id,
			TotalSpent:        a.total,
			AvgOrderValue:     avgOrder,
			Frequency:         a.count,
			FirstPurchase:     a.first,
			LastPurchase:      a.last,
			LifespanDays:      lifespan,
			PurchaseFrequency: freq,
			PredictedCLV:      avgOrder * freq * clvHorizonDays,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CustomerID < out[j].CustomerID })

	// Quartile tiers over predicted CLV.
	values := make([]float64, len(out))
	for i, lv := range out {
		values[i] = lv.PredictedCLV
	}
	var edges []float64
	for _, q := range []float64{0.25, 0.5, 0.75} {
		e := stats.Quantile(values, q)
		if len(edges) == 0 || e > edges[len(edges)-1] {
			edges = append(edges, e)
		}
	}
	for i := range out {
		out[i].Tier = clvTiers[binOf(values[i], edges)]
	}
	return out
}
