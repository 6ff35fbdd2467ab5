// Package segmentation derives per-customer RFM (Recency, Frequency,
// Monetary) metrics and partitions customers into named segments by
// clustering on those metrics. It also provides lifetime-value,
// churn-risk and purchase-journey analyses.
package segmentation

import (
	"fmt"
	"sort"
	"time"

	"github.com/hed1ad/retailsense/pkg/retail"
	"github.com/hed1ad/retailsense/pkg/stats"
)

// RFM is one customer's recency/frequency/monetary record. Scores are
// quantile ranks on a 1-5 scale; recency is reversed so that more
// recent customers score higher. Cluster and Segment are filled in by
// Segmenter.Segment.
type RFM struct {
	CustomerID string
	// Recency is days since the customer's last purchase, relative to
	// the dataset's maximum timestamp (not wall clock).
	Recency   int
	Frequency int
	Monetary  float64

	RecencyScore   int
	FrequencyScore int
	MonetaryScore  int
	// Score concatenates the three digit scores, e.g. "534".
	Score string

	Cluster int
	Segment string
}

// ComputeRFM derives RFM records for every customer in txs, sorted by
// customer ID. Quantile bins may collapse on tied or degenerate
// distributions; that narrows the score range but never fails.
func ComputeRFM(txs []retail.Transaction) []RFM {
	if len(txs) == 0 {
		return nil
	}

	now := retail.MaxTimestamp(txs)

	type agg struct {
		last     time.Time
		count    int
		monetary float64
	}
	byCustomer := make(map[string]*agg)
	for _, tx := range txs {
		a := byCustomer[tx.CustomerID]
		if a == nil {
			a = &agg{}
			byCustomer[tx.CustomerID] = a
		}
		if tx.Timestamp.After(a.last) {
			a.last = tx.Timestamp
		}
		a.count++
		a.monetary += tx.TotalAmount
	}

	records := make([]RFM, 0, len(byCustomer))
	for id, a := range byCustomer {
		records = append(records, RFM{
			CustomerID: id,
			Recency:    int(now.Sub(a.last).Hours() / 24),
			Frequency:  a.count,
			Monetary:   a.monetary,
		})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].CustomerID < records[j].CustomerID })

	scoreRFM(records)
	return records
}

// scoreRFM assigns the 1-5 quantile scores and the composite string.
func scoreRFM(records []RFM) {
	n := len(records)
	recency := make([]float64, n)
	frequency := make([]float64, n)
	monetary := make([]float64, n)
	for i, r := range records {
		recency[i] = float64(r.Recency)
		frequency[i] = float64(r.Frequency)
		monetary[i] = r.Monetary
	}

	recencyEdges := quantileEdges(recency)
	monetaryEdges := quantileEdges(monetary)
	// Frequency is rank-binned (ties broken by input order) so heavy
	// ties still spread across bins.
	freqRanks := stats.RankFirst(frequency)

	for i := range records {
		records[i].RecencyScore = 5 - binOf(recency[i], recencyEdges)
		records[i].FrequencyScore = 1 + (freqRanks[i]-1)*5/n
		records[i].MonetaryScore = 1 + binOf(monetary[i], monetaryEdges)
		records[i].Score = fmt.Sprintf("%d%d%d",
			records[i].RecencyScore, records[i].FrequencyScore, records[i].MonetaryScore)
	}
}

// quantileEdges returns the deduplicated 20/40/60/80th percentile cut
// points. Duplicate edges collapse, yielding fewer than five bins.
func quantileEdges(values []float64) []float64 {
	var edges []float64
	for _, q := range []float64{0.2, 0.4, 0.6, 0.8} {
		e := stats.Quantile(values, q)
		if len(edges) == 0 || e > edges[len(edges)-1] {
			edges = append(edges, e)
		}
	}
	return edges
}

// binOf returns the right-closed quantile bin index of v: the number
// of edges strictly below v.
func binOf(v float64, edges []float64) int {
	bin := 0
	for _, e := range edges {
		if v > e {
			bin++
		}
	}
	return bin
}
