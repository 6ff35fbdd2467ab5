package segmentation

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/hed1ad/retailsense/pkg/retail"
	"github.com/hed1ad/retailsense/pkg/stats"
)

// DefaultClusters is the default K for customer segmentation.
const DefaultClusters = 4

// Status tags a segmentation result.
type Status uint8

const (
	// StatusOK means segmentation ran and produced K clusters.
	StatusOK Status = iota
	// StatusEmptyInput means no transactions were supplied.
	StatusEmptyInput
	// StatusInsufficientData means fewer customers than clusters.
	StatusInsufficientData
)

// Stats summarizes one named segment, joined back to the transaction
// table.
type Stats struct {
	CustomerCount       int
	AvgRecency          float64
	AvgFrequency        float64
	AvgMonetary         float64
	TotalRevenue        float64
	AvgTransactionValue float64
	// PreferredCategories are the top 3 categories by revenue.
	PreferredCategories []CategoryRevenue
	// PopularHours are the top 3 purchase hours by transaction count.
	PopularHours      []int
	TotalTransactions int
}

// CategoryRevenue pairs a category with its revenue within a segment.
type CategoryRevenue struct {
	Category retail.Category
	Revenue  float64
}

// Result is the tagged outcome of a segmentation run.
type Result struct {
	Status    Status
	Customers []RFM
	// Segments is keyed by segment name. Clusters that share a name
	// (possible with relative thresholds and K <= 8) merge here.
	Segments map[string]Stats
}

// Segmenter clusters customers on standardized RFM features. Each call
// fits and discards its own scaler and clustering state, so a
// Segmenter is safe for concurrent use.
type Segmenter struct {
	clusters  int
	seed      int64
	nRestarts int
	maxIter   int
	log       zerolog.Logger
}

// SegmenterOption configures a Segmenter.
type SegmenterOption func(*Segmenter)

// WithClusters sets the number of clusters K.
func WithClusters(k int) SegmenterOption {
	return func(s *Segmenter) {
		if k > 0 {
			s.clusters = k
		}
	}
}

// WithSegmentSeed sets the clustering seed for reproducible runs.
func WithSegmentSeed(seed int64) SegmenterOption {
	return func(s *Segmenter) { s.seed = seed }
}

// WithSegmentLogger sets the logger for degenerate-data conditions.
func WithSegmentLogger(log zerolog.Logger) SegmenterOption {
	return func(s *Segmenter) { s.log = log }
}

// NewSegmenter creates a Segmenter with K=4 and a fixed seed.
func NewSegmenter(opts ...SegmenterOption) *Segmenter {
	s := &Segmenter{
		clusters:  DefaultClusters,
		seed:      42,
		nRestarts: 10,
		maxIter:   100,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Segment computes RFM for txs, clusters customers into K segments and
// names each cluster against the run's own median cluster statistics.
// Segment names are therefore relative to the current dataset: the
// same customer can land in a differently named segment on a later run
// with a different population. Fewer customers than K yields an empty
// result, never an error.
func (s *Segmenter) Segment(txs []retail.Transaction) Result {
	if len(txs) == 0 {
		return Result{Status: StatusEmptyInput}
	}

	customers := ComputeRFM(txs)
	if len(customers) < s.clusters {
		s.log.Warn().
			Int("customers", len(customers)).
			Int("clusters", s.clusters).
			Msg("not enough customers to segment")
		return Result{Status: StatusInsufficientData}
	}

	points := make([][]float64, len(customers))
	for i, c := range customers {
		points[i] = []float64{float64(c.Recency), float64(c.Frequency), c.Monetary}
	}
	labels := kMeans(stats.Standardize(points), s.clusters, s.seed, s.nRestarts, s.maxIter)

	for i := range customers {
		customers[i].Cluster = labels[i]
	}

	names := s.nameClusters(customers)
	for i := range customers {
		customers[i].Segment = names[customers[i].Cluster]
	}

	return Result{
		Status:    StatusOK,
		Customers: customers,
		Segments:  segmentStats(customers, txs),
	}
}

// clusterMeans holds the per-cluster mean R/F/M used by the naming
// heuristic.
type clusterMeans struct {
	recency   float64
	frequency float64
	monetary  float64
}

// nameClusters applies the naming heuristic: each cluster's mean
// frequency/monetary/recency is compared against the median of all
// cluster means from this run. "High" means at or above the median
// ("at or below" for recency, where lower is better).
func (s *Segmenter) nameClusters(customers []RFM) map[int]string {
	sums := make(map[int]*clusterMeans)
	counts := make(map[int]int)
	for _, c := range customers {
		m := sums[c.Cluster]
		if m == nil {
			m = &clusterMeans{}
			sums[c.Cluster] = m
		}
		m.recency += float64(c.Recency)
		m.frequency += float64(c.Frequency)
		m.monetary += c.Monetary
		counts[c.Cluster]++
	}

	var recencies, frequencies, monetaries []float64
	for cl, m := range sums {
		n := float64(counts[cl])
		m.recency /= n
		m.frequency /= n
		m.monetary /= n
		recencies = append(recencies, m.recency)
		frequencies = append(frequencies, m.frequency)
		monetaries = append(monetaries, m.monetary)
	}

	medRecency := stats.Median(recencies)
	medFrequency := stats.Median(frequencies)
	medMonetary := stats.Median(monetaries)

	names := make(map[int]string, len(sums))
	for cl, m := range sums {
		highFreq := m.frequency >= medFrequency
		highMon := m.monetary >= medMonetary
		recent := m.recency <= medRecency

		switch {
		case highFreq && highMon && recent:
			names[cl] = "Champions"
		case highFreq && highMon:
			names[cl] = "Loyal Customers"
		case highFreq && recent:
			names[cl] = "Potential Loyalists"
		case highFreq:
			names[cl] = "At Risk"
		case highMon && recent:
			names[cl] = "New Customers"
		case highMon:
			names[cl] = "Hibernating"
		case recent:
			names[cl] = "Promising"
		default:
			names[cl] = "Lost Customers"
		}
	}
	return names
}

// segmentStats joins segment membership back to the transaction table
// and aggregates per segment name.
func segmentStats(customers []RFM, txs []retail.Transaction) map[string]Stats {
	segmentOf := make(map[string]string, len(customers))
	type rfmAgg struct {
		count     int
		recency   float64
		frequency float64
		monetary  float64
	}
	rfmBySegment := make(map[string]*rfmAgg)
	for _, c := range customers {
		segmentOf[c.CustomerID] = c.Segment
		a := rfmBySegment[c.Segment]
		if a == nil {
			a = &rfmAgg{}
			rfmBySegment[c.Segment] = a
		}
		a.count++
		a.recency += float64(c.Recency)
		a.frequency += float64(c.Frequency)
		a.monetary += c.Monetary
	}

	type txAgg struct {
		revenue    float64
		count      int
		byCategory map[retail.Category]float64
		byHour     map[int]int
	}
	txBySegment := make(map[string]*txAgg)
	for _, tx := range txs {
		seg, ok := segmentOf[tx.CustomerID]
		if !ok {
			continue
		}
		a := txBySegment[seg]
		if a == nil {
			a = &txAgg{
				byCategory: make(map[retail.Category]float64),
				byHour:     make(map[int]int),
			}
			txBySegment[seg] = a
		}
		a.revenue += tx.TotalAmount
		a.count++
		a.byCategory[tx.Category] += tx.TotalAmount
		a.byHour[tx.Hour()]++
	}

	out := make(map[string]Stats, len(rfmBySegment))
	for seg, r := range rfmBySegment {
		st := Stats{
			CustomerCount: r.count,
			AvgRecency:    r.recency / float64(r.count),
			AvgFrequency:  r.frequency / float64(r.count),
			AvgMonetary:   r.monetary / float64(r.count),
		}
		if t := txBySegment[seg]; t != nil {
			st.TotalRevenue = t.revenue
			st.TotalTransactions = t.count
			if t.count > 0 {
				st.AvgTransactionValue = t.revenue / float64(t.count)
			}
			st.PreferredCategories = topCategories(t.byCategory, 3)
			st.PopularHours = topHours(t.byHour, 3)
		}
		out[seg] = st
	}
	return out
}

func topCategories(byCategory map[retail.Category]float64, n int) []CategoryRevenue {
	ranked := make([]CategoryRevenue, 0, len(byCategory))
	for c, rev := range byCategory {
		ranked = append(ranked, CategoryRevenue{Category: c, Revenue: rev})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Revenue != ranked[j].Revenue {
			return ranked[i].Revenue > ranked[j].Revenue
		}
		return ranked[i].Category < ranked[j].Category
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func topHours(byHour map[int]int, n int) []int {
	type hourCount struct {
		hour  int
		count int
	}
	ranked := make([]hourCount, 0, len(byHour))
	for h, c := range byHour {
		ranked = append(ranked, hourCount{h, c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].hour < ranked[j].hour
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	hours := make([]int, len(ranked))
	for i, hc := range ranked {
		hours[i] = hc.hour
	}
	return hours
}
