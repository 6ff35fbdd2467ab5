// Package analytics computes aggregate retail metrics: summary
// statistics, hourly time series, category/store/product performance,
// customer insights, trend analysis and real-time KPIs. Everything is
// groupby arithmetic over an in-memory transaction slice.
package analytics

import (
	"sort"
	"time"

	"github.com/hed1ad/retailsense/pkg/retail"
	"github.com/hed1ad/retailsense/pkg/stats"
)

// SummaryStats are whole-dataset headline numbers.
type SummaryStats struct {
	TotalRevenue            float64
	TotalTransactions       int
	AvgTransactionValue     float64
	MedianTransactionValue  float64
	TotalUnitsSold          int
	UniqueProducts          int
	UniqueCustomers         int
	UniqueStores            int
	RevenuePerCustomer      float64
	TransactionsPerCustomer float64
	MostPopularPayment      retail.PaymentMethod
}

// HourlyPoint is one hour-bucket of the sales time series.
type HourlyPoint struct {
	Hour             time.Time
	Revenue          float64
	TransactionCount int
	UnitsSold        int
	// RevenueMA3 is a trailing 3-point moving average of revenue,
	// populated when the series has at least 3 points.
	RevenueMA3 float64
}

// CategoryMetrics is per-category performance.
type CategoryMetrics struct {
	Category              retail.Category
	Revenue               float64
	AvgTransaction        float64
	TransactionCount      int
	UnitsSold             int
	AvgUnitPrice          float64
	MarketSharePct        float64
	RevenuePerTransaction float64
}

// StoreMetrics is per-store performance.
type StoreMetrics struct {
	StoreID                 string
	Revenue                 float64
	AvgTransaction          float64
	TransactionCount        int
	UnitsSold               int
	UniqueCustomers         int
	UniqueProducts          int
	RevenuePerCustomer      float64
	TransactionsPerCustomer float64
}

// ProductMetrics is per-product performance.
type ProductMetrics struct {
	ProductName      string
	Category         retail.Category
	Revenue          float64
	AvgTransaction   float64
	QuantitySold     int
	TransactionCount int
	AvgUnitPrice     float64
	// CategoryRank is the product's dense revenue rank within its
	// category (1 = best).
	CategoryRank int
}

// CustomerInsights summarizes customer behavior.
type CustomerInsights struct {
	TotalCustomers         int
	AvgCustomerValue       float64
	AvgTransactionsPerCust float64
	AvgCategoriesPerCust   float64
	AvgStoresPerCust       float64
	HighValueCustomers     int
	FrequentCustomers      int
}

// CategoryGrowth pairs a category with its revenue growth percentage.
type CategoryGrowth struct {
	Category  retail.Category
	GrowthPct float64
}

// Trends compares the recent half of the dataset against the older
// half.
type Trends struct {
	RevenueGrowthPct     float64
	TransactionGrowthPct float64
	PeakHour             int
	GrowingCategories    []CategoryGrowth
	TimespanMinutes      float64
}

// Metrics is the full aggregation result.
type Metrics struct {
	Summary    SummaryStats
	TimeSeries []HourlyPoint
	Categories []CategoryMetrics
	Stores     []StoreMetrics
	Products   []ProductMetrics
	Customers  CustomerInsights
	Trends     Trends
}

// Compute runs every rollup over txs. Empty input yields the zero
// Metrics value; callers render a "no data" state from it.
func Compute(txs []retail.Transaction) Metrics {
	if len(txs) == 0 {
		return Metrics{}
	}
	return Metrics{
		Summary:    computeSummary(txs),
		TimeSeries: computeTimeSeries(txs),
		Categories: computeCategories(txs),
		Stores:     computeStores(txs),
		Products:   computeProducts(txs),
		Customers:  computeCustomerInsights(txs),
		Trends:     computeTrends(txs),
	}
}

func computeSummary(txs []retail.Transaction) SummaryStats {
	s := SummaryStats{TotalTransactions: len(txs)}

	amounts := make([]float64, len(txs))
	products := make(map[string]struct{})
	stores := make(map[string]struct{})
	payments := make(map[retail.PaymentMethod]int)
	customerRevenue := make(map[string]float64)
	customerCount := make(map[string]int)
	for i, tx := range txs {
		amounts[i] = tx.TotalAmount
		s.TotalRevenue += tx.TotalAmount
		s.TotalUnitsSold += tx.Quantity
		products[tx.ProductName] = struct{}{}
		stores[tx.StoreID] = struct{}{}
		payments[tx.PaymentMethod]++
		customerRevenue[tx.CustomerID] += tx.TotalAmount
		customerCount[tx.CustomerID]++
	}

	s.AvgTransactionValue = s.TotalRevenue / float64(len(txs))
	s.MedianTransactionValue = stats.Median(amounts)
	s.UniqueProducts = len(products)
	s.UniqueCustomers = len(customerRevenue)
	s.UniqueStores = len(stores)

	if n := len(customerRevenue); n > 0 {
		var revSum float64
		for _, r := range customerRevenue {
			revSum += r
		}
		s.RevenuePerCustomer = revSum / float64(n)
		s.TransactionsPerCustomer = float64(len(txs)) / float64(n)
	}

	best := -1
	for pm, count := range payments {
		if count > best || (count == best && pm < s.MostPopularPayment) {
			best = count
			s.MostPopularPayment = pm
		}
	}
	return s
}

func computeTimeSeries(txs []retail.Transaction) []HourlyPoint {
	buckets := make(map[time.Time]*HourlyPoint)
	for _, tx := range txs {
		h := tx.Timestamp.Truncate(time.Hour)
		p := buckets[h]
		if p == nil {
			p = &HourlyPoint{Hour: h}
			buckets[h] = p
		}
		p.Revenue += tx.TotalAmount
		p.TransactionCount++
		p.UnitsSold += tx.Quantity
	}

	series := make([]HourlyPoint, 0, len(buckets))
	for _, p := range buckets {
		series = append(series, *p)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Hour.Before(series[j].Hour) })

	if len(series) >= 3 {
		for i := range series {
			lo := i - 2
			if lo < 0 {
				lo = 0
			}
			var sum float64
			for _, p := range series[lo : i+1] {
				sum += p.Revenue
			}
			series[i].RevenueMA3 = sum / float64(i+1-lo)
		}
	}
	return series
}

func computeCategories(txs []retail.Transaction) []CategoryMetrics {
	type agg struct {
		revenue   float64
		count     int
		units     int
		priceSum  float64
	}
	byCat := make(map[retail.Category]*agg)
	var totalRevenue float64
	for _, tx := range txs {
		a := byCat[tx.Category]
		if a == nil {
			a = &agg{}
			byCat[tx.Category] = a
		}
		a.revenue += tx.TotalAmount
		a.count++
		a.units += tx.Quantity
		a.priceSum += tx.UnitPrice
		totalRevenue += tx.TotalAmount
	}

	out := make([]CategoryMetrics, 0, len(byCat))
	for cat, a := range byCat {
		m := CategoryMetrics{
			Category:              cat,
			Revenue:               a.revenue,
			AvgTransaction:        a.revenue / float64(a.count),
			TransactionCount:      a.count,
			UnitsSold:             a.units,
			AvgUnitPrice:          a.priceSum / float64(a.count),
			RevenuePerTransaction: a.revenue / float64(a.count),
		}
		if totalRevenue > 0 {
			m.MarketSharePct = a.revenue / totalRevenue * 100
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Revenue > out[j].Revenue })
	return out
}

func computeStores(txs []retail.Transaction) []StoreMetrics {
	type agg struct {
		revenue   float64
		count     int
		units     int
		customers map[string]struct{}
		products  map[string]struct{}
	}
	byStore := make(map[string]*agg)
	for _, tx := range txs {
		a := byStore[tx.StoreID]
		if a == nil {
			a = &agg{
				customers: make(map[string]struct{}),
				products:  make(map[string]struct{}),
			}
			byStore[tx.StoreID] = a
		}
		a.revenue += tx.TotalAmount
		a.count++
		a.units += tx.Quantity
		a.customers[tx.CustomerID] = struct{}{}
		a.products[tx.ProductName] = struct{}{}
	}

	out := make([]StoreMetrics, 0, len(byStore))
	for id, a := range byStore {
		m := StoreMetrics{
			StoreID:          id,
			Revenue:          a.revenue,
			AvgTransaction:   a.revenue / float64(a.count),
			TransactionCount: a.count,
			UnitsSold:        a.units,
			UniqueCustomers:  len(a.customers),
			UniqueProducts:   len(a.products),
		}
		if n := len(a.customers); n > 0 {
			m.RevenuePerCustomer = a.revenue / float64(n)
			m.TransactionsPerCustomer = float64(a.count) / float64(n)
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].StoreID < out[j].StoreID
	})
	return out
}

func computeProducts(txs []retail.Transaction) []ProductMetrics {
	type key struct {
		product  string
		category retail.Category
	}
	type agg struct {
		revenue  float64
		count    int
		units    int
		priceSum float64
	}
	byProduct := make(map[key]*agg)
	for _, tx := range txs {
		k := key{tx.ProductName, tx.Category}
		a := byProduct[k]
		if a == nil {
			a = &agg{}
			byProduct[k] = a
		}
		a.revenue += tx.TotalAmount
		a.count++
		a.units += tx.Quantity
		a.priceSum += tx.UnitPrice
	}

	out := make([]ProductMetrics, 0, len(byProduct))
	for k, a := range byProduct {
		out = append(out, ProductMetrics{
			ProductName:      k.product,
			Category:         k.category,
			Revenue:          a.revenue,
			AvgTransaction:   a.revenue / float64(a.count),
			QuantitySold:     a.units,
			TransactionCount: a.count,
			AvgUnitPrice:     a.priceSum / float64(a.count),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].ProductName < out[j].ProductName
	})

	// Dense revenue rank within each category; out is already sorted
	// by descending revenue.
	rankByCat := make(map[retail.Category]int)
	lastRevenue := make(map[retail.Category]float64)
	for i := range out {
		cat := out[i].Category
		if r, seen := rankByCat[cat]; !seen || out[i].Revenue != lastRevenue[cat] {
			rankByCat[cat] = r + 1
		}
		lastRevenue[cat] = out[i].Revenue
		out[i].CategoryRank = rankByCat[cat]
	}
	return out
}

func computeCustomerInsights(txs []retail.Transaction) CustomerInsights {
	type agg struct {
		spent      float64
		count      int
		categories map[retail.Category]struct{}
		stores     map[string]struct{}
	}
	byCustomer := make(map[string]*agg)
	for _, tx := range txs {
		a := byCustomer[tx.CustomerID]
		if a == nil {
			a = &agg{
				categories: make(map[retail.Category]struct{}),
				stores:     make(map[string]struct{}),
			}
			byCustomer[tx.CustomerID] = a
		}
		a.spent += tx.TotalAmount
		a.count++
		a.categories[tx.Category] = struct{}{}
		a.stores[tx.StoreID] = struct{}{}
	}

	n := len(byCustomer)
	ci := CustomerInsights{TotalCustomers: n}
	if n == 0 {
		return ci
	}

	spent := make([]float64, 0, n)
	var txCount, catCount, storeCount, frequent int
	for _, a := range byCustomer {
		spent = append(spent, a.spent)
		txCount += a.count
		catCount += len(a.categories)
		storeCount += len(a.stores)
		if a.count >= 3 {
			frequent++
		}
	}

	ci.AvgCustomerValue = stats.Mean(spent)
	ci.AvgTransactionsPerCust = float64(txCount) / float64(n)
	ci.AvgCategoriesPerCust = float64(catCount) / float64(n)
	ci.AvgStoresPerCust = float64(storeCount) / float64(n)
	ci.FrequentCustomers = frequent

	p90 := stats.Quantile(spent, 0.9)
	for _, sp := range spent {
		if sp > p90 {
			ci.HighValueCustomers++
		}
	}
	return ci
}

func computeTrends(txs []retail.Transaction) Trends {
	if len(txs) < 2 {
		return Trends{}
	}

	ordered := make([]retail.Transaction, len(txs))
	copy(ordered, txs)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Timestamp.Before(ordered[j].Timestamp) })

	older := ordered[:len(ordered)/2]
	recent := ordered[len(ordered)/2:]
	if len(ordered) <= 4 {
		older, recent = ordered, ordered
	}

	var t Trends

	olderAvg := meanAmount(older)
	recentAvg := meanAmount(recent)
	if olderAvg > 0 {
		t.RevenueGrowthPct = (recentAvg - olderAvg) / olderAvg * 100
	}
	if len(older) > 0 {
		t.TransactionGrowthPct = float64(len(recent)-len(older)) / float64(len(older)) * 100
	}

	// Peak hour by transaction count.
	byHour := make(map[int]int)
	for _, tx := range ordered {
		byHour[tx.Hour()]++
	}
	best := -1
	for h, c := range byHour {
		if c > best || (c == best && h < t.PeakHour) {
			best = c
			t.PeakHour = h
		}
	}

	// Categories growing from the older half to the recent half.
	olderByCat := revenueByCategory(older)
	recentByCat := revenueByCategory(recent)
	for cat, recentRev := range recentByCat {
		if olderRev, ok := olderByCat[cat]; ok && olderRev > 0 {
			growth := (recentRev - olderRev) / olderRev * 100
			if growth > 0 {
				t.GrowingCategories = append(t.GrowingCategories, CategoryGrowth{cat, growth})
			}
		}
	}
	sort.Slice(t.GrowingCategories, func(i, j int) bool {
		return t.GrowingCategories[i].GrowthPct > t.GrowingCategories[j].GrowthPct
	})
	if len(t.GrowingCategories) > 3 {
		t.GrowingCategories = t.GrowingCategories[:3]
	}

	t.TimespanMinutes = ordered[len(ordered)-1].Timestamp.Sub(ordered[0].Timestamp).Minutes()
	return t
}

func meanAmount(txs []retail.Transaction) float64 {
	if len(txs) == 0 {
		return 0
	}
	var sum float64
	for _, tx := range txs {
		sum += tx.TotalAmount
	}
	return sum / float64(len(txs))
}

func revenueByCategory(txs []retail.Transaction) map[retail.Category]float64 {
	out := make(map[retail.Category]float64)
	for _, tx := range txs {
		out[tx.Category] += tx.TotalAmount
	}
	return out
}
