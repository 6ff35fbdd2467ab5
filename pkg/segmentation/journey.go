package segmentation

import (
	"sort"
	"time"

	"github.com/hed1ad/retailsense/pkg/retail"
)

// Journey summarizes purchase-journey behavior across the customer
// base.
type Journey struct {
	NewCustomers       int
	ReturningCustomers int
	// RetentionRate is returning / (new + returning).
	RetentionRate float64
	// CrossSellRate is the share of customers shopping more than one
	// category.
	CrossSellRate            float64
	AvgCategoriesPerCustomer float64
	// PopularFirstCategories are the top 5 categories of first
	// purchases, most common first.
	PopularFirstCategories []retail.Category
}

// ComputeJourney analyzes new-versus-returning behavior, cross-selling
// and which categories win first purchases.
func ComputeJourney(txs []retail.Transaction) Journey {
	if len(txs) == 0 {
		return Journey{}
	}

	type custState struct {
		firstTime     time.Time
		firstCategory retail.Category
		categories    map[retail.Category]struct{}
		count         int
	}
	byCustomer := make(map[string]*custState)
	for _, tx := range txs {
		c := byCustomer[tx.CustomerID]
		if c == nil {
			c = &custState{
				firstTime:     tx.Timestamp,
				firstCategory: tx.Category,
				categories:    make(map[retail.Category]struct{}),
			}
			byCustomer[tx.CustomerID] = c
		}
		if tx.Timestamp.Before(c.firstTime) {
			c.firstTime = tx.Timestamp
			c.firstCategory = tx.Category
		}
		c.categories[tx.Category] = struct{}{}
		c.count++
	}

	var j Journey
	firstCats := make(map[retail.Category]int)
	var multiCategory int
	var totalCategories int
	for _, c := range byCustomer {
		if c.count == 1 {
			j.NewCustomers++
		} else {
			j.ReturningCustomers++
		}
		firstCats[c.firstCategory]++
		if len(c.categories) > 1 {
			multiCategory++
		}
		totalCategories += len(c.categories)
	}

	n := len(byCustomer)
	if n > 0 {
		j.RetentionRate = float64(j.ReturningCustomers) / float64(n)
		j.CrossSellRate = float64(multiCategory) / float64(n)
		j.AvgCategoriesPerCustomer = float64(totalCategories) / float64(n)
	}

	type catCount struct {
		cat   retail.Category
		count int
	}
	ranked := make([]catCount, 0, len(firstCats))
	for c, cnt := range firstCats {
		ranked = append(ranked, catCount{c, cnt})
	}
	sort.Slice(ranked, func(a, b int) bool {
		if ranked[a].count != ranked[b].count {
			return ranked[a].count > ranked[b].count
		}
		return ranked[a].cat < ranked[b].cat
	})
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}
	for _, cc := range ranked {
		j.PopularFirstCategories = append(j.PopularFirstCategories, cc.cat)
	}
	return j
}
