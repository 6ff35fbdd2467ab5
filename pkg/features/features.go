// Package features turns transaction records into the numeric feature
// matrix the anomaly detectors consume: raw amounts, time-derived
// fields, and cardinality-capped one-hot encodings.
package features

import (
	"fmt"
	"math"
	"sort"

	"github.com/hed1ad/retailsense/pkg/retail"
	"github.com/hed1ad/retailsense/pkg/stats"
)

// Cardinality caps for the one-hot groups. A group whose distinct-value
// count exceeds its cap is left out entirely to bound dimensionality.
const (
	MaxCategoryValues = 10
	MaxStoreValues    = 20
	MaxPaymentValues  = 10
)

// Table is a numeric feature matrix, one row per input transaction,
// row-aligned with the source slice. Recomputed per call, never stored.
type Table struct {
	Columns []string
	Rows    [][]float64
}

// Empty reports whether the table has no rows. Callers must treat an
// empty table as "features unavailable", not as "no anomalies".
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// Prepare builds the feature table for txs. An empty input yields an
// empty table. Base columns are total_amount, quantity, unit_price,
// subtotal, tax_amount, hour, day_of_week and minute; one-hot groups
// for category, store and payment method are appended only when their
// distinct-value counts stay within the caps. Non-finite values are
// treated as missing and filled with the column median.
func Prepare(txs []retail.Transaction) Table {
	if len(txs) == 0 {
		return Table{}
	}

	columns := []string{
		"total_amount", "quantity", "unit_price",
		"subtotal", "tax_amount", "hour", "day_of_week", "minute",
	}

	categories := distinct(txs, func(t retail.Transaction) string { return string(t.Category) })
	storeIDs := distinct(txs, func(t retail.Transaction) string { return t.StoreID })
	payments := distinct(txs, func(t retail.Transaction) string { return string(t.PaymentMethod) })

	includeCat := len(categories) <= MaxCategoryValues
	includeStore := len(storeIDs) <= MaxStoreValues
	includePay := len(payments) <= MaxPaymentValues

	if includeCat {
		for _, c := range categories {
			columns = append(columns, "cat_"+c)
		}
	}
	if includeStore {
		for _, s := range storeIDs {
			columns = append(columns, "store_"+s)
		}
	}
	if includePay {
		for _, p := range payments {
			columns = append(columns, "pay_"+p)
		}
	}

	catIdx := indexOf(categories)
	storeIdx := indexOf(storeIDs)
	payIdx := indexOf(payments)

	rows := make([][]float64, len(txs))
	for i, tx := range txs {
		row := make([]float64, 0, len(columns))
		row = append(row,
			tx.TotalAmount,
			float64(tx.Quantity),
			tx.UnitPrice,
			tx.Subtotal,
			tx.TaxAmount,
			float64(tx.Timestamp.Hour()),
			float64(dayOfWeek(tx)),
			float64(tx.Timestamp.Minute()),
		)
		if includeCat {
			row = append(row, oneHot(len(categories), catIdx[string(tx.Category)])...)
		}
		if includeStore {
			row = append(row, oneHot(len(storeIDs), storeIdx[tx.StoreID])...)
		}
		if includePay {
			row = append(row, oneHot(len(payments), payIdx[string(tx.PaymentMethod)])...)
		}
		rows[i] = row
	}

	return Table{Columns: columns, Rows: Sanitize(rows)}
}

// Sanitize replaces non-finite values with the column median (computed
// over the finite values; 0 when a column has none). The pass is
// idempotent: sanitizing already-sanitized rows is a no-op.
func Sanitize(rows [][]float64) [][]float64 {
	if len(rows) == 0 {
		return rows
	}
	cols := len(rows[0])

	medians := make([]float64, cols)
	finite := make([]float64, 0, len(rows))
	for j := 0; j < cols; j++ {
		finite = finite[:0]
		for _, row := range rows {
			if isFinite(row[j]) {
				finite = append(finite, row[j])
			}
		}
		if len(finite) > 0 {
			medians[j] = stats.Median(finite)
		}
	}

	out := make([][]float64, len(rows))
	for i, row := range rows {
		clean := make([]float64, cols)
		for j, v := range row {
			if isFinite(v) {
				clean[j] = v
			} else {
				clean[j] = medians[j]
			}
		}
		out[i] = clean
	}
	return out
}

// Column returns the values of the named column.
func (t Table) Column(name string) ([]float64, error) {
	for j, c := range t.Columns {
		if c == name {
			col := make([]float64, len(t.Rows))
			for i, row := range t.Rows {
				col[i] = row[j]
			}
			return col, nil
		}
	}
	return nil, fmt.Errorf("features: no column %q", name)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// dayOfWeek maps Monday=0 .. Sunday=6.
func dayOfWeek(tx retail.Transaction) int {
	return (int(tx.Timestamp.Weekday()) + 6) % 7
}

func distinct(txs []retail.Transaction, key func(retail.Transaction) string) []string {
	seen := make(map[string]struct{})
	for _, tx := range txs {
		seen[key(tx)] = struct{}{}
	}
	vals := make([]string, 0, len(seen))
	for v := range seen {
		vals = append(vals, v)
	}
	sort.Strings(vals)
	return vals
}

func indexOf(vals []string) map[string]int {
	m := make(map[string]int, len(vals))
	for i, v := range vals {
		m[v] = i
	}
	return m
}

func oneHot(n, hot int) []float64 {
	v := make([]float64, n)
	v[hot] = 1
	return v
}
