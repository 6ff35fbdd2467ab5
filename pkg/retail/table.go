package retail

import "sync"

// DefaultRetention is the default row cap for a Table.
const DefaultRetention = 1000

// Table holds the live transaction window. Appends evict the oldest
// rows once the retention cap is exceeded. Reads hand out snapshots so
// a background feed can append while analytics run on a stable copy.
type Table struct {
	mu  sync.RWMutex
	cap int
	txs []Transaction
}

// TableOption configures a Table.
type TableOption func(*Table)

// WithRetention sets the maximum number of rows retained.
func WithRetention(n int) TableOption {
	return func(t *Table) {
		if n > 0 {
			t.cap = n
		}
	}
}

// NewTable creates an empty table with the default retention cap.
func NewTable(opts ...TableOption) *Table {
	t := &Table{cap: DefaultRetention}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Append adds transactions, evicting the oldest rows beyond the cap.
func (t *Table) Append(txs ...Transaction) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.txs = append(t.txs, txs...)
	if len(t.txs) > t.cap {
		// Keep the newest cap rows.
		keep := t.txs[len(t.txs)-t.cap:]
		t.txs = append(make([]Transaction, 0, t.cap), keep...)
	}
}

// Snapshot returns a copy of the current rows, oldest first.
func (t *Table) Snapshot() []Transaction {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Transaction, len(t.txs))
	copy(out, t.txs)
	return out
}

// Len returns the current row count.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.txs)
}
