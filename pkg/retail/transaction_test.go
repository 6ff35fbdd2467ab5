package retail

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTransaction() Transaction {
	return Transaction{
		ID:            "tx-001",
		Timestamp:     time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC),
		StoreID:       "STORE001",
		ProductName:   "Coffee Beans",
		Category:      CategoryFood,
		UnitPrice:     12.50,
		Quantity:      2,
		Subtotal:      25.00,
		TaxAmount:     2.00,
		TotalAmount:   27.00,
		PaymentMethod: PaymentCreditCard,
		CustomerID:    "CUST0001",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr bool
	}{
		{
			name:    "valid transaction",
			mutate:  func(tx *Transaction) {},
			wantErr: false,
		},
		{
			name:    "missing id",
			mutate:  func(tx *Transaction) { tx.ID = "" },
			wantErr: true,
		},
		{
			name:    "missing timestamp",
			mutate:  func(tx *Transaction) { tx.Timestamp = time.Time{} },
			wantErr: true,
		},
		{
			name:    "zero unit price",
			mutate:  func(tx *Transaction) { tx.UnitPrice = 0 },
			wantErr: true,
		},
		{
			name:    "negative quantity",
			mutate:  func(tx *Transaction) { tx.Quantity = -1 },
			wantErr: true,
		},
		{
			name:    "subtotal mismatch",
			mutate:  func(tx *Transaction) { tx.Subtotal = 99.99 },
			wantErr: true,
		},
		{
			name:    "total mismatch",
			mutate:  func(tx *Transaction) { tx.TotalAmount = 5.00 },
			wantErr: true,
		},
		{
			name: "sub-cent rounding slack",
			mutate: func(tx *Transaction) {
				tx.TotalAmount = tx.Subtotal + tx.TaxAmount + 0.009
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.mutate(&tx)
			err := tx.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMaxTimestamp(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	txs := []Transaction{
		{Timestamp: base},
		{Timestamp: base.Add(48 * time.Hour)},
		{Timestamp: base.Add(time.Hour)},
	}

	assert.Equal(t, base.Add(48*time.Hour), MaxTimestamp(txs))
	assert.True(t, MaxTimestamp(nil).IsZero())
}

func TestTableRetention(t *testing.T) {
	table := NewTable(WithRetention(3))

	for i := 0; i < 5; i++ {
		tx := validTransaction()
		tx.ID = string(rune('a' + i))
		table.Append(tx)
	}

	require.Equal(t, 3, table.Len())

	// Oldest rows are evicted, newest kept in order.
	snap := table.Snapshot()
	assert.Equal(t, "c", snap[0].ID)
	assert.Equal(t, "e", snap[2].ID)
}

func TestTableSnapshotIsolation(t *testing.T) {
	table := NewTable()
	table.Append(validTransaction())

	snap := table.Snapshot()
	snap[0].ID = "mutated"

	assert.Equal(t, "tx-001", table.Snapshot()[0].ID)
}
