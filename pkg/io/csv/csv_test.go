package csv

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hed1ad/retailsense/pkg/retail"
)

func testTransactions() []retail.Transaction {
	base := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	return []retail.Transaction{
		{
			ID:            "tx-001",
			Timestamp:     base,
			StoreID:       "STORE001",
			ProductName:   "Coffee Beans",
			Category:      retail.CategoryFood,
			UnitPrice:     12.50,
			Quantity:      2,
			Subtotal:      25.00,
			TaxAmount:     2.00,
			TotalAmount:   27.00,
			PaymentMethod: retail.PaymentCreditCard,
			CustomerID:    "CUST0001",
		},
		{
			ID:            "tx-002",
			Timestamp:     base.Add(time.Hour),
			StoreID:       "STORE002",
			ProductName:   "Smart Watch",
			Category:      retail.CategoryElectronics,
			UnitPrice:     199.99,
			Quantity:      1,
			Subtotal:      199.99,
			TaxAmount:     16.00,
			TotalAmount:   215.99,
			PaymentMethod: retail.PaymentDigitalWallet,
			CustomerID:    "CUST0002",
		},
	}
}

func TestWriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.csv")

	w, err := NewWriter(path)
	require.NoError(t, err)
	want := testTransactions()
	require.NoError(t, w.WriteAll(want))
	require.NoError(t, w.Close())

	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, columns, r.Headers())

	got, err := r.Read()
	require.NoError(t, err)
	require.Len(t, got, len(want))

	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.True(t, want[i].Timestamp.Equal(got[i].Timestamp))
		assert.Equal(t, want[i].StoreID, got[i].StoreID)
		assert.Equal(t, want[i].ProductName, got[i].ProductName)
		assert.Equal(t, want[i].Category, got[i].Category)
		assert.InDelta(t, want[i].UnitPrice, got[i].UnitPrice, 0.005)
		assert.Equal(t, want[i].Quantity, got[i].Quantity)
		assert.InDelta(t, want[i].TotalAmount, got[i].TotalAmount, 0.005)
		assert.Equal(t, want[i].PaymentMethod, got[i].PaymentMethod)
		assert.Equal(t, want[i].CustomerID, got[i].CustomerID)
	}
}

func TestReadSkipsMalformedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dirty.csv")
	content := "transaction_id,timestamp,store_id,product_name,category,unit_price,quantity,subtotal,tax_amount,total_amount,payment_method,customer_id\n" +
		"tx-001,2026-03-10 14:30:00,STORE001,Coffee Beans,Food & Beverages,12.50,2,25.00,2.00,27.00,Credit Card,CUST0001\n" +
		"tx-bad,not-a-timestamp,STORE001,Coffee Beans,Food & Beverages,12.50,2,25.00,2.00,27.00,Credit Card,CUST0001\n" +
		"tx-002,2026-03-10T15:30:00Z,STORE002,Smart Watch,Electronics,199.99,1,199.99,16.00,215.99,Digital Wallet,CUST0002\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	txs, err := r.Read()
	require.NoError(t, err)
	require.Len(t, txs, 2)

	// Both timestamp layouts parse.
	assert.Equal(t, "tx-001", txs[0].ID)
	assert.Equal(t, 14, txs[0].Timestamp.Hour())
	assert.Equal(t, "tx-002", txs[1].ID)
	assert.Equal(t, retail.CategoryElectronics, txs[1].Category)
}

func TestStream(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.csv")

	w, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteAll(testTransactions()))
	require.NoError(t, w.Close())

	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch, err := r.Stream(ctx)
	require.NoError(t, err)

	var got []retail.Transaction
	for tx := range ch {
		got = append(got, tx)
	}
	assert.Len(t, got, 2)
}
