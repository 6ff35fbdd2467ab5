package csv

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/hed1ad/retailsense/pkg/retail"
)

// Writer exports transactions to a CSV file.
type Writer struct {
	file   *os.File
	writer *csv.Writer
}

// NewWriter creates a CSV file and writes the header row.
func NewWriter(filename string) (*Writer, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, err
	}

	w := &Writer{
		file:   file,
		writer: csv.NewWriter(file),
	}
	if err := w.writer.Write(columns); err != nil {
		file.Close()
		return nil, err
	}
	return w, nil
}

// Write outputs a single transaction.
func (w *Writer) Write(tx retail.Transaction) error {
	return w.writer.Write([]string{
		tx.ID,
		tx.Timestamp.Format(time.RFC3339),
		tx.StoreID,
		tx.ProductName,
		string(tx.Category),
		strconv.FormatFloat(tx.UnitPrice, 'f', 2, 64),
		strconv.Itoa(tx.Quantity),
		strconv.FormatFloat(tx.Subtotal, 'f', 2, 64),
		strconv.FormatFloat(tx.TaxAmount, 'f', 2, 64),
		strconv.FormatFloat(tx.TotalAmount, 'f', 2, 64),
		string(tx.PaymentMethod),
		tx.CustomerID,
	})
}

// WriteAll outputs multiple transactions.
func (w *Writer) WriteAll(txs []retail.Transaction) error {
	for _, tx := range txs {
		if err := w.Write(tx); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes and releases resources.
func (w *Writer) Close() error {
	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}
