// Package csv provides CSV reading and writing for transaction data.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/hed1ad/retailsense/pkg/retail"
)

// columns is the canonical column order for transaction CSV files.
var columns = []string{
	"transaction_id",
	"timestamp",
	"store_id",
	"product_name",
	"category",
	"unit_price",
	"quantity",
	"subtotal",
	"tax_amount",
	"total_amount",
	"payment_method",
	"customer_id",
}

// timestampLayouts are accepted on read, tried in order.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// Reader reads transactions from CSV files.
type Reader struct {
	file      *os.File
	reader    *csv.Reader
	hasHeader bool
	headers   []string
}

// Option configures a CSV reader.
type Option func(*Reader)

// WithHeader indicates the CSV has a header row.
func WithHeader(has bool) Option {
	return func(r *Reader) {
		r.hasHeader = has
	}
}

// NewReader creates a new CSV reader.
func NewReader(filename string, opts ...Option) (*Reader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	r := &Reader{
		file:      file,
		reader:    csv.NewReader(file),
		hasHeader: true,
	}

	for _, opt := range opts {
		opt(r)
	}

	// Read header if present
	if r.hasHeader {
		headers, err := r.reader.Read()
		if err != nil {
			file.Close()
			return nil, err
		}
		r.headers = headers
	}

	return r, nil
}

// Headers returns the column headers.
func (r *Reader) Headers() []string {
	return r.headers
}

// Read returns all transactions in the file. Malformed rows are
// skipped.
func (r *Reader) Read() ([]retail.Transaction, error) {
	var txs []retail.Transaction

	for {
		record, err := r.reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		tx, err := parseRecord(record)
		if err != nil {
			continue // Skip malformed rows
		}
		txs = append(txs, tx)
	}

	return txs, nil
}

// Stream returns a channel of transactions for incremental processing.
func (r *Reader) Stream(ctx context.Context) (<-chan retail.Transaction, error) {
	out := make(chan retail.Transaction, 100)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				record, err := r.reader.Read()
				if err == io.EOF {
					return
				}
				if err != nil {
					continue
				}

				tx, err := parseRecord(record)
				if err != nil {
					continue
				}

				select {
				case out <- tx:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Close releases resources.
func (r *Reader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// parseRecord converts one CSV row into a transaction.
func parseRecord(record []string) (retail.Transaction, error) {
	if len(record) != len(columns) {
		return retail.Transaction{}, fmt.Errorf("expected %d fields, got %d", len(columns), len(record))
	}

	ts, err := parseTimestamp(record[1])
	if err != nil {
		return retail.Transaction{}, err
	}
	unitPrice, err := strconv.ParseFloat(record[5], 64)
	if err != nil {
		return retail.Transaction{}, err
	}
	quantity, err := strconv.Atoi(record[6])
	if err != nil {
		return retail.Transaction{}, err
	}
	subtotal, err := strconv.ParseFloat(record[7], 64)
	if err != nil {
		return retail.Transaction{}, err
	}
	tax, err := strconv.ParseFloat(record[8], 64)
	if err != nil {
		return retail.Transaction{}, err
	}
	total, err := strconv.ParseFloat(record[9], 64)
	if err != nil {
		return retail.Transaction{}, err
	}

	return retail.Transaction{
		ID:            record[0],
		Timestamp:     ts,
		StoreID:       record[2],
		ProductName:   record[3],
		Category:      retail.Category(record[4]),
		UnitPrice:     unitPrice,
		Quantity:      quantity,
		Subtotal:      subtotal,
		TaxAmount:     tax,
		TotalAmount:   total,
		PaymentMethod: retail.PaymentMethod(record[10]),
		CustomerID:    record[11],
	}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, errors.New("unrecognized timestamp format")
}
