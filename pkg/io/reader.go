// Package io defines the interfaces for moving transactions in and out
// of the analytics pipeline.
package io

import (
	"context"

	"github.com/hed1ad/retailsense/pkg/retail"
)

// Reader is the interface for reading transactions from a source.
type Reader interface {
	// Read returns the complete dataset.
	Read() ([]retail.Transaction, error)

	// Stream returns a channel of transactions for incremental
	// processing.
	Stream(ctx context.Context) (<-chan retail.Transaction, error)

	// Close releases resources.
	Close() error
}

// Writer is the interface for exporting transactions.
type Writer interface {
	// Write outputs a single transaction.
	Write(tx retail.Transaction) error

	// WriteAll outputs multiple transactions.
	WriteAll(txs []retail.Transaction) error

	// Close flushes and releases resources.
	Close() error
}
