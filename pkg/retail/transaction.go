// Package retail defines the transaction record and the in-memory,
// retention-capped table the analytics packages operate on.
package retail

import (
	"fmt"
	"math"
	"time"
)

// Category is a product category. The set is a fixed small enumeration.
type Category string

const (
	CategoryElectronics Category = "Electronics"
	CategoryClothing    Category = "Clothing"
	CategoryFood        Category = "Food & Beverages"
	CategoryHomeGarden  Category = "Home & Garden"
	CategoryBooksMedia  Category = "Books & Media"
	CategoryToysGames   Category = "Toys & Games"
)

// Categories lists the known product categories.
func Categories() []Category {
	return []Category{
		CategoryElectronics,
		CategoryClothing,
		CategoryFood,
		CategoryHomeGarden,
		CategoryBooksMedia,
		CategoryToysGames,
	}
}

// PaymentMethod is how a transaction was paid.
type PaymentMethod string

const (
	PaymentCreditCard    PaymentMethod = "Credit Card"
	PaymentDebitCard     PaymentMethod = "Debit Card"
	PaymentCash          PaymentMethod = "Cash"
	PaymentDigitalWallet PaymentMethod = "Digital Wallet"
)

// PaymentMethods lists the known payment methods.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		PaymentCreditCard,
		PaymentDebitCard,
		PaymentCash,
		PaymentDigitalWallet,
	}
}

// Transaction is a single point-of-sale record. Immutable once created.
type Transaction struct {
	ID            string        `json:"transaction_id"`
	Timestamp     time.Time     `json:"timestamp"`
	StoreID       string        `json:"store_id"`
	ProductName   string        `json:"product_name"`
	Category      Category      `json:"category"`
	UnitPrice     float64       `json:"unit_price"`
	Quantity      int           `json:"quantity"`
	Subtotal      float64       `json:"subtotal"`
	TaxAmount     float64       `json:"tax_amount"`
	TotalAmount   float64       `json:"total_amount"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	CustomerID    string        `json:"customer_id"`
}

// amountTolerance is the rounding slack allowed when checking the
// subtotal and total invariants (amounts are rounded to cents upstream).
const amountTolerance = 0.01

// Validate checks the record invariants: positive price and quantity,
// subtotal == unit_price * quantity and total == subtotal + tax within
// rounding tolerance.
func (t Transaction) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("transaction: missing id")
	}
	if t.Timestamp.IsZero() {
		return fmt.Errorf("transaction %s: missing timestamp", t.ID)
	}
	if t.UnitPrice <= 0 {
		return fmt.Errorf("transaction %s: unit price must be positive, got %v", t.ID, t.UnitPrice)
	}
	if t.Quantity <= 0 {
		return fmt.Errorf("transaction %s: quantity must be positive, got %d", t.ID, t.Quantity)
	}
	if math.Abs(t.Subtotal-t.UnitPrice*float64(t.Quantity)) > amountTolerance {
		return fmt.Errorf("transaction %s: subtotal %v does not match unit_price*quantity %v",
			t.ID, t.Subtotal, t.UnitPrice*float64(t.Quantity))
	}
	if math.Abs(t.TotalAmount-(t.Subtotal+t.TaxAmount)) > amountTolerance {
		return fmt.Errorf("transaction %s: total %v does not match subtotal+tax %v",
			t.ID, t.TotalAmount, t.Subtotal+t.TaxAmount)
	}
	return nil
}

// Hour returns the transaction's hour of day (0-23).
func (t Transaction) Hour() int {
	return t.Timestamp.Hour()
}

// MaxTimestamp returns the latest timestamp in txs. The analytics
// packages define "now" as the latest transaction time, not wall clock.
// Returns the zero time for an empty slice.
func MaxTimestamp(txs []Transaction) time.Time {
	var max time.Time
	for _, t := range txs {
		if t.Timestamp.After(max) {
			max = t.Timestamp
		}
	}
	return max
}
