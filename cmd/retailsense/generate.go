package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hed1ad/retailsense/pkg/io/csv"
	"github.com/hed1ad/retailsense/pkg/retail"
)

// catalog holds products and realistic price ranges per category.
var catalog = map[retail.Category]struct {
	products []string
	minPrice float64
	maxPrice float64
}{
	retail.CategoryElectronics: {
		products: []string{"Wireless Earbuds", "Smart Watch", "Phone Charger", "Bluetooth Speaker", "USB Cable"},
		minPrice: 15, maxPrice: 400,
	},
	retail.CategoryClothing: {
		products: []string{"T-Shirt", "Jeans", "Hoodie", "Sneakers", "Jacket"},
		minPrice: 10, maxPrice: 150,
	},
	retail.CategoryFood: {
		products: []string{"Coffee Beans", "Chocolate Box", "Olive Oil", "Energy Drink", "Protein Bar"},
		minPrice: 2, maxPrice: 40,
	},
	retail.CategoryHomeGarden: {
		products: []string{"Desk Lamp", "Plant Pot", "Throw Pillow", "Garden Hose", "Candle Set"},
		minPrice: 8, maxPrice: 120,
	},
	retail.CategoryBooksMedia: {
		products: []string{"Novel", "Cookbook", "Vinyl Record", "Board Game", "Magazine"},
		minPrice: 5, maxPrice: 60,
	},
	retail.CategoryToysGames: {
		products: []string{"Building Blocks", "Puzzle", "Action Figure", "Plush Toy", "RC Car"},
		minPrice: 8, maxPrice: 90,
	},
}

var paymentMethods = retail.PaymentMethods()

const taxRate = 0.08

func newGenerateCmd() *cobra.Command {
	var (
		out       string
		count     int
		days      int
		stores    int
		customers int
		seed      int64
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic transactions CSV for demos and testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			rng := rand.New(rand.NewSource(seed))
			end := time.Now().Truncate(time.Hour)
			start := end.AddDate(0, 0, -days)

			w, err := csv.NewWriter(out)
			if err != nil {
				return err
			}
			defer w.Close()

			categories := make([]retail.Category, 0, len(catalog))
			for c := range catalog {
				categories = append(categories, c)
			}

			for i := 0; i < count; i++ {
				if err := w.Write(randomTransaction(rng, categories, start, end, stores, customers)); err != nil {
					return fmt.Errorf("write %s: %w", out, err)
				}
			}

			log.Info().Int("transactions", count).Str("file", out).Msg("generated dataset")
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "transactions.csv", "output CSV file")
	cmd.Flags().IntVarP(&count, "count", "n", 5000, "number of transactions")
	cmd.Flags().IntVar(&days, "days", 30, "time span in days ending now")
	cmd.Flags().IntVar(&stores, "stores", 5, "number of stores")
	cmd.Flags().IntVar(&customers, "customers", 200, "number of customers")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	return cmd
}

func randomTransaction(rng *rand.Rand, categories []retail.Category, start, end time.Time, stores, customers int) retail.Transaction {
	cat := categories[rng.Intn(len(categories))]
	entry := catalog[cat]

	price := entry.minPrice + rng.Float64()*(entry.maxPrice-entry.minPrice)
	price = float64(int(price*100)) / 100
	qty := 1 + rng.Intn(4)

	// Cluster timestamps into business hours.
	ts := start.Add(time.Duration(rng.Int63n(int64(end.Sub(start)))))
	hour := 8 + rng.Intn(14)
	ts = time.Date(ts.Year(), ts.Month(), ts.Day(), hour, rng.Intn(60), rng.Intn(60), 0, ts.Location())

	subtotal := price * float64(qty)
	tax := float64(int(subtotal*taxRate*100)) / 100

	return retail.Transaction{
		ID:            uuid.NewString(),
		Timestamp:     ts,
		StoreID:       fmt.Sprintf("STORE%03d", 1+rng.Intn(stores)),
		ProductName:   entry.products[rng.Intn(len(entry.products))],
		Category:      cat,
		UnitPrice:     price,
		Quantity:      qty,
		Subtotal:      subtotal,
		TaxAmount:     tax,
		TotalAmount:   subtotal + tax,
		PaymentMethod: paymentMethods[rng.Intn(len(paymentMethods))],
		CustomerID:    fmt.Sprintf("CUST%04d", 1+rng.Intn(customers)),
	}
}
