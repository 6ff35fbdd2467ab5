package main

import (
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/hed1ad/retailsense/pkg/analytics"
)

func newStatsCmd() *cobra.Command {
	var lookback time.Duration

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print sales statistics and KPIs",
		RunE: func(cmd *cobra.Command, args []string) error {
			txs, err := loadTransactions()
			if err != nil {
				return err
			}

			m := analytics.Compute(txs)
			p := message.NewPrinter(language.English)

			p.Println("== Summary ==")
			p.Printf("Revenue:              $%.2f\n", m.Summary.TotalRevenue)
			p.Printf("Transactions:         %d\n", m.Summary.TotalTransactions)
			p.Printf("Avg transaction:      $%.2f\n", m.Summary.AvgTransactionValue)
			p.Printf("Median transaction:   $%.2f\n", m.Summary.MedianTransactionValue)
			p.Printf("Units sold:           %d\n", m.Summary.TotalUnitsSold)
			p.Printf("Customers:            %d\n", m.Summary.UniqueCustomers)
			p.Printf("Stores:               %d\n", m.Summary.UniqueStores)
			p.Printf("Products:             %d\n", m.Summary.UniqueProducts)
			p.Printf("Top payment method:   %s\n", m.Summary.MostPopularPayment)

			p.Println("\n== Categories ==")
			for _, c := range m.Categories {
				p.Printf("%-20s $%.2f (%.1f%% share, %d txns)\n",
					c.Category, c.Revenue, c.MarketSharePct, c.TransactionCount)
			}

			p.Println("\n== Top stores ==")
			for i, s := range m.Stores {
				if i >= 5 {
					break
				}
				p.Printf("%-10s $%.2f (%d txns, %d customers)\n",
					s.StoreID, s.Revenue, s.TransactionCount, s.UniqueCustomers)
			}

			p.Println("\n== Trends ==")
			p.Printf("Revenue growth:       %+.1f%%\n", m.Trends.RevenueGrowthPct)
			p.Printf("Peak hour:            %02d:00\n", m.Trends.PeakHour)
			for _, g := range m.Trends.GrowingCategories {
				p.Printf("Growing:              %s (%+.1f%%)\n", g.Category, g.GrowthPct)
			}

			k := analytics.RealTimeKPIs(txs, lookback)
			p.Printf("\n== Last %s ==\n", k.Window)
			p.Printf("Revenue:              $%.2f\n", k.Revenue)
			p.Printf("Transactions:         %d\n", k.TransactionCount)
			p.Printf("Active customers:     %d\n", k.ActiveCustomers)
			p.Printf("Revenue / minute:     $%.2f\n", k.RevenuePerMinute)
			return nil
		},
	}

	cmd.Flags().DurationVar(&lookback, "lookback", time.Hour, "KPI window relative to the latest transaction")
	return cmd
}
