package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/hed1ad/retailsense/pkg/forecast"
)

func newForecastCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast revenue and product demand",
		RunE: func(cmd *cobra.Command, args []string) error {
			txs, err := loadTransactions()
			if err != nil {
				return err
			}

			f := forecast.NewForecaster(forecast.WithLogger(log))

			rev := f.ForecastRevenue(txs, days)
			if rev.Status != forecast.StatusOK {
				return fmt.Errorf("forecast skipped: %s", rev.Status)
			}

			p := message.NewPrinter(language.English)
			p.Printf("== Revenue forecast (%d days) ==\n", days)
			p.Printf("Predicted total:  $%.2f\n", rev.TotalRevenue)
			p.Printf("Model fit:        MAE $%.2f, RMSE $%.2f, R2 %.3f\n",
				rev.Accuracy.MAE, rev.Accuracy.RMSE, rev.Accuracy.R2)
			p.Printf("History:          %d hourly buckets\n", rev.HistoryHours)

			p.Println("\n== Product demand (next 7 days) ==")
			for _, d := range f.ForecastDemand(txs) {
				p.Printf("%-28s %-10s %.0f units (%s)\n",
					d.ProductName, d.Trend, d.Predicted7Days, d.Category)
			}

			s := f.AnalyzeSeasonality(txs)
			p.Println("\n== Seasonality ==")
			p.Printf("Peak hour:        %02d:00\n", s.PeakHour)
			p.Printf("Peak day:         %s\n", s.PeakDay)
			p.Printf("Weekend lift:     %+.1f%%\n", s.WeekendLiftPct)

			p.Println("\n== Inventory classes ==")
			for i, item := range f.ClassifyInventory(txs) {
				if i >= 10 {
					break
				}
				p.Printf("%-28s %s%s  %s\n",
					item.ProductName, item.ABCClass, item.XYZClass, item.Recommendation)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", forecast.DefaultHorizonDays, "forecast horizon in days")
	return cmd
}
