package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/hed1ad/retailsense/pkg/anomaly"
)

func newDetectCmd() *cobra.Command {
	var (
		method        string
		contamination float64
		limit         int
	)

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Detect anomalous transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			txs, err := loadTransactions()
			if err != nil {
				return err
			}

			scorer := anomaly.NewScorer(
				anomaly.WithContamination(contamination),
				anomaly.WithLogger(log),
			)
			det, err := scorer.Detect(txs, anomaly.Method(method))
			if err != nil {
				return err
			}
			if det.Status != anomaly.StatusOK {
				return fmt.Errorf("detection skipped: %s", det.Status)
			}

			p := message.NewPrinter(language.English)
			p.Printf("%d anomalies in %d transactions (%.2f%%)\n\n",
				len(det.Anomalies), len(txs),
				float64(len(det.Anomalies))/float64(len(txs))*100)

			for i, a := range det.Anomalies {
				if i >= limit {
					p.Printf("... and %d more\n", len(det.Anomalies)-limit)
					break
				}
				p.Printf("%s  $%.2f  %-20s  store=%s  score=%.3f\n",
					a.Transaction.Timestamp.Format("2006-01-02 15:04"),
					a.Transaction.TotalAmount,
					a.Transaction.Category,
					a.Transaction.StoreID,
					a.Score)
			}

			s := scorer.Summarize(txs)
			p.Printf("\nAnomalous revenue: $%.2f (max $%.2f)\n", s.TotalAnomalousRevenue, s.MaxAnomalyAmount)
			return nil
		},
	}

	cmd.Flags().StringVarP(&method, "method", "m", string(anomaly.MethodCombined), "detection method: density, statistical or combined")
	cmd.Flags().Float64VarP(&contamination, "contamination", "c", 0.05, "expected anomaly fraction for the density method")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum anomalies to print")
	return cmd
}
