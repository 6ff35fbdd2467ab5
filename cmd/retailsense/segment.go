package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/hed1ad/retailsense/pkg/segmentation"
)

func newSegmentCmd() *cobra.Command {
	var clusters int

	cmd := &cobra.Command{
		Use:   "segment",
		Short: "Segment customers by purchase behavior",
		RunE: func(cmd *cobra.Command, args []string) error {
			txs, err := loadTransactions()
			if err != nil {
				return err
			}

			seg := segmentation.NewSegmenter(
				segmentation.WithClusters(clusters),
				segmentation.WithSegmentLogger(log),
			)
			res := seg.Segment(txs)
			if res.Status != segmentation.StatusOK {
				return fmt.Errorf("segmentation skipped: status %d", res.Status)
			}

			p := message.NewPrinter(language.English)

			names := make([]string, 0, len(res.Segments))
			for name := range res.Segments {
				names = append(names, name)
			}
			sort.Slice(names, func(i, j int) bool {
				return res.Segments[names[i]].TotalRevenue > res.Segments[names[j]].TotalRevenue
			})

			for _, name := range names {
				st := res.Segments[name]
				p.Printf("== %s ==\n", name)
				p.Printf("Customers:        %d\n", st.CustomerCount)
				p.Printf("Revenue:          $%.2f\n", st.TotalRevenue)
				p.Printf("Avg recency:      %.1f days\n", st.AvgRecency)
				p.Printf("Avg frequency:    %.1f purchases\n", st.AvgFrequency)
				p.Printf("Avg monetary:     $%.2f\n", st.AvgMonetary)
				for _, c := range st.PreferredCategories {
					p.Printf("Top category:     %s ($%.2f)\n", c.Category, c.Revenue)
				}
				p.Println()
			}

			// Churn exposure across the customer base.
			atRisk := 0
			for _, c := range segmentation.ComputeChurnRisk(txs) {
				if c.Risk == segmentation.RiskHigh {
					atRisk++
				}
			}
			p.Printf("High churn risk:  %d customers\n", atRisk)

			// CLV tier counts.
			tiers := make(map[string]int)
			for _, lv := range segmentation.ComputeLifetimeValue(txs) {
				tiers[lv.Tier]++
			}
			for _, tier := range []string{"Premium", "High", "Medium", "Low"} {
				if n := tiers[tier]; n > 0 {
					p.Printf("CLV %-8s %d customers\n", tier+":", n)
				}
			}

			j := segmentation.ComputeJourney(txs)
			p.Printf("Retention rate:   %.1f%%\n", j.RetentionRate*100)
			p.Printf("Cross-sell rate:  %.1f%%\n", j.CrossSellRate*100)
			return nil
		},
	}

	cmd.Flags().IntVarP(&clusters, "clusters", "k", segmentation.DefaultClusters, "number of customer segments")
	return cmd
}
