// Command retailsense analyzes retail transaction data: sales
// statistics, anomaly detection, customer segmentation and revenue
// forecasting over CSV exports.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hed1ad/retailsense/pkg/io/csv"
	"github.com/hed1ad/retailsense/pkg/retail"
)

var (
	inputPath string
	verbose   bool

	log zerolog.Logger
)

func main() {
	// A .env file can carry defaults; a missing file is fine.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "retailsense",
		Short: "Retail transaction analytics",
		Long:  "Analyze retail transactions: sales statistics, anomaly detection,\ncustomer segmentation and revenue forecasting.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).
				With().Timestamp().Logger()
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&inputPath, "input", "i", os.Getenv("RETAILSENSE_INPUT"), "transactions CSV file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newStatsCmd(),
		newDetectCmd(),
		newSegmentCmd(),
		newForecastCmd(),
		newGenerateCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadTransactions reads the --input CSV.
func loadTransactions() ([]retail.Transaction, error) {
	if inputPath == "" {
		return nil, fmt.Errorf("no input file: pass --input or set RETAILSENSE_INPUT")
	}

	r, err := csv.NewReader(inputPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", inputPath, err)
	}
	defer r.Close()

	txs, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", inputPath, err)
	}
	log.Debug().Int("transactions", len(txs)).Str("file", inputPath).Msg("loaded input")
	return txs, nil
}
