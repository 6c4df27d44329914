package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "papertrade",
	Short: "A paper-trading ledger for practicing stock trades without real money",
	Long: `Papertrade tracks a simulated cash balance, share holdings and a full
trade history, pricing buys and sells against live market quotes.

State is persisted between runs (CSV files or a SQLite database), so a
session picks up exactly where the last one left off.

Examples:
  papertrade buy AAPL 10
  papertrade sell AAPL 5
  papertrade portfolio --quotes
  papertrade history --verify`,
	SilenceUsage: true,
}

var cfgFile string

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./papertrade.yaml)")
}
