package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var historyVerify bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the full trade history, oldest first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().BoolVar(&historyVerify, "verify", false, "replay the log and check it matches the current balance")
}

func runHistory(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	recs, err := s.executor.History()
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}

	if len(recs) == 0 {
		fmt.Println("No trades yet.")
	} else {
		fmt.Printf("%-20s %-4s %-6s %10s %6s %12s %12s\n",
			"time", "side", "symbol", "price", "qty", "cost/rev", "balance")
		for _, rec := range recs {
			fmt.Printf("%-20s %-4s %-6s %10s %6d %12s %12s\n",
				rec.Time.Local().Format(time.DateTime),
				rec.Action, rec.Symbol,
				rec.Price.StringFixed(2), rec.Quantity,
				rec.CostRevenue.StringFixed(2), rec.Balance.StringFixed(2))
		}
	}

	if historyVerify {
		if err := s.executor.VerifyHistory(); err != nil {
			return err
		}
		fmt.Println("History verified: replaying the log reproduces the current balance.")
	}
	return nil
}
