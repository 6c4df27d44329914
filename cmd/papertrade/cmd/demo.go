package cmd

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rgould/papertrade/ledger"
	"github.com/rgould/papertrade/quote"
	"github.com/rgould/papertrade/store"
	"github.com/rgould/papertrade/trading"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a scripted trading session against fixed prices",
	Long: `Runs a short buy/sell session against a fixed price table in a
throwaway data directory, so you can see the full workflow without
touching your real account or the network:

  1. Start with the default $10000.00 balance
  2. Buy shares and watch the balance drop
  3. Sell them back and watch the history accumulate
  4. Verify the log replays to the final balance`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	dir, err := os.MkdirTemp("", "papertrade-demo-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	st, err := store.NewCSV(dir)
	if err != nil {
		return err
	}
	defer st.Close()

	prices := quote.NewStatic(map[string]decimal.Decimal{
		"AAPL": decimal.RequireFromString("150.00"),
		"MSFT": decimal.RequireFromString("300.00"),
	})

	l := ledger.NewDefault()
	exec := trading.NewExecutor(l, prices, st, 0)
	ctx := cmd.Context()

	steps := []struct {
		action ledger.Action
		symbol string
		qty    int64
	}{
		{ledger.Buy, "AAPL", 10},
		{ledger.Buy, "MSFT", 5},
		{ledger.Sell, "AAPL", 10},
		{ledger.Sell, "TSLA", 1}, // not owned, shows a rejection
	}

	for _, s := range steps {
		res, err := exec.Execute(ctx, s.action, s.symbol, s.qty)
		if err != nil {
			return err
		}
		if !res.Accepted {
			fmt.Printf("%-4s %-5s x%-3d -> rejected: %s\n", s.action, s.symbol, s.qty, res.Reason)
			continue
		}
		fmt.Printf("%-4s %-5s x%-3d @ $%s -> balance $%s\n",
			res.Action, res.Symbol, res.Quantity,
			res.Price.StringFixed(2), res.NewBalance.StringFixed(2))
	}

	if err := exec.VerifyHistory(); err != nil {
		return err
	}
	fmt.Println("\nHistory verified: the trade log replays to the final balance.")
	return nil
}
