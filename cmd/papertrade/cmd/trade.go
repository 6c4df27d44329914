package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rgould/papertrade/ledger"
	"github.com/rgould/papertrade/trading"
)

var buyCmd = &cobra.Command{
	Use:   "buy <symbol> <quantity>",
	Short: "Buy shares at the current market price",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTrade(cmd, ledger.Buy, args)
	},
}

var sellCmd = &cobra.Command{
	Use:   "sell <symbol> <quantity>",
	Short: "Sell shares at the current market price",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTrade(cmd, ledger.Sell, args)
	},
}

func init() {
	rootCmd.AddCommand(buyCmd)
	rootCmd.AddCommand(sellCmd)
}

func runTrade(cmd *cobra.Command, action ledger.Action, args []string) error {
	symbol := args[0]

	// A non-integer quantity takes the same rejection path as a
	// non-positive one.
	quantity, perr := strconv.ParseInt(args[1], 10, 64)
	if perr != nil {
		quantity = 0
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.executor.Execute(cmd.Context(), action, symbol, quantity)
	if err != nil {
		// The trade may have been applied in memory but not persisted;
		// say so instead of pretending nothing happened.
		return fmt.Errorf("%s %s: %w", action, trading.NormalizeSymbol(symbol), err)
	}

	if !res.Accepted {
		fmt.Println(reasonMessage(res.Reason))
		return nil
	}

	verb := "Bought"
	amount := res.CostRevenue.Neg()
	if res.Action == ledger.Sell {
		verb = "Sold"
		amount = res.CostRevenue
	}
	fmt.Printf("%s %d shares of %s at $%s for $%s.\n",
		verb, res.Quantity, res.Symbol, res.Price.StringFixed(2), amount.StringFixed(2))
	fmt.Printf("New balance: $%s\n", res.NewBalance.StringFixed(2))
	return nil
}
