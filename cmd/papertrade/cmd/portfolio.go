package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var portfolioWithQuotes bool

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Show the current balance and holdings",
	Args:  cobra.NoArgs,
	RunE:  runPortfolio,
}

func init() {
	rootCmd.AddCommand(portfolioCmd)
	portfolioCmd.Flags().BoolVarP(&portfolioWithQuotes, "quotes", "q", false, "fetch current prices and show market values")
}

func runPortfolio(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	snap := s.executor.Snapshot(cmd.Context(), portfolioWithQuotes)

	fmt.Printf("Current Balance: $%s\n", snap.Balance.StringFixed(2))
	fmt.Println("Portfolio:")
	if len(snap.Holdings) == 0 {
		fmt.Println("  No stocks in portfolio.")
		return nil
	}
	for _, h := range snap.Holdings {
		switch {
		case h.Priced:
			fmt.Printf("  %-6s %6d shares @ $%s = $%s\n",
				h.Symbol, h.Quantity, h.Price.StringFixed(2), h.MarketValue.StringFixed(2))
		case portfolioWithQuotes:
			fmt.Printf("  %-6s %6d shares (price unavailable)\n", h.Symbol, h.Quantity)
		default:
			fmt.Printf("  %-6s %6d shares\n", h.Symbol, h.Quantity)
		}
	}
	return nil
}
