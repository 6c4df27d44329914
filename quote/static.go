package quote

import (
	"context"

	"github.com/shopspring/decimal"
)

// Static serves fixed prices from a map. Used by tests and the demo
// command; unknown symbols are unavailable.
type Static struct {
	prices map[string]decimal.Decimal
}

func NewStatic(prices map[string]decimal.Decimal) *Static {
	p := make(map[string]decimal.Decimal, len(prices))
	for sym, price := range prices {
		p[sym] = price
	}
	return &Static{prices: p}
}

func (s *Static) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	price, ok := s.prices[symbol]
	if !ok || !price.IsPositive() {
		return decimal.Zero, ErrPriceUnavailable
	}
	return price, nil
}
