package quote

import (
	"context"

	"github.com/shopspring/decimal"
)

// Chain tries each provider in order and returns the first usable price.
// It hides retry/fallback policy behind the plain Provider interface so
// the executor never has to know there is more than one source.
type Chain struct {
	providers []Provider
}

func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

func (c *Chain) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	for _, p := range c.providers {
		price, err := p.GetPrice(ctx, symbol)
		if err == nil && price.IsPositive() {
			return price, nil
		}
		if ctx.Err() != nil {
			break
		}
	}
	return decimal.Zero, ErrPriceUnavailable
}
