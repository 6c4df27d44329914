// Package quote fetches current market prices. The rest of the system
// only ever sees the Provider interface: a price or ErrPriceUnavailable.
package quote

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrPriceUnavailable is returned when a quote cannot be obtained: the
// fetch failed, timed out, or the source produced a non-positive price.
// Callers treat it as recoverable and may retry.
var ErrPriceUnavailable = errors.New("quote: price unavailable")

// Provider returns the current price for a symbol.
type Provider interface {
	GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// Func adapts a function to the Provider interface.
type Func func(ctx context.Context, symbol string) (decimal.Decimal, error)

func (f Func) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	return f(ctx, symbol)
}
