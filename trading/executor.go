// Package trading validates buy/sell requests against the ledger and the
// current market price, mutates the ledger on acceptance, and keeps the
// durable store in step. All validation happens before any mutation; the
// only partial state possible is the explicit persistence-failure window
// after a trade is applied, which is surfaced as ErrPersistenceFailed.
package trading

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rgould/papertrade/internal/id"
	"github.com/rgould/papertrade/ledger"
	"github.com/rgould/papertrade/quote"
	"github.com/rgould/papertrade/store"
)

// Reason classifies why a request was rejected. Rejections never mutate
// state and never write to the trade log.
type Reason string

const (
	ReasonPriceUnavailable    Reason = "PriceUnavailable"
	ReasonInvalidQuantity     Reason = "InvalidQuantity"
	ReasonInsufficientBalance Reason = "InsufficientBalance"
	ReasonInsufficientShares  Reason = "InsufficientShares"
	ReasonNotOwned            Reason = "NotOwned"
)

// ErrPersistenceFailed means the trade was applied in memory but could
// not be made durable, even after a retry. The in-memory state is the
// authoritative one; it is not rolled back, since a revert could itself
// disagree with a partially written log.
var ErrPersistenceFailed = errors.New("trading: persistence failed after trade applied")

// Result describes the outcome of an Execute call.
type Result struct {
	Accepted bool
	Reason   Reason // set when rejected

	// Set when accepted.
	Action      ledger.Action
	Symbol      string
	Price       decimal.Decimal
	Quantity    int64
	CostRevenue decimal.Decimal // negative for buys, positive for sells
	NewBalance  decimal.Decimal
}

func rejected(reason Reason) Result {
	return Result{Accepted: false, Reason: reason}
}

// Executor drives one trading session: it owns no state of its own, just
// the ledger, the quote source, and the store it coordinates.
type Executor struct {
	ledger       *ledger.Ledger
	quotes       quote.Provider
	store        store.Store
	quoteTimeout time.Duration
	now          func() time.Time
}

// NewExecutor wires an executor. quoteTimeout bounds each price lookup;
// zero means 10s.
func NewExecutor(l *ledger.Ledger, q quote.Provider, s store.Store, quoteTimeout time.Duration) *Executor {
	if quoteTimeout <= 0 {
		quoteTimeout = 10 * time.Second
	}
	return &Executor{
		ledger:       l,
		quotes:       q,
		store:        s,
		quoteTimeout: quoteTimeout,
		now:          time.Now,
	}
}

// Execute runs one buy or sell request end to end.
//
// The returned error is nil for both acceptances and business-rule
// rejections (inspect Result); it is non-nil only for failures after the
// ledger was already mutated (ErrPersistenceFailed) or for internal
// invariant violations.
func (e *Executor) Execute(ctx context.Context, action ledger.Action, symbol string, quantity int64) (Result, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return rejected(ReasonPriceUnavailable), nil
	}
	if quantity <= 0 {
		return rejected(ReasonInvalidQuantity), nil
	}

	// Sell of a symbol we do not hold is rejected before spending a
	// quote call, same as the interactive flow always did.
	held := e.ledger.Quantity(symbol)
	if action == ledger.Sell && held == 0 {
		return rejected(ReasonNotOwned), nil
	}

	price, err := e.fetchPrice(ctx, symbol)
	if err != nil {
		return rejected(ReasonPriceUnavailable), nil
	}

	total := price.Mul(decimal.NewFromInt(quantity))

	switch action {
	case ledger.Buy:
		if total.GreaterThan(e.ledger.Balance()) {
			return rejected(ReasonInsufficientBalance), nil
		}
	case ledger.Sell:
		if quantity > held {
			return rejected(ReasonInsufficientShares), nil
		}
	default:
		return Result{}, fmt.Errorf("trading: unknown action %q", action)
	}

	newBalance, err := e.ledger.Apply(action, symbol, price, quantity)
	if err != nil {
		// Defensive check tripped inside the ledger. Nothing was
		// mutated; report it as-is.
		return Result{}, err
	}

	costRevenue := total
	if action == ledger.Buy {
		costRevenue = total.Neg()
	}

	rec := store.TradeRecord{
		ID:          id.New(),
		Time:        e.now().UTC(),
		Action:      action,
		Symbol:      symbol,
		Price:       price,
		Quantity:    quantity,
		CostRevenue: costRevenue,
		Balance:     newBalance,
	}

	res := Result{
		Accepted:    true,
		Action:      action,
		Symbol:      symbol,
		Price:       price,
		Quantity:    quantity,
		CostRevenue: costRevenue,
		NewBalance:  newBalance,
	}

	if err := e.persist(rec); err != nil {
		return res, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}
	return res, nil
}

// Buy is shorthand for Execute with the Buy action.
func (e *Executor) Buy(ctx context.Context, symbol string, quantity int64) (Result, error) {
	return e.Execute(ctx, ledger.Buy, symbol, quantity)
}

// Sell is shorthand for Execute with the Sell action.
func (e *Executor) Sell(ctx context.Context, symbol string, quantity int64) (Result, error) {
	return e.Execute(ctx, ledger.Sell, symbol, quantity)
}

func (e *Executor) fetchPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, e.quoteTimeout)
	defer cancel()

	price, err := e.quotes.GetPrice(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}
	// Trades execute at cent precision so every recorded value and every
	// balance delta is exact; a price that rounds to zero is unusable.
	price = price.Round(2)
	if !price.IsPositive() {
		return decimal.Zero, quote.ErrPriceUnavailable
	}
	return price, nil
}

// persist appends the record and saves the snapshot, retrying each step
// once. The ledger is already mutated at this point, so the policy is to
// try hard and report loudly rather than revert.
func (e *Executor) persist(rec store.TradeRecord) error {
	balance, holdings := e.ledger.Snapshot()

	if err := e.store.AppendTrade(rec); err != nil {
		if err2 := e.store.AppendTrade(rec); err2 != nil {
			return fmt.Errorf("append trade: %v", err2)
		}
	}
	if err := e.store.SaveState(balance, holdings); err != nil {
		if err2 := e.store.SaveState(balance, holdings); err2 != nil {
			return fmt.Errorf("save state: %v", err2)
		}
	}
	return nil
}

// NormalizeSymbol maps user input to the canonical uppercase symbol form.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
