package trading

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rgould/papertrade/ledger"
	"github.com/rgould/papertrade/store"
)

// Holding is one position in a snapshot view, optionally marked to the
// current market price.
type Holding struct {
	Symbol   string
	Quantity int64

	// Set when the snapshot was taken with quotes and the lookup
	// succeeded for this symbol.
	Price       decimal.Decimal
	MarketValue decimal.Decimal
	Priced      bool
}

// Snapshot is the presentation-facing view of the ledger.
type Snapshot struct {
	Balance  decimal.Decimal
	Holdings []Holding // sorted by symbol
}

// Snapshot reads the current state. With withQuotes set it fetches one
// price per held symbol; a failed lookup leaves that holding unpriced
// instead of failing the whole snapshot.
func (e *Executor) Snapshot(ctx context.Context, withQuotes bool) Snapshot {
	balance, holdings := e.ledger.Snapshot()

	out := Snapshot{Balance: balance}
	for sym, qty := range holdings {
		h := Holding{Symbol: sym, Quantity: qty}
		if withQuotes {
			if price, err := e.fetchPrice(ctx, sym); err == nil {
				h.Price = price
				h.MarketValue = price.Mul(decimal.NewFromInt(qty))
				h.Priced = true
			}
		}
		out.Holdings = append(out.Holdings, h)
	}
	sort.Slice(out.Holdings, func(i, j int) bool {
		return out.Holdings[i].Symbol < out.Holdings[j].Symbol
	})
	return out
}

// History returns the full ordered trade log, oldest first.
func (e *Executor) History() ([]store.TradeRecord, error) {
	return e.store.ReadHistory()
}

// VerifyHistory replays the trade log from the opening balance and
// checks that every recorded balance follows from the one before it and
// that the final record matches the current balance. A mismatch means
// the log and the snapshot have diverged.
func (e *Executor) VerifyHistory() error {
	recs, err := e.store.ReadHistory()
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		return nil
	}
	// The opening balance is whatever the first trade moved away from.
	initial := recs[0].Balance.Sub(recs[0].CostRevenue)
	replayed, err := Replay(initial, recs)
	if err != nil {
		return err
	}
	current := e.ledger.Balance()
	if !replayed.Round(2).Equal(current.Round(2)) {
		return fmt.Errorf("trading: history replays to %s but balance is %s",
			replayed.StringFixed(2), current.StringFixed(2))
	}
	return nil
}

// Replay applies each record's action, price and quantity to a starting
// balance and returns the final balance. Each intermediate balance is
// checked against the record's stored resulting balance.
func Replay(initial decimal.Decimal, recs []store.TradeRecord) (decimal.Decimal, error) {
	balance := initial
	for i, rec := range recs {
		total := rec.Price.Mul(decimal.NewFromInt(rec.Quantity))
		switch rec.Action {
		case ledger.Buy:
			balance = balance.Sub(total)
		case ledger.Sell:
			balance = balance.Add(total)
		default:
			return decimal.Zero, fmt.Errorf("trading: record %d has unknown action %q", i, rec.Action)
		}
		if !balance.Round(2).Equal(rec.Balance.Round(2)) {
			return decimal.Zero, fmt.Errorf("trading: record %d (%s %s) replays to %s, log says %s",
				i, rec.Action, rec.Symbol, balance.StringFixed(2), rec.Balance.StringFixed(2))
		}
	}
	return balance, nil
}
