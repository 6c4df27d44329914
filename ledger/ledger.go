// Package ledger owns the in-memory trading state: a cash balance and a
// map of share holdings. It enforces the two invariants everything else
// relies on: the balance never goes negative and no holding entry has a
// quantity of zero or less.
package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Action is the side of a trade.
type Action string

const (
	Buy  Action = "Buy"
	Sell Action = "Sell"
)

// DefaultBalance is the opening balance for a fresh account.
var DefaultBalance = decimal.RequireFromString("10000.00")

// InvariantError reports a precondition that was false at apply time.
// The executor validates before calling Apply, so hitting one of these
// means a caller bug, not bad user input. It fails the operation, never
// the process.
type InvariantError struct {
	Op     string
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("ledger: invariant violated in %s: %s", e.Op, e.Reason)
}

// Ledger is the single owner of balance and holdings. It is not safe for
// concurrent use; a session drives it sequentially.
type Ledger struct {
	balance  decimal.Decimal
	holdings map[string]int64
}

// New builds a ledger from loaded state. The holdings map is copied;
// entries with non-positive quantities are rejected.
func New(balance decimal.Decimal, holdings map[string]int64) (*Ledger, error) {
	if balance.IsNegative() {
		return nil, &InvariantError{Op: "New", Reason: fmt.Sprintf("negative balance %s", balance)}
	}
	h := make(map[string]int64, len(holdings))
	for sym, qty := range holdings {
		if qty <= 0 {
			return nil, &InvariantError{Op: "New", Reason: fmt.Sprintf("holding %s has quantity %d", sym, qty)}
		}
		h[sym] = qty
	}
	return &Ledger{balance: balance, holdings: h}, nil
}

// NewDefault returns a ledger with the default opening balance and no holdings.
func NewDefault() *Ledger {
	return &Ledger{balance: DefaultBalance, holdings: map[string]int64{}}
}

// Balance returns the current cash balance.
func (l *Ledger) Balance() decimal.Decimal { return l.balance }

// Snapshot returns the current balance and a copy of the holdings map.
// Side-effect free; mutating the returned map does not touch the ledger.
func (l *Ledger) Snapshot() (decimal.Decimal, map[string]int64) {
	h := make(map[string]int64, len(l.holdings))
	for sym, qty := range l.holdings {
		h[sym] = qty
	}
	return l.balance, h
}

// Quantity returns the held quantity for symbol, zero if not held.
func (l *Ledger) Quantity(symbol string) int64 { return l.holdings[symbol] }

// Apply executes an already-validated trade against the ledger state and
// returns the resulting balance.
//
// Buy:  balance -= price*quantity, holdings[symbol] += quantity.
// Sell: balance += price*quantity, holdings[symbol] -= quantity, and the
// entry is removed when it reaches zero.
//
// Preconditions are re-asserted here and an *InvariantError returned if
// any fails; in that case the state is untouched.
func (l *Ledger) Apply(action Action, symbol string, price decimal.Decimal, quantity int64) (decimal.Decimal, error) {
	if quantity <= 0 {
		return decimal.Zero, &InvariantError{Op: "Apply", Reason: fmt.Sprintf("quantity %d not positive", quantity)}
	}
	if !price.IsPositive() {
		return decimal.Zero, &InvariantError{Op: "Apply", Reason: fmt.Sprintf("price %s not positive", price)}
	}

	total := price.Mul(decimal.NewFromInt(quantity))

	switch action {
	case Buy:
		if total.GreaterThan(l.balance) {
			return decimal.Zero, &InvariantError{
				Op:     "Apply",
				Reason: fmt.Sprintf("cost %s exceeds balance %s", total, l.balance),
			}
		}
		l.balance = l.balance.Sub(total)
		l.holdings[symbol] += quantity

	case Sell:
		held := l.holdings[symbol]
		if held < quantity {
			return decimal.Zero, &InvariantError{
				Op:     "Apply",
				Reason: fmt.Sprintf("selling %d of %s but holding %d", quantity, symbol, held),
			}
		}
		l.balance = l.balance.Add(total)
		if held == quantity {
			delete(l.holdings, symbol)
		} else {
			l.holdings[symbol] = held - quantity
		}

	default:
		return decimal.Zero, &InvariantError{Op: "Apply", Reason: fmt.Sprintf("unknown action %q", action)}
	}

	return l.balance, nil
}
