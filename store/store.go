// Package store persists the ledger state (balance + holdings) and the
// append-only trade history. Two backends exist: a CSV pair of files and
// a single SQLite database.
package store

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rgould/papertrade/ledger"
)

// ErrCorruptState means saved state exists but could not be fully parsed.
// Callers must not fall back to defaults on this error; only a genuinely
// absent state file yields DefaultState.
var ErrCorruptState = errors.New("store: corrupt state")

// State is the durable ledger snapshot.
type State struct {
	Balance  decimal.Decimal
	Holdings map[string]int64
}

// DefaultState is the state of a brand-new account.
func DefaultState() State {
	return State{Balance: ledger.DefaultBalance, Holdings: map[string]int64{}}
}

// TradeRecord is one accepted trade. Records are append-only: once
// written they are never modified, and replaying them in order from the
// default balance reproduces the current balance.
type TradeRecord struct {
	ID          string
	Time        time.Time
	Action      ledger.Action
	Symbol      string
	Price       decimal.Decimal
	Quantity    int64
	CostRevenue decimal.Decimal // negative for buys, positive for sells
	Balance     decimal.Decimal // balance immediately after the trade
}

// Store loads and saves ledger state and the trade log.
type Store interface {
	// Load returns the last saved state, or DefaultState if none was
	// ever saved. Existing-but-unreadable state returns ErrCorruptState.
	Load() (State, error)

	// Initialized reports whether a state snapshot has ever been saved.
	// It lets a session seed a fresh account from configuration without
	// ever conflating "no prior state" with unreadable state.
	Initialized() (bool, error)

	// SaveState durably replaces the current snapshot. Atomic from the
	// caller's perspective: a crash mid-save never leaves a readable
	// half-written snapshot.
	SaveState(balance decimal.Decimal, holdings map[string]int64) error

	// AppendTrade durably appends one record, preserving prior entries.
	AppendTrade(rec TradeRecord) error

	// ReadHistory returns every record ever appended, oldest first.
	ReadHistory() ([]TradeRecord, error)

	Close() error
}
