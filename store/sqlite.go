package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/rgould/papertrade/ledger"
)

// SQLiteStore keeps the snapshot and trade log in one SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Initialized() (bool, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM account WHERE id = 1`).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteStore) Load() (State, error) {
	var raw string
	err := s.db.QueryRow(`SELECT balance FROM account WHERE id = 1`).Scan(&raw)
	if err == sql.ErrNoRows {
		// Fresh database, nothing ever saved.
		return DefaultState(), nil
	}
	if err != nil {
		return State{}, err
	}

	balance, err := decimal.NewFromString(raw)
	if err != nil || balance.IsNegative() {
		return State{}, fmt.Errorf("%w: bad balance %q", ErrCorruptState, raw)
	}

	rows, err := s.db.Query(`SELECT symbol, quantity FROM holdings`)
	if err != nil {
		return State{}, err
	}
	defer rows.Close()

	holdings := make(map[string]int64)
	for rows.Next() {
		var sym string
		var qty int64
		if err := rows.Scan(&sym, &qty); err != nil {
			return State{}, err
		}
		if qty <= 0 {
			return State{}, fmt.Errorf("%w: holding %s has quantity %d", ErrCorruptState, sym, qty)
		}
		holdings[sym] = qty
	}
	if err := rows.Err(); err != nil {
		return State{}, err
	}

	return State{Balance: balance, Holdings: holdings}, nil
}

// SaveState replaces the snapshot in one transaction; readers see either
// the old snapshot or the new one, never a mix.
func (s *SQLiteStore) SaveState(balance decimal.Decimal, holdings map[string]int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO account (id, balance) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET balance = excluded.balance`,
		balance.StringFixed(2),
	); err != nil {
		return fmt.Errorf("save state: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM holdings`); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	for sym, qty := range holdings {
		if _, err := tx.Exec(`INSERT INTO holdings (symbol, quantity) VALUES (?, ?)`, sym, qty); err != nil {
			return fmt.Errorf("save state: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AppendTrade(rec TradeRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO trades
		(trade_id, time, action, symbol, price, quantity, cost_revenue, balance)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Time.UTC(), string(rec.Action), rec.Symbol,
		rec.Price.StringFixed(2), rec.Quantity,
		rec.CostRevenue.StringFixed(2), rec.Balance.StringFixed(2),
	)
	if err != nil {
		return fmt.Errorf("append trade: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ReadHistory() ([]TradeRecord, error) {
	rows, err := s.db.Query(`
		SELECT trade_id, time, action, symbol, price, quantity, cost_revenue, balance
		FROM trades
		ORDER BY rowid ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var (
			rec    TradeRecord
			ts     time.Time
			action string
			price  string
			cr     string
			bal    string
		)
		if err := rows.Scan(&rec.ID, &ts, &action, &rec.Symbol, &price, &rec.Quantity, &cr, &bal); err != nil {
			return nil, err
		}
		rec.Time = ts
		rec.Action = ledger.Action(action)
		if rec.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("read history: bad price %q: %v", price, err)
		}
		if rec.CostRevenue, err = decimal.NewFromString(cr); err != nil {
			return nil, fmt.Errorf("read history: bad cost/revenue %q: %v", cr, err)
		}
		if rec.Balance, err = decimal.NewFromString(bal); err != nil {
			return nil, fmt.Errorf("read history: bad balance %q: %v", bal, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
