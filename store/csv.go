package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rgould/papertrade/ledger"
)

const (
	// StateFileName matches the layout the account file has always had:
	// a Balance header row, the balance, a Symbol/Quantity header row,
	// then one row per held symbol.
	StateFileName = "balance_and_portfolio.csv"

	// HistoryFileName is the append-only trade log.
	HistoryFileName = "trade_history.csv"
)

var historyHeader = []string{"id", "time", "action", "symbol", "price", "quantity", "cost_revenue", "balance"}

// CSVStore keeps the snapshot and the trade log as two CSV files in one
// directory. Files are opened per operation so a crash between calls
// cannot hold them hostage.
type CSVStore struct {
	statePath   string
	historyPath string
}

// NewCSV prepares a CSV store rooted at dir, creating the history file
// with its header if it does not exist yet.
func NewCSV(dir string) (*CSVStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	s := &CSVStore{
		statePath:   filepath.Join(dir, StateFileName),
		historyPath: filepath.Join(dir, HistoryFileName),
	}
	if _, err := os.Stat(s.historyPath); os.IsNotExist(err) {
		f, err := os.OpenFile(s.historyPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("create history file: %w", err)
		}
		w := csv.NewWriter(f)
		if err := w.Write(historyHeader); err != nil {
			f.Close()
			return nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, err
		}
		if err := f.Close(); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *CSVStore) Initialized() (bool, error) {
	_, err := os.Stat(s.statePath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *CSVStore) Load() (State, error) {
	f, err := os.Open(s.statePath)
	if os.IsNotExist(err) {
		// No prior state: a fresh account, not an error.
		return DefaultState(), nil
	}
	if err != nil {
		return State{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return State{}, fmt.Errorf("%w: %s: %v", ErrCorruptState, s.statePath, err)
	}

	// Expect: Balance header, balance row, Symbol/Quantity header, holdings.
	if len(rows) < 3 || len(rows[0]) < 1 || rows[0][0] != "Balance" {
		return State{}, fmt.Errorf("%w: %s: missing balance header", ErrCorruptState, s.statePath)
	}
	if len(rows[1]) < 1 {
		return State{}, fmt.Errorf("%w: %s: missing balance row", ErrCorruptState, s.statePath)
	}
	balance, err := decimal.NewFromString(rows[1][0])
	if err != nil || balance.IsNegative() {
		return State{}, fmt.Errorf("%w: %s: bad balance %q", ErrCorruptState, s.statePath, rows[1][0])
	}
	if len(rows[2]) < 2 || rows[2][0] != "Symbol" || rows[2][1] != "Quantity" {
		return State{}, fmt.Errorf("%w: %s: missing holdings header", ErrCorruptState, s.statePath)
	}

	holdings := make(map[string]int64)
	for _, row := range rows[3:] {
		if len(row) < 2 {
			return State{}, fmt.Errorf("%w: %s: short holdings row", ErrCorruptState, s.statePath)
		}
		qty, err := strconv.ParseInt(row[1], 10, 64)
		if err != nil || qty <= 0 {
			return State{}, fmt.Errorf("%w: %s: bad quantity %q for %s", ErrCorruptState, s.statePath, row[1], row[0])
		}
		if _, dup := holdings[row[0]]; dup {
			return State{}, fmt.Errorf("%w: %s: duplicate symbol %s", ErrCorruptState, s.statePath, row[0])
		}
		holdings[row[0]] = qty
	}

	return State{Balance: balance, Holdings: holdings}, nil
}

// SaveState writes the snapshot to a temp file in the same directory and
// renames it over the old one, so readers only ever see a complete file.
func (s *CSVStore) SaveState(balance decimal.Decimal, holdings map[string]int64) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.statePath), StateFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	rows := [][]string{
		{"Balance"},
		{balance.StringFixed(2)},
		{"Symbol", "Quantity"},
	}

	// Deterministic file contents make diffs and tests sane.
	symbols := make([]string, 0, len(holdings))
	for sym := range holdings {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	for _, sym := range symbols {
		rows = append(rows, []string{sym, strconv.FormatInt(holdings[sym], 10)})
	}

	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("save state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.statePath); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func (s *CSVStore) AppendTrade(rec TradeRecord) error {
	f, err := os.OpenFile(s.historyPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("append trade: %w", err)
	}
	w := csv.NewWriter(f)
	err = w.Write([]string{
		rec.ID,
		rec.Time.UTC().Format(time.RFC3339),
		string(rec.Action),
		rec.Symbol,
		rec.Price.StringFixed(2),
		strconv.FormatInt(rec.Quantity, 10),
		rec.CostRevenue.StringFixed(2),
		rec.Balance.StringFixed(2),
	})
	if err != nil {
		f.Close()
		return fmt.Errorf("append trade: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("append trade: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("append trade: %w", err)
	}
	return nil
}

func (s *CSVStore) ReadHistory() ([]TradeRecord, error) {
	f, err := os.Open(s.historyPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	var out []TradeRecord
	for _, row := range rows[1:] { // skip header
		rec, err := parseHistoryRow(row)
		if err != nil {
			return nil, fmt.Errorf("read history: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func parseHistoryRow(row []string) (TradeRecord, error) {
	if len(row) != len(historyHeader) {
		return TradeRecord{}, fmt.Errorf("row has %d fields, want %d", len(row), len(historyHeader))
	}
	ts, err := time.Parse(time.RFC3339, row[1])
	if err != nil {
		return TradeRecord{}, fmt.Errorf("bad time %q: %v", row[1], err)
	}
	price, err := decimal.NewFromString(row[4])
	if err != nil {
		return TradeRecord{}, fmt.Errorf("bad price %q: %v", row[4], err)
	}
	qty, err := strconv.ParseInt(row[5], 10, 64)
	if err != nil {
		return TradeRecord{}, fmt.Errorf("bad quantity %q: %v", row[5], err)
	}
	costRevenue, err := decimal.NewFromString(row[6])
	if err != nil {
		return TradeRecord{}, fmt.Errorf("bad cost/revenue %q: %v", row[6], err)
	}
	balance, err := decimal.NewFromString(row[7])
	if err != nil {
		return TradeRecord{}, fmt.Errorf("bad balance %q: %v", row[7], err)
	}
	return TradeRecord{
		ID:          row[0],
		Time:        ts,
		Action:      ledger.Action(row[2]),
		Symbol:      row[3],
		Price:       price,
		Quantity:    qty,
		CostRevenue: costRevenue,
		Balance:     balance,
	}, nil
}

// Close is a no-op; the CSV store holds no open handles between calls.
func (s *CSVStore) Close() error { return nil }
