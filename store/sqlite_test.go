package store

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgould/papertrade/ledger"
)

func newTestSQLite(t *testing.T) (*SQLiteStore, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	s, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	_, path := newTestSQLite(t)

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('account','holdings','trades')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	require.NoError(t, rows.Err())

	assert.True(t, found["account"])
	assert.True(t, found["holdings"])
	assert.True(t, found["trades"])
}

func TestSQLiteLoadFreshAccount(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)

	initialized, err := s.Initialized()
	require.NoError(t, err)
	assert.False(t, initialized)

	state, err := s.Load()
	require.NoError(t, err)
	assert.True(t, state.Balance.Equal(ledger.DefaultBalance))
	assert.Empty(t, state.Holdings)
}

func TestSQLiteSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)

	holdings := map[string]int64{"AAPL": 10, "MSFT": 3}
	require.NoError(t, s.SaveState(d("8500.00"), holdings))

	initialized, err := s.Initialized()
	require.NoError(t, err)
	assert.True(t, initialized)

	state, err := s.Load()
	require.NoError(t, err)
	assert.True(t, state.Balance.Equal(d("8500.00")), "got %s", state.Balance)
	assert.Equal(t, holdings, state.Holdings)
}

func TestSQLiteSaveReplacesHoldings(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)

	require.NoError(t, s.SaveState(d("9000.00"), map[string]int64{"AAPL": 1, "MSFT": 2}))
	require.NoError(t, s.SaveState(d("9500.00"), map[string]int64{"TSLA": 7}))

	state, err := s.Load()
	require.NoError(t, err)
	assert.True(t, state.Balance.Equal(d("9500.00")))
	assert.Equal(t, map[string]int64{"TSLA": 7}, state.Holdings)
}

func TestSQLiteCorruptBalance(t *testing.T) {
	t.Parallel()

	s, path := newTestSQLite(t)
	require.NoError(t, s.SaveState(d("100.00"), nil))

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE account SET balance = 'mangled' WHERE id = 1`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = s.Load()
	assert.ErrorIs(t, err, ErrCorruptState)
}

func TestSQLiteHistoryAppendAndRead(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)

	buy := TradeRecord{
		ID:          "01ABC",
		Time:        time.Date(2025, 3, 4, 15, 30, 0, 0, time.UTC),
		Action:      ledger.Buy,
		Symbol:      "AAPL",
		Price:       d("150.00"),
		Quantity:    10,
		CostRevenue: d("-1500.00"),
		Balance:     d("8500.00"),
	}
	sell := TradeRecord{
		ID:          "01ABD",
		Time:        time.Date(2025, 3, 5, 9, 45, 0, 0, time.UTC),
		Action:      ledger.Sell,
		Symbol:      "AAPL",
		Price:       d("160.00"),
		Quantity:    10,
		CostRevenue: d("1600.00"),
		Balance:     d("10100.00"),
	}

	require.NoError(t, s.AppendTrade(buy))
	require.NoError(t, s.AppendTrade(sell))

	recs, err := s.ReadHistory()
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "01ABC", recs[0].ID)
	assert.Equal(t, ledger.Buy, recs[0].Action)
	assert.True(t, recs[0].Time.Equal(buy.Time))
	assert.True(t, recs[0].Price.Equal(buy.Price))
	assert.True(t, recs[0].CostRevenue.Equal(buy.CostRevenue))
	assert.True(t, recs[0].Balance.Equal(buy.Balance))

	assert.Equal(t, "01ABD", recs[1].ID)
	assert.Equal(t, ledger.Sell, recs[1].Action)
	assert.True(t, recs[1].CostRevenue.Equal(sell.CostRevenue))
}

func TestSQLiteDuplicateTradeIDRejected(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)

	require.NoError(t, s.AppendTrade(testRecord("T1")))
	assert.Error(t, s.AppendTrade(testRecord("T1")))

	recs, err := s.ReadHistory()
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}
