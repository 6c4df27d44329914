package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestNewDefault(t *testing.T) {
	t.Parallel()

	l := NewDefault()
	balance, holdings := l.Snapshot()
	assert.True(t, balance.Equal(d("10000.00")))
	assert.Empty(t, holdings)
}

func TestNewRejectsBadState(t *testing.T) {
	t.Parallel()

	_, err := New(d("-1.00"), nil)
	var inv *InvariantError
	assert.ErrorAs(t, err, &inv)

	_, err = New(d("100.00"), map[string]int64{"AAPL": 0})
	assert.ErrorAs(t, err, &inv)

	_, err = New(d("100.00"), map[string]int64{"AAPL": -3})
	assert.ErrorAs(t, err, &inv)
}

func TestApplyBuy(t *testing.T) {
	t.Parallel()

	l := NewDefault()
	balance, err := l.Apply(Buy, "AAPL", d("150.00"), 10)
	require.NoError(t, err)

	assert.True(t, balance.Equal(d("8500.00")), "got %s", balance)
	assert.Equal(t, int64(10), l.Quantity("AAPL"))

	// Buying more of the same symbol accumulates.
	balance, err = l.Apply(Buy, "AAPL", d("160.00"), 5)
	require.NoError(t, err)
	assert.True(t, balance.Equal(d("7700.00")), "got %s", balance)
	assert.Equal(t, int64(15), l.Quantity("AAPL"))
}

func TestApplySellRemovesZeroedHolding(t *testing.T) {
	t.Parallel()

	l := NewDefault()
	_, err := l.Apply(Buy, "AAPL", d("150.00"), 10)
	require.NoError(t, err)

	balance, err := l.Apply(Sell, "AAPL", d("160.00"), 10)
	require.NoError(t, err)

	assert.True(t, balance.Equal(d("10100.00")), "got %s", balance)
	_, holdings := l.Snapshot()
	_, held := holdings["AAPL"]
	assert.False(t, held, "sold-to-zero symbol must be removed entirely")
}

func TestApplyPartialSellKeepsRemainder(t *testing.T) {
	t.Parallel()

	l := NewDefault()
	_, err := l.Apply(Buy, "AAPL", d("100.00"), 10)
	require.NoError(t, err)

	_, err = l.Apply(Sell, "AAPL", d("100.00"), 4)
	require.NoError(t, err)
	assert.Equal(t, int64(6), l.Quantity("AAPL"))
}

func TestApplyReassertsPreconditions(t *testing.T) {
	t.Parallel()

	l := NewDefault()
	var inv *InvariantError

	_, err := l.Apply(Buy, "AAPL", d("150.00"), 0)
	assert.ErrorAs(t, err, &inv)

	_, err = l.Apply(Buy, "AAPL", d("0"), 1)
	assert.ErrorAs(t, err, &inv)

	_, err = l.Apply(Buy, "AAPL", d("-5.00"), 1)
	assert.ErrorAs(t, err, &inv)

	// Cost above balance.
	_, err = l.Apply(Buy, "AAPL", d("20000.00"), 1)
	assert.ErrorAs(t, err, &inv)

	// Selling more than held.
	_, err = l.Apply(Sell, "AAPL", d("150.00"), 1)
	assert.ErrorAs(t, err, &inv)

	_, err = l.Apply(Action("Short"), "AAPL", d("150.00"), 1)
	assert.ErrorAs(t, err, &inv)

	// A failed Apply leaves state untouched.
	balance, holdings := l.Snapshot()
	assert.True(t, balance.Equal(d("10000.00")))
	assert.Empty(t, holdings)
}

func TestBalanceNeverNegative(t *testing.T) {
	t.Parallel()

	l := NewDefault()
	// Spend the entire balance exactly.
	balance, err := l.Apply(Buy, "AAPL", d("100.00"), 100)
	require.NoError(t, err)
	assert.True(t, balance.Equal(d("0.00")), "got %s", balance)

	// One more cent is an invariant violation, not a negative balance.
	_, err = l.Apply(Buy, "MSFT", d("0.01"), 1)
	var inv *InvariantError
	assert.ErrorAs(t, err, &inv)
	assert.False(t, l.Balance().IsNegative())
}

func TestSnapshotIsACopy(t *testing.T) {
	t.Parallel()

	l := NewDefault()
	_, err := l.Apply(Buy, "AAPL", d("10.00"), 1)
	require.NoError(t, err)

	_, holdings := l.Snapshot()
	holdings["AAPL"] = 999

	assert.Equal(t, int64(1), l.Quantity("AAPL"))
}
