package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.NoError(t, cfg.Validate())

	bal, err := cfg.Account.Balance()
	require.NoError(t, err)
	assert.Equal(t, "10000.00", bal.StringFixed(2))

	timeout, err := cfg.Quote.ParseTimeout()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, timeout)
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	t.Parallel()

	cases := map[string]func(*Config){
		"unparseable balance": func(c *Config) { c.Account.StartingBalance = "lots" },
		"negative balance":    func(c *Config) { c.Account.StartingBalance = "-5.00" },
		"bad timeout":         func(c *Config) { c.Quote.Timeout = "soon" },
		"negative timeout":    func(c *Config) { c.Quote.Timeout = "-3s" },
		"unknown store type":  func(c *Config) { c.Store.Type = "papyrus" },
		"csv without dir":     func(c *Config) { c.Store.Type = "csv"; c.Store.DataDir = "" },
		"sqlite without path": func(c *Config) { c.Store.Type = "sqlite"; c.Store.DBPath = "" },
	}

	for name, mutate := range cases {
		mutate := mutate
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSaveLoadYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "papertrade.yaml")

	cfg := Default()
	cfg.Account.StartingBalance = "2500.00"
	cfg.Store.Type = "sqlite"
	cfg.Store.DBPath = "ledger.db"
	require.NoError(t, cfg.SaveToFile(path))

	got, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "2500.00", got.Account.StartingBalance)
	assert.Equal(t, "sqlite", got.Store.Type)
	assert.Equal(t, "ledger.db", got.Store.DBPath)
}

func TestSaveLoadJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "papertrade.json")

	cfg := Default()
	require.NoError(t, cfg.SaveToFile(path))

	got, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Account.StartingBalance, got.Account.StartingBalance)
	assert.Equal(t, cfg.Store.Type, got.Store.Type)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
