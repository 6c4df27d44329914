// Package config loads and validates papertrade configuration files.
// Files are YAML or JSON; format is detected by trying YAML first.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config is the complete application configuration.
type Config struct {
	Account AccountConfig `json:"account" yaml:"account"`
	Quote   QuoteConfig   `json:"quote" yaml:"quote"`
	Store   StoreConfig   `json:"store" yaml:"store"`
}

// AccountConfig sets up a fresh account; it is ignored once state has
// been persisted.
type AccountConfig struct {
	StartingBalance string `json:"starting_balance" yaml:"starting_balance"`
}

// QuoteConfig controls the price source.
type QuoteConfig struct {
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Timeout string `json:"timeout" yaml:"timeout"` // e.g. "10s"
}

// StoreConfig selects and locates the persistence backend.
type StoreConfig struct {
	Type    string `json:"type" yaml:"type"`                             // "csv" or "sqlite"
	DataDir string `json:"data_dir,omitempty" yaml:"data_dir,omitempty"` // csv
	DBPath  string `json:"db_path,omitempty" yaml:"db_path,omitempty"`   // sqlite
}

// Balance parses the configured opening balance.
func (a AccountConfig) Balance() (decimal.Decimal, error) {
	return decimal.NewFromString(a.StartingBalance)
}

// ParseTimeout converts the quote timeout string to a duration.
func (q QuoteConfig) ParseTimeout() (time.Duration, error) {
	if q.Timeout == "" {
		return 10 * time.Second, nil
	}
	return time.ParseDuration(q.Timeout)
}

// LoadFromFile loads configuration from a file (YAML or JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	if yerr := yaml.Unmarshal(data, cfg); yerr != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", yerr)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile writes the configuration, YAML for .yaml/.yml paths and
// indented JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	bal, err := c.Account.Balance()
	if err != nil {
		return fmt.Errorf("account.starting_balance: %v", err)
	}
	if bal.IsNegative() {
		return fmt.Errorf("account.starting_balance must not be negative")
	}
	if c.Quote.Timeout != "" {
		d, err := time.ParseDuration(c.Quote.Timeout)
		if err != nil {
			return fmt.Errorf("quote.timeout: %v", err)
		}
		if d <= 0 {
			return fmt.Errorf("quote.timeout must be positive")
		}
	}
	switch c.Store.Type {
	case "csv":
		if c.Store.DataDir == "" {
			return fmt.Errorf("store.data_dir required for csv store")
		}
	case "sqlite":
		if c.Store.DBPath == "" {
			return fmt.Errorf("store.db_path required for sqlite store")
		}
	default:
		return fmt.Errorf("store.type must be 'csv' or 'sqlite'")
	}
	return nil
}

// Default returns a configuration with sensible defaults: the classic
// 10000.00 opening balance and CSV files in the current directory.
func Default() *Config {
	return &Config{
		Account: AccountConfig{StartingBalance: "10000.00"},
		Quote:   QuoteConfig{Timeout: "10s"},
		Store:   StoreConfig{Type: "csv", DataDir: "."},
	}
}
