package cmd

import (
	"fmt"
	"os"

	"github.com/rgould/papertrade/config"
	"github.com/rgould/papertrade/ledger"
	"github.com/rgould/papertrade/quote"
	"github.com/rgould/papertrade/store"
	"github.com/rgould/papertrade/trading"
)

const defaultConfigFile = "papertrade.yaml"

// session bundles everything a command needs to trade: the loaded
// ledger, the executor driving it, and the store to close on exit.
type session struct {
	cfg      *config.Config
	store    store.Store
	executor *trading.Executor
}

func (s *session) Close() error {
	return s.store.Close()
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadFromFile(cfgFile)
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return config.LoadFromFile(defaultConfigFile)
	}
	return config.Default(), nil
}

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Type {
	case "sqlite":
		return store.NewSQLite(cfg.Store.DBPath)
	default:
		return store.NewCSV(cfg.Store.DataDir)
	}
}

// openSession loads configuration and persisted state and wires up the
// executor. A corrupt state file aborts here: silently trading against
// a reset balance is exactly what we must never do.
func openSession() (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	st, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	initialized, err := st.Initialized()
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("check store: %w", err)
	}

	var state store.State
	if initialized {
		state, err = st.Load()
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("load state: %w", err)
		}
	} else {
		// Fresh account: seed from configuration.
		state = store.DefaultState()
		if bal, err := cfg.Account.Balance(); err == nil {
			state.Balance = bal
		}
	}

	l, err := ledger.New(state.Balance, state.Holdings)
	if err != nil {
		st.Close()
		return nil, err
	}

	timeout, err := cfg.Quote.ParseTimeout()
	if err != nil {
		st.Close()
		return nil, err
	}

	provider := quote.NewChain(quote.NewYahoo(cfg.Quote.BaseURL, timeout))

	return &session{
		cfg:      cfg,
		store:    st,
		executor: trading.NewExecutor(l, provider, st, timeout),
	}, nil
}

// reasonMessage maps a rejection reason to the message shown to the user.
func reasonMessage(r trading.Reason) string {
	switch r {
	case trading.ReasonPriceUnavailable:
		return "Could not fetch a price for that symbol. Try again."
	case trading.ReasonInvalidQuantity:
		return "Invalid stock quantity."
	case trading.ReasonInsufficientBalance:
		return "Insufficient balance for this purchase."
	case trading.ReasonInsufficientShares:
		return "You don't have enough shares to sell."
	case trading.ReasonNotOwned:
		return "You don't own this stock."
	default:
		return string(r)
	}
}
