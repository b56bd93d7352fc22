package cmd

import (
	"context"

	"github.com/msalah0e/lattice/internal/config"
	"github.com/msalah0e/lattice/internal/store"
)

// openStore builds and initialises the configured geometry store.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	st, err := store.NewStore(cfg.Store.Kind, cfg.Store.DBPath)
	if err != nil {
		return nil, err
	}
	if err := st.Init(ctx); err != nil {
		_ = store.CloseIfSupported(st)
		return nil, err
	}
	return st, nil
}

func closeStore(st store.Store) {
	_ = store.CloseIfSupported(st)
}
