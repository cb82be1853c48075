package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/GrayGhostDev/lead-generator/internal/config"
	"github.com/GrayGhostDev/lead-generator/internal/store"
)

// openStore opens the configured persistence backend, or returns nil when
// persistence is disabled.
func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	var st store.Store
	var err error

	switch cfg.Driver {
	case "":
		return nil, nil
	case "sqlite":
		st, err = store.NewSQLite(cfg.Path)
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}
