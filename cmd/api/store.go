package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nikhilbhutani/tenantplatform/internal/config"
	"github.com/nikhilbhutani/tenantplatform/internal/database"
	"github.com/nikhilbhutani/tenantplatform/internal/store"
)

// openStore picks the persistence backend. Without a database URL state is
// kept in memory; a configured database must be reachable and migrated.
func openStore(ctx context.Context, cfg config.DatabaseConfig) (store.Store, func(), error) {
	if cfg.URL == "" {
		slog.Warn("DATABASE_URL not set, using in-memory store")
		return store.NewMemory(), func() {}, nil
	}

	db, err := database.NewPool(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := database.RunMigrations(ctx, db, cfg.MigrationsPath); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	return store.NewPostgres(db), db.Close, nil
}
