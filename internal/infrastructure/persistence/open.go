// Package persistence selects and opens the configured storage backend.
package persistence

import (
	"context"
	"fmt"

	"github.com/rezkam/ledger/internal/application/ledger"
	"github.com/rezkam/ledger/internal/application/scheduler"
	"github.com/rezkam/ledger/internal/config"
	"github.com/rezkam/ledger/internal/infrastructure/persistence/postgres"
	"github.com/rezkam/ledger/internal/infrastructure/persistence/sqlite"
)

// Store is what the binaries need from a backend.
type Store interface {
	ledger.Repository
	scheduler.Repository
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*postgres.Store)(nil)
	_ Store = (*sqlite.Store)(nil)
)

// Open connects to the backend named by cfg.Driver and applies pending migrations.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		store, err := postgres.NewStoreWithConfig(ctx, postgres.DBConfig{
			DSN:             cfg.DSN,
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.ConnMaxIdleTime,
			IAMAuth:         cfg.IAMAuth,
			AWSRegion:       cfg.AWSRegion,
			AWSProfile:      cfg.AWSProfile,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		return store, nil
	case config.DriverSQLite:
		store, err := sqlite.NewStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
