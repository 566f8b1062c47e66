package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/rezkam/ledger/internal/application/ledger"
	"github.com/rezkam/ledger/internal/application/scheduler"
)

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the SQLite implementation of the ledger and scheduler repositories,
// for single-user deployments and tests.
type Store struct {
	conn *sql.DB
	db   querier
}

// Compile-time verification that Store implements all repository interfaces.
var (
	_ ledger.Repository          = (*Store)(nil)
	_ scheduler.Repository       = (*Store)(nil)
	_ scheduler.OccurrenceWriter = (*Store)(nil)
)

func newStore(db *sql.DB) *Store {
	return &Store{conn: db, db: db}
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.conn
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.conn.Close()
}

// executeInTransaction runs fn in a transaction, rolling back on error or panic.
func (s *Store) executeInTransaction(ctx context.Context, operationName string, fn func(txStore *Store) error) (err error) {
	start := time.Now().UTC()

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		slog.ErrorContext(ctx, "failed to begin transaction",
			"operation", operationName,
			"error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			slog.ErrorContext(ctx, "transaction panic, rolling back",
				"operation", operationName,
				"panic", p)
			_ = tx.Rollback()
			panic(p)
		}

		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.ErrorContext(ctx, "rollback failed",
					"operation", operationName,
					"original_error", err,
					"rollback_error", rbErr)
				err = fmt.Errorf("transaction failed: %w (rollback error: %v)", err, rbErr)
			}
			return
		}

		if err = tx.Commit(); err != nil {
			slog.ErrorContext(ctx, "transaction commit failed",
				"operation", operationName,
				"error", err)
			return
		}
		slog.DebugContext(ctx, "transaction completed",
			"operation", operationName,
			"duration_ms", time.Since(start).Milliseconds())
	}()

	err = fn(&Store{conn: s.conn, db: tx})
	return
}

// Atomic executes fn within a database transaction.
func (s *Store) Atomic(ctx context.Context, fn func(w scheduler.OccurrenceWriter) error) error {
	return s.executeInTransaction(ctx, "atomic_occurrence", func(txStore *Store) error {
		return fn(txStore)
	})
}
