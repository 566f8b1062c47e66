package scheduler

import (
	"context"
	"time"

	"github.com/rezkam/ledger/internal/domain"
)

// Repository defines storage operations for the scheduler.
type Repository interface {
	// FindActiveTemplates retrieves all templates with is_active = true.
	// Due-ness is decided by the engine, not by the query.
	FindActiveTemplates(ctx context.Context) ([]*domain.RecurringTemplate, error)

	// Atomic runs fn inside a single transaction.
	// If fn returns an error, every write made through the writer is rolled back.
	Atomic(ctx context.Context, fn func(w OccurrenceWriter) error) error
}

// OccurrenceWriter is the transactional view handed to Repository.Atomic.
type OccurrenceWriter interface {
	// InsertTransactionIgnoreConflict stores a generated transaction.
	// A transaction whose ID already exists is silently skipped and reported as not inserted.
	InsertTransactionIgnoreConflict(ctx context.Context, tx *domain.GeneratedTransaction) (bool, error)

	// AdvanceTemplateSchedule persists the advanced template only if its stored
	// next_execution_date still equals expectedNext.
	// Returns domain.ErrVersionConflict when another runner has already advanced it.
	AdvanceTemplateSchedule(ctx context.Context, advanced *domain.RecurringTemplate, expectedNext time.Time) error
}
