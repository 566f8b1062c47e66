package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rezkam/ledger/internal/domain"
)

// CreateTemplate stores a new recurring template with version 1.
func (s *Store) CreateTemplate(ctx context.Context, template *domain.RecurringTemplate) (*domain.RecurringTemplate, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recurring_templates (
			id, amount, type, description, category, account, frequency,
			original_target_day, next_execution_date, end_date, max_occurrences, timezone,
			is_active, created_at, updated_at, version, original_time_of_day
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?)`,
		template.ID,
		template.Amount.String(),
		string(template.Type),
		template.Description,
		template.Category,
		template.Account,
		string(template.Frequency),
		nullInt(template.OriginalTargetDay),
		formatTime(template.NextExecutionDate),
		formatTimePtr(template.EndDate),
		nullInt(template.MaxOccurrences),
		nullString(template.Timezone),
		template.IsActive,
		formatTime(template.CreatedAt),
		formatTime(template.UpdatedAt),
		nullDuration(template.OriginalTimeOfDay),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert template: %w", err)
	}

	return s.FindTemplateByID(ctx, template.ID)
}

// FindTemplateByID retrieves a template by ID.
func (s *Store) FindTemplateByID(ctx context.Context, id string) (*domain.RecurringTemplate, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM recurring_templates WHERE id = ?`, id)

	template, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrTemplateNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return template, nil
}

// FindTemplates lists templates in creation order.
func (s *Store) FindTemplates(ctx context.Context, activeOnly bool) ([]*domain.RecurringTemplate, error) {
	return s.queryTemplates(ctx, `
		SELECT `+templateColumns+` FROM recurring_templates
		WHERE (NOT ? OR is_active)
		ORDER BY created_at, id`, activeOnly)
}

// FindActiveTemplates retrieves all active templates for the scheduler.
func (s *Store) FindActiveTemplates(ctx context.Context) ([]*domain.RecurringTemplate, error) {
	return s.queryTemplates(ctx, `
		SELECT `+templateColumns+` FROM recurring_templates
		WHERE is_active
		ORDER BY next_execution_date, id`)
}

func (s *Store) queryTemplates(ctx context.Context, query string, args ...any) ([]*domain.RecurringTemplate, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}
	defer rows.Close()

	templates := []*domain.RecurringTemplate{}
	for rows.Next() {
		template, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, template)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate templates: %w", err)
	}
	return templates, nil
}

// UpdateTemplate applies a field-masked update with optimistic locking.
func (s *Store) UpdateTemplate(ctx context.Context, params domain.UpdateTemplateParams) (*domain.RecurringTemplate, error) {
	var updated *domain.RecurringTemplate

	err := s.executeInTransaction(ctx, "update_template", func(txStore *Store) error {
		current, err := txStore.FindTemplateByID(ctx, params.TemplateID)
		if err != nil {
			return err
		}

		if params.Etag != nil && *params.Etag != current.Etag() {
			return domain.ErrVersionConflict
		}

		params.Apply(current)

		res, err := txStore.db.ExecContext(ctx, `
			UPDATE recurring_templates SET
				amount = ?,
				type = ?,
				description = ?,
				category = ?,
				account = ?,
				end_date = ?,
				max_occurrences = ?,
				is_active = ?,
				updated_at = ?,
				version = version + 1
			WHERE id = ? AND version = ?`,
			current.Amount.String(),
			string(current.Type),
			current.Description,
			current.Category,
			current.Account,
			formatTimePtr(current.EndDate),
			nullInt(current.MaxOccurrences),
			current.IsActive,
			formatTime(time.Now()),
			current.ID,
			current.Version,
		)
		if err != nil {
			return fmt.Errorf("failed to update template: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("failed to update template: %w", err)
		} else if n == 0 {
			return domain.ErrVersionConflict
		}

		updated, err = txStore.FindTemplateByID(ctx, current.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteTemplate deletes a template. Its generated transactions are kept.
func (s *Store) DeleteTemplate(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recurring_templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrTemplateNotFound, id)
	}
	return nil
}

// AdvanceTemplateSchedule moves next_execution_date forward only if it still equals expectedNext.
func (s *Store) AdvanceTemplateSchedule(ctx context.Context, advanced *domain.RecurringTemplate, expectedNext time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE recurring_templates
		SET next_execution_date = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND next_execution_date = ?`,
		formatTime(advanced.NextExecutionDate),
		formatTime(advanced.UpdatedAt),
		advanced.ID,
		formatTime(expectedNext),
	)
	if err != nil {
		return fmt.Errorf("failed to advance template: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to advance template: %w", err)
	}
	if n == 1 {
		return nil
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM recurring_templates WHERE id = ?)`, advanced.ID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check template: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", domain.ErrTemplateNotFound, advanced.ID)
	}
	return domain.ErrVersionConflict
}

// InsertTransactionIgnoreConflict inserts a generated transaction.
// A row with the same deterministic ID is left untouched and reported as not inserted.
func (s *Store) InsertTransactionIgnoreConflict(ctx context.Context, tx *domain.GeneratedTransaction) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO generated_transactions (
			id, amount, type, description, category, account, date,
			is_recurring, recurring_frequency, parent_recurring_id, max_occurrences, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`,
		tx.ID,
		tx.Amount.String(),
		string(tx.Type),
		tx.Description,
		tx.Category,
		tx.Account,
		formatTime(tx.Date),
		tx.IsRecurring,
		string(tx.RecurringFrequency),
		tx.ParentRecurringID,
		nullInt(tx.MaxOccurrences),
		formatTime(tx.CreatedAt),
		formatTime(tx.UpdatedAt),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert transaction %s: %w", tx.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to insert transaction %s: %w", tx.ID, err)
	}
	return n == 1, nil
}

// FindTransactionsByTemplate lists a template's transactions, newest first.
func (s *Store) FindTransactionsByTemplate(ctx context.Context, templateID string) ([]*domain.GeneratedTransaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+` FROM generated_transactions
		WHERE parent_recurring_id = ?
		ORDER BY date DESC, id DESC`, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	txs := []*domain.GeneratedTransaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txs, nil
}
