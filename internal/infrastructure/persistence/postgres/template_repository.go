package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rezkam/ledger/internal/domain"
)

// CreateTemplate stores a new recurring template with version 1.
func (s *Store) CreateTemplate(ctx context.Context, template *domain.RecurringTemplate) (*domain.RecurringTemplate, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO recurring_templates (
			id, amount, type, description, category, account, frequency,
			original_target_day, next_execution_date, end_date, max_occurrences, timezone,
			is_active, created_at, updated_at, version, original_time_of_day
		) VALUES ($1, $2::text::numeric, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, 1, $16)
		RETURNING `+templateColumns,
		template.ID,
		template.Amount.String(),
		string(template.Type),
		template.Description,
		template.Category,
		template.Account,
		string(template.Frequency),
		intPtrToInt16(template.OriginalTargetDay),
		template.NextExecutionDate.UTC(),
		utcPtr(template.EndDate),
		intPtrToInt32(template.MaxOccurrences),
		template.Timezone,
		template.IsActive,
		template.CreatedAt.UTC(),
		template.UpdatedAt.UTC(),
		durationPtrToInt64(template.OriginalTimeOfDay),
	)

	created, err := scanTemplate(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert template: %w", err)
	}
	return created, nil
}

// FindTemplateByID retrieves a template by ID.
func (s *Store) FindTemplateByID(ctx context.Context, id string) (*domain.RecurringTemplate, error) {
	row := s.db.QueryRow(ctx, `SELECT `+templateColumns+` FROM recurring_templates WHERE id = $1`, id)

	template, err := scanTemplate(row)
	if errors.Is(err, pgx.ErrNoRows) {
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
		WHERE (NOT $1 OR is_active)
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
	rows, err := s.db.Query(ctx, query, args...)
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
// The row is locked for the read-modify-write so concurrent updates serialize.
func (s *Store) UpdateTemplate(ctx context.Context, params domain.UpdateTemplateParams) (*domain.RecurringTemplate, error) {
	var updated *domain.RecurringTemplate

	err := s.executeInTransaction(ctx, "update_template", func(txStore *Store) error {
		row := txStore.db.QueryRow(ctx,
			`SELECT `+templateColumns+` FROM recurring_templates WHERE id = $1 FOR UPDATE`, params.TemplateID)
		current, err := scanTemplate(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: %s", domain.ErrTemplateNotFound, params.TemplateID)
		}
		if err != nil {
			return fmt.Errorf("failed to load template: %w", err)
		}

		if params.Etag != nil && *params.Etag != current.Etag() {
			return domain.ErrVersionConflict
		}

		params.Apply(current)

		row = txStore.db.QueryRow(ctx, `
			UPDATE recurring_templates SET
				amount = $2::text::numeric,
				type = $3,
				description = $4,
				category = $5,
				account = $6,
				end_date = $7,
				max_occurrences = $8,
				is_active = $9,
				updated_at = $10,
				version = version + 1
			WHERE id = $1 AND version = $11
			RETURNING `+templateColumns,
			current.ID,
			current.Amount.String(),
			string(current.Type),
			current.Description,
			current.Category,
			current.Account,
			utcPtr(current.EndDate),
			intPtrToInt32(current.MaxOccurrences),
			current.IsActive,
			time.Now().UTC(),
			current.Version,
		)
		updated, err = scanTemplate(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrVersionConflict
		}
		if err != nil {
			return fmt.Errorf("failed to update template: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteTemplate deletes a template. Its generated transactions are kept.
func (s *Store) DeleteTemplate(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM recurring_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrTemplateNotFound, id)
	}
	return nil
}

// AdvanceTemplateSchedule moves next_execution_date forward only if it still equals expectedNext.
func (s *Store) AdvanceTemplateSchedule(ctx context.Context, advanced *domain.RecurringTemplate, expectedNext time.Time) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE recurring_templates
		SET next_execution_date = $2, updated_at = $3, version = version + 1
		WHERE id = $1 AND next_execution_date = $4`,
		advanced.ID,
		advanced.NextExecutionDate.UTC(),
		advanced.UpdatedAt.UTC(),
		expectedNext.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to advance template: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM recurring_templates WHERE id = $1)`, advanced.ID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check template: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", domain.ErrTemplateNotFound, advanced.ID)
	}
	return domain.ErrVersionConflict
}
