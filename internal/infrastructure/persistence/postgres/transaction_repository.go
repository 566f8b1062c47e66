package postgres

import (
	"context"
	"fmt"

	"github.com/rezkam/ledger/internal/domain"
)

// InsertTransactionIgnoreConflict inserts a generated transaction.
// A row with the same deterministic ID is left untouched and reported as not inserted.
func (s *Store) InsertTransactionIgnoreConflict(ctx context.Context, tx *domain.GeneratedTransaction) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		INSERT INTO generated_transactions (
			id, amount, type, description, category, account, date,
			is_recurring, recurring_frequency, parent_recurring_id, max_occurrences, created_at, updated_at
		) VALUES ($1, $2::text::numeric, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO NOTHING`,
		tx.ID,
		tx.Amount.String(),
		string(tx.Type),
		tx.Description,
		tx.Category,
		tx.Account,
		tx.Date.UTC(),
		tx.IsRecurring,
		string(tx.RecurringFrequency),
		tx.ParentRecurringID,
		intPtrToInt32(tx.MaxOccurrences),
		tx.CreatedAt.UTC(),
		tx.UpdatedAt.UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert transaction %s: %w", tx.ID, err)
	}
	return tag.RowsAffected() == 1, nil
}

// FindTransactionsByTemplate lists a template's transactions, newest first.
func (s *Store) FindTransactionsByTemplate(ctx context.Context, templateID string) ([]*domain.GeneratedTransaction, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+transactionColumns+` FROM generated_transactions
		WHERE parent_recurring_id = $1
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
