package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rezkam/ledger/internal/domain"
)

// timeLayout is fixed width so text comparison orders instants correctly.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const templateColumns = `id, amount, type, description, category, account, frequency,
	original_target_day, next_execution_date, end_date, max_occurrences, timezone,
	is_active, created_at, updated_at, version, original_time_of_day`

const transactionColumns = `id, amount, type, description, category, account, date,
	is_recurring, recurring_frequency, parent_recurring_id, max_occurrences, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored time %q: %w", s, err)
	}
	return t.UTC(), nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func nullDuration(v *time.Duration) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

// scanTemplate reads one recurring_templates row and rehydrates its instants
// into the template's own timezone.
func scanTemplate(row rowScanner) (*domain.RecurringTemplate, error) {
	var (
		t                      domain.RecurringTemplate
		amount, typ, frequency string
		next, created, updated string
		targetDay, maxOcc      sql.NullInt64
		timeOfDay              sql.NullInt64
		endDate, timezone      sql.NullString
	)

	err := row.Scan(
		&t.ID, &amount, &typ, &t.Description, &t.Category, &t.Account, &frequency,
		&targetDay, &next, &endDate, &maxOcc, &timezone,
		&t.IsActive, &created, &updated, &t.Version, &timeOfDay,
	)
	if err != nil {
		return nil, err
	}

	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}
	t.Type = domain.TransactionType(typ)
	t.Frequency = domain.Frequency(frequency)
	t.OriginalTargetDay = intPtr(targetDay)
	t.MaxOccurrences = intPtr(maxOcc)
	if timeOfDay.Valid {
		d := time.Duration(timeOfDay.Int64)
		t.OriginalTimeOfDay = &d
	}
	if timezone.Valid {
		t.Timezone = &timezone.String
	}

	loc, err := domain.LoadTimezone(t.Timezone)
	if err != nil {
		return nil, err
	}

	if t.NextExecutionDate, err = parseTime(next); err != nil {
		return nil, err
	}
	t.NextExecutionDate = t.NextExecutionDate.In(loc)
	if endDate.Valid {
		end, err := parseTime(endDate.String)
		if err != nil {
			return nil, err
		}
		end = end.In(loc)
		t.EndDate = &end
	}
	if t.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}

	return &t, nil
}

func scanTransaction(row rowScanner) (*domain.GeneratedTransaction, error) {
	var (
		tx                     domain.GeneratedTransaction
		amount, typ, frequency string
		date, created, updated string
		maxOcc                 sql.NullInt64
	)

	err := row.Scan(
		&tx.ID, &amount, &typ, &tx.Description, &tx.Category, &tx.Account, &date,
		&tx.IsRecurring, &frequency, &tx.ParentRecurringID, &maxOcc, &created, &updated,
	)
	if err != nil {
		return nil, err
	}

	if tx.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}
	tx.Type = domain.TransactionType(typ)
	tx.RecurringFrequency = domain.Frequency(frequency)
	tx.MaxOccurrences = intPtr(maxOcc)

	if tx.Date, err = parseTime(date); err != nil {
		return nil, err
	}
	if tx.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if tx.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}

	return &tx, nil
}
