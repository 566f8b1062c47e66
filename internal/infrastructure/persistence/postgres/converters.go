package postgres

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rezkam/ledger/internal/domain"
)

// templateColumns is the select list matching scanTemplate.
const templateColumns = `id, amount::text, type, description, category, account, frequency,
	original_target_day, next_execution_date, end_date, max_occurrences, timezone,
	is_active, created_at, updated_at, version, original_time_of_day`

// transactionColumns is the select list matching scanTransaction.
const transactionColumns = `id, amount::text, type, description, category, account, date,
	is_recurring, recurring_frequency, parent_recurring_id, max_occurrences, created_at, updated_at`

// rowScanner is satisfied by pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTemplate reads one recurring_templates row.
// Instants come back in UTC and are moved into the template's own timezone so
// calendar arithmetic runs on the user's wall clock.
func scanTemplate(row rowScanner) (*domain.RecurringTemplate, error) {
	var (
		t         domain.RecurringTemplate
		amount    string
		typ       string
		frequency string
		targetDay *int16
		maxOcc    *int32
		timeOfDay *int64
	)

	err := row.Scan(
		&t.ID, &amount, &typ, &t.Description, &t.Category, &t.Account, &frequency,
		&targetDay, &t.NextExecutionDate, &t.EndDate, &maxOcc, &t.Timezone,
		&t.IsActive, &t.CreatedAt, &t.UpdatedAt, &t.Version, &timeOfDay,
	)
	if err != nil {
		return nil, err
	}

	t.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}
	t.Type = domain.TransactionType(typ)
	t.Frequency = domain.Frequency(frequency)
	if targetDay != nil {
		day := int(*targetDay)
		t.OriginalTargetDay = &day
	}
	t.MaxOccurrences = int32PtrToInt(maxOcc)
	t.OriginalTimeOfDay = int64PtrToDuration(timeOfDay)

	loc, err := domain.LoadTimezone(t.Timezone)
	if err != nil {
		return nil, err
	}
	t.NextExecutionDate = t.NextExecutionDate.In(loc)
	if t.EndDate != nil {
		end := t.EndDate.In(loc)
		t.EndDate = &end
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()

	return &t, nil
}

// scanTransaction reads one generated_transactions row.
func scanTransaction(row rowScanner) (*domain.GeneratedTransaction, error) {
	var (
		tx        domain.GeneratedTransaction
		amount    string
		typ       string
		frequency string
		maxOcc    *int32
	)

	err := row.Scan(
		&tx.ID, &amount, &typ, &tx.Description, &tx.Category, &tx.Account, &tx.Date,
		&tx.IsRecurring, &frequency, &tx.ParentRecurringID, &maxOcc, &tx.CreatedAt, &tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	tx.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}
	tx.Type = domain.TransactionType(typ)
	tx.RecurringFrequency = domain.Frequency(frequency)
	tx.MaxOccurrences = int32PtrToInt(maxOcc)
	tx.Date = tx.Date.UTC()
	tx.CreatedAt = tx.CreatedAt.UTC()
	tx.UpdatedAt = tx.UpdatedAt.UTC()

	return &tx, nil
}

func int32PtrToInt(v *int32) *int {
	if v == nil {
		return nil
	}
	n := int(*v)
	return &n
}

func intPtrToInt32(v *int) *int32 {
	if v == nil {
		return nil
	}
	n := int32(*v)
	return &n
}

func int64PtrToDuration(v *int64) *time.Duration {
	if v == nil {
		return nil
	}
	d := time.Duration(*v)
	return &d
}

func durationPtrToInt64(v *time.Duration) *int64 {
	if v == nil {
		return nil
	}
	n := int64(*v)
	return &n
}

func intPtrToInt16(v *int) *int16 {
	if v == nil {
		return nil
	}
	n := int16(*v)
	return &n
}

// utcPtr normalizes an optional instant for storage.
func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
