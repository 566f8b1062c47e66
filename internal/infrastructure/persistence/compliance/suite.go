// Package compliance holds the behavioural test suite every persistence backend must pass.
package compliance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/ledger/internal/application/ledger"
	"github.com/rezkam/ledger/internal/application/scheduler"
	"github.com/rezkam/ledger/internal/domain"
	"github.com/rezkam/ledger/internal/recurring"
)

// Store is the repository surface a backend provides.
type Store interface {
	ledger.Repository
	scheduler.Repository
	scheduler.OccurrenceWriter
}

// RunStoreComplianceTest runs a standard set of tests against a Store implementation.
// setup returns a fresh (clean) Store and a cleanup function.
func RunStoreComplianceTest(t *testing.T, setup func(t *testing.T) (Store, func())) {
	t.Run("CreateAndGetTemplate", func(t *testing.T) {
		store, teardown := setup(t)
		defer teardown()
		ctx := context.Background()

		end := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
		tpl := newTemplate(time.Date(2024, 1, 31, 9, 30, 0, 0, time.UTC))
		tpl.EndDate = &end
		tpl.MaxOccurrences = ptr(12)
		tpl.Category = "housing"

		created, err := store.CreateTemplate(ctx, tpl)
		require.NoError(t, err)
		assert.Equal(t, 1, created.Version)

		fetched, err := store.FindTemplateByID(ctx, tpl.ID)
		require.NoError(t, err)
		assert.Equal(t, tpl.ID, fetched.ID)
		assert.True(t, tpl.Amount.Equal(fetched.Amount), "amount %s != %s", tpl.Amount, fetched.Amount)
		assert.Equal(t, domain.TransactionTypeExpense, fetched.Type)
		assert.Equal(t, "Rent", fetched.Description)
		assert.Equal(t, "housing", fetched.Category)
		assert.Equal(t, "checking", fetched.Account)
		assert.Equal(t, domain.FrequencyMonthly, fetched.Frequency)
		assert.Equal(t, 31, fetched.TargetDay())
		tod, ok := fetched.TimeOfDay()
		require.True(t, ok)
		assert.Equal(t, 9*time.Hour+30*time.Minute, tod)
		assert.True(t, tpl.NextExecutionDate.Equal(fetched.NextExecutionDate))
		require.NotNil(t, fetched.EndDate)
		assert.True(t, end.Equal(*fetched.EndDate))
		require.NotNil(t, fetched.MaxOccurrences)
		assert.Equal(t, 12, *fetched.MaxOccurrences)
		assert.Nil(t, fetched.Timezone)
		assert.True(t, fetched.IsActive)
		assert.True(t, tpl.CreatedAt.Equal(fetched.CreatedAt))
	})

	t.Run("TemplateTimezoneRehydration", func(t *testing.T) {
		store, teardown := setup(t)
		defer teardown()
		ctx := context.Background()

		loc, err := time.LoadLocation("America/New_York")
		require.NoError(t, err)

		tpl := newTemplate(time.Date(2024, 3, 31, 23, 0, 0, 0, loc))
		tpl.Timezone = ptr("America/New_York")
		_, err = store.CreateTemplate(ctx, tpl)
		require.NoError(t, err)

		fetched, err := store.FindTemplateByID(ctx, tpl.ID)
		require.NoError(t, err)
		require.NotNil(t, fetched.Timezone)
		assert.Equal(t, "America/New_York", fetched.NextExecutionDate.Location().String())
		// Wall clock date survives the UTC round trip (it is April 1st in UTC).
		assert.Equal(t, 31, fetched.NextExecutionDate.Day())
		assert.Equal(t, 23, fetched.NextExecutionDate.Hour())
	})

	t.Run("FindTemplateNotFound", func(t *testing.T) {
		store, teardown := setup(t)
		defer teardown()

		_, err := store.FindTemplateByID(context.Background(), uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
	})

	t.Run("FindTemplatesActiveFilter", func(t *testing.T) {
		store, teardown := setup(t)
		defer teardown()
		ctx := context.Background()

		active := newTemplate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
		paused := newTemplate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
		paused.IsActive = false
		_, err := store.CreateTemplate(ctx, active)
		require.NoError(t, err)
		_, err = store.CreateTemplate(ctx, paused)
		require.NoError(t, err)

		all, err := store.FindTemplates(ctx, false)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		onlyActive, err := store.FindTemplates(ctx, true)
		require.NoError(t, err)
		require.Len(t, onlyActive, 1)
		assert.Equal(t, active.ID, onlyActive[0].ID)

		scan, err := store.FindActiveTemplates(ctx)
		require.NoError(t, err)
		require.Len(t, scan, 1)
		assert.Equal(t, active.ID, scan[0].ID)
	})

	t.Run("UpdateTemplateWithEtag", func(t *testing.T) {
		store, teardown := setup(t)
		defer teardown()
		ctx := context.Background()

		end := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		tpl := newTemplate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
		tpl.EndDate = &end
		created, err := store.CreateTemplate(ctx, tpl)
		require.NoError(t, err)

		amount := decimal.RequireFromString("750.25")
		updated, err := store.UpdateTemplate(ctx, domain.UpdateTemplateParams{
			TemplateID: created.ID,
			Etag:       ptr(created.Etag()),
			UpdateMask: []string{domain.FieldAmount, domain.FieldEndDate, domain.FieldIsActive},
			Amount:     &amount,
			IsActive:   ptr(false),
		})
		require.NoError(t, err)
		assert.True(t, amount.Equal(updated.Amount))
		assert.Nil(t, updated.EndDate, "end date in mask without value clears it")
		assert.False(t, updated.IsActive)
		assert.Equal(t, 2, updated.Version)
		assert.Equal(t, "Rent", updated.Description, "fields outside the mask are untouched")
		assert.True(t, created.NextExecutionDate.Equal(updated.NextExecutionDate))

		_, err = store.UpdateTemplate(ctx, domain.UpdateTemplateParams{
			TemplateID:  created.ID,
			Etag:        ptr(created.Etag()),
			UpdateMask:  []string{domain.FieldDescription},
			Description: ptr("stale"),
		})
		assert.ErrorIs(t, err, domain.ErrVersionConflict)

		_, err = store.UpdateTemplate(ctx, domain.UpdateTemplateParams{
			TemplateID:  uuid.NewString(),
			UpdateMask:  []string{domain.FieldDescription},
			Description: ptr("missing"),
		})
		assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
	})

	t.Run("DeleteTemplateKeepsTransactions", func(t *testing.T) {
		store, teardown := setup(t)
		defer teardown()
		ctx := context.Background()

		tpl := newTemplate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
		_, err := store.CreateTemplate(ctx, tpl)
		require.NoError(t, err)

		tx := recurring.Materialize(tpl, tpl.NextExecutionDate, tpl.CreatedAt)
		inserted, err := store.InsertTransactionIgnoreConflict(ctx, &tx)
		require.NoError(t, err)
		require.True(t, inserted)

		require.NoError(t, store.DeleteTemplate(ctx, tpl.ID))
		assert.ErrorIs(t, store.DeleteTemplate(ctx, tpl.ID), domain.ErrTemplateNotFound)

		txs, err := store.FindTransactionsByTemplate(ctx, tpl.ID)
		require.NoError(t, err)
		assert.Len(t, txs, 1)
	})

	t.Run("InsertTransactionIsIdempotent", func(t *testing.T) {
		store, teardown := setup(t)
		defer teardown()
		ctx := context.Background()

		tpl := newTemplate(time.Date(2024, 5, 29, 0, 0, 0, 0, time.UTC))
		tpl.MaxOccurrences = ptr(6)
		tx := recurring.Materialize(tpl, tpl.NextExecutionDate, tpl.CreatedAt)

		inserted, err := store.InsertTransactionIgnoreConflict(ctx, &tx)
		require.NoError(t, err)
		assert.True(t, inserted)

		retry := recurring.Materialize(tpl, tpl.NextExecutionDate, tpl.CreatedAt.Add(time.Hour))
		inserted, err = store.InsertTransactionIgnoreConflict(ctx, &retry)
		require.NoError(t, err)
		assert.False(t, inserted)

		txs, err := store.FindTransactionsByTemplate(ctx, tpl.ID)
		require.NoError(t, err)
		require.Len(t, txs, 1)
		got := txs[0]
		assert.Equal(t, tx.ID, got.ID)
		assert.True(t, tx.Amount.Equal(got.Amount))
		assert.True(t, tx.Date.Equal(got.Date))
		assert.True(t, got.IsRecurring)
		assert.Equal(t, domain.FrequencyMonthly, got.RecurringFrequency)
		assert.Equal(t, tpl.ID, got.ParentRecurringID)
		require.NotNil(t, got.MaxOccurrences)
		assert.Equal(t, 6, *got.MaxOccurrences)
		assert.True(t, tx.CreatedAt.Equal(got.CreatedAt), "first write wins")
	})

	t.Run("TransactionsNewestFirst", func(t *testing.T) {
		store, teardown := setup(t)
		defer teardown()
		ctx := context.Background()

		tpl := newTemplate(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
		for _, d := range []time.Time{
			time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		} {
			tx := recurring.Materialize(tpl, d, tpl.CreatedAt)
			_, err := store.InsertTransactionIgnoreConflict(ctx, &tx)
			require.NoError(t, err)
		}

		txs, err := store.FindTransactionsByTemplate(ctx, tpl.ID)
		require.NoError(t, err)
		require.Len(t, txs, 3)
		assert.Equal(t, 3, int(txs[0].Date.Month()))
		assert.Equal(t, 2, int(txs[1].Date.Month()))
		assert.Equal(t, 1, int(txs[2].Date.Month()))
	})

	t.Run("AdvanceTemplateScheduleCompareAndSet", func(t *testing.T) {
		store, teardown := setup(t)
		defer teardown()
		ctx := context.Background()

		tpl := newTemplate(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
		created, err := store.CreateTemplate(ctx, tpl)
		require.NoError(t, err)

		advanced, err := recurring.AdvanceTemplate(created, created.CreatedAt.Add(time.Minute))
		require.NoError(t, err)

		require.NoError(t, store.AdvanceTemplateSchedule(ctx, &advanced, created.NextExecutionDate))

		fetched, err := store.FindTemplateByID(ctx, tpl.ID)
		require.NoError(t, err)
		assert.True(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC).Equal(fetched.NextExecutionDate))
		assert.Equal(t, 31, fetched.TargetDay(), "anchor survives advancement")
		assert.Equal(t, 2, fetched.Version)

		// A second runner holding the old value loses.
		err = store.AdvanceTemplateSchedule(ctx, &advanced, created.NextExecutionDate)
		assert.ErrorIs(t, err, domain.ErrVersionConflict)

		missing := advanced
		missing.ID = uuid.NewString()
		err = store.AdvanceTemplateSchedule(ctx, &missing, created.NextExecutionDate)
		assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
	})

	t.Run("AtomicRollsBack", func(t *testing.T) {
		store, teardown := setup(t)
		defer teardown()
		ctx := context.Background()

		tpl := newTemplate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
		_, err := store.CreateTemplate(ctx, tpl)
		require.NoError(t, err)

		boom := errors.New("boom")
		err = store.Atomic(ctx, func(w scheduler.OccurrenceWriter) error {
			tx := recurring.Materialize(tpl, tpl.NextExecutionDate, tpl.CreatedAt)
			if _, err := w.InsertTransactionIgnoreConflict(ctx, &tx); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		txs, err := store.FindTransactionsByTemplate(ctx, tpl.ID)
		require.NoError(t, err)
		assert.Empty(t, txs)
	})

	t.Run("SchedulerCycle", func(t *testing.T) {
		store, teardown := setup(t)
		defer teardown()
		ctx := context.Background()

		due := newTemplate(time.Date(2024, 5, 29, 0, 0, 0, 0, time.UTC))
		future := newTemplate(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))
		_, err := store.CreateTemplate(ctx, due)
		require.NoError(t, err)
		_, err = store.CreateTemplate(ctx, future)
		require.NoError(t, err)

		now := time.Date(2024, 5, 29, 18, 0, 0, 0, time.UTC)
		s := scheduler.New(store, scheduler.WithClock(recurring.FixedClock(now)))

		result, err := s.RunOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, scheduler.Result{Checked: 2, Due: 1, Materialized: 1}, result)

		// Same day again: the template has moved to June and nothing is due.
		result, err = s.RunOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, scheduler.Result{Checked: 2}, result)

		fetched, err := store.FindTemplateByID(ctx, due.ID)
		require.NoError(t, err)
		assert.True(t, time.Date(2024, 6, 29, 0, 0, 0, 0, time.UTC).Equal(fetched.NextExecutionDate))

		txs, err := store.FindTransactionsByTemplate(ctx, due.ID)
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, domain.OccurrenceID(due.ID, due.NextExecutionDate), txs[0].ID)
	})
}

func newTemplate(next time.Time) *domain.RecurringTemplate {
	created := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	return &domain.RecurringTemplate{
		ID:                uuid.Must(uuid.NewV7()).String(),
		Amount:            decimal.RequireFromString("600.50"),
		Type:              domain.TransactionTypeExpense,
		Description:       "Rent",
		Account:           "checking",
		Frequency:         domain.FrequencyMonthly,
		OriginalTargetDay: ptr(next.Day()),
		OriginalTimeOfDay: ptr(domain.WallClock(next)),
		NextExecutionDate: next,
		IsActive:          true,
		CreatedAt:         created,
		UpdatedAt:         created,
	}
}

func ptr[T any](v T) *T {
	return &v
}
