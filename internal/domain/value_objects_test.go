package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFrequency(t *testing.T) {
	tests := []struct {
		input   string
		want    Frequency
		wantErr bool
	}{
		{"daily", FrequencyDaily, false},
		{"WEEKLY", FrequencyWeekly, false},
		{" Monthly ", FrequencyMonthly, false},
		{"yearly", FrequencyYearly, false},
		{"biweekly", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NewFrequency(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidFrequency))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFrequencies_CanonicalOrder(t *testing.T) {
	assert.Equal(t, []Frequency{FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly}, Frequencies())
}

func TestNewTransactionType(t *testing.T) {
	typ, err := NewTransactionType("Expense")
	require.NoError(t, err)
	assert.Equal(t, TransactionTypeExpense, typ)

	_, err = NewTransactionType("transfer")
	assert.ErrorIs(t, err, ErrInvalidTransactionType)
}

func TestNewDescription(t *testing.T) {
	d, err := NewDescription("  rent  ")
	require.NoError(t, err)
	assert.Equal(t, "rent", d.String())

	_, err = NewDescription("   ")
	assert.ErrorIs(t, err, ErrDescriptionRequired)

	_, err = NewDescription(strings.Repeat("x", MaxDescriptionLength+1))
	assert.ErrorIs(t, err, ErrDescriptionTooLong)
}

func TestNewAmount(t *testing.T) {
	amount, err := NewAmount("600.50")
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.RequireFromString("600.5")))

	_, err = NewAmount("0")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = NewAmount("-10")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = NewAmount("ten")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestNewTargetDay(t *testing.T) {
	for _, day := range []int{1, 15, 31} {
		got, err := NewTargetDay(day)
		require.NoError(t, err)
		assert.Equal(t, day, got)
	}
	for _, day := range []int{0, -1, 32} {
		_, err := NewTargetDay(day)
		assert.ErrorIs(t, err, ErrInvalidTargetDay)
	}
}

func TestLoadTimezone(t *testing.T) {
	loc, err := LoadTimezone(nil)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	name := "Europe/Stockholm"
	loc, err = LoadTimezone(&name)
	require.NoError(t, err)
	assert.Equal(t, "Europe/Stockholm", loc.String())

	bad := "Mars/Olympus_Mons"
	_, err = LoadTimezone(&bad)
	assert.ErrorIs(t, err, ErrInvalidTimezone)
}

func TestOccurrenceID(t *testing.T) {
	at := time.Date(2024, 5, 29, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, OccurrenceID("tpl-1", at), OccurrenceID("tpl-1", at))
	assert.NotEqual(t, OccurrenceID("tpl-1", at), OccurrenceID("tpl-1", at.AddDate(0, 1, 0)))
	assert.NotEqual(t, OccurrenceID("tpl-1", at), OccurrenceID("tpl-2", at))
	assert.Equal(t, "tpl-1_1716973200000", OccurrenceID("tpl-1", at))
}

func TestRecurringTemplate_TargetDay(t *testing.T) {
	tpl := &RecurringTemplate{}
	assert.Equal(t, 0, tpl.TargetDay())

	day := 31
	tpl.OriginalTargetDay = &day
	assert.Equal(t, 31, tpl.TargetDay())
}
