package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestUpdateTemplateParams_Validate(t *testing.T) {
	desc := "Rent"
	amount := decimal.RequireFromString("10")
	active := false

	tests := []struct {
		name    string
		params  UpdateTemplateParams
		wantErr error
	}{
		{
			name:    "empty mask",
			params:  UpdateTemplateParams{},
			wantErr: ErrEmptyUpdateMask,
		},
		{
			name:    "unknown field",
			params:  UpdateTemplateParams{UpdateMask: []string{"colour"}},
			wantErr: ErrUnknownUpdateMaskField,
		},
		{
			name:    "frequency is immutable",
			params:  UpdateTemplateParams{UpdateMask: []string{FieldFrequency}},
			wantErr: ErrImmutableField,
		},
		{
			name:    "next execution date is immutable",
			params:  UpdateTemplateParams{UpdateMask: []string{FieldNextExecutionDate}},
			wantErr: ErrImmutableField,
		},
		{
			name:    "description in mask without value",
			params:  UpdateTemplateParams{UpdateMask: []string{FieldDescription}},
			wantErr: ErrDescriptionRequired,
		},
		{
			name:    "amount in mask without value",
			params:  UpdateTemplateParams{UpdateMask: []string{FieldAmount}},
			wantErr: ErrInvalidAmount,
		},
		{
			name: "valid multi-field update",
			params: UpdateTemplateParams{
				UpdateMask:  []string{FieldDescription, FieldAmount, FieldIsActive, FieldEndDate},
				Description: &desc,
				Amount:      &amount,
				IsActive:    &active,
			},
		},
		{
			name:   "clearing end date",
			params: UpdateTemplateParams{UpdateMask: []string{FieldEndDate}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUpdateTemplateParams_Has(t *testing.T) {
	p := UpdateTemplateParams{UpdateMask: []string{FieldCategory, FieldEndDate}}
	assert.True(t, p.Has(FieldEndDate))
	assert.False(t, p.Has(FieldAmount))
}

func TestUpdateTemplateParams_Apply(t *testing.T) {
	end := mustDate(t, "2025-01-01")
	limit := 5
	tpl := &RecurringTemplate{
		Description:    "Old",
		Category:       "misc",
		EndDate:        &end,
		MaxOccurrences: &limit,
		IsActive:       true,
		Version:        3,
	}

	desc := "New"
	inactive := false
	UpdateTemplateParams{
		UpdateMask:  []string{FieldDescription, FieldCategory, FieldEndDate, FieldIsActive},
		Description: &desc,
		IsActive:    &inactive,
	}.Apply(tpl)

	assert.Equal(t, "New", tpl.Description)
	assert.Empty(t, tpl.Category)
	assert.Nil(t, tpl.EndDate)
	assert.False(t, tpl.IsActive)
	// Fields outside the mask are untouched.
	assert.Equal(t, 5, *tpl.MaxOccurrences)
	assert.Equal(t, 3, tpl.Version)
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}
