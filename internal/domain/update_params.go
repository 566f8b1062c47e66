package domain

import (
	"fmt"
	"slices"
)

// Fields a client may name in UpdateTemplateParams.UpdateMask.
var updateTemplateValidFields = map[string]struct{}{
	FieldDescription:    {},
	FieldAmount:         {},
	FieldType:           {},
	FieldCategory:       {},
	FieldAccount:        {},
	FieldEndDate:        {},
	FieldMaxOccurrences: {},
	FieldIsActive:       {},
}

// Schedule fields are owned by the engine and rejected with ErrImmutableField.
var updateTemplateImmutableFields = map[string]struct{}{
	FieldFrequency:         {},
	FieldNextExecutionDate: {},
	FieldOriginalTargetDay: {},
	FieldOriginalTimeOfDay: {},
}

// Validate checks that UpdateMask contains only updatable fields and that
// required fields have non-nil values when included in the mask.
func (p UpdateTemplateParams) Validate() error {
	if len(p.UpdateMask) == 0 {
		return ErrEmptyUpdateMask
	}

	maskSet := make(map[string]bool, len(p.UpdateMask))

	for _, field := range p.UpdateMask {
		if _, ok := updateTemplateImmutableFields[field]; ok {
			return fmt.Errorf("%w: %s", ErrImmutableField, field)
		}
		if _, ok := updateTemplateValidFields[field]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownUpdateMaskField, field)
		}
		maskSet[field] = true
	}

	// Required field checks (cannot be nil when in mask)
	if maskSet[FieldDescription] && p.Description == nil {
		return ErrDescriptionRequired
	}
	if maskSet[FieldAmount] && p.Amount == nil {
		return ErrInvalidAmount
	}
	if maskSet[FieldType] && p.Type == nil {
		return ErrInvalidTransactionType
	}
	if maskSet[FieldAccount] && p.Account == nil {
		return ErrAccountRequired
	}
	if maskSet[FieldIsActive] && p.IsActive == nil {
		return fmt.Errorf("%w: %s requires a value", ErrUnknownUpdateMaskField, FieldIsActive)
	}

	return nil
}

// Has reports whether field is named in the update mask.
func (p UpdateTemplateParams) Has(field string) bool {
	return slices.Contains(p.UpdateMask, field)
}

// Apply copies the masked fields of p onto t. It does not validate, bump the
// version or touch timestamps; callers run Validate first and persist the result.
func (p UpdateTemplateParams) Apply(t *RecurringTemplate) {
	for _, field := range p.UpdateMask {
		switch field {
		case FieldDescription:
			t.Description = *p.Description
		case FieldAmount:
			t.Amount = *p.Amount
		case FieldType:
			t.Type = *p.Type
		case FieldCategory:
			t.Category = ""
			if p.Category != nil {
				t.Category = *p.Category
			}
		case FieldAccount:
			t.Account = *p.Account
		case FieldEndDate:
			t.EndDate = nil
			if p.EndDate != nil {
				end := *p.EndDate
				t.EndDate = &end
			}
		case FieldMaxOccurrences:
			t.MaxOccurrences = nil
			if p.MaxOccurrences != nil {
				n := *p.MaxOccurrences
				t.MaxOccurrences = &n
			}
		case FieldIsActive:
			t.IsActive = *p.IsActive
		}
	}
}
