package recurring

import (
	"time"

	"github.com/rezkam/ledger/internal/domain"
)

// Materialize turns a template plus a concrete occurrence date into a standalone transaction.
//
// The ID is derived from (template ID, occurrence instant), so materializing the same
// occurrence twice yields the same ID and retries after a partial failure are safe.
// CreatedAt and UpdatedAt are the materialization time, not the occurrence date.
func Materialize(template *domain.RecurringTemplate, occurrence, now time.Time) domain.GeneratedTransaction {
	return domain.GeneratedTransaction{
		ID:                 domain.OccurrenceID(template.ID, occurrence),
		Amount:             template.Amount,
		Type:               template.Type,
		Description:        template.Description,
		Category:           template.Category,
		Account:            template.Account,
		Date:               occurrence,
		IsRecurring:        true,
		RecurringFrequency: template.Frequency,
		ParentRecurringID:  template.ID,
		MaxOccurrences:     copyInt(template.MaxOccurrences),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
