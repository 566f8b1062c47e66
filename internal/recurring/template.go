package recurring

import (
	"fmt"
	"time"

	"github.com/rezkam/ledger/internal/domain"
)

// AdvanceTemplate returns a copy of template with NextExecutionDate moved to the
// following occurrence and UpdatedAt set to now. The input is not modified.
//
// It neither checks due-ness nor persists. Callers advance exactly once per
// materialized occurrence so no occurrence is skipped or fired twice.
func AdvanceTemplate(template *domain.RecurringTemplate, now time.Time) (domain.RecurringTemplate, error) {
	next, err := AdvanceAnchored(template.NextExecutionDate, template.Frequency, AnchorOf(template))
	if err != nil {
		return domain.RecurringTemplate{}, fmt.Errorf("failed to advance template %s: %w", template.ID, err)
	}

	advanced := *template
	advanced.NextExecutionDate = next
	advanced.UpdatedAt = now
	return advanced, nil
}
