package recurring

import (
	"time"

	"github.com/rezkam/ledger/internal/domain"
)

// IsDue reports whether the template's next occurrence has arrived as of now.
//
// Only calendar dates are compared: an occurrence scheduled for 09:00 is due at 23:59
// the same day and stays due on every later day until it is processed. A template
// whose end date has passed is never due, however overdue it is.
func IsDue(template *domain.RecurringTemplate, now time.Time) bool {
	if !template.IsActive {
		return false
	}

	// Dates are read on the template's wall clock, not the caller's.
	loc := template.NextExecutionDate.Location()
	today := dateOf(now.In(loc))
	if today.Before(dateOf(template.NextExecutionDate)) {
		return false
	}

	if template.EndDate != nil && today.After(dateOf(template.EndDate.In(loc))) {
		return false
	}

	return true
}

// dateOf strips the time of day, keeping the calendar date as seen in t's own location.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
