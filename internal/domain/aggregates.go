package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RecurringTemplate is an aggregate root representing a user's intent to repeat a transaction.
//
// Recurring transactions are implemented via a template pattern:
//  1. User creates a RecurringTemplate with a frequency and a start date
//  2. A scheduler checks templates, materializes due occurrences and advances NextExecutionDate
//  3. Each GeneratedTransaction links back to its template via ParentRecurringID
//
// Frequency is immutable; changing it is modeled as delete and recreate.
type RecurringTemplate struct {
	ID string

	// Payload stamped onto each generated occurrence
	Amount      decimal.Decimal
	Type        TransactionType
	Description string
	Category    string
	Account     string

	// Schedule
	Frequency Frequency

	// OriginalTargetDay is the day-of-month captured from the start date (1-31).
	// Monthly and yearly advancement clamp to it, never to a previously clamped date.
	// nil means the anchor was never recorded; advancement falls back to the current day.
	OriginalTargetDay *int

	// OriginalTimeOfDay is the wall-clock offset from local midnight captured from
	// the start date. Every advance rebuilds the occurrence at this time, so an
	// occurrence pushed forward by a DST gap does not shift later ones.
	// nil falls back to the current occurrence's wall clock.
	OriginalTimeOfDay *time.Duration

	NextExecutionDate time.Time
	EndDate           *time.Time // nil = runs forever
	MaxOccurrences    *int       // Informational only; copied onto generated transactions

	// Timezone anchors calendar arithmetic to the user's wall clock.
	//   nil = floating time, dates are interpreted in UTC
	//   non-nil = IANA timezone like 'Europe/Stockholm'
	Timezone *string

	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time

	// Optimistic locking version for concurrent update protection
	Version int
}

// TargetDay returns the anchor day-of-month, or 0 when none was recorded.
func (t *RecurringTemplate) TargetDay() int {
	if t.OriginalTargetDay == nil {
		return 0
	}
	return *t.OriginalTargetDay
}

// TimeOfDay returns the anchor wall-clock offset and whether one was recorded.
func (t *RecurringTemplate) TimeOfDay() (time.Duration, bool) {
	if t.OriginalTimeOfDay == nil {
		return 0, false
	}
	return *t.OriginalTimeOfDay, true
}

// WallClock returns the offset of t's wall clock from its local midnight.
func WallClock(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}

// Etag returns the entity tag for this template.
// The etag is based on the version number and is used for optimistic concurrency control.
func (t *RecurringTemplate) Etag() string {
	return fmt.Sprintf("%d", t.Version)
}

// GeneratedTransaction is a standalone financial record materialized from a template
// at one occurrence date. It is immutable once created; ownership passes to persistence.
type GeneratedTransaction struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Type        TransactionType `json:"type"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Account     string          `json:"account"`
	Date        time.Time       `json:"date"`

	IsRecurring        bool      `json:"is_recurring"`
	RecurringFrequency Frequency `json:"recurring_frequency"`
	ParentRecurringID  string    `json:"parent_recurring_id"` // Back-reference only
	MaxOccurrences     *int      `json:"max_occurrences,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OccurrenceID derives the identifier of the occurrence of templateID at the given instant.
// The same (template, instant) pair always yields the same ID, and two distinct
// instants of the same template never collide at millisecond resolution.
func OccurrenceID(templateID string, occurrence time.Time) string {
	return fmt.Sprintf("%s_%d", templateID, occurrence.UnixMilli())
}

// Field names for RecurringTemplate update masks.
const (
	FieldDescription    = "description"
	FieldAmount         = "amount"
	FieldType           = "type"
	FieldCategory       = "category"
	FieldAccount        = "account"
	FieldEndDate        = "end_date"
	FieldMaxOccurrences = "max_occurrences"
	FieldIsActive       = "is_active"

	// Schedule fields owned by the engine; not client updatable.
	FieldFrequency         = "frequency"
	FieldNextExecutionDate = "next_execution_date"
	FieldOriginalTargetDay = "original_target_day"
	FieldOriginalTimeOfDay = "original_time_of_day"
)

// UpdateTemplateParams contains parameters for updating a recurring template with field mask support.
// Uses client-side optimistic concurrency control via etag (AIP-154).
type UpdateTemplateParams struct {
	TemplateID string

	// Etag for optimistic concurrency control.
	// If provided and doesn't match current version, returns ErrVersionConflict.
	Etag *string

	// UpdateMask specifies which fields to update.
	// Only fields in this list will be modified.
	UpdateMask []string

	// Field values (only applied if field is in UpdateMask).
	// A nil EndDate or MaxOccurrences with its field in the mask clears the value.
	Description    *string
	Amount         *decimal.Decimal
	Type           *TransactionType
	Category       *string
	Account        *string
	EndDate        *time.Time
	MaxOccurrences *int
	IsActive       *bool
}
