package recurring

import (
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/rezkam/ledger/internal/domain"
)

// DefaultHorizonMonths is the preview window used when none is given.
const DefaultHorizonMonths = 12

// GenerateFuture projects the template's upcoming occurrences for display.
//
// The sequence starts at NextExecutionDate and stops at the first candidate that is
// later than now + horizonMonths or, when EndDate is set, on a later calendar day
// than EndDate. MaxOccurrences is not a stop condition.
//
// horizonMonths of 0 uses DefaultHorizonMonths; a negative horizon is
// ErrInvalidHorizon. The window end is clamped like a monthly advance, so a
// one-month preview taken on Jan 31 ends on Feb 29, not Mar 2.
//
// The returned sequence holds no mutable state: ranging over it twice yields the
// same transactions, and the template is never modified. An unsupported frequency
// is reported up front instead of mid-iteration.
func GenerateFuture(template *domain.RecurringTemplate, now time.Time, horizonMonths int) (iter.Seq[domain.GeneratedTransaction], error) {
	if horizonMonths < 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidHorizon, horizonMonths)
	}
	if horizonMonths == 0 {
		horizonMonths = DefaultHorizonMonths
	}

	calc, err := GetCalculator(template.Frequency)
	if err != nil {
		return nil, err
	}
	anchor := AnchorOf(template)
	if err := anchor.validate(); err != nil {
		return nil, err
	}

	// Snapshot the inputs so later changes by the caller cannot leak into the sequence.
	snapshot := *template
	if template.EndDate != nil {
		end := *template.EndDate
		snapshot.EndDate = &end
	}
	horizon := horizonEnd(now, horizonMonths)

	return func(yield func(domain.GeneratedTransaction) bool) {
		for candidate := snapshot.NextExecutionDate; !candidate.After(horizon); candidate = calc.Next(candidate, anchor) {
			if snapshot.EndDate != nil && dateOf(candidate).After(dateOf(snapshot.EndDate.In(candidate.Location()))) {
				return
			}
			if !yield(Materialize(&snapshot, candidate, now)) {
				return
			}
		}
	}, nil
}

// horizonEnd returns now moved forward by months, clamping the day to the
// target month's last day instead of overflowing into the next month.
func horizonEnd(now time.Time, months int) time.Time {
	year, month := addMonths(now.Year(), now.Month(), months)
	return withDate(now, year, month, min(now.Day(), daysIn(year, month, now.Location())))
}

// Forecast collects GenerateFuture into a slice.
func Forecast(template *domain.RecurringTemplate, now time.Time, horizonMonths int) ([]domain.GeneratedTransaction, error) {
	seq, err := GenerateFuture(template, now, horizonMonths)
	if err != nil {
		return nil, err
	}
	return slices.Collect(seq), nil
}
