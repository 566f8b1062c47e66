package recurring

import (
	"fmt"
	"time"

	"github.com/rezkam/ledger/internal/domain"
)

// Calculator computes the next occurrence for one frequency.
type Calculator interface {
	// Next returns the occurrence following current. anchor.Day is 0 when the
	// template never recorded one; anchor.HasTime is false when no wall clock was recorded.
	Next(current time.Time, anchor Anchor) time.Time
}

// GetCalculator returns the calculator for the given frequency.
// An unrecognized frequency is a programming error and is reported, never defaulted.
func GetCalculator(frequency domain.Frequency) (Calculator, error) {
	switch frequency {
	case domain.FrequencyDaily:
		return DailyCalculator{}, nil
	case domain.FrequencyWeekly:
		return WeeklyCalculator{}, nil
	case domain.FrequencyMonthly:
		return MonthlyCalculator{}, nil
	case domain.FrequencyYearly:
		return YearlyCalculator{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidFrequency, frequency)
	}
}

// Advance returns the next occurrence after current for the given frequency.
//
// originalTargetDay is the anchor day-of-month captured when the template was
// created; 0 means absent and falls back to current's day-of-month. Time-of-day
// components and location are taken from current.
func Advance(current time.Time, frequency domain.Frequency, originalTargetDay int) (time.Time, error) {
	return AdvanceAnchored(current, frequency, Anchor{Day: originalTargetDay})
}

// AdvanceAnchored is Advance with a full anchor. When anchor.HasTime is set the
// result is placed at the anchor wall clock, so an occurrence that a DST gap
// pushed forward does not drag later occurrences with it.
func AdvanceAnchored(current time.Time, frequency domain.Frequency, anchor Anchor) (time.Time, error) {
	if err := anchor.validate(); err != nil {
		return time.Time{}, err
	}

	calc, err := GetCalculator(frequency)
	if err != nil {
		return time.Time{}, err
	}

	return calc.Next(current, anchor), nil
}
