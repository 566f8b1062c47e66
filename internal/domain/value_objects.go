package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MaxDescriptionLength is the longest description accepted for a template.
const MaxDescriptionLength = 255

// Description is a validated description value object (1-255 characters).
type Description struct {
	value string
}

// NewDescription creates a new Description, validating the input.
func NewDescription(s string) (Description, error) {
	s = strings.TrimSpace(s)

	if s == "" {
		return Description{}, ErrDescriptionRequired
	}

	if len(s) > MaxDescriptionLength {
		return Description{}, ErrDescriptionTooLong
	}

	return Description{value: s}, nil
}

// String returns the description value.
func (d Description) String() string {
	return d.value
}

// NewFrequency validates and creates a Frequency.
func NewFrequency(s string) (Frequency, error) {
	frequency := Frequency(strings.ToLower(strings.TrimSpace(s)))

	switch frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return frequency, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFrequency, s)
	}
}

// NewTransactionType validates and creates a TransactionType.
func NewTransactionType(s string) (TransactionType, error) {
	typ := TransactionType(strings.ToLower(strings.TrimSpace(s)))

	switch typ {
	case TransactionTypeIncome, TransactionTypeExpense:
		return typ, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTransactionType, s)
	}
}

// NewAmount parses a decimal amount. Amounts are always positive; the
// transaction type carries the direction.
func NewAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if !amount.IsPositive() {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	return amount, nil
}

// NewTargetDay validates an anchor day-of-month.
func NewTargetDay(day int) (int, error) {
	if day < 1 || day > 31 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidTargetDay, day)
	}
	return day, nil
}

// NewTimeOfDay validates a wall-clock offset from midnight.
func NewTimeOfDay(d time.Duration) (time.Duration, error) {
	if d < 0 || d >= 24*time.Hour {
		return 0, fmt.Errorf("%w: %s", ErrInvalidTimeOfDay, d)
	}
	return d, nil
}

// NewMaxOccurrences validates an optional occurrence cap.
func NewMaxOccurrences(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidMaxOccurrences, n)
	}
	return n, nil
}

// LoadTimezone resolves an IANA timezone name.
// A nil or empty name is floating time and resolves to UTC.
func LoadTimezone(name *string) (*time.Location, error) {
	if name == nil || *name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(*name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTimezone, *name)
	}
	return loc, nil
}
