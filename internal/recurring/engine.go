package recurring

import (
	"iter"
	"time"

	"github.com/rezkam/ledger/internal/domain"
)

// Clock returns the current time. Injected so callers and tests control "now".
type Clock func() time.Time

// SystemClock is the wall clock in UTC.
func SystemClock() time.Time {
	return time.Now().UTC()
}

// FixedClock returns a clock that always reports t.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// Engine binds the pure scheduling functions to a clock.
type Engine struct {
	clock Clock
}

// NewEngine creates an engine reading time from clock. A nil clock uses SystemClock.
func NewEngine(clock Clock) *Engine {
	if clock == nil {
		clock = SystemClock
	}
	return &Engine{clock: clock}
}

// Now returns the engine's current time.
func (e *Engine) Now() time.Time {
	return e.clock()
}

// IsDue reports whether template is due as of the engine clock.
func (e *Engine) IsDue(template *domain.RecurringTemplate) bool {
	return IsDue(template, e.clock())
}

// Materialize creates the transaction for one occurrence of template.
func (e *Engine) Materialize(template *domain.RecurringTemplate, occurrence time.Time) domain.GeneratedTransaction {
	return Materialize(template, occurrence, e.clock())
}

// AdvanceTemplate moves template to its following occurrence.
func (e *Engine) AdvanceTemplate(template *domain.RecurringTemplate) (domain.RecurringTemplate, error) {
	return AdvanceTemplate(template, e.clock())
}

// GenerateFuture previews template's occurrences over horizonMonths from now.
func (e *Engine) GenerateFuture(template *domain.RecurringTemplate, horizonMonths int) (iter.Seq[domain.GeneratedTransaction], error) {
	return GenerateFuture(template, e.clock(), horizonMonths)
}

// Forecast is GenerateFuture collected into a slice.
func (e *Engine) Forecast(template *domain.RecurringTemplate, horizonMonths int) ([]domain.GeneratedTransaction, error) {
	return Forecast(template, e.clock(), horizonMonths)
}
