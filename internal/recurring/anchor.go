package recurring

import (
	"fmt"
	"time"

	"github.com/rezkam/ledger/internal/domain"
)

// Anchor is the position a schedule was created at, independent of any month-end
// clamp or DST shift applied to a later occurrence.
type Anchor struct {
	// Day is the day-of-month (1-31), or 0 to use the current occurrence's day.
	Day int

	// TimeOfDay is the wall-clock offset from local midnight. Used only when HasTime is set.
	TimeOfDay time.Duration
	HasTime   bool
}

// AnchorOf returns the anchor recorded on template.
func AnchorOf(template *domain.RecurringTemplate) Anchor {
	tod, ok := template.TimeOfDay()
	return Anchor{Day: template.TargetDay(), TimeOfDay: tod, HasTime: ok}
}

func (a Anchor) validate() error {
	if a.Day != 0 {
		if _, err := domain.NewTargetDay(a.Day); err != nil {
			return err
		}
	}
	if a.HasTime {
		if _, err := domain.NewTimeOfDay(a.TimeOfDay); err != nil {
			return fmt.Errorf("invalid anchor: %w", err)
		}
	}
	return nil
}

// date returns the calendar date current was scheduled for.
//
// time.Date moves a wall clock that falls in a DST gap forward. When that push
// crosses midnight the occurrence still belongs to the previous day; a wall clock
// earlier than the anchor can only come from such a push.
func (a Anchor) date(current time.Time) (int, time.Month, int) {
	year, month, day := current.Date()
	if a.HasTime && domain.WallClock(current) < a.TimeOfDay {
		return time.Date(year, month, day-1, 0, 0, 0, 0, current.Location()).Date()
	}
	return year, month, day
}

// at builds the occurrence on the given date in current's location, at the anchor
// wall clock when one is recorded and at current's wall clock otherwise.
func (a Anchor) at(current time.Time, year int, month time.Month, day int) time.Time {
	if !a.HasTime {
		return withDate(current, year, month, day)
	}

	tod := a.TimeOfDay
	hour := int(tod / time.Hour)
	minute := int(tod % time.Hour / time.Minute)
	sec := int(tod % time.Minute / time.Second)
	nsec := int(tod % time.Second)
	return time.Date(year, month, day, hour, minute, sec, nsec, current.Location())
}
