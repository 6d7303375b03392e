package hours

import (
	"time"

	"github.com/lucasmv/zapflow-backend/pkg/types"
)

// Gate answers whether a store is accepting orders at a given moment.
// Stores with no configured hours are treated as always open, matching how
// storefronts behave before the owner fills in a schedule.
type Gate struct {
	now func() time.Time
}

// NewGate builds a gate on the wall clock.
func NewGate() *Gate {
	return &Gate{now: time.Now}
}

// NewGateAt builds a gate with a fixed clock, for tests.
func NewGateAt(now func() time.Time) *Gate {
	if now == nil {
		now = time.Now
	}
	return &Gate{now: now}
}

// IsOpen reports whether the schedule admits the current time.
func (g *Gate) IsOpen(schedule types.BusinessHours) bool {
	return g.IsOpenAt(schedule, g.now())
}

// IsOpenAt reports whether the schedule admits the given time. The window is
// inclusive on both ends: a store closing at 22:00 still accepts an order
// placed at exactly 22:00. A close earlier than the open means the window
// runs past midnight (22:00-02:00); the early-morning stretch belongs to the
// weekday the window started on.
func (g *Gate) IsOpenAt(schedule types.BusinessHours, at time.Time) bool {
	if len(schedule) == 0 {
		return true
	}

	current := at.Hour()*60 + at.Minute()

	if day, ok := schedule.ForDay(at.Weekday()); ok && day.IsOpen {
		open, close, err := windowMinutes(day)
		switch {
		case err != nil:
		case close >= open:
			if current >= open && current <= close {
				return true
			}
		case current >= open:
			// evening side of an overnight window
			return true
		}
	}

	prev := at.Weekday() - 1
	if prev < time.Sunday {
		prev = time.Saturday
	}
	if day, ok := schedule.ForDay(prev); ok && day.IsOpen {
		open, close, err := windowMinutes(day)
		if err == nil && close < open && current <= close {
			// morning side of yesterday's overnight window
			return true
		}
	}

	return false
}

func windowMinutes(day types.DayHours) (int, int, error) {
	open, err := minuteOfDay(day.Open)
	if err != nil {
		return 0, 0, err
	}
	close, err := minuteOfDay(day.Close)
	if err != nil {
		return 0, 0, err
	}
	return open, close, nil
}

func minuteOfDay(value string) (int, error) {
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return 0, err
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}
