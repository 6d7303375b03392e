package types

import (
	"strings"
	"time"
)

// DayHours is the opening rule for a single weekday.
type DayHours struct {
	IsOpen bool   `json:"is_open"`
	Open   string `json:"open,omitempty"`
	Close  string `json:"close,omitempty"`
}

// BusinessHours maps lowercase English weekday names ("monday"..."sunday") to
// their opening rule. A missing day means closed.
type BusinessHours map[string]DayHours

// WeekdayKey returns the map key for a time.Weekday.
func WeekdayKey(day time.Weekday) string {
	return strings.ToLower(day.String())
}

// ForDay returns the rule for the given weekday, if present.
func (h BusinessHours) ForDay(day time.Weekday) (DayHours, bool) {
	if len(h) == 0 {
		return DayHours{}, false
	}
	rule, ok := h[WeekdayKey(day)]
	return rule, ok
}
