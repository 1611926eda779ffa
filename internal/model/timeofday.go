package model

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time without a date, as used for range windows
// ("03:00") and the order expiration cutoff ("15:59:50").
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay accepts "15:04" or "15:04:05".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
		}
	}

	return TimeOfDay{}, fmt.Errorf("invalid time of day %q", s)
}

// Minutes returns the minute-of-day, used for window comparisons at bar
// granularity.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// On anchors the time of day to the calendar date of day in loc.
func (t TimeOfDay) On(day time.Time, loc *time.Location) time.Time {
	d := day.In(loc)

	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour, t.Minute, t.Second, 0, loc)
}

func (t TimeOfDay) String() string {
	if t.Second == 0 {
		return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
	}

	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}
