package market

import (
	"fmt"
	"time"

	"github.com/scmhub/calendar"
)

// Status describes the reference exchange session at a point in time.
type Status struct {
	Exchange   string    `json:"exchange"`
	Open       bool      `json:"open"`
	TradingDay bool      `json:"trading_day"`
	Time       time.Time `json:"time"`
}

// Calendar answers market-status queries from an exchange calendar
// identified by its ISO 10383 MIC (e.g. "xnys").
type Calendar struct {
	mic string
	cal *calendar.Calendar
	now func() time.Time
}

// NewCalendar loads the calendar for mic.
func NewCalendar(mic string) (*Calendar, error) {
	cal := calendar.GetCalendar(mic)
	if cal == nil {
		return nil, fmt.Errorf("unknown exchange calendar %q", mic)
	}

	return &Calendar{mic: mic, cal: cal, now: time.Now}, nil
}

// Status reports whether the exchange is open right now and whether today
// is a trading day at all.
func (c *Calendar) Status() Status {
	now := c.now().In(c.cal.Loc)

	return Status{
		Exchange:   c.mic,
		Open:       c.cal.IsOpen(now),
		TradingDay: c.cal.IsBusinessDay(now),
		Time:       now,
	}
}
