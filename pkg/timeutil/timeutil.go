// Package timeutil provides calendar-day utilities for the progress engine.
// All daily state (streaks, growth meter, usage rollups) is keyed by a
// calendar-day string computed in one fixed location, so every day boundary
// decision goes through a Calendar.
package timeutil

import (
	"time"
)

// FormatDate is the calendar-day key format (YYYY-MM-DD).
const FormatDate = "2006-01-02"

// FormatShortWeekday is the label used for weekly chart entries (Mon, Tue...).
const FormatShortWeekday = "Mon"

// Clock abstracts the current time so day transitions can be tested
// without real time passing.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns the same instant. Set advances it.
type FixedClock struct {
	T time.Time
}

// NewFixedClock creates a FixedClock at t.
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{T: t}
}

// Now returns the fixed instant.
func (c *FixedClock) Now() time.Time {
	return c.T
}

// Set moves the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.T = t
}

// AddDays moves the clock by n calendar days.
func (c *FixedClock) AddDays(n int) {
	c.T = c.T.AddDate(0, 0, n)
}

// Calendar converts instants to calendar-day keys in a fixed location.
type Calendar struct {
	clock Clock
	loc   *time.Location
}

// NewCalendar creates a Calendar. A nil clock means the system clock and a
// nil location means UTC.
func NewCalendar(clock Clock, loc *time.Location) *Calendar {
	if clock == nil {
		clock = SystemClock{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Calendar{clock: clock, loc: loc}
}

// LoadLocation resolves a timezone name, falling back to UTC on error the
// same way the application config does.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Location returns the calendar's location.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Now returns the current instant in the calendar's location.
func (c *Calendar) Now() time.Time {
	return c.clock.Now().In(c.loc)
}

// DayKey formats t as a calendar-day key.
func (c *Calendar) DayKey(t time.Time) string {
	return t.In(c.loc).Format(FormatDate)
}

// Today returns today's day key.
func (c *Calendar) Today() string {
	return c.DayKey(c.Now())
}

// Yesterday returns yesterday's day key.
func (c *Calendar) Yesterday() string {
	return c.DayKey(c.StartOfDay(c.Now()).AddDate(0, 0, -1))
}

// StartOfDay returns midnight of t's day in the calendar's location.
func (c *Calendar) StartOfDay(t time.Time) time.Time {
	local := t.In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.loc)
}

// LastNDays returns the day keys of the last n days ending today,
// ordered oldest to newest.
func (c *Calendar) LastNDays(n int) []string {
	if n <= 0 {
		return nil
	}
	start := c.StartOfDay(c.Now())
	days := make([]string, n)
	for i := 0; i < n; i++ {
		days[i] = c.DayKey(start.AddDate(0, 0, i-(n-1)))
	}
	return days
}

// ParseDay parses a day key in the calendar's location.
func (c *Calendar) ParseDay(key string) (time.Time, error) {
	return time.ParseInLocation(FormatDate, key, c.loc)
}

// WeekdayLabel returns the short weekday name for a day key, or "" if the
// key does not parse.
func (c *Calendar) WeekdayLabel(key string) string {
	t, err := c.ParseDay(key)
	if err != nil {
		return ""
	}
	return t.Format(FormatShortWeekday)
}

// IsConsecutiveDay reports whether next is exactly one calendar day after prev.
func IsConsecutiveDay(prev, next string) bool {
	p, err := time.Parse(FormatDate, prev)
	if err != nil {
		return false
	}
	n, err := time.Parse(FormatDate, next)
	if err != nil {
		return false
	}
	return p.AddDate(0, 0, 1).Equal(n)
}

// DaysBetween returns the absolute number of calendar days between two day
// keys, or -1 if either key is malformed.
func DaysBetween(a, b string) int {
	ta, err := time.Parse(FormatDate, a)
	if err != nil {
		return -1
	}
	tb, err := time.Parse(FormatDate, b)
	if err != nil {
		return -1
	}
	days := int(tb.Sub(ta).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}
