package model

import (
	"errors"
	"fmt"
	"time"
)

const (
	DayLayout   = "2006-01-02"
	ClockLayout = "15:04"
)

var ErrInvalidDay = errors.New("model: invalid day")

func ParseDay(s string) (time.Time, error) {
	d, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDay, s)
	}
	return d, nil
}

func ParseClock(s string) (time.Time, error) {
	c, err := time.Parse(ClockLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("model: invalid time of day: %q", s)
	}
	return c, nil
}

// FormatDay renders the calendar day of t in t's own location.
func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}

func Today(now time.Time) string {
	return FormatDay(now)
}

func Yesterday(now time.Time) string {
	return FormatDay(now.AddDate(0, 0, -1))
}

// DayRange lists every day from start to end inclusive.
func DayRange(start, end string) ([]string, error) {
	s, err := ParseDay(start)
	if err != nil {
		return nil, err
	}
	e, err := ParseDay(end)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0)
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		out = append(out, FormatDay(d))
	}
	return out, nil
}

// NextAt returns the next wall-clock occurrence of hour:00 in now's location.
// When now is at or past today's occurrence the result is tomorrow's.
func NextAt(now time.Time, hour int) time.Time {
	y, mo, d := now.Date()
	next := time.Date(y, mo, d, hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(y, mo, d+1, hour, 0, 0, 0, now.Location())
	}
	return next
}
