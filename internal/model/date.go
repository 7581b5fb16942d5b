package model

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// ISODate is a calendar date in YYYY-MM-DD form. Appointments carry
// dates without a timezone, so they are compared as calendar dates;
// lexicographic order on the string form matches chronological order.
type ISODate string

// NewISODate truncates t to its calendar date.
func NewISODate(t time.Time) ISODate {
	return ISODate(t.Format(dateLayout))
}

// ParseISODate validates s as a YYYY-MM-DD date.
func ParseISODate(s string) (ISODate, error) {
	if _, err := time.Parse(dateLayout, s); err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return ISODate(s), nil
}

func (d ISODate) String() string { return string(d) }

func (d ISODate) IsZero() bool { return d == "" }

// Time interprets the date at midnight UTC.
func (d ISODate) Time() time.Time {
	t, _ := time.Parse(dateLayout, string(d))
	return t
}

// Before and OnOrAfter compare calendar dates only.
func (d ISODate) Before(other ISODate) bool    { return d < other }
func (d ISODate) OnOrAfter(other ISODate) bool { return d >= other }

// AddDays returns the date n days later (or earlier for negative n).
func (d ISODate) AddDays(n int) ISODate {
	return NewISODate(d.Time().AddDate(0, 0, n))
}

// HourMinute is a time of day in HH:MM form.
type HourMinute string

// ParseHourMinute validates s as an HH:MM time of day.
func ParseHourMinute(s string) (HourMinute, error) {
	if _, err := time.Parse(timeLayout, s); err != nil {
		return "", fmt.Errorf("invalid time %q: %w", s, err)
	}
	return HourMinute(s), nil
}

// HourOnTheHour builds the HH:00 label for an hour in [0,23].
func HourOnTheHour(hour int) HourMinute {
	return HourMinute(fmt.Sprintf("%02d:00", hour))
}

func (h HourMinute) String() string { return string(h) }

// Hour returns the HH component.
func (h HourMinute) Hour() string {
	if i := strings.IndexByte(string(h), ':'); i > 0 {
		return string(h)[:i]
	}
	return string(h)
}
