package domain

import (
	"fmt"
	"strings"
	"time"
)

// dateLayout is the canonical wire/storage form for calendar dates.
const dateLayout = "2006-01-02"

// Date is a calendar date with no time-of-day component. The zero value is
// not a valid date; use NewDate, ParseDate, or DateOf to construct one.
type Date struct {
	t time.Time
}

// NewDate constructs a date from calendar components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar date.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	parsed, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(parsed), nil
}

// IsZero reports whether the date is the zero value.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// AddDays returns the date n days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// DaysUntil returns other - d in whole days.
func (d Date) DaysUntil(other Date) int {
	return int(other.t.Sub(d.t) / (24 * time.Hour))
}

// Before reports whether d falls strictly before other.
func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

// After reports whether d falls strictly after other.
func (d Date) After(other Date) bool {
	return d.t.After(other.t)
}

// Equal reports calendar-date equality.
func (d Date) Equal(other Date) bool {
	return d.t.Equal(other.t)
}

// Weekday returns the day of week.
func (d Date) Weekday() time.Weekday {
	return d.t.Weekday()
}

// IsWeekend reports whether the date falls on Saturday or Sunday.
func (d Date) IsWeekend() bool {
	wd := d.t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Year returns the calendar year.
func (d Date) Year() int {
	return d.t.Year()
}

// Month returns the calendar month.
func (d Date) Month() time.Month {
	return d.t.Month()
}

// Day returns the day of month.
func (d Date) Day() int {
	return d.t.Day()
}

// YearDay returns the day of year, 1..366.
func (d Date) YearDay() int {
	return d.t.YearDay()
}

// String renders the canonical YYYY-MM-DD form.
func (d Date) String() string {
	return d.t.Format(dateLayout)
}

// MarshalJSON encodes the date as a YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes a YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MaxDate returns the later of two dates.
func MaxDate(a, b Date) Date {
	if b.After(a) {
		return b
	}
	return a
}

// MinDate returns the earlier of two dates.
func MinDate(a, b Date) Date {
	if b.Before(a) {
		return b
	}
	return a
}

// RangeUnion returns the min and max of the given dates. An empty input
// collapses to (fallback, fallback) so chart bounds stay deterministic.
func RangeUnion(dates []Date, fallback Date) (Date, Date) {
	if len(dates) == 0 {
		return fallback, fallback
	}
	min, max := dates[0], dates[0]
	for _, d := range dates[1:] {
		min = MinDate(min, d)
		max = MaxDate(max, d)
	}
	return min, max
}
