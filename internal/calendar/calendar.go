// Package calendar maps day offsets onto civil dates. There is no notion of
// working days or holidays: every calendar day counts.
package calendar

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// ISODate is the layout of dates on every external surface.
const ISODate = "2006-01-02"

// Date is a calendar date without time of day. The zero value is not a
// valid project start; use Parse or Today.
type Date struct {
	t time.Time // always midnight UTC
}

// NewDate returns the date for year, month and day, normalizing overflow the
// way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime drops the time-of-day of t, keeping its calendar day in t's location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// Today returns the current local calendar date.
func Today() Date {
	return FromTime(time.Now())
}

// Parse reads an ISO 8601 calendar date such as "2024-06-03".
func Parse(s string) (Date, error) {
	t, err := time.Parse(ISODate, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: expected YYYY-MM-DD", s)
	}
	return Date{t: t}, nil
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Time returns d as midnight UTC.
func (d Date) Time() time.Time {
	return d.t
}

func (d Date) String() string {
	return d.t.Format(ISODate)
}

// AddDays returns the date n calendar days after d.
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// Project returns the date reached offset days after start. Fractional
// offsets are truncated to whole days.
func Project(start Date, offset float64) Date {
	return start.AddDays(int(math.Trunc(offset)))
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
