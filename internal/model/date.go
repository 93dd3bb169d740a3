package model

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the wire and display format for calendar dates.
const DateLayout = "2006-01-02"

// ErrInvalidDate is matched by every InvalidDateError via errors.Is.
var ErrInvalidDate = errors.New("invalid date")

// InvalidDateError reports a malformed or out-of-calendar date.
type InvalidDateError struct {
	Input  string
	Reason string
}

func (e *InvalidDateError) Error() string {
	if e.Input == "" {
		return fmt.Sprintf("invalid date: %s", e.Reason)
	}
	return fmt.Sprintf("invalid date %q: %s", e.Input, e.Reason)
}

func (e *InvalidDateError) Is(target error) bool { return target == ErrInvalidDate }

// Date is a calendar day with no time-of-day component.
// The underlying time is always 00:00 UTC. The zero Date is unset, which is
// distinct from 0001-01-01.
type Date struct {
	t     time.Time
	valid bool
}

const secondsPerDay = 24 * 60 * 60

// NewDate builds a Date and rejects values time.Date would normalise (e.g. Feb 30).
func NewDate(year int, month time.Month, day int) (Date, error) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return Date{}, &InvalidDateError{
			Input:  fmt.Sprintf("%04d-%02d-%02d", year, int(month), day),
			Reason: "not a calendar day",
		}
	}
	return Date{t: t, valid: true}, nil
}

// MustDate is NewDate for literals known to be valid.
func MustDate(year int, month time.Month, day int) Date {
	d, err := NewDate(year, month, day)
	if err != nil {
		panic(err)
	}
	return d
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, &InvalidDateError{Input: s, Reason: "expected YYYY-MM-DD"}
	}
	return Date{t: t, valid: true}, nil
}

// DateOf drops the time-of-day of t, keeping its calendar day in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), valid: true}
}

// IsZero reports whether d was never set.
func (d Date) IsZero() bool { return !d.valid }

// Validate returns an InvalidDateError for the zero Date.
func (d Date) Validate() error {
	if d.IsZero() {
		return &InvalidDateError{Reason: "date is not set"}
	}
	return nil
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time { return d.t }

// AddDays moves d by n calendar days (n may be negative).
func (d Date) AddDays(n int) Date {
	if !d.valid {
		return d
	}
	return Date{t: d.t.AddDate(0, 0, n), valid: true}
}

// DaysSince returns the signed number of days from other to d.
// time.Duration overflows past ~292 years, so this counts Unix seconds instead.
func (d Date) DaysSince(other Date) int {
	return int((d.t.Unix() - other.t.Unix()) / secondsPerDay)
}

func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool  { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool  { return d.t.Equal(other.t) }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DateRange is an inclusive window of calendar days.
type DateRange struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// Days returns the number of days in the window, counting both endpoints.
func (r DateRange) Days() int { return r.End.DaysSince(r.Start) + 1 }

// Contains reports whether d falls inside the window.
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}
