// Package isotime parses and formats the ISO-8601 date, time-of-day,
// date-time and duration values exchanged by chisel.
//
// Parsing accepts both the extended (2024-01-31, 20:20:10) and basic
// (20240131, 202010) notations, optional fractional seconds and an optional
// zone designator. Formatting always produces the extended notation and is
// the left inverse of parsing: Parse(Format(v)) == v.
package isotime

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidFormat is matched by every *FormatError via errors.Is.
var ErrInvalidFormat = errors.New("isotime: invalid format")

// FormatError reports a string that does not match the expected layout.
type FormatError struct {
	Layout string // "date", "time", "datetime" or "duration"
	Value  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("isotime: %q is not a valid ISO-8601 %s", e.Value, e.Layout)
}

func (e *FormatError) Is(target error) bool { return target == ErrInvalidFormat }

// Date is a calendar date without a time or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// In returns midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// IsValid reports whether d names an existing calendar day.
func (d Date) IsValid() bool {
	if d.Month < time.January || d.Month > time.December || d.Day < 1 {
		return false
	}
	return DateOf(d.In(time.UTC)) == d
}

func (d Date) String() string { return FormatDate(d) }

// Time is a time of day with an optional zone. A nil Zone means the value
// carries no offset information.
type Time struct {
	Hour       int
	Minute     int
	Second     int
	Nanosecond int
	Zone       *time.Location
}

// TimeOf returns the time of day of t, keeping t's location.
func TimeOf(t time.Time) Time {
	return Time{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(), Nanosecond: t.Nanosecond(), Zone: t.Location()}
}

// Microsecond returns the sub-second part truncated to microseconds.
func (t Time) Microsecond() int { return t.Nanosecond / 1000 }

// Offset returns the zone offset in seconds east of UTC. ok is false when
// the value has no zone.
func (t Time) Offset() (seconds int, ok bool) {
	if t.Zone == nil {
		return 0, false
	}
	_, off := time.Date(2000, time.January, 1, t.Hour, t.Minute, t.Second, 0, t.Zone).Zone()
	return off, true
}

// Equal reports whether t and u denote the same clock reading with the same
// offset. Zones are compared by offset, not by name.
func (t Time) Equal(u Time) bool {
	if t.Hour != u.Hour || t.Minute != u.Minute || t.Second != u.Second || t.Nanosecond != u.Nanosecond {
		return false
	}
	to, tok := t.Offset()
	uo, uok := u.Offset()
	return tok == uok && to == uo
}

func (t Time) String() string { return FormatTime(t) }
