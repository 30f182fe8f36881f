// Package timeutil provides calendar and clock utilities for the school's
// local timezone. All scheduling in Dojo Community Hub works on calendar
// dates (YYYY-MM-DD) and minutes-of-day rather than full timestamps, so
// this package is the single place where both representations meet.
// No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// DefaultTimezone is the school's timezone. The academy operates in a
// single city zone; deployments override this via SCHOOL_TIMEZONE.
const DefaultTimezone = "America/Sao_Paulo"

// SchoolTZ is the active school timezone. It is set once at startup by
// SetLocation and defaults to America/Sao_Paulo.
var SchoolTZ = mustLoad(DefaultTimezone)

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SetLocation sets the active school timezone.
func SetLocation(loc *time.Location) {
	if loc != nil {
		SchoolTZ = loc
	}
}

// Now returns the current time in the school timezone.
func Now() time.Time {
	return time.Now().In(SchoolTZ)
}

// ToSchool converts a time to the school timezone.
func ToSchool(t time.Time) time.Time {
	return t.In(SchoolTZ)
}

// Common date/time formats.
const (
	// FormatDate is the standard date format (YYYY-MM-DD).
	FormatDate = "2006-01-02"
	// FormatClock is the standard clock format (HH:MM).
	FormatClock = "15:04"
	// FormatDateTime is the standard datetime format.
	FormatDateTime = "2006-01-02 15:04"
)

// ══════════════════════════════════════════════════════════════════════════════
// ISO DATES
// ══════════════════════════════════════════════════════════════════════════════

// ISODate formats year/month/day as "YYYY-MM-DD".
func ISODate(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// FormatDateStr formats a time as a date string (YYYY-MM-DD) in the
// school timezone.
func FormatDateStr(t time.Time) string {
	return ToSchool(t).Format(FormatDate)
}

// FormatClockStr formats a time as a clock string (HH:MM) in the school
// timezone.
func FormatClockStr(t time.Time) string {
	return ToSchool(t).Format(FormatClock)
}

// ParseISODate parses a "YYYY-MM-DD" string as midnight in the school
// timezone.
func ParseISODate(value string) (time.Time, error) {
	return time.ParseInLocation(FormatDate, value, SchoolTZ)
}

// WeekdayOf returns the weekday (0 = Sunday .. 6 = Saturday) of an ISO
// date string.
func WeekdayOf(isoDate string) (int, error) {
	t, err := ParseISODate(isoDate)
	if err != nil {
		return 0, fmt.Errorf("timeutil: invalid date %q: %w", isoDate, err)
	}
	return int(t.Weekday()), nil
}

// AddDays returns the ISO date n days after the given ISO date.
func AddDays(isoDate string, n int) (string, error) {
	t, err := ParseISODate(isoDate)
	if err != nil {
		return "", fmt.Errorf("timeutil: invalid date %q: %w", isoDate, err)
	}
	return t.AddDate(0, 0, n).Format(FormatDate), nil
}

// DaysBetween returns the number of calendar days from one ISO date to
// another. Negative if `to` precedes `from`.
func DaysBetween(from, to string) (int, error) {
	a, err := ParseISODate(from)
	if err != nil {
		return 0, fmt.Errorf("timeutil: invalid date %q: %w", from, err)
	}
	b, err := ParseISODate(to)
	if err != nil {
		return 0, fmt.Errorf("timeutil: invalid date %q: %w", to, err)
	}
	// Compare calendar dates in UTC so a DST transition (23- or 25-hour
	// day in the school zone) cannot skew the count.
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au) / (24 * time.Hour)), nil
}

// StartOfDay returns the start of the day (00:00:00) in the school timezone.
func StartOfDay(t time.Time) time.Time {
	s := ToSchool(t)
	return time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, SchoolTZ)
}

// IsBeforeToday reports whether the ISO date falls strictly before
// today in the school timezone.
func IsBeforeToday(isoDate string, now time.Time) (bool, error) {
	d, err := ParseISODate(isoDate)
	if err != nil {
		return false, fmt.Errorf("timeutil: invalid date %q: %w", isoDate, err)
	}
	return d.Before(StartOfDay(now)), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// CLOCK ARITHMETIC
// ══════════════════════════════════════════════════════════════════════════════

// MinutesOfDay parses "HH:MM" into minutes since midnight.
func MinutesOfDay(hhmm string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(hhmm, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("timeutil: invalid clock %q: %w", hhmm, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("timeutil: clock %q out of range", hhmm)
	}
	return h*60 + m, nil
}

// ClockString formats minutes since midnight as "HH:MM". The hour wraps
// modulo 24, so values past midnight fold back into the same day.
func ClockString(minutes int) string {
	minutes = ((minutes % (24 * 60)) + 24*60) % (24 * 60)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// IntervalsOverlap reports whether the half-open intervals
// [startA, startA+durA) and [startB, startB+durB) intersect. Touching
// endpoints do not overlap.
func IntervalsOverlap(startA, durA, startB, durB int) bool {
	return startA < startB+durB && startB < startA+durA
}

// FormatRange renders "HH:MM - HH:MM" for a start time and duration in
// minutes. The end hour wraps modulo 24 without rolling the date when a
// class crosses midnight; this mirrors how the schedule has always been
// displayed to students.
func FormatRange(startMinutes, durationMinutes int) string {
	return ClockString(startMinutes) + " - " + ClockString(startMinutes+durationMinutes)
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION KEYS
// ══════════════════════════════════════════════════════════════════════════════

// SessionKey builds the attendance session key for a date and start
// time: the ISO date concatenated with the colon-stripped clock
// ("2025-03-10" + "18:00" -> "2025-03-10-1800").
func SessionKey(isoDate, startClock string) string {
	return isoDate + "-" + strings.ReplaceAll(startClock, ":", "")
}
