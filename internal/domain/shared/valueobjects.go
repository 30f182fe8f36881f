// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"fmt"
	"regexp"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// UUID validation regex (simple version).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// CityID identifies a city (one training location per city).
type CityID string

// IsValid checks if the city ID is non-empty.
func (c CityID) IsValid() bool {
	return strings.TrimSpace(string(c)) != ""
}

// String returns the string representation.
func (c CityID) String() string {
	return string(c)
}

// NewCityID creates a new CityID with validation.
func NewCityID(id string) (CityID, error) {
	c := CityID(strings.TrimSpace(id))
	if !c.IsValid() {
		return "", NewDomainError("shared", "NewCityID", ErrInvalidID, "city ID cannot be empty")
	}
	return c, nil
}

// StudentID represents a unique student identifier (UUID format).
type StudentID string

// IsValid checks if the student ID is a valid UUID.
func (s StudentID) IsValid() bool {
	return uuidRegex.MatchString(string(s))
}

// String returns the string representation.
func (s StudentID) String() string {
	return string(s)
}

// IsEmpty checks if the ID is empty.
func (s StudentID) IsEmpty() bool {
	return s == ""
}

// NewStudentID creates a new StudentID with validation.
func NewStudentID(id string) (StudentID, error) {
	sid := StudentID(strings.ToLower(strings.TrimSpace(id)))
	if !sid.IsValid() {
		return "", NewDomainError("shared", "NewStudentID", ErrInvalidID, "invalid student ID format")
	}
	return sid, nil
}

// ClassID represents a unique schedule entry identifier (UUID format).
// Fixed classes, flexible classes and cancellations all use it.
type ClassID string

// IsValid checks if the class ID is a valid UUID.
func (c ClassID) IsValid() bool {
	return uuidRegex.MatchString(string(c))
}

// String returns the string representation.
func (c ClassID) String() string {
	return string(c)
}

// IsEmpty checks if the ID is empty.
func (c ClassID) IsEmpty() bool {
	return c == ""
}

// NewClassID creates a new ClassID with validation.
func NewClassID(id string) (ClassID, error) {
	cid := ClassID(strings.ToLower(strings.TrimSpace(id)))
	if !cid.IsValid() {
		return "", NewDomainError("shared", "NewClassID", ErrInvalidID, "invalid class ID format")
	}
	return cid, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Weekday Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Weekday represents a day of the week, 0 = Sunday .. 6 = Saturday.
// This matches time.Weekday and the ordering the school's calendar uses.
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// IsValid checks if the weekday is within range.
func (w Weekday) IsValid() bool {
	return w >= Sunday && w <= Saturday
}

// Int returns the underlying int value.
func (w Weekday) Int() int {
	return int(w)
}

// String returns the English weekday name.
func (w Weekday) String() string {
	names := [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	if !w.IsValid() {
		return "Unknown"
	}
	return names[w]
}

// NamePT returns the Portuguese weekday name used in notifications.
func (w Weekday) NamePT() string {
	names := [...]string{"Domingo", "Segunda-feira", "Terça-feira", "Quarta-feira", "Quinta-feira", "Sexta-feira", "Sábado"}
	if !w.IsValid() {
		return ""
	}
	return names[w]
}

// NewWeekday creates a new Weekday with validation.
func NewWeekday(day int) (Weekday, error) {
	w := Weekday(day)
	if !w.IsValid() {
		return 0, NewDomainError("shared", "NewWeekday", ErrValueOutOfRange, "weekday must be 0-6")
	}
	return w, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// ISODate Value Object
// ═══════════════════════════════════════════════════════════════════════════

// ISODate represents a calendar date in "YYYY-MM-DD" form.
type ISODate string

var isoDateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// IsValid checks the date format.
func (d ISODate) IsValid() bool {
	return isoDateRegex.MatchString(string(d))
}

// String returns the string representation.
func (d ISODate) String() string {
	return string(d)
}

// NewISODate creates a new ISODate with validation.
func NewISODate(value string) (ISODate, error) {
	d := ISODate(strings.TrimSpace(value))
	if !d.IsValid() {
		return "", NewDomainError("shared", "NewISODate", ErrInvalidFormat, "date must be YYYY-MM-DD")
	}
	return d, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// ClockTime Value Object
// ═══════════════════════════════════════════════════════════════════════════

// ClockTime represents a time of day in minutes since midnight.
type ClockTime int

// IsValid checks if the clock time is within one day.
func (c ClockTime) IsValid() bool {
	return c >= 0 && c < 24*60
}

// Int returns the underlying int value.
func (c ClockTime) Int() int {
	return int(c)
}

// String formats the time as "HH:MM".
func (c ClockTime) String() string {
	m := ((int(c) % (24 * 60)) + 24*60) % (24 * 60)
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// Compact formats the time as colon-stripped "HHMM" for session keys.
func (c ClockTime) Compact() string {
	return strings.ReplaceAll(c.String(), ":", "")
}

// NewClockTime creates a new ClockTime with validation.
func NewClockTime(minutes int) (ClockTime, error) {
	c := ClockTime(minutes)
	if !c.IsValid() {
		return 0, NewDomainError("shared", "NewClockTime", ErrValueOutOfRange, "clock time out of range")
	}
	return c, nil
}

// ParseClockTime parses "HH:MM" into a ClockTime.
func ParseClockTime(hhmm string) (ClockTime, error) {
	var h, m int
	if _, err := fmt.Sscanf(strings.TrimSpace(hhmm), "%d:%d", &h, &m); err != nil {
		return 0, NewDomainError("shared", "ParseClockTime", ErrInvalidFormat, "clock time must be HH:MM")
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, NewDomainError("shared", "ParseClockTime", ErrValueOutOfRange, "clock time out of range")
	}
	return ClockTime(h*60 + m), nil
}

// ═══════════════════════════════════════════════════════════════════════════
// SessionKey Value Object
// ═══════════════════════════════════════════════════════════════════════════

// SessionKey identifies one attendance-taking event within a city:
// the class date plus its colon-stripped start time.
type SessionKey string

var sessionKeyRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-\d{4}$`)

// IsValid checks the session key format.
func (k SessionKey) IsValid() bool {
	return sessionKeyRegex.MatchString(string(k))
}

// String returns the string representation.
func (k SessionKey) String() string {
	return string(k)
}

// NewSessionKey builds a session key from a date and start time.
func NewSessionKey(date ISODate, start ClockTime) SessionKey {
	return SessionKey(fmt.Sprintf("%s-%s", date, start.Compact()))
}
