// Package schedule contains the domain model for a city's class calendar:
// the weekly recurring pattern, one-off flexible classes, whole-day
// cancellations, and the occurrences derived from all three. This is the
// core of the scheduling engine - there are no external dependencies here.
package schedule

import (
	"time"

	"github.com/dojo-hub/dojo-community-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// FixedClass is a class that recurs every week on the same weekday.
// Fixed classes are the base layer of a city's calendar.
type FixedClass struct {
	ID        shared.ClassID
	CityID    shared.CityID
	Weekday   shared.Weekday
	StartTime shared.ClockTime
	Duration  int // minutes
	ClassType string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks entity invariants.
func (f *FixedClass) Validate() error {
	if !f.CityID.IsValid() {
		return shared.NewDomainError("schedule", "Validate", shared.ErrInvalidID, "fixed class requires a city")
	}
	if !f.Weekday.IsValid() {
		return shared.NewDomainError("schedule", "Validate", shared.ErrValueOutOfRange, "weekday must be 0-6")
	}
	if !f.StartTime.IsValid() {
		return shared.NewDomainError("schedule", "Validate", shared.ErrValueOutOfRange, "start time out of range")
	}
	if f.Duration <= 0 {
		return shared.NewDomainError("schedule", "Validate", shared.ErrValueOutOfRange, "duration must be positive")
	}
	if f.ClassType == "" {
		return shared.NewDomainError("schedule", "Validate", shared.ErrEmptyValue, "class type cannot be empty")
	}
	return nil
}

// FlexibleClass is a single-date class, either supplementing the weekly
// pattern or overriding the fixed slot at the same start time.
type FlexibleClass struct {
	ID        shared.ClassID
	CityID    shared.CityID
	Date      shared.ISODate
	StartTime shared.ClockTime
	Duration  int // minutes
	ClassType string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks entity invariants.
func (f *FlexibleClass) Validate() error {
	if !f.CityID.IsValid() {
		return shared.NewDomainError("schedule", "Validate", shared.ErrInvalidID, "flexible class requires a city")
	}
	if !f.Date.IsValid() {
		return shared.NewDomainError("schedule", "Validate", shared.ErrInvalidFormat, "date must be YYYY-MM-DD")
	}
	if !f.StartTime.IsValid() {
		return shared.NewDomainError("schedule", "Validate", shared.ErrValueOutOfRange, "start time out of range")
	}
	if f.Duration <= 0 {
		return shared.NewDomainError("schedule", "Validate", shared.ErrValueOutOfRange, "duration must be positive")
	}
	if f.ClassType == "" {
		return shared.NewDomainError("schedule", "Validate", shared.ErrEmptyValue, "class type cannot be empty")
	}
	return nil
}

// Cancellation suppresses all classes, fixed and flexible, on one
// city+date. At most one cancellation exists per city+date.
type Cancellation struct {
	ID        shared.ClassID
	CityID    shared.CityID
	Date      shared.ISODate
	Reason    string
	CreatedAt time.Time
}

// Validate checks entity invariants.
func (c *Cancellation) Validate() error {
	if !c.CityID.IsValid() {
		return shared.NewDomainError("schedule", "Validate", shared.ErrInvalidID, "cancellation requires a city")
	}
	if !c.Date.IsValid() {
		return shared.NewDomainError("schedule", "Validate", shared.ErrInvalidFormat, "date must be YYYY-MM-DD")
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DERIVED OCCURRENCES
// ══════════════════════════════════════════════════════════════════════════════

// SourceKind tells which collection an occurrence was derived from.
type SourceKind string

const (
	// SourceFixed marks an occurrence produced by the weekly pattern.
	SourceFixed SourceKind = "fixed"
	// SourceFlexible marks an occurrence produced by a one-off class.
	SourceFlexible SourceKind = "flexible"
)

// Occurrence is a concrete class instance on a specific date. It is
// derived by the resolver and never persisted.
type Occurrence struct {
	Date      shared.ISODate
	StartTime shared.ClockTime
	Duration  int // minutes
	ClassType string
	Source    SourceKind
}

// EndTime returns the end of the occurrence in minutes since midnight.
// May exceed 24h*60 for classes crossing midnight; display formatting
// wraps it, stored data does not.
func (o Occurrence) EndTime() int {
	return o.StartTime.Int() + o.Duration
}
