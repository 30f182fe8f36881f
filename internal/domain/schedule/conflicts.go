package schedule

import (
	"github.com/dojo-hub/dojo-community-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFLICT VALIDATION
// Pure functions over in-memory slices. Callers load the relevant rows
// for the city and run the checks before any write; a rejected mutation
// therefore never touches storage.
// ══════════════════════════════════════════════════════════════════════════════

// overlaps reports whether two half-open [start, start+duration) minute
// intervals intersect. Touching endpoints do not conflict.
func overlaps(startA, durA, startB, durB int) bool {
	return startA < startB+durB && startB < startA+durA
}

// FixedConflict finds the first existing fixed class on the same weekday
// whose interval overlaps the candidate. excludeID skips the record
// being edited; pass an empty ClassID on creation.
func FixedConflict(existing []FixedClass, candidate FixedClass, excludeID shared.ClassID) *FixedClass {
	for i := range existing {
		other := &existing[i]
		if other.ID == excludeID && !excludeID.IsEmpty() {
			continue
		}
		if other.Weekday != candidate.Weekday {
			continue
		}
		if overlaps(candidate.StartTime.Int(), candidate.Duration, other.StartTime.Int(), other.Duration) {
			return other
		}
	}
	return nil
}

// FlexibleConflict finds the first conflict for a candidate flexible
// class: another flexible class on the same date, or a fixed class on
// that date's weekday. A fixed class sharing the candidate's exact
// start time is the override target, not a conflict, and is skipped;
// every other fixed class on the weekday is still checked, so an
// override may not spill into a neighbouring slot.
func FlexibleConflict(flexibles []FlexibleClass, fixed []FixedClass, candidate FlexibleClass, weekday shared.Weekday) (flexHit *FlexibleClass, fixedHit *FixedClass) {
	for i := range flexibles {
		other := &flexibles[i]
		if other.ID == candidate.ID && !candidate.ID.IsEmpty() {
			continue
		}
		if other.Date != candidate.Date {
			continue
		}
		if overlaps(candidate.StartTime.Int(), candidate.Duration, other.StartTime.Int(), other.Duration) {
			return other, nil
		}
	}
	for i := range fixed {
		other := &fixed[i]
		if other.Weekday != weekday {
			continue
		}
		if other.StartTime == candidate.StartTime {
			continue
		}
		if overlaps(candidate.StartTime.Int(), candidate.Duration, other.StartTime.Int(), other.Duration) {
			return nil, other
		}
	}
	return nil, nil
}

// HasClassOn reports whether any class, fixed by weekday or flexible by
// date, is scheduled on the given date. Cancelling a day with nothing
// scheduled is not a valid action.
func HasClassOn(fixed []FixedClass, flexibles []FlexibleClass, date shared.ISODate, weekday shared.Weekday) bool {
	for i := range fixed {
		if fixed[i].Weekday == weekday {
			return true
		}
	}
	for i := range flexibles {
		if flexibles[i].Date == date {
			return true
		}
	}
	return false
}
