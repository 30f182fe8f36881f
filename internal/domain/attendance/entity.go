// Package attendance contains the domain model for roll calls: one record
// per concrete class session, holding who was present. Counters and
// achievements react to the presence diffs computed here.
package attendance

import (
	"sort"
	"time"

	"github.com/dojo-hub/dojo-community-hub/internal/domain/shared"
)

// Record holds the presence map for one class session. It is created on
// the first roll call for the session and updated, never deleted, as
// presence is toggled afterwards.
type Record struct {
	CityID    shared.CityID
	Date      shared.ISODate
	StartTime shared.ClockTime
	Present   map[shared.StudentID]bool
	UpdatedAt time.Time
}

// SessionKey returns the record's session key (date + colon-stripped
// start time).
func (r *Record) SessionKey() shared.SessionKey {
	return shared.NewSessionKey(r.Date, r.StartTime)
}

// Validate checks entity invariants.
func (r *Record) Validate() error {
	if !r.CityID.IsValid() {
		return shared.NewDomainError("attendance", "Validate", shared.ErrInvalidID, "record requires a city")
	}
	if !r.Date.IsValid() {
		return shared.NewDomainError("attendance", "Validate", shared.ErrInvalidFormat, "date must be YYYY-MM-DD")
	}
	if !r.StartTime.IsValid() {
		return shared.NewDomainError("attendance", "Validate", shared.ErrValueOutOfRange, "start time out of range")
	}
	return nil
}

// PresentCount returns the number of students marked present.
func (r *Record) PresentCount() int {
	n := 0
	for _, p := range r.Present {
		if p {
			n++
		}
	}
	return n
}

// Diff compares a previous presence map with a new one and returns the
// students whose state actually changed. Marked holds absent->present
// transitions, Unmarked present->absent. A student missing from a map
// counts as absent, so re-submitting an identical map yields two empty
// slices - idempotence falls out of the diff.
type Diff struct {
	Marked   []shared.StudentID
	Unmarked []shared.StudentID
}

// IsEmpty reports whether no presence changed.
func (d Diff) IsEmpty() bool {
	return len(d.Marked) == 0 && len(d.Unmarked) == 0
}

// DiffPresence computes the transition sets between two presence maps.
// Results are sorted for deterministic event payloads.
func DiffPresence(previous, next map[shared.StudentID]bool) Diff {
	var d Diff
	for id, present := range next {
		if present && !previous[id] {
			d.Marked = append(d.Marked, id)
		}
	}
	for id, present := range previous {
		if present && !next[id] {
			d.Unmarked = append(d.Unmarked, id)
		}
	}
	sort.Slice(d.Marked, func(i, j int) bool { return d.Marked[i] < d.Marked[j] })
	sort.Slice(d.Unmarked, func(i, j int) bool { return d.Unmarked[i] < d.Unmarked[j] })
	return d
}
