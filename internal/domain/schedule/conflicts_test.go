package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dojo-hub/dojo-community-hub/internal/domain/shared"
)

func fixedAt(id string, weekday shared.Weekday, start shared.ClockTime, duration int) FixedClass {
	return FixedClass{
		ID:        shared.ClassID(id),
		CityID:    "springfield",
		Weekday:   weekday,
		StartTime: start,
		Duration:  duration,
		ClassType: "Treino",
	}
}

func flexAt(id string, date shared.ISODate, start shared.ClockTime, duration int) FlexibleClass {
	return FlexibleClass{
		ID:        shared.ClassID(id),
		CityID:    "springfield",
		Date:      date,
		StartTime: start,
		Duration:  duration,
		ClassType: "Exame",
	}
}

func TestFixedConflict(t *testing.T) {
	existing := []FixedClass{
		fixedAt("a0000000-0000-0000-0000-000000000001", shared.Monday, 18*60, 60),
		fixedAt("a0000000-0000-0000-0000-000000000002", shared.Wednesday, 18*60, 60),
	}

	// 18:30 Monday for 30min overlaps the 18:00-19:00 Monday class.
	hit := FixedConflict(existing, fixedAt("", shared.Monday, 18*60+30, 30), "")
	assert.NotNil(t, hit)
	assert.Equal(t, shared.ClassID("a0000000-0000-0000-0000-000000000001"), hit.ID)

	// Same time on another weekday does not conflict.
	assert.Nil(t, FixedConflict(existing, fixedAt("", shared.Tuesday, 18*60+30, 30), ""))

	// Back-to-back classes touch but do not overlap.
	assert.Nil(t, FixedConflict(existing, fixedAt("", shared.Monday, 19*60, 60), ""))

	// Editing a class must not conflict with itself.
	edited := fixedAt("a0000000-0000-0000-0000-000000000001", shared.Monday, 18*60+15, 60)
	assert.Nil(t, FixedConflict(existing, edited, edited.ID))
}

func TestFixedConflictSurvivingRecordsNeverOverlap(t *testing.T) {
	// Simulate a sequence of adds, accepting only conflict-free ones,
	// then verify the surviving set is pairwise non-overlapping.
	candidates := []FixedClass{
		fixedAt("a0000000-0000-0000-0000-000000000001", shared.Monday, 18*60, 60),
		fixedAt("a0000000-0000-0000-0000-000000000002", shared.Monday, 18*60+30, 30), // rejected
		fixedAt("a0000000-0000-0000-0000-000000000003", shared.Monday, 19*60, 45),
		fixedAt("a0000000-0000-0000-0000-000000000004", shared.Monday, 19*60+30, 60), // rejected
		fixedAt("a0000000-0000-0000-0000-000000000005", shared.Monday, 20*60, 60),
	}

	var accepted []FixedClass
	for _, c := range candidates {
		if FixedConflict(accepted, c, "") == nil {
			accepted = append(accepted, c)
		}
	}

	assert.Len(t, accepted, 3)
	for i := range accepted {
		for j := range accepted {
			if i == j {
				continue
			}
			assert.False(t,
				overlaps(accepted[i].StartTime.Int(), accepted[i].Duration,
					accepted[j].StartTime.Int(), accepted[j].Duration),
				"surviving classes %d and %d overlap", i, j)
		}
	}
}

func TestFlexibleConflict(t *testing.T) {
	// 2025-03-10 is a Monday.
	date := shared.ISODate("2025-03-10")
	fixed := []FixedClass{
		fixedAt("a0000000-0000-0000-0000-000000000001", shared.Monday, 18*60, 60),
	}
	flexibles := []FlexibleClass{
		flexAt("b0000000-0000-0000-0000-000000000001", date, 20*60, 45),
	}

	// Overlapping another flexible class on the same date.
	flexHit, fixedHit := FlexibleConflict(flexibles, fixed, flexAt("", date, 20*60+15, 30), shared.Monday)
	assert.NotNil(t, flexHit)
	assert.Nil(t, fixedHit)

	// Overlapping the fixed Monday slot, even though the flexible class
	// would shadow it: still rejected.
	flexHit, fixedHit = FlexibleConflict(flexibles, fixed, flexAt("", date, 18*60+30, 30), shared.Monday)
	assert.Nil(t, flexHit)
	assert.NotNil(t, fixedHit)

	// A free evening slot is accepted.
	flexHit, fixedHit = FlexibleConflict(flexibles, fixed, flexAt("", date, 21*60, 60), shared.Monday)
	assert.Nil(t, flexHit)
	assert.Nil(t, fixedHit)

	// Same clock slot on a different date sees no flexible conflict.
	flexHit, fixedHit = FlexibleConflict(flexibles, fixed, flexAt("", "2025-03-11", 20*60, 45), shared.Tuesday)
	assert.Nil(t, flexHit)
	assert.Nil(t, fixedHit)
}

func TestFlexibleConflictExactStartOverride(t *testing.T) {
	// 2025-03-10 is a Monday.
	date := shared.ISODate("2025-03-10")
	fixed := []FixedClass{
		fixedAt("a0000000-0000-0000-0000-000000000001", shared.Monday, 18*60, 60),
		fixedAt("a0000000-0000-0000-0000-000000000002", shared.Monday, 19*60, 60),
	}

	// Exact start time overrides the 18:00 slot; a longer class is fine
	// as long as it stays clear of the 19:00 one... which it doesn't.
	flexHit, fixedHit := FlexibleConflict(nil, fixed, flexAt("", date, 18*60, 120), shared.Monday)
	assert.Nil(t, flexHit)
	assert.NotNil(t, fixedHit)
	assert.Equal(t, shared.ClassID("a0000000-0000-0000-0000-000000000002"), fixedHit.ID)

	// Listing order must not change the verdict.
	reversed := []FixedClass{fixed[1], fixed[0]}
	flexHit, fixedHit = FlexibleConflict(nil, reversed, flexAt("", date, 18*60, 120), shared.Monday)
	assert.Nil(t, flexHit)
	assert.NotNil(t, fixedHit)
	assert.Equal(t, shared.ClassID("a0000000-0000-0000-0000-000000000002"), fixedHit.ID)

	// An override that fits inside its slot is accepted.
	flexHit, fixedHit = FlexibleConflict(nil, fixed, flexAt("", date, 18*60, 60), shared.Monday)
	assert.Nil(t, flexHit)
	assert.Nil(t, fixedHit)
}

func TestHasClassOn(t *testing.T) {
	date := shared.ISODate("2025-03-10") // Monday
	fixed := []FixedClass{
		fixedAt("a0000000-0000-0000-0000-000000000001", shared.Monday, 18*60, 60),
	}
	flexibles := []FlexibleClass{
		flexAt("b0000000-0000-0000-0000-000000000001", "2025-03-12", 19*60, 60),
	}

	assert.True(t, HasClassOn(fixed, flexibles, date, shared.Monday))
	assert.True(t, HasClassOn(fixed, flexibles, "2025-03-12", shared.Wednesday))
	assert.False(t, HasClassOn(fixed, flexibles, "2025-03-11", shared.Tuesday))
}
