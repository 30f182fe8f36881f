package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dojo-hub/dojo-community-hub/internal/domain/shared"
)

func newMutator(repo *memScheduleRepo) (*ScheduleMutator, *capturedEvents) {
	events := &capturedEvents{}
	return NewScheduleMutator(repo, nil, &fakeIDGen{}, events), events
}

func TestAddFixedClassRejectsOverlap(t *testing.T) {
	repo := newMemScheduleRepo()
	mutator, _ := newMutator(repo)
	ctx := context.Background()

	_, err := mutator.AddFixedClass(ctx, AddFixedClassCommand{
		CityID: "springfield", Weekday: 1, StartTime: "19:00", Duration: 60, ClassType: "adults",
	})
	require.NoError(t, err)

	// Partial overlap on the same weekday.
	_, err = mutator.AddFixedClass(ctx, AddFixedClassCommand{
		CityID: "springfield", Weekday: 1, StartTime: "19:30", Duration: 60, ClassType: "kids",
	})
	assert.True(t, shared.IsConflict(err))

	// Same slot on another weekday is fine.
	_, err = mutator.AddFixedClass(ctx, AddFixedClassCommand{
		CityID: "springfield", Weekday: 3, StartTime: "19:30", Duration: 60, ClassType: "kids",
	})
	assert.NoError(t, err)

	// Touching endpoints do not conflict.
	_, err = mutator.AddFixedClass(ctx, AddFixedClassCommand{
		CityID: "springfield", Weekday: 1, StartTime: "20:00", Duration: 45, ClassType: "kids",
	})
	assert.NoError(t, err)
}

func TestUpdateFixedClassExcludesItself(t *testing.T) {
	repo := newMemScheduleRepo()
	mutator, events := newMutator(repo)
	ctx := context.Background()

	created, err := mutator.AddFixedClass(ctx, AddFixedClassCommand{
		CityID: "springfield", Weekday: 2, StartTime: "18:00", Duration: 90, ClassType: "adults",
	})
	require.NoError(t, err)

	// Shifting the class within its own old slot must not self-conflict.
	_, err = mutator.UpdateFixedClass(ctx, UpdateFixedClassCommand{
		ClassID: created.ClassID, Weekday: 2, StartTime: "18:30", Duration: 90,
	})
	require.NoError(t, err)
	assert.Len(t, events.byType(shared.EventClassUpdated), 1)
}

func TestAddFlexibleClassOverridePathAndPastDate(t *testing.T) {
	repo := newMemScheduleRepo()
	mutator, _ := newMutator(repo)
	ctx := context.Background()

	// 2099-03-02 is a Monday far in the future.
	_, err := mutator.AddFixedClass(ctx, AddFixedClassCommand{
		CityID: "springfield", Weekday: 1, StartTime: "19:00", Duration: 60, ClassType: "adults",
	})
	require.NoError(t, err)

	// Identical start time overrides the fixed slot - allowed.
	_, err = mutator.AddFlexibleClass(ctx, AddFlexibleClassCommand{
		CityID: "springfield", Date: "2099-03-02", StartTime: "19:00", Duration: 90, ClassType: "seminar",
	})
	assert.NoError(t, err)

	// Partial overlap with the fixed slot is still a conflict.
	_, err = mutator.AddFlexibleClass(ctx, AddFlexibleClassCommand{
		CityID: "springfield", Date: "2099-03-09", StartTime: "19:30", Duration: 60, ClassType: "seminar",
	})
	assert.True(t, shared.IsConflict(err))

	_, err = mutator.AddFlexibleClass(ctx, AddFlexibleClassCommand{
		CityID: "springfield", Date: "2000-01-01", StartTime: "10:00", Duration: 60, ClassType: "seminar",
	})
	assert.True(t, shared.IsPastDate(err))
}

func TestAddFlexibleClassOverrideMayNotSpill(t *testing.T) {
	repo := newMemScheduleRepo()
	mutator, _ := newMutator(repo)
	ctx := context.Background()

	// Back-to-back Monday slots: 18:00-19:00 and 19:00-20:00.
	_, err := mutator.AddFixedClass(ctx, AddFixedClassCommand{
		CityID: "springfield", Weekday: 1, StartTime: "18:00", Duration: 60, ClassType: "kids",
	})
	require.NoError(t, err)
	_, err = mutator.AddFixedClass(ctx, AddFixedClassCommand{
		CityID: "springfield", Weekday: 1, StartTime: "19:00", Duration: 60, ClassType: "adults",
	})
	require.NoError(t, err)

	// A 120-minute override of the 18:00 slot would run into the 19:00
	// class; sharing the 18:00 start does not excuse that.
	_, err = mutator.AddFlexibleClass(ctx, AddFlexibleClassCommand{
		CityID: "springfield", Date: "2099-03-02", StartTime: "18:00", Duration: 120, ClassType: "seminar",
	})
	assert.True(t, shared.IsConflict(err))

	// The same override trimmed to its slot is accepted.
	_, err = mutator.AddFlexibleClass(ctx, AddFlexibleClassCommand{
		CityID: "springfield", Date: "2099-03-02", StartTime: "18:00", Duration: 60, ClassType: "seminar",
	})
	assert.NoError(t, err)
}

func TestCancelDayValidation(t *testing.T) {
	repo := newMemScheduleRepo()
	mutator, events := newMutator(repo)
	ctx := context.Background()

	// Nothing scheduled on Sundays.
	_, err := mutator.CancelDay(ctx, CancelDayCommand{
		CityID: "springfield", Date: "2099-03-01", Reason: "feriado",
	})
	assert.True(t, shared.IsEmptyDay(err))

	_, err = mutator.AddFixedClass(ctx, AddFixedClassCommand{
		CityID: "springfield", Weekday: 1, StartTime: "19:00", Duration: 60, ClassType: "adults",
	})
	require.NoError(t, err)

	// 2099-03-02 is a Monday.
	_, err = mutator.CancelDay(ctx, CancelDayCommand{
		CityID: "springfield", Date: "2099-03-02", Reason: "feriado",
	})
	require.NoError(t, err)
	assert.Len(t, events.byType(shared.EventDayCancelled), 1)

	// Double cancellation is rejected.
	_, err = mutator.CancelDay(ctx, CancelDayCommand{
		CityID: "springfield", Date: "2099-03-02",
	})
	assert.True(t, shared.IsConflict(err))

	// A day that already happened cannot be cancelled. 2020-01-06 was a
	// Monday, so only the date check can reject it.
	_, err = mutator.CancelDay(ctx, CancelDayCommand{
		CityID: "springfield", Date: "2020-01-06", Reason: "feriado",
	})
	assert.True(t, shared.IsPastDate(err))
}

func TestRestoreDay(t *testing.T) {
	repo := newMemScheduleRepo()
	mutator, events := newMutator(repo)
	ctx := context.Background()

	_, err := mutator.RestoreDay(ctx, RestoreDayCommand{CityID: "springfield", Date: "2099-03-02"})
	assert.True(t, shared.IsNotFound(err))

	_, err = mutator.AddFixedClass(ctx, AddFixedClassCommand{
		CityID: "springfield", Weekday: 1, StartTime: "19:00", Duration: 60, ClassType: "adults",
	})
	require.NoError(t, err)
	_, err = mutator.CancelDay(ctx, CancelDayCommand{CityID: "springfield", Date: "2099-03-02"})
	require.NoError(t, err)

	_, err = mutator.RestoreDay(ctx, RestoreDayCommand{CityID: "springfield", Date: "2099-03-02"})
	require.NoError(t, err)
	assert.Len(t, events.byType(shared.EventDayRestored), 1)

	remaining, err := repo.ListCancellations(ctx, "springfield")
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
