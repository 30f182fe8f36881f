package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dojo-hub/dojo-community-hub/internal/domain/progression"
	"github.com/dojo-hub/dojo-community-hub/internal/domain/schedule"
	"github.com/dojo-hub/dojo-community-hub/internal/domain/shared"
)

const (
	anaID   = "11111111-1111-1111-1111-111111111111"
	brunoID = "22222222-2222-2222-2222-222222222222"
)

type markerFixture struct {
	marker   *AttendanceMarker
	students *memStudentRepo
	marks    *memMarkRepo
	events   *capturedEvents
}

func newMarkerFixture(t *testing.T) *markerFixture {
	t.Helper()

	scheduleRepo := newMemScheduleRepo()
	// Monday 19:00-20:00 weekly class in springfield.
	err := scheduleRepo.CreateFixed(context.Background(), &schedule.FixedClass{
		ID: "class-1", CityID: "springfield", Weekday: 1,
		StartTime: 19 * 60, Duration: 60, ClassType: "adults",
	})
	require.NoError(t, err)

	students := newMemStudentRepo()
	for _, id := range []string{anaID, brunoID} {
		require.NoError(t, students.Create(context.Background(), &progression.Student{
			ID: shared.StudentID(id), CityID: "springfield",
			FullName: "Aluno " + id[:4], CurrentBelt: "Branca",
		}))
	}

	marks := newMemMarkRepo()
	events := &capturedEvents{}
	marker := NewAttendanceMarker(
		scheduleRepo, schedule.NewResolver(),
		newMemAttendanceRepo(), students, &memProgress{students: students, marks: marks},
		progression.NewDefaultEngine(), events,
	)
	return &markerFixture{marker: marker, students: students, marks: marks, events: events}
}

func TestMarkAttendanceFirstRollCall(t *testing.T) {
	f := newMarkerFixture(t)
	ctx := context.Background()

	// 2099-03-02 is a Monday.
	result, err := f.marker.Handle(ctx, MarkAttendanceCommand{
		CityID: "springfield", Date: "2099-03-02", StartTime: "19:00",
		Present: map[string]bool{anaID: true, brunoID: false},
	})
	require.NoError(t, err)

	assert.Equal(t, "2099-03-02-1900", result.SessionKey)
	assert.Equal(t, []string{anaID}, result.Marked)
	assert.Empty(t, result.Unmarked)

	student, err := f.students.GetByID(ctx, anaID)
	require.NoError(t, err)
	assert.Equal(t, 1, student.ClassesAttended)

	// First class unlocks the first milestone exactly once.
	assert.Equal(t, []string{"first-class"}, result.Achievements[anaID])
	assert.Len(t, f.events.byType(shared.EventAchievementUnlocked), 1)
}

func TestMarkAttendanceIdempotentRemark(t *testing.T) {
	f := newMarkerFixture(t)
	ctx := context.Background()

	cmd := MarkAttendanceCommand{
		CityID: "springfield", Date: "2099-03-02", StartTime: "19:00",
		Present: map[string]bool{anaID: true, brunoID: true},
	}
	_, err := f.marker.Handle(ctx, cmd)
	require.NoError(t, err)

	result, err := f.marker.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Empty(t, result.Marked)
	assert.Empty(t, result.Unmarked)
	assert.Empty(t, result.Achievements)

	student, err := f.students.GetByID(ctx, anaID)
	require.NoError(t, err)
	assert.Equal(t, 1, student.ClassesAttended)
}

func TestMarkAttendanceCorrectionDecrementsWithoutRelock(t *testing.T) {
	f := newMarkerFixture(t)
	ctx := context.Background()

	_, err := f.marker.Handle(ctx, MarkAttendanceCommand{
		CityID: "springfield", Date: "2099-03-02", StartTime: "19:00",
		Present: map[string]bool{anaID: true},
	})
	require.NoError(t, err)

	// Correction: Ana was actually absent.
	result, err := f.marker.Handle(ctx, MarkAttendanceCommand{
		CityID: "springfield", Date: "2099-03-02", StartTime: "19:00",
		Present: map[string]bool{anaID: false},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{anaID}, result.Unmarked)

	student, err := f.students.GetByID(ctx, anaID)
	require.NoError(t, err)
	assert.Equal(t, 0, student.ClassesAttended)

	// The first-class mark stays in the ledger; re-attending does not
	// celebrate again.
	marksLeft, err := f.marks.ListMarks(ctx, anaID)
	require.NoError(t, err)
	assert.Contains(t, marksLeft, progression.MilestoneID("first-class"))

	result, err = f.marker.Handle(ctx, MarkAttendanceCommand{
		CityID: "springfield", Date: "2099-03-02", StartTime: "19:00",
		Present: map[string]bool{anaID: true},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Achievements)
}

// failingProgress simulates a store whose transaction cannot commit.
type failingProgress struct{}

func (failingProgress) ApplyAttendanceDelta(
	context.Context, shared.StudentID, int, func(int) []progression.MilestoneID,
) (int, []progression.MilestoneID, error) {
	return 0, nil, shared.ErrStudentNotFound
}

func TestMarkAttendanceProgressFailureSurfaces(t *testing.T) {
	scheduleRepo := newMemScheduleRepo()
	require.NoError(t, scheduleRepo.CreateFixed(context.Background(), &schedule.FixedClass{
		ID: "class-1", CityID: "springfield", Weekday: 1,
		StartTime: 19 * 60, Duration: 60, ClassType: "adults",
	}))
	students := newMemStudentRepo()
	require.NoError(t, students.Create(context.Background(), &progression.Student{
		ID: anaID, CityID: "springfield", FullName: "Ana", CurrentBelt: "Branca",
	}))

	events := &capturedEvents{}
	marker := NewAttendanceMarker(
		scheduleRepo, schedule.NewResolver(),
		newMemAttendanceRepo(), students, failingProgress{},
		progression.NewDefaultEngine(), events,
	)

	_, err := marker.Handle(context.Background(), MarkAttendanceCommand{
		CityID: "springfield", Date: "2099-03-02", StartTime: "19:00",
		Present: map[string]bool{anaID: true},
	})
	require.Error(t, err)

	// Nothing celebrated when the counter/ledger write failed.
	assert.Empty(t, events.byType(shared.EventAchievementUnlocked))
	assert.Empty(t, events.byType(shared.EventCounterChanged))
}

func TestMarkAttendanceRejectsUnknownSession(t *testing.T) {
	f := newMarkerFixture(t)
	ctx := context.Background()

	// Wrong start time for the Monday slot.
	_, err := f.marker.Handle(ctx, MarkAttendanceCommand{
		CityID: "springfield", Date: "2099-03-02", StartTime: "08:00",
		Present: map[string]bool{anaID: true},
	})
	assert.True(t, shared.IsNotFound(err))

	// Tuesday has no class at all.
	_, err = f.marker.Handle(ctx, MarkAttendanceCommand{
		CityID: "springfield", Date: "2099-03-03", StartTime: "19:00",
		Present: map[string]bool{anaID: true},
	})
	assert.True(t, shared.IsNotFound(err))
}

func TestMarkAttendanceEmptyMapClearsRollCall(t *testing.T) {
	f := newMarkerFixture(t)
	ctx := context.Background()

	_, err := f.marker.Handle(ctx, MarkAttendanceCommand{
		CityID: "springfield", Date: "2099-03-02", StartTime: "19:00",
		Present: map[string]bool{anaID: true, brunoID: true},
	})
	require.NoError(t, err)

	// Correction: nobody attended after all.
	result, err := f.marker.Handle(ctx, MarkAttendanceCommand{
		CityID: "springfield", Date: "2099-03-02", StartTime: "19:00",
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{anaID, brunoID}, result.Unmarked)

	for _, id := range []shared.StudentID{anaID, brunoID} {
		student, err := f.students.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 0, student.ClassesAttended)
	}
}
