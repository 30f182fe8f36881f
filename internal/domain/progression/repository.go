package progression

import (
	"context"

	"github.com/dojo-hub/dojo-community-hub/internal/domain/shared"
)

// StudentRepository persists students and their attendance counters.
type StudentRepository interface {
	// GetByID returns a student or shared.ErrStudentNotFound (wrapped).
	GetByID(ctx context.Context, id shared.StudentID) (*Student, error)

	// Create stores a new student.
	Create(ctx context.Context, student *Student) error

	// Update persists belt and profile changes.
	Update(ctx context.Context, student *Student) error

	// IncrementAttendance atomically adds delta (which may be negative,
	// for presence corrections) to the counter and returns the new
	// total. The counter never goes below zero.
	IncrementAttendance(ctx context.Context, id shared.StudentID, delta int) (int, error)

	// ListByCity returns all students registered in a city.
	ListByCity(ctx context.Context, cityID shared.CityID) ([]Student, error)
}

// ProgressStore applies an attendance delta and the milestone marks it
// causes as one atomic unit, so a crash can never move the counter
// without recording the crossing.
type ProgressStore interface {
	// ApplyAttendanceDelta atomically adds delta to the counter (never
	// below zero), calls evaluate with the new total to learn which
	// milestones the student now qualifies for, and records those marks
	// in the same transaction. It returns the new total and the marks
	// this call created; already-recorded marks are skipped. A nil
	// evaluate moves the counter only.
	ApplyAttendanceDelta(ctx context.Context, id shared.StudentID, delta int, evaluate func(newTotal int) []MilestoneID) (int, []MilestoneID, error)
}

// MarkRepository is the permanent achievement ledger. A mark records
// that a student crossed a milestone; once written it is never removed,
// even if the underlying counter later drops below the threshold.
type MarkRepository interface {
	// ListMarks returns the ids already recorded for a student.
	ListMarks(ctx context.Context, id shared.StudentID) ([]MilestoneID, error)

	// RecordMark inserts a mark if absent. It reports true when this
	// call created the mark, false when it already existed, so
	// concurrent unlocks celebrate exactly once.
	RecordMark(ctx context.Context, id shared.StudentID, milestone MilestoneID) (bool, error)
}
