package command

import (
	"context"
	"fmt"
	"time"

	"github.com/dojo-hub/dojo-community-hub/internal/domain/attendance"
	"github.com/dojo-hub/dojo-community-hub/internal/domain/progression"
	"github.com/dojo-hub/dojo-community-hub/internal/domain/schedule"
	"github.com/dojo-hub/dojo-community-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MARK ATTENDANCE COMMAND
// Records or re-records a roll call for one class session. Re-marking is
// idempotent: counters move by the presence diff, not the map size, so
// submitting the same roll call twice changes nothing.
// ══════════════════════════════════════════════════════════════════════════════

// MarkAttendanceCommand carries a full presence map for one session.
// The map replaces any previous roll call for that session; students
// missing from the map count as absent. An empty map is a valid
// correction meaning nobody attended.
type MarkAttendanceCommand struct {
	CityID    string
	Date      string // "YYYY-MM-DD"
	StartTime string // "HH:MM"
	Present   map[string]bool
}

// Validate validates the command.
func (c MarkAttendanceCommand) Validate() error {
	if c.CityID == "" {
		return shared.NewDomainError("command", "MarkAttendance", shared.ErrInvalidID, "city_id is required")
	}
	return nil
}

// MarkAttendanceResult reports what the roll call changed.
type MarkAttendanceResult struct {
	SessionKey   string
	Marked       []string
	Unmarked     []string
	Achievements map[string][]string // student id -> newly unlocked milestone ids
	Events       []shared.Event
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// AttendanceMarker handles roll calls: it persists the presence map,
// moves each affected student's counter by the diff, and records any
// milestone crossings in the permanent achievement ledger. Counter and
// ledger move through one ProgressStore call so they commit together.
type AttendanceMarker struct {
	scheduleRepo schedule.Repository
	resolver     *schedule.Resolver
	recordRepo   attendance.Repository
	studentRepo  progression.StudentRepository
	progress     progression.ProgressStore
	engine       *progression.Engine
	publisher    shared.EventPublisher
}

// NewAttendanceMarker creates a new AttendanceMarker.
func NewAttendanceMarker(
	scheduleRepo schedule.Repository,
	resolver *schedule.Resolver,
	recordRepo attendance.Repository,
	studentRepo progression.StudentRepository,
	progress progression.ProgressStore,
	engine *progression.Engine,
	publisher shared.EventPublisher,
) *AttendanceMarker {
	return &AttendanceMarker{
		scheduleRepo: scheduleRepo,
		resolver:     resolver,
		recordRepo:   recordRepo,
		studentRepo:  studentRepo,
		progress:     progress,
		engine:       engine,
		publisher:    publisher,
	}
}

// Handle executes the roll call.
func (h *AttendanceMarker) Handle(ctx context.Context, cmd MarkAttendanceCommand) (*MarkAttendanceResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	cityID, err := shared.NewCityID(cmd.CityID)
	if err != nil {
		return nil, err
	}
	date, err := shared.NewISODate(cmd.Date)
	if err != nil {
		return nil, err
	}
	start, err := shared.ParseClockTime(cmd.StartTime)
	if err != nil {
		return nil, err
	}

	if err := h.sessionExists(ctx, cityID, date, start); err != nil {
		return nil, err
	}

	present := make(map[shared.StudentID]bool, len(cmd.Present))
	for raw, p := range cmd.Present {
		sid, err := shared.NewStudentID(raw)
		if err != nil {
			return nil, err
		}
		present[sid] = p
	}

	key := shared.NewSessionKey(date, start)
	var previous map[shared.StudentID]bool
	existing, err := h.recordRepo.Get(ctx, cityID, key)
	switch {
	case err == nil:
		previous = existing.Present
	case shared.IsNotFound(err):
		// First roll call for this session.
	default:
		return nil, fmt.Errorf("mark_attendance: load record: %w", err)
	}

	diff := attendance.DiffPresence(previous, present)

	record := &attendance.Record{
		CityID:    cityID,
		Date:      date,
		StartTime: start,
		Present:   present,
		UpdatedAt: time.Now().UTC(),
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}
	if err := h.recordRepo.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("mark_attendance: persist record: %w", err)
	}

	result := &MarkAttendanceResult{
		SessionKey:   key.String(),
		Achievements: make(map[string][]string),
	}
	for _, id := range diff.Marked {
		result.Marked = append(result.Marked, id.String())
	}
	for _, id := range diff.Unmarked {
		result.Unmarked = append(result.Unmarked, id.String())
	}

	markedEvent := shared.NewAttendanceMarkedEvent(cityID.String(), key.String(), result.Marked, result.Unmarked)
	result.Events = append(result.Events, markedEvent)

	// Counters and achievements. Each student's counter moves atomically
	// in storage; the milestone ledger then decides which crossings are
	// genuinely new.
	for _, id := range diff.Marked {
		if err := h.applyDelta(ctx, id, +1, result); err != nil {
			return nil, err
		}
	}
	for _, id := range diff.Unmarked {
		if err := h.applyDelta(ctx, id, -1, result); err != nil {
			return nil, err
		}
	}

	for _, event := range result.Events {
		_ = h.publisher.Publish(event)
	}
	return result, nil
}

// sessionExists verifies the date+start matches a resolved occurrence.
// Roll calls for slots that do not exist (or fall on a cancelled day)
// are rejected.
func (h *AttendanceMarker) sessionExists(ctx context.Context, cityID shared.CityID, date shared.ISODate, start shared.ClockTime) error {
	fixed, err := h.scheduleRepo.ListFixed(ctx, cityID)
	if err != nil {
		return fmt.Errorf("mark_attendance: load schedule: %w", err)
	}
	flexibles, err := h.scheduleRepo.ListFlexible(ctx, cityID)
	if err != nil {
		return fmt.Errorf("mark_attendance: load schedule: %w", err)
	}
	cancellations, err := h.scheduleRepo.ListCancellations(ctx, cityID)
	if err != nil {
		return fmt.Errorf("mark_attendance: load cancellations: %w", err)
	}
	occurrences, err := h.resolver.ResolveDay(fixed, flexibles, cancellations, date)
	if err != nil {
		return err
	}
	for _, occ := range occurrences {
		if occ.StartTime == start {
			return nil
		}
	}
	return shared.ErrSessionNotFound
}

// applyDelta moves one student's counter and records milestone
// crossings in a single atomic store call.
func (h *AttendanceMarker) applyDelta(ctx context.Context, id shared.StudentID, delta int, result *MarkAttendanceResult) error {
	student, err := h.studentRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("mark_attendance: student %s: %w", id, err)
	}

	// Decrements never unlock and never re-lock; only increments
	// consult the milestone rules.
	var evaluate func(newTotal int) []progression.MilestoneID
	if delta > 0 {
		beltIndex, err := h.engine.Belts().IndexOf(student.CurrentBelt)
		if err != nil {
			return fmt.Errorf("mark_attendance: belt for %s: %w", id, err)
		}
		evaluate = func(newTotal int) []progression.MilestoneID {
			return h.engine.Evaluate(beltIndex, newTotal)
		}
	}

	newTotal, created, err := h.progress.ApplyAttendanceDelta(ctx, id, delta, evaluate)
	if err != nil {
		return fmt.Errorf("mark_attendance: progress for %s: %w", id, err)
	}
	result.Events = append(result.Events, shared.NewCounterChangedEvent(id.String(), delta, newTotal))

	for _, milestone := range created {
		result.Achievements[id.String()] = append(result.Achievements[id.String()], string(milestone))
		result.Events = append(result.Events, shared.NewAchievementUnlockedEvent(id.String(), string(milestone)))
	}
	return nil
}
