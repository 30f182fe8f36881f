// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dojo-hub/dojo-community-hub/internal/domain/schedule"
	"github.com/dojo-hub/dojo-community-hub/internal/domain/shared"
	"github.com/dojo-hub/dojo-community-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULE MUTATION COMMANDS
// All writes to a city's calendar go through this handler. Mutations for
// the same city are serialized with a per-city lock so the conflict
// checks (load, validate, write) stay race free without relying on
// database-level constraints for interval overlap.
// ══════════════════════════════════════════════════════════════════════════════

// IDGenerator produces unique identifiers for new entities.
type IDGenerator interface {
	NewID() string
}

// AddFixedClassCommand schedules a new weekly recurring class.
type AddFixedClassCommand struct {
	CityID    string
	Weekday   int
	StartTime string // "HH:MM"
	Duration  int    // minutes
	ClassType string
}

// Validate validates the command.
func (c AddFixedClassCommand) Validate() error {
	if c.CityID == "" {
		return shared.NewDomainError("command", "AddFixedClass", shared.ErrInvalidID, "city_id is required")
	}
	if c.Duration <= 0 {
		return shared.NewDomainError("command", "AddFixedClass", shared.ErrValueOutOfRange, "duration must be positive")
	}
	if c.ClassType == "" {
		return shared.NewDomainError("command", "AddFixedClass", shared.ErrEmptyValue, "class_type is required")
	}
	return nil
}

// UpdateFixedClassCommand reschedules an existing weekly class.
type UpdateFixedClassCommand struct {
	ClassID   string
	Weekday   int
	StartTime string
	Duration  int
	ClassType string
}

// RemoveFixedClassCommand removes a weekly class from the pattern.
type RemoveFixedClassCommand struct {
	ClassID string
}

// AddFlexibleClassCommand schedules a one-off class on a single date.
type AddFlexibleClassCommand struct {
	CityID    string
	Date      string // "YYYY-MM-DD"
	StartTime string
	Duration  int
	ClassType string
}

// RemoveFlexibleClassCommand removes a one-off class.
type RemoveFlexibleClassCommand struct {
	ClassID string
}

// CancelDayCommand cancels every class on one city+date.
type CancelDayCommand struct {
	CityID string
	Date   string
	Reason string
}

// RestoreDayCommand lifts a previously recorded cancellation.
type RestoreDayCommand struct {
	CityID string
	Date   string
}

// MutationResult reports the outcome of a schedule write.
type MutationResult struct {
	ClassID string
	Events  []shared.Event
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// ScheduleMutator handles every calendar write command.
type ScheduleMutator struct {
	repo      schedule.Repository
	cache     schedule.Cache
	idgen     IDGenerator
	publisher shared.EventPublisher

	mu        sync.Mutex
	cityLocks map[shared.CityID]*sync.Mutex
}

// NewScheduleMutator creates a new ScheduleMutator.
func NewScheduleMutator(repo schedule.Repository, cache schedule.Cache, idgen IDGenerator, publisher shared.EventPublisher) *ScheduleMutator {
	return &ScheduleMutator{
		repo:      repo,
		cache:     cache,
		idgen:     idgen,
		publisher: publisher,
		cityLocks: make(map[shared.CityID]*sync.Mutex),
	}
}

// lockCity returns the mutex serializing writes for one city.
func (m *ScheduleMutator) lockCity(cityID shared.CityID) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.cityLocks[cityID]
	if !ok {
		lock = &sync.Mutex{}
		m.cityLocks[cityID] = lock
	}
	return lock
}

// afterWrite invalidates the city's occurrence cache and publishes the
// mutation events. Cache and publish failures are not business failures;
// the write already happened, so they surface through the event bus
// metrics rather than the caller's error.
func (m *ScheduleMutator) afterWrite(ctx context.Context, cityID shared.CityID, events []shared.Event) {
	if m.cache != nil {
		_ = m.cache.Invalidate(ctx, cityID)
	}
	for _, event := range events {
		_ = m.publisher.Publish(event)
	}
}

// AddFixedClass adds a weekly class after checking the weekday for
// interval overlap with the existing fixed pattern.
func (m *ScheduleMutator) AddFixedClass(ctx context.Context, cmd AddFixedClassCommand) (*MutationResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	cityID, err := shared.NewCityID(cmd.CityID)
	if err != nil {
		return nil, err
	}
	weekday, err := shared.NewWeekday(cmd.Weekday)
	if err != nil {
		return nil, err
	}
	start, err := shared.ParseClockTime(cmd.StartTime)
	if err != nil {
		return nil, err
	}

	lock := m.lockCity(cityID)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now().UTC()
	class := schedule.FixedClass{
		ID:        shared.ClassID(m.idgen.NewID()),
		CityID:    cityID,
		Weekday:   weekday,
		StartTime: start,
		Duration:  cmd.Duration,
		ClassType: cmd.ClassType,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := class.Validate(); err != nil {
		return nil, err
	}

	existing, err := m.repo.ListFixed(ctx, cityID)
	if err != nil {
		return nil, fmt.Errorf("add_fixed_class: load schedule: %w", err)
	}
	if hit := schedule.FixedConflict(existing, class, ""); hit != nil {
		return nil, shared.WrapError("schedule", "AddFixedClass", shared.ErrConflict,
			fmt.Sprintf("overlaps class %s at %s", hit.ID, hit.StartTime), shared.ErrScheduleConflict)
	}

	if err := m.repo.CreateFixed(ctx, &class); err != nil {
		return nil, fmt.Errorf("add_fixed_class: persist: %w", err)
	}

	event := shared.NewClassChangedEvent(shared.EventClassAdded, cityID.String(), class.ID.String(),
		class.ClassType, true, weekday.Int(), "", start.String(), class.Duration)
	m.afterWrite(ctx, cityID, []shared.Event{event})

	return &MutationResult{ClassID: class.ID.String(), Events: []shared.Event{event}}, nil
}

// UpdateFixedClass reschedules a weekly class. The class being edited is
// excluded from its own conflict check.
func (m *ScheduleMutator) UpdateFixedClass(ctx context.Context, cmd UpdateFixedClassCommand) (*MutationResult, error) {
	classID, err := shared.NewClassID(cmd.ClassID)
	if err != nil {
		return nil, err
	}
	weekday, err := shared.NewWeekday(cmd.Weekday)
	if err != nil {
		return nil, err
	}
	start, err := shared.ParseClockTime(cmd.StartTime)
	if err != nil {
		return nil, err
	}

	current, err := m.repo.GetFixed(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("update_fixed_class: %w", err)
	}

	lock := m.lockCity(current.CityID)
	lock.Lock()
	defer lock.Unlock()

	updated := *current
	updated.Weekday = weekday
	updated.StartTime = start
	updated.Duration = cmd.Duration
	if cmd.ClassType != "" {
		updated.ClassType = cmd.ClassType
	}
	updated.UpdatedAt = time.Now().UTC()
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	existing, err := m.repo.ListFixed(ctx, current.CityID)
	if err != nil {
		return nil, fmt.Errorf("update_fixed_class: load schedule: %w", err)
	}
	if hit := schedule.FixedConflict(existing, updated, classID); hit != nil {
		return nil, shared.WrapError("schedule", "UpdateFixedClass", shared.ErrConflict,
			fmt.Sprintf("overlaps class %s at %s", hit.ID, hit.StartTime), shared.ErrScheduleConflict)
	}

	if err := m.repo.UpdateFixed(ctx, &updated); err != nil {
		return nil, fmt.Errorf("update_fixed_class: persist: %w", err)
	}

	event := shared.NewClassChangedEvent(shared.EventClassUpdated, current.CityID.String(), classID.String(),
		updated.ClassType, true, weekday.Int(), "", start.String(), updated.Duration)
	m.afterWrite(ctx, current.CityID, []shared.Event{event})

	return &MutationResult{ClassID: classID.String(), Events: []shared.Event{event}}, nil
}

// RemoveFixedClass deletes a weekly class from the pattern.
func (m *ScheduleMutator) RemoveFixedClass(ctx context.Context, cmd RemoveFixedClassCommand) (*MutationResult, error) {
	classID, err := shared.NewClassID(cmd.ClassID)
	if err != nil {
		return nil, err
	}
	current, err := m.repo.GetFixed(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("remove_fixed_class: %w", err)
	}

	lock := m.lockCity(current.CityID)
	lock.Lock()
	defer lock.Unlock()

	if err := m.repo.DeleteFixed(ctx, classID); err != nil {
		return nil, fmt.Errorf("remove_fixed_class: persist: %w", err)
	}

	event := shared.NewClassChangedEvent(shared.EventClassRemoved, current.CityID.String(), classID.String(),
		current.ClassType, true, current.Weekday.Int(), "", current.StartTime.String(), current.Duration)
	m.afterWrite(ctx, current.CityID, []shared.Event{event})

	return &MutationResult{ClassID: classID.String(), Events: []shared.Event{event}}, nil
}

// AddFlexibleClass schedules a one-off class. Past dates are rejected;
// the class may share a start time with a fixed class (it then overrides
// it at resolution), but may not partially overlap anything.
func (m *ScheduleMutator) AddFlexibleClass(ctx context.Context, cmd AddFlexibleClassCommand) (*MutationResult, error) {
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
	past, err := timeutil.IsBeforeToday(date.String(), timeutil.Now())
	if err != nil {
		return nil, err
	}
	if past {
		return nil, shared.ErrDateInPast
	}
	weekdayInt, err := timeutil.WeekdayOf(date.String())
	if err != nil {
		return nil, err
	}
	weekday := shared.Weekday(weekdayInt)

	lock := m.lockCity(cityID)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now().UTC()
	class := schedule.FlexibleClass{
		ID:        shared.ClassID(m.idgen.NewID()),
		CityID:    cityID,
		Date:      date,
		StartTime: start,
		Duration:  cmd.Duration,
		ClassType: cmd.ClassType,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := class.Validate(); err != nil {
		return nil, err
	}

	fixed, err := m.repo.ListFixed(ctx, cityID)
	if err != nil {
		return nil, fmt.Errorf("add_flexible_class: load schedule: %w", err)
	}
	flexibles, err := m.repo.ListFlexible(ctx, cityID)
	if err != nil {
		return nil, fmt.Errorf("add_flexible_class: load schedule: %w", err)
	}
	// The conflict check already exempts the same-start fixed class the
	// candidate would override; any hit is a genuine double-booking.
	flexHit, fixedHit := schedule.FlexibleConflict(flexibles, fixed, class, weekday)
	if flexHit != nil {
		return nil, shared.WrapError("schedule", "AddFlexibleClass", shared.ErrConflict,
			fmt.Sprintf("overlaps flexible class %s at %s", flexHit.ID, flexHit.StartTime), shared.ErrScheduleConflict)
	}
	if fixedHit != nil {
		return nil, shared.WrapError("schedule", "AddFlexibleClass", shared.ErrConflict,
			fmt.Sprintf("overlaps fixed class %s at %s", fixedHit.ID, fixedHit.StartTime), shared.ErrScheduleConflict)
	}

	if err := m.repo.CreateFlexible(ctx, &class); err != nil {
		return nil, fmt.Errorf("add_flexible_class: persist: %w", err)
	}

	event := shared.NewClassChangedEvent(shared.EventClassAdded, cityID.String(), class.ID.String(),
		class.ClassType, false, weekday.Int(), date.String(), start.String(), class.Duration)
	m.afterWrite(ctx, cityID, []shared.Event{event})

	return &MutationResult{ClassID: class.ID.String(), Events: []shared.Event{event}}, nil
}

// RemoveFlexibleClass deletes a one-off class.
func (m *ScheduleMutator) RemoveFlexibleClass(ctx context.Context, cmd RemoveFlexibleClassCommand) (*MutationResult, error) {
	classID, err := shared.NewClassID(cmd.ClassID)
	if err != nil {
		return nil, err
	}
	current, err := m.repo.GetFlexible(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("remove_flexible_class: %w", err)
	}

	lock := m.lockCity(current.CityID)
	lock.Lock()
	defer lock.Unlock()

	if err := m.repo.DeleteFlexible(ctx, classID); err != nil {
		return nil, fmt.Errorf("remove_flexible_class: persist: %w", err)
	}

	weekdayInt, _ := timeutil.WeekdayOf(current.Date.String())
	event := shared.NewClassChangedEvent(shared.EventClassRemoved, current.CityID.String(), classID.String(),
		current.ClassType, false, weekdayInt, current.Date.String(), current.StartTime.String(), current.Duration)
	m.afterWrite(ctx, current.CityID, []shared.Event{event})

	return &MutationResult{ClassID: classID.String(), Events: []shared.Event{event}}, nil
}

// CancelDay cancels every class on a city+date. Past dates, days with
// no scheduled class, and days already cancelled are rejected.
func (m *ScheduleMutator) CancelDay(ctx context.Context, cmd CancelDayCommand) (*MutationResult, error) {
	cityID, err := shared.NewCityID(cmd.CityID)
	if err != nil {
		return nil, err
	}
	date, err := shared.NewISODate(cmd.Date)
	if err != nil {
		return nil, err
	}
	past, err := timeutil.IsBeforeToday(date.String(), timeutil.Now())
	if err != nil {
		return nil, err
	}
	if past {
		return nil, shared.ErrDateInPast
	}
	weekdayInt, err := timeutil.WeekdayOf(date.String())
	if err != nil {
		return nil, err
	}
	weekday := shared.Weekday(weekdayInt)

	lock := m.lockCity(cityID)
	lock.Lock()
	defer lock.Unlock()

	cancellations, err := m.repo.ListCancellations(ctx, cityID)
	if err != nil {
		return nil, fmt.Errorf("cancel_day: load cancellations: %w", err)
	}
	for i := range cancellations {
		if cancellations[i].Date == date {
			return nil, shared.ErrCancellationExists
		}
	}

	fixed, err := m.repo.ListFixed(ctx, cityID)
	if err != nil {
		return nil, fmt.Errorf("cancel_day: load schedule: %w", err)
	}
	flexibles, err := m.repo.ListFlexible(ctx, cityID)
	if err != nil {
		return nil, fmt.Errorf("cancel_day: load schedule: %w", err)
	}
	if !schedule.HasClassOn(fixed, flexibles, date, weekday) {
		return nil, shared.ErrNothingToCancel
	}

	cancellation := schedule.Cancellation{
		ID:        shared.ClassID(m.idgen.NewID()),
		CityID:    cityID,
		Date:      date,
		Reason:    cmd.Reason,
		CreatedAt: time.Now().UTC(),
	}
	if err := cancellation.Validate(); err != nil {
		return nil, err
	}
	if err := m.repo.CreateCancellation(ctx, &cancellation); err != nil {
		return nil, fmt.Errorf("cancel_day: persist: %w", err)
	}

	event := shared.NewDayCancelledEvent(cityID.String(), date.String(), cmd.Reason)
	m.afterWrite(ctx, cityID, []shared.Event{event})

	return &MutationResult{ClassID: cancellation.ID.String(), Events: []shared.Event{event}}, nil
}

// RestoreDay lifts the cancellation for a city+date.
func (m *ScheduleMutator) RestoreDay(ctx context.Context, cmd RestoreDayCommand) (*MutationResult, error) {
	cityID, err := shared.NewCityID(cmd.CityID)
	if err != nil {
		return nil, err
	}
	date, err := shared.NewISODate(cmd.Date)
	if err != nil {
		return nil, err
	}

	lock := m.lockCity(cityID)
	lock.Lock()
	defer lock.Unlock()

	cancellations, err := m.repo.ListCancellations(ctx, cityID)
	if err != nil {
		return nil, fmt.Errorf("restore_day: load cancellations: %w", err)
	}
	var found *schedule.Cancellation
	for i := range cancellations {
		if cancellations[i].Date == date {
			found = &cancellations[i]
			break
		}
	}
	if found == nil {
		return nil, shared.ErrCancellationNotFound
	}

	if err := m.repo.DeleteCancellation(ctx, found.ID); err != nil {
		return nil, fmt.Errorf("restore_day: persist: %w", err)
	}

	event := shared.NewDayRestoredEvent(cityID.String(), date.String())
	m.afterWrite(ctx, cityID, []shared.Event{event})

	return &MutationResult{ClassID: found.ID.String(), Events: []shared.Event{event}}, nil
}
