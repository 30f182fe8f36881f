package command

import (
	"context"
	"fmt"
	"time"

	"github.com/dojo-hub/dojo-community-hub/internal/domain/progression"
	"github.com/dojo-hub/dojo-community-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SET BELT COMMAND
// Any belt change goes through here, but only a strictly higher rank is
// a promotion. Corrections to the same or a lower belt are persisted
// silently: no event, no celebration, no new marks from belt rules
// alone being re-evaluated downward.
// ══════════════════════════════════════════════════════════════════════════════

// SetBeltCommand changes a student's belt.
type SetBeltCommand struct {
	StudentID string
	NewBelt   string
}

// Validate validates the command.
func (c SetBeltCommand) Validate() error {
	if c.StudentID == "" {
		return shared.NewDomainError("command", "SetBelt", shared.ErrInvalidID, "student_id is required")
	}
	if c.NewBelt == "" {
		return shared.NewDomainError("command", "SetBelt", shared.ErrEmptyValue, "belt is required")
	}
	return nil
}

// SetBeltResult reports the outcome of a belt change.
type SetBeltResult struct {
	StudentID    string
	OldBelt      string
	NewBelt      string
	Promoted     bool
	Achievements []string // newly recorded milestone ids
	Events       []shared.Event
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// BeltPromoter handles belt changes and the milestone crossings they cause.
type BeltPromoter struct {
	studentRepo progression.StudentRepository
	markRepo    progression.MarkRepository
	engine      *progression.Engine
	publisher   shared.EventPublisher
}

// NewBeltPromoter creates a new BeltPromoter.
func NewBeltPromoter(
	studentRepo progression.StudentRepository,
	markRepo progression.MarkRepository,
	engine *progression.Engine,
	publisher shared.EventPublisher,
) *BeltPromoter {
	return &BeltPromoter{
		studentRepo: studentRepo,
		markRepo:    markRepo,
		engine:      engine,
		publisher:   publisher,
	}
}

// Handle executes the belt change.
func (h *BeltPromoter) Handle(ctx context.Context, cmd SetBeltCommand) (*SetBeltResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	studentID, err := shared.NewStudentID(cmd.StudentID)
	if err != nil {
		return nil, err
	}
	newIndex, err := h.engine.Belts().IndexOf(cmd.NewBelt)
	if err != nil {
		return nil, err
	}
	newBelt, err := h.engine.Belts().Name(newIndex)
	if err != nil {
		return nil, err
	}

	student, err := h.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("set_belt: %w", err)
	}
	oldIndex, err := h.engine.Belts().IndexOf(student.CurrentBelt)
	if err != nil {
		return nil, fmt.Errorf("set_belt: current belt: %w", err)
	}

	result := &SetBeltResult{
		StudentID: studentID.String(),
		OldBelt:   student.CurrentBelt,
		NewBelt:   newBelt,
		Promoted:  progression.IsPromotion(oldIndex, newIndex),
	}
	if newIndex == oldIndex {
		return result, nil
	}

	oldBelt := student.CurrentBelt
	student.CurrentBelt = newBelt
	student.UpdatedAt = time.Now().UTC()
	if err := h.studentRepo.Update(ctx, student); err != nil {
		return nil, fmt.Errorf("set_belt: persist: %w", err)
	}

	if !result.Promoted {
		// Downward correction: stored, no event. Marks stay unlocked.
		return result, nil
	}

	result.Events = append(result.Events,
		shared.NewBeltPromotedEvent(studentID.String(), oldBelt, newBelt, oldIndex, newIndex))

	for _, milestone := range h.engine.Evaluate(newIndex, student.ClassesAttended) {
		created, err := h.markRepo.RecordMark(ctx, studentID, milestone)
		if err != nil {
			return nil, fmt.Errorf("set_belt: ledger: %w", err)
		}
		if created {
			result.Achievements = append(result.Achievements, string(milestone))
			result.Events = append(result.Events,
				shared.NewAchievementUnlockedEvent(studentID.String(), string(milestone)))
		}
	}

	for _, event := range result.Events {
		_ = h.publisher.Publish(event)
	}
	return result, nil
}
