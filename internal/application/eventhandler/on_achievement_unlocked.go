package eventhandler

import (
	"context"
	"log/slog"

	"github.com/dojo-hub/dojo-community-hub/internal/domain/notification"
	"github.com/dojo-hub/dojo-community-hub/internal/domain/progression"
	"github.com/dojo-hub/dojo-community-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON ACHIEVEMENT UNLOCKED HANDLER
// Sends the celebratory direct message for each genuinely new milestone.
// The command layer already guarantees at-most-once per mark via the
// ledger, so this handler never needs its own dedupe state.
// ═══════════════════════════════════════════════════════════════════════════

// OnAchievementUnlockedHandler congratulates students on new milestones.
type OnAchievementUnlockedHandler struct {
	studentRepo progression.StudentRepository
	engine      *progression.Engine
	dispatcher  notification.Dispatcher
	logger      *slog.Logger
}

// NewOnAchievementUnlockedHandler creates a new OnAchievementUnlockedHandler.
func NewOnAchievementUnlockedHandler(
	studentRepo progression.StudentRepository,
	engine *progression.Engine,
	dispatcher notification.Dispatcher,
	logger *slog.Logger,
) *OnAchievementUnlockedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnAchievementUnlockedHandler{
		studentRepo: studentRepo,
		engine:      engine,
		dispatcher:  dispatcher,
		logger:      logger.With("handler", "on_achievement_unlocked"),
	}
}

// Handle implements shared.EventHandler.
func (h *OnAchievementUnlockedHandler) Handle(event shared.Event) error {
	unlocked, ok := event.(shared.AchievementUnlockedEvent)
	if !ok {
		h.logger.Warn("received non-AchievementUnlockedEvent", "event_type", event.EventType())
		return nil
	}

	ctx := context.Background()
	studentID := shared.StudentID(unlocked.StudentID)

	student, err := h.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		h.logger.Error("student lookup failed", "student_id", unlocked.StudentID, "error", err)
		return nil
	}

	title := unlocked.AchievementID
	if milestone, ok := h.engine.Milestone(progression.MilestoneID(unlocked.AchievementID)); ok {
		title = milestone.Title
	}

	msg := notification.AchievementUnlocked(student.CityID, studentID, title)
	if err := h.dispatcher.NotifyStudent(ctx, msg); err != nil {
		h.logger.Error("achievement notification failed",
			"student_id", unlocked.StudentID,
			"achievement_id", unlocked.AchievementID,
			"error", err,
		)
	}
	return nil
}
