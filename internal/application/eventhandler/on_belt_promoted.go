package eventhandler

import (
	"context"
	"log/slog"

	"github.com/dojo-hub/dojo-community-hub/internal/domain/notification"
	"github.com/dojo-hub/dojo-community-hub/internal/domain/progression"
	"github.com/dojo-hub/dojo-community-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON BELT PROMOTED HANDLER
// Congratulates a student on a genuine promotion. Only strictly higher
// belts produce this event, so no rank comparison happens here.
// ═══════════════════════════════════════════════════════════════════════════

// OnBeltPromotedHandler sends the graduation message.
type OnBeltPromotedHandler struct {
	studentRepo progression.StudentRepository
	dispatcher  notification.Dispatcher
	logger      *slog.Logger
}

// NewOnBeltPromotedHandler creates a new OnBeltPromotedHandler.
func NewOnBeltPromotedHandler(
	studentRepo progression.StudentRepository,
	dispatcher notification.Dispatcher,
	logger *slog.Logger,
) *OnBeltPromotedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnBeltPromotedHandler{
		studentRepo: studentRepo,
		dispatcher:  dispatcher,
		logger:      logger.With("handler", "on_belt_promoted"),
	}
}

// Handle implements shared.EventHandler.
func (h *OnBeltPromotedHandler) Handle(event shared.Event) error {
	promoted, ok := event.(shared.BeltPromotedEvent)
	if !ok {
		h.logger.Warn("received non-BeltPromotedEvent", "event_type", event.EventType())
		return nil
	}

	ctx := context.Background()
	studentID := shared.StudentID(promoted.StudentID)

	student, err := h.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		h.logger.Error("student lookup failed", "student_id", promoted.StudentID, "error", err)
		return nil
	}

	msg := notification.BeltPromoted(student.CityID, studentID, promoted.NewBelt)
	if err := h.dispatcher.NotifyStudent(ctx, msg); err != nil {
		h.logger.Error("promotion notification failed",
			"student_id", promoted.StudentID,
			"new_belt", promoted.NewBelt,
			"error", err,
		)
	}
	return nil
}
