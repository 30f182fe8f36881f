// Package eventhandler contains the domain event handlers. They are the
// reactive part of the system: commands publish events, handlers turn
// them into side effects such as outbound notifications, keeping
// delivery off the write path.
package eventhandler

import (
	"context"
	"log/slog"

	"github.com/dojo-hub/dojo-community-hub/internal/domain/notification"
	"github.com/dojo-hub/dojo-community-hub/internal/domain/shared"
	"github.com/dojo-hub/dojo-community-hub/pkg/timeutil"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON SCHEDULE CHANGED HANDLER
// Broadcasts calendar mutations to the affected city. Delivery is best
// effort: a failed broadcast is logged and dropped, never retried, and
// never bubbles back into the command that caused it.
// ═══════════════════════════════════════════════════════════════════════════

// OnScheduleChangedHandler turns schedule events into city broadcasts.
type OnScheduleChangedHandler struct {
	dispatcher notification.Dispatcher
	logger     *slog.Logger
}

// NewOnScheduleChangedHandler creates a new OnScheduleChangedHandler.
func NewOnScheduleChangedHandler(dispatcher notification.Dispatcher, logger *slog.Logger) *OnScheduleChangedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnScheduleChangedHandler{
		dispatcher: dispatcher,
		logger:     logger.With("handler", "on_schedule_changed"),
	}
}

// Handle implements shared.EventHandler.
func (h *OnScheduleChangedHandler) Handle(event shared.Event) error {
	ctx := context.Background()

	switch e := event.(type) {
	case shared.ClassChangedEvent:
		h.broadcast(ctx, h.classMessage(e))
	case shared.DayCancelledEvent:
		cityID := shared.CityID(e.CityID)
		date := shared.ISODate(e.Date)
		if e.EventType() == shared.EventDayRestored {
			h.broadcast(ctx, notification.DayRestored(cityID, date))
		} else {
			h.broadcast(ctx, notification.DayCancelled(cityID, date, e.Reason))
		}
	default:
		h.logger.Warn("received unexpected event", "event_type", event.EventType())
	}
	return nil
}

func (h *OnScheduleChangedHandler) classMessage(e shared.ClassChangedEvent) notification.Message {
	var action string
	switch e.EventType() {
	case shared.EventClassAdded:
		action = "added"
	case shared.EventClassUpdated:
		action = "updated"
	case shared.EventClassRemoved:
		action = "removed"
	}

	start, err := timeutil.MinutesOfDay(e.StartTime)
	if err != nil {
		start = 0
	}
	when := timeutil.FormatRange(start, e.Duration)
	if e.Recurring {
		when = shared.Weekday(e.Weekday).NamePT() + ", " + when
	} else {
		when = e.Date + ", " + when
	}
	return notification.ScheduleChanged(shared.CityID(e.CityID), action, e.ClassType, when)
}

func (h *OnScheduleChangedHandler) broadcast(ctx context.Context, msg notification.Message) {
	if err := h.dispatcher.NotifyCity(ctx, msg); err != nil {
		h.logger.Error("city broadcast failed",
			"city_id", msg.CityID.String(),
			"kind", string(msg.Kind),
			"error", err,
		)
	}
}
