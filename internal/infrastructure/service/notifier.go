package service

import (
	"context"

	"github.com/dojo-hub/dojo-community-hub/internal/domain/notification"
	"github.com/dojo-hub/dojo-community-hub/pkg/logger"
)

// ConsoleNotifier implements notification.Dispatcher by writing
// deliveries to the structured log. It stands in for a real channel
// (push, e-mail, WhatsApp) until one is integrated; the rest of the
// system only sees the Dispatcher interface.
type ConsoleNotifier struct {
	log *logger.Logger
}

// NewConsoleNotifier creates a new ConsoleNotifier.
func NewConsoleNotifier(log *logger.Logger) *ConsoleNotifier {
	if log == nil {
		log = logger.Default()
	}
	return &ConsoleNotifier{log: log.With(logger.Component("notifier"))}
}

// NotifyCity delivers a broadcast message to everyone in a city.
func (n *ConsoleNotifier) NotifyCity(ctx context.Context, msg notification.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	n.log.Info("city notification",
		logger.String("kind", string(msg.Kind)),
		logger.CityID(msg.CityID.String()),
		logger.String("title", msg.Title),
		logger.String("body", msg.Body),
	)
	return nil
}

// NotifyStudent delivers a message to a single student.
func (n *ConsoleNotifier) NotifyStudent(ctx context.Context, msg notification.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	n.log.Info("student notification",
		logger.String("kind", string(msg.Kind)),
		logger.CityID(msg.CityID.String()),
		logger.StudentID(msg.StudentID.String()),
		logger.String("title", msg.Title),
		logger.String("body", msg.Body),
	)
	return nil
}
