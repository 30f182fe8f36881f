// Package notification contains the outbound messaging model: the
// dispatcher abstraction over concrete delivery channels and the
// message builders that turn domain events into student-facing text.
//
// Delivery is best effort. A failed send is logged and reported via a
// notification.failed event, never retried and never allowed to fail
// the business operation that triggered it.
package notification

import (
	"context"
	"time"

	"github.com/dojo-hub/dojo-community-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// MESSAGE
// ═══════════════════════════════════════════════════════════════════════════

// Kind classifies outbound messages for logging and filtering.
type Kind string

const (
	// KindScheduleChange announces an added/updated/removed class.
	KindScheduleChange Kind = "schedule_change"

	// KindDayCancelled announces a cancelled or restored training day.
	KindDayCancelled Kind = "day_cancelled"

	// KindAchievement congratulates a student on a new milestone.
	KindAchievement Kind = "achievement"

	// KindBeltPromotion congratulates a student on a promotion.
	KindBeltPromotion Kind = "belt_promotion"

	// KindDailyDigest is the morning summary of today's classes.
	KindDailyDigest Kind = "daily_digest"
)

// IsValid checks the kind is one of the known values.
func (k Kind) IsValid() bool {
	switch k {
	case KindScheduleChange, KindDayCancelled, KindAchievement,
		KindBeltPromotion, KindDailyDigest:
		return true
	default:
		return false
	}
}

// Message is one outbound notification, addressed either to every
// member of a city (StudentID empty) or to a single student.
type Message struct {
	Kind      Kind
	CityID    shared.CityID
	StudentID shared.StudentID
	Title     string
	Body      string
	CreatedAt time.Time
}

// IsBroadcast reports whether the message targets a whole city.
func (m Message) IsBroadcast() bool {
	return m.StudentID.IsEmpty()
}

// Validate checks message invariants.
func (m Message) Validate() error {
	if !m.Kind.IsValid() {
		return shared.NewDomainError("notification", "Validate", shared.ErrInvalidInput, "unknown message kind")
	}
	if !m.CityID.IsValid() {
		return shared.NewDomainError("notification", "Validate", shared.ErrInvalidID, "message requires a city")
	}
	if m.Body == "" {
		return shared.NewDomainError("notification", "Validate", shared.ErrEmptyValue, "message body cannot be empty")
	}
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// DISPATCHER
// ═══════════════════════════════════════════════════════════════════════════

// Dispatcher delivers messages over a concrete channel. Implementations
// must be safe for concurrent use; a returned error means the delivery
// failed and will not be retried.
type Dispatcher interface {
	// NotifyCity sends a broadcast to everyone training in a city.
	NotifyCity(ctx context.Context, msg Message) error

	// NotifyStudent sends a direct message to one student.
	NotifyStudent(ctx context.Context, msg Message) error
}
