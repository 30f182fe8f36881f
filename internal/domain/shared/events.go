// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"encoding/json"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven architecture.
// Each event represents something significant that happened in the domain.
const (
	// Schedule events
	EventClassAdded   EventType = "schedule.class_added"
	EventClassUpdated EventType = "schedule.class_updated"
	EventClassRemoved EventType = "schedule.class_removed"
	EventDayCancelled EventType = "schedule.day_cancelled"
	EventDayRestored  EventType = "schedule.day_restored"

	// Attendance events
	EventAttendanceMarked EventType = "attendance.marked"
	EventCounterChanged   EventType = "attendance.counter_changed"

	// Progression events
	EventAchievementUnlocked EventType = "progression.achievement_unlocked"
	EventBeltPromoted        EventType = "progression.belt_promoted"

	// Notification events
	EventNotificationSent   EventType = "notification.sent"
	EventNotificationFailed EventType = "notification.failed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Schedule Events
// ═══════════════════════════════════════════════════════════════════════════

// ClassChangedEvent is emitted when a class is added, updated or removed.
// Kind distinguishes the mutation; Recurring tells fixed from flexible.
type ClassChangedEvent struct {
	BaseEvent
	CityID    string `json:"city_id"`
	ClassID   string `json:"class_id"`
	ClassType string `json:"class_type"`
	Recurring bool   `json:"recurring"`
	Weekday   int    `json:"weekday,omitempty"`
	Date      string `json:"date,omitempty"`
	StartTime string `json:"start_time"`
	Duration  int    `json:"duration_minutes"`
}

// Payload implements Event interface.
func (e ClassChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"city_id":          e.CityID,
		"class_id":         e.ClassID,
		"class_type":       e.ClassType,
		"recurring":        e.Recurring,
		"weekday":          e.Weekday,
		"date":             e.Date,
		"start_time":       e.StartTime,
		"duration_minutes": e.Duration,
	}
}

// NewClassChangedEvent creates a schedule mutation event of the given type.
func NewClassChangedEvent(eventType EventType, cityID, classID, classType string, recurring bool, weekday int, date, startTime string, duration int) ClassChangedEvent {
	return ClassChangedEvent{
		BaseEvent: NewBaseEvent(eventType, classID),
		CityID:    cityID,
		ClassID:   classID,
		ClassType: classType,
		Recurring: recurring,
		Weekday:   weekday,
		Date:      date,
		StartTime: startTime,
		Duration:  duration,
	}
}

// DayCancelledEvent is emitted when a whole day is cancelled or restored.
type DayCancelledEvent struct {
	BaseEvent
	CityID string `json:"city_id"`
	Date   string `json:"date"`
	Reason string `json:"reason,omitempty"`
}

// Payload implements Event interface.
func (e DayCancelledEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"city_id": e.CityID,
		"date":    e.Date,
		"reason":  e.Reason,
	}
}

// NewDayCancelledEvent creates a day cancellation event.
func NewDayCancelledEvent(cityID, date, reason string) DayCancelledEvent {
	return DayCancelledEvent{
		BaseEvent: NewBaseEvent(EventDayCancelled, cityID+":"+date),
		CityID:    cityID,
		Date:      date,
		Reason:    reason,
	}
}

// NewDayRestoredEvent creates a day restoration event.
func NewDayRestoredEvent(cityID, date string) DayCancelledEvent {
	return DayCancelledEvent{
		BaseEvent: NewBaseEvent(EventDayRestored, cityID+":"+date),
		CityID:    cityID,
		Date:      date,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Attendance Events
// ═══════════════════════════════════════════════════════════════════════════

// AttendanceMarkedEvent is emitted after a roll call is persisted.
type AttendanceMarkedEvent struct {
	BaseEvent
	CityID     string   `json:"city_id"`
	SessionKey string   `json:"session_key"`
	Marked     []string `json:"marked"`   // students switched absent -> present
	Unmarked   []string `json:"unmarked"` // students switched present -> absent
}

// Payload implements Event interface.
func (e AttendanceMarkedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"city_id":     e.CityID,
		"session_key": e.SessionKey,
		"marked":      e.Marked,
		"unmarked":    e.Unmarked,
	}
}

// NewAttendanceMarkedEvent creates a new AttendanceMarkedEvent.
func NewAttendanceMarkedEvent(cityID, sessionKey string, marked, unmarked []string) AttendanceMarkedEvent {
	return AttendanceMarkedEvent{
		BaseEvent:  NewBaseEvent(EventAttendanceMarked, sessionKey),
		CityID:     cityID,
		SessionKey: sessionKey,
		Marked:     marked,
		Unmarked:   unmarked,
	}
}

// CounterChangedEvent is emitted when a student's attendance counter moves.
type CounterChangedEvent struct {
	BaseEvent
	StudentID string `json:"student_id"`
	Delta     int    `json:"delta"`
	NewTotal  int    `json:"new_total"`
}

// Payload implements Event interface.
func (e CounterChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id": e.StudentID,
		"delta":      e.Delta,
		"new_total":  e.NewTotal,
	}
}

// NewCounterChangedEvent creates a new CounterChangedEvent.
func NewCounterChangedEvent(studentID string, delta, newTotal int) CounterChangedEvent {
	return CounterChangedEvent{
		BaseEvent: NewBaseEvent(EventCounterChanged, studentID),
		StudentID: studentID,
		Delta:     delta,
		NewTotal:  newTotal,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Progression Events
// ═══════════════════════════════════════════════════════════════════════════

// AchievementUnlockedEvent is emitted exactly once per milestone crossing.
type AchievementUnlockedEvent struct {
	BaseEvent
	StudentID     string `json:"student_id"`
	AchievementID string `json:"achievement_id"`
}

// Payload implements Event interface.
func (e AchievementUnlockedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id":     e.StudentID,
		"achievement_id": e.AchievementID,
	}
}

// NewAchievementUnlockedEvent creates a new AchievementUnlockedEvent.
func NewAchievementUnlockedEvent(studentID, achievementID string) AchievementUnlockedEvent {
	return AchievementUnlockedEvent{
		BaseEvent:     NewBaseEvent(EventAchievementUnlocked, studentID),
		StudentID:     studentID,
		AchievementID: achievementID,
	}
}

// BeltPromotedEvent is emitted when a student's belt moves to a strictly
// higher rank. Same-or-lower belt edits never produce this event.
type BeltPromotedEvent struct {
	BaseEvent
	StudentID string `json:"student_id"`
	OldBelt   string `json:"old_belt"`
	NewBelt   string `json:"new_belt"`
	OldIndex  int    `json:"old_index"`
	NewIndex  int    `json:"new_index"`
}

// Payload implements Event interface.
func (e BeltPromotedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id": e.StudentID,
		"old_belt":   e.OldBelt,
		"new_belt":   e.NewBelt,
		"old_index":  e.OldIndex,
		"new_index":  e.NewIndex,
	}
}

// NewBeltPromotedEvent creates a new BeltPromotedEvent.
func NewBeltPromotedEvent(studentID, oldBelt, newBelt string, oldIndex, newIndex int) BeltPromotedEvent {
	return BeltPromotedEvent{
		BaseEvent: NewBaseEvent(EventBeltPromoted, studentID),
		StudentID: studentID,
		OldBelt:   oldBelt,
		NewBelt:   newBelt,
		OldIndex:  oldIndex,
		NewIndex:  newIndex,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Envelope (for serialization and transport)
// ═══════════════════════════════════════════════════════════════════════════

// EventEnvelope wraps an event for transport/storage.
type EventEnvelope struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	AggregateID   string          `json:"aggregate_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
