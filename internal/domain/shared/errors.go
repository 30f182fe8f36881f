// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// Scheduling errors
	ErrConflict = errors.New("schedule conflict")
	ErrEmptyDay = errors.New("no class scheduled on this day")
	ErrPastDate = errors.New("date is in the past")

	// State errors
	ErrInvalidState     = errors.New("invalid state")
	ErrStateTransition  = errors.New("invalid state transition")
	ErrAlreadyProcessed = errors.New("already processed")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "schedule", "attendance", "progression"
	Op      string // Operation that failed, e.g., "AddFixedClass"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Schedule domain errors
var (
	ErrClassNotFound        = NewDomainError("schedule", "Find", ErrNotFound, "class not found")
	ErrScheduleConflict     = NewDomainError("schedule", "Validate", ErrConflict, "class overlaps an existing class")
	ErrCancellationExists   = NewDomainError("schedule", "Cancel", ErrConflict, "day is already cancelled")
	ErrCancellationNotFound = NewDomainError("schedule", "Restore", ErrNotFound, "cancellation not found")
	ErrNothingToCancel      = NewDomainError("schedule", "Cancel", ErrEmptyDay, "no class scheduled on that date")
	ErrDateInPast           = NewDomainError("schedule", "Validate", ErrPastDate, "date must not be in the past")
)

// Attendance domain errors
var (
	ErrSessionNotFound    = NewDomainError("attendance", "Find", ErrNotFound, "attendance record not found")
	ErrInvalidSessionKey  = NewDomainError("attendance", "Validate", ErrInvalidFormat, "invalid session key")
	ErrNegativeAttendance = NewDomainError("attendance", "Count", ErrNegativeValue, "attendance counter cannot go below zero")
)

// Progression domain errors
var (
	ErrStudentNotFound = NewDomainError("progression", "Find", ErrNotFound, "student not found")
	ErrUnknownBelt     = NewDomainError("progression", "Validate", ErrInvalidInput, "belt is not in the catalog")
	ErrEmptyBeltOrder  = NewDomainError("progression", "Configure", ErrEmptyValue, "belt order cannot be empty")
)

// Notification domain errors
var (
	ErrNotificationFailed = NewDomainError("notification", "Send", ErrExternalService, "failed to deliver notification")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict checks if the error is a schedule conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsEmptyDay checks if the error is an empty-day rejection.
func IsEmptyDay(err error) bool {
	return errors.Is(err, ErrEmptyDay)
}

// IsPastDate checks if the error is a past-date rejection.
func IsPastDate(err error) bool {
	return errors.Is(err, ErrPastDate)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidFormat)
}

// IsExternalService checks if the error is from an external service.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout)
}
