package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors
var (
	// Booking errors
	ErrBookingNotFound   = errors.New("booking not found")
	ErrSlotTaken         = errors.New("slot_already_requested")
	ErrBookingNotPending = errors.New("booking is not pending")
	ErrBookingTerminal   = errors.New("booking is already in a terminal state")
	ErrPastEvent         = errors.New("event date has already passed")

	// Chat errors
	ErrConversationNotFound = errors.New("conversation not found")
	ErrEmptyMessage         = errors.New("message text must not be empty")

	// Lookup errors
	ErrHallNotFound = errors.New("hall not found")
	ErrUserNotFound = errors.New("user not found")

	// Validation errors
	ErrInvalidDate     = errors.New("invalid date format")
	ErrInvalidTimeSlot = errors.New("invalid time slot")
	ErrInvalidID       = errors.New("invalid id")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")

	// Token errors
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
)

// ValidationError reports missing required fields to the caller.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
}

// CancellationWindowError is returned when an approved booking is cancelled
// less than CancelNoticeHours before the event. HoursUntilEvent is carried
// for user messaging.
type CancellationWindowError struct {
	HoursUntilEvent float64
}

func (e *CancellationWindowError) Error() string {
	return fmt.Sprintf("approved bookings cannot be cancelled less than %d hours before the event (%.2f hours remaining)", CancelNoticeHours, e.HoursUntilEvent)
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrBookingNotFound) ||
		errors.Is(err, ErrConversationNotFound) ||
		errors.Is(err, ErrHallNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return true
	}
	return errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidTimeSlot) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrEmptyMessage) ||
		errors.Is(err, ErrBookingNotPending) ||
		errors.Is(err, ErrBookingTerminal) ||
		errors.Is(err, ErrPastEvent)
}

// IsConflictError checks if the error is the expected slot-conflict case
func IsConflictError(err error) bool {
	return errors.Is(err, ErrSlotTaken)
}

// IsAuthError checks if the error is an authorization failure
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrTokenExpired)
}
