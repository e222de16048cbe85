package domain

import "errors"

// Sentinel errors for engagement and lifecycle operations. These are expected
// domain outcomes, not system failures; callers match them with errors.Is and
// the HTTP layer maps them to status codes.
var (
	ErrNotFound          = errors.New("event not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrForbidden         = errors.New("forbidden")
	ErrNotInvited        = errors.New("user was not invited to this event")
	ErrAlreadyMember     = errors.New("user already joined the event")
	ErrNotMember         = errors.New("user not joined the event")
	ErrEventFull         = errors.New("event is full")
	ErrEventCancelled    = errors.New("event is cancelled")
	ErrEventCompleted    = errors.New("event is completed")
	ErrEventNotCompleted = errors.New("event not completed")
	ErrAlreadyLiked      = errors.New("user already liked the event")
	ErrNotLiked          = errors.New("user not liked the event")
	ErrAlreadyCommented  = errors.New("user already commented the event")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
	ErrInvalidDateRange  = errors.New("end date must not be before start date")
	ErrAlreadyRead       = errors.New("notification is already read")
	ErrInvalidInput      = errors.New("invalid input")
)
