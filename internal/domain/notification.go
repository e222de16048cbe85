package domain

import (
	"context"
	"sync"
	"time"
)

// NotificationKind identifies what a notification is about. The same kinds
// drive both the email templates and the persisted in-app records.
type NotificationKind string

const (
	KindEventCreated     NotificationKind = "event_created"
	KindEventUpdated     NotificationKind = "event_updated"
	KindEventCancelled   NotificationKind = "event_cancelled"
	KindMemberConfirmed  NotificationKind = "member_confirmed"
	KindMemberCancelled  NotificationKind = "member_cancelled"
	KindEventReminder24h NotificationKind = "event_reminder_24h"
	KindEventReview      NotificationKind = "event_review"
)

// Notification is a persisted in-app notification. It is created unread,
// transitions to read exactly once, and is never deleted by this core.
// swagger:model Notification
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	EventID   string           `json:"event_id"`
	EventName string           `json:"event_name"`
	Kind      NotificationKind `json:"type"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}

// NotificationRepository defines storage operations for in-app notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id string) (*Notification, error)
	ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]*Notification, error)
	MarkRead(ctx context.Context, id string) error
	// Exists reports whether a notification of the given kind was already
	// recorded for (event, user). Used to dedupe the 24h reminder.
	Exists(ctx context.Context, eventID, userID string, kind NotificationKind) (bool, error)
}

// NotificationService defines the in-app notification operations exposed to
// callers.
type NotificationService interface {
	List(ctx context.Context, userID string, unreadOnly bool) ([]*Notification, error)
	// MarkRead marks the notification read. Fails with ErrForbidden when the
	// caller doesn't own it and ErrAlreadyRead on a second read.
	MarkRead(ctx context.Context, notificationID, callerID string) (*Notification, error)
}

// DispatchJob is one notification side effect: an email, a persisted in-app
// record, or both. Email is skipped when the address is empty; the record is
// skipped when UserID is empty. When Done is set it is signalled once the
// job has been processed, so a caller can await its own batch without
// coupling to jobs enqueued concurrently by anyone else.
type DispatchJob struct {
	Kind    NotificationKind
	Email   string
	Data    *EventEmailData
	UserID  string
	EventID string
	Done    *sync.WaitGroup
}

// NotificationDispatcher is the asynchronous sink mutations enqueue side
// effects into. Enqueue must not block the triggering transaction on
// delivery.
type NotificationDispatcher interface {
	Enqueue(job DispatchJob)
}
