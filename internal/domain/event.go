package domain

import (
	"context"
	"time"
)

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	StatusComingSoon EventStatus = "coming soon"
	StatusActive     EventStatus = "active"
	StatusCompleted  EventStatus = "completed"
	// StatusCancelled is terminal and manual-only: the sweep never enters or
	// exits it.
	StatusCancelled EventStatus = "cancelled"
)

// IsValid reports whether s is a known status value.
func (s EventStatus) IsValid() bool {
	switch s {
	case StatusComingSoon, StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// EventType is the category of an event.
type EventType string

const (
	TypeBirthday   EventType = "birthday"
	TypeParty      EventType = "party"
	TypeMeeting    EventType = "meeting"
	TypeTraining   EventType = "training"
	TypeConference EventType = "conference"
	TypeWorkshop   EventType = "workshop"
	TypeSeminar    EventType = "seminar"
	TypeConcert    EventType = "concert"
	TypeFestival   EventType = "festival"
	TypeExcursion  EventType = "excursion"
	TypeTour       EventType = "tour"
	TypeOther      EventType = "other"
)

// IsValid reports whether t is a known event type.
func (t EventType) IsValid() bool {
	switch t {
	case TypeBirthday, TypeParty, TypeMeeting, TypeTraining, TypeConference,
		TypeWorkshop, TypeSeminar, TypeConcert, TypeFestival, TypeExcursion,
		TypeTour, TypeOther:
		return true
	}
	return false
}

// Event represents a schedulable activity with capacity, dates, and
// engagement relations. Relation id sets are populated by the repository;
// they never contain duplicates.
// swagger:model Event
type Event struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	ImageURL         string      `json:"image_url"`
	Description      string      `json:"description"`
	ShortDescription *string     `json:"short_description,omitempty"`
	StartDate        *time.Time  `json:"start_date,omitempty"`
	EndDate          time.Time   `json:"end_date"`
	Location         *string     `json:"location,omitempty"`
	City             *string     `json:"city,omitempty"`
	PayData          *string     `json:"pay_data,omitempty"`
	MaxMembers       *int        `json:"max_members,omitempty"`
	Type             EventType   `json:"type"`
	InviteOnly       bool        `json:"invite_only"`
	Status           EventStatus `json:"status"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`

	MemberIDs  []string `json:"member_ids"`
	LikeIDs    []string `json:"like_ids"`
	InvitedIDs []string `json:"invited_ids"`
}

// IsMember reports whether the user has joined the event.
func (e *Event) IsMember(userID string) bool {
	return containsID(e.MemberIDs, userID)
}

// HasLiked reports whether the user has liked the event.
func (e *Event) HasLiked(userID string) bool {
	return containsID(e.LikeIDs, userID)
}

// IsInvited reports whether the user is in the event's invited set.
func (e *Event) IsInvited(userID string) bool {
	return containsID(e.InvitedIDs, userID)
}

// MemberCount returns the current number of members.
func (e *Event) MemberCount() int {
	return len(e.MemberIDs)
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Comment is a member's post-event review. At most one exists per
// (event, user) pair. Rating, when set, is within [1, 5].
// swagger:model Comment
type Comment struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	Body      string    `json:"comment"`
	Rating    *int      `json:"rating,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// EventFilter narrows List results. All fields are optional and combined
// with AND. From/To select events whose date range overlaps [From, To].
type EventFilter struct {
	MemberID   string
	LikedBy    string
	From       *time.Time
	To         *time.Time
	MaxMembers *int
	Name       string
	Types      []EventType
	Cities     []string
	Status     *EventStatus

	// Completed and cancelled events are excluded unless explicitly included
	// (or targeted via Status).
	IncludeCompleted bool
	IncludeCancelled bool

	// VisibleTo restricts invite-only events to those the given user is
	// invited to. Empty means no visibility restriction (admin view).
	VisibleTo string
}

// EventUpdate is a partial update; nil fields are left unchanged. Status is
// the only path to StatusCancelled.
type EventUpdate struct {
	Name             *string
	ImageURL         *string
	Description      *string
	ShortDescription *string
	StartDate        *time.Time
	EndDate          *time.Time
	Location         *string
	City             *string
	PayData          *string
	MaxMembers       *int
	Type             *EventType
	InviteOnly       *bool
	Status           *EventStatus
}

// EventRepository defines the interface for event storage.
//
// Relation mutations (AddMember, RemoveMember, AddLike, RemoveLike,
// CreateComment) must serialize writes per event: each runs in a transaction
// that locks the event row and re-validates its invariant before writing.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, filter EventFilter) ([]*Event, error)
	Update(ctx context.Context, id string, upd EventUpdate) (*Event, error)
	Delete(ctx context.Context, id string) error

	// AddMember inserts the membership and returns the post-insert member
	// count. Capacity and duplicates are re-checked under the row lock.
	AddMember(ctx context.Context, eventID, userID string) (int, error)
	// RemoveMember deletes the membership and returns the post-delete count.
	RemoveMember(ctx context.Context, eventID, userID string) (int, error)
	AddLike(ctx context.Context, eventID, userID string) error
	RemoveLike(ctx context.Context, eventID, userID string) error
	AddInvited(ctx context.Context, eventID string, userIDs []string) error
	CreateComment(ctx context.Context, comment *Comment) error
	HasComment(ctx context.Context, eventID, userID string) (bool, error)
	ListComments(ctx context.Context, eventID string) ([]*Comment, error)
	ListMembers(ctx context.Context, eventID string) ([]*User, error)

	// UpdateStatus applies from -> to only if the row still holds from, so a
	// sweep cannot clobber a concurrent manual cancel. Returns whether the
	// transition applied.
	UpdateStatus(ctx context.Context, id string, from, to EventStatus) (bool, error)
}

// CreateEventSpec carries the fields accepted at event creation. Status is
// derived from StartDate; it is never supplied by the caller.
type CreateEventSpec struct {
	Name             string
	ImageURL         string
	Description      string
	ShortDescription *string
	StartDate        *time.Time
	EndDate          time.Time
	Location         *string
	City             *string
	PayData          *string
	MaxMembers       *int
	Type             EventType
	InviteOnly       bool
	InvitedUserIDs   []string
}

// EventService defines the business logic for event lifecycle and
// engagement actions.
type EventService interface {
	CreateEvent(ctx context.Context, spec CreateEventSpec) (*Event, error)
	GetEvent(ctx context.Context, eventID, callerID string, isAdmin bool) (*Event, error)
	ListEvents(ctx context.Context, filter EventFilter, callerID string, isAdmin bool) ([]*Event, error)
	LikedEvents(ctx context.Context, userID string, isAdmin bool) ([]*Event, error)
	UpdateEvent(ctx context.Context, eventID string, upd EventUpdate) (*Event, error)
	DeleteEvent(ctx context.Context, eventID string) error

	JoinEvent(ctx context.Context, eventID, userID string) (*Event, error)
	LeaveEvent(ctx context.Context, eventID, userID string) (*Event, error)
	LikeEvent(ctx context.Context, eventID, userID string) (*Event, error)
	UnlikeEvent(ctx context.Context, eventID, userID string) (*Event, error)
	CommentEvent(ctx context.Context, eventID, userID, body string, rating *int) error
	EventComments(ctx context.Context, eventID string) ([]*Comment, error)

	EventMembers(ctx context.Context, eventID string) ([]*User, error)
	ExportMembers(ctx context.Context, eventID string) (string, error)
}

// RosterExporter writes an event's member roster to a file and returns its
// path. Implementations decide the format.
type RosterExporter interface {
	Export(eventID string, members []*User) (string, error)
}
