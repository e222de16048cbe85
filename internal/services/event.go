package services

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"eventboard/internal/domain"
)

// lockStripes is the size of the per-event mutex stripe. Engagement actions
// on the same event id always hash to the same mutex, so their
// check-then-write sequences are serialized in-process; the repository's row
// lock covers cross-process races.
const lockStripes = 64

type eventService struct {
	eventRepo      domain.EventRepository
	users          domain.UserDirectory
	dispatcher     domain.NotificationDispatcher
	exporter       domain.RosterExporter
	logger         *slog.Logger
	appURL         string
	detailPath     string
	contextTimeout time.Duration

	locks [lockStripes]sync.Mutex
}

func NewEventService(eventRepo domain.EventRepository,
	users domain.UserDirectory,
	dispatcher domain.NotificationDispatcher,
	exporter domain.RosterExporter,
	logger *slog.Logger,
	appURL, detailPath string,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		users:          users,
		dispatcher:     dispatcher,
		exporter:       exporter,
		logger:         logger,
		appURL:         appURL,
		detailPath:     detailPath,
		contextTimeout: timeout,
	}
}

func (s *eventService) lockFor(eventID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(eventID))
	return &s.locks[h.Sum32()%lockStripes]
}

func (s *eventService) eventURL(eventID string) string {
	return s.appURL + fmt.Sprintf(s.detailPath, eventID)
}

// emailData builds the shared template payload for an event's notifications.
func (s *eventService) emailData(e *domain.Event) *domain.EventEmailData {
	data := &domain.EventEmailData{
		EventName: e.Name,
		EventURL:  s.eventURL(e.ID),
	}
	if e.StartDate != nil {
		data.EventDate = e.StartDate.Format("02.01.2006")
		data.EventTime = e.StartDate.Format("15:04")
	}
	if e.Location != nil {
		data.EventLocation = *e.Location
	}
	return data
}

func (s *eventService) CreateEvent(ctx context.Context, spec domain.CreateEventSpec) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if spec.Name == "" || spec.Description == "" {
		return nil, domain.ErrInvalidInput
	}
	if spec.EndDate.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	if spec.StartDate != nil && spec.EndDate.Before(*spec.StartDate) {
		return nil, domain.ErrInvalidDateRange
	}
	if spec.Type == "" {
		spec.Type = domain.TypeOther
	}
	if !spec.Type.IsValid() {
		return nil, domain.ErrInvalidInput
	}

	// Resolve invited users up front so a bad id fails the whole create.
	invited := make([]*domain.User, 0, len(spec.InvitedUserIDs))
	for _, userID := range spec.InvitedUserIDs {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				return nil, domain.ErrUserNotFound
			}
			return nil, fmt.Errorf("get invited user: %w", err)
		}
		invited = append(invited, user)
	}

	now := time.Now()
	event := &domain.Event{
		Name:             spec.Name,
		ImageURL:         spec.ImageURL,
		Description:      spec.Description,
		ShortDescription: spec.ShortDescription,
		StartDate:        spec.StartDate,
		EndDate:          spec.EndDate,
		Location:         spec.Location,
		City:             spec.City,
		PayData:          spec.PayData,
		MaxMembers:       spec.MaxMembers,
		Type:             spec.Type,
		InviteOnly:       spec.InviteOnly,
		Status:           domain.StatusAtCreation(spec.StartDate, now),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	if len(spec.InvitedUserIDs) > 0 {
		if err := s.eventRepo.AddInvited(ctx, event.ID, spec.InvitedUserIDs); err != nil {
			return nil, fmt.Errorf("add invited users: %w", err)
		}
	}

	for _, user := range invited {
		data := s.emailData(event)
		data.Email = user.Email
		s.dispatcher.Enqueue(domain.DispatchJob{
			Kind:    domain.KindEventCreated,
			Email:   user.Email,
			Data:    data,
			UserID:  user.ID,
			EventID: event.ID,
		})
	}

	created, err := s.eventRepo.GetByID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("get created event: %w", err)
	}
	return created, nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID, callerID string, isAdmin bool) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !isAdmin && event.InviteOnly && !event.IsInvited(callerID) {
		return nil, domain.ErrNotInvited
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, filter domain.EventFilter, callerID string, isAdmin bool) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !isAdmin {
		filter.VisibleTo = callerID
		filter.IncludeCancelled = false
	}
	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

// LikedEvents lists the events the user has liked. Visibility follows
// ListEvents; completed events stay included so past likes remain listed.
func (s *eventService) LikedEvents(ctx context.Context, userID string, isAdmin bool) ([]*domain.Event, error) {
	filter := domain.EventFilter{
		LikedBy:          userID,
		IncludeCompleted: true,
		IncludeCancelled: true,
	}
	return s.ListEvents(ctx, filter, userID, isAdmin)
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID string, upd domain.EventUpdate) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	mu := s.lockFor(eventID)
	mu.Lock()
	defer mu.Unlock()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	// Re-check the date invariant against the merged values.
	start := event.StartDate
	if upd.StartDate != nil {
		start = upd.StartDate
	}
	end := event.EndDate
	if upd.EndDate != nil {
		end = *upd.EndDate
	}
	if start != nil && end.Before(*start) {
		return nil, domain.ErrInvalidDateRange
	}
	if upd.Status != nil && !upd.Status.IsValid() {
		return nil, domain.ErrInvalidInput
	}
	if upd.Type != nil && !upd.Type.IsValid() {
		return nil, domain.ErrInvalidInput
	}

	updated, err := s.eventRepo.Update(ctx, eventID, upd)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}

	kind := domain.KindEventUpdated
	if upd.Status != nil && *upd.Status == domain.StatusCancelled && event.Status != domain.StatusCancelled {
		kind = domain.KindEventCancelled
	}
	s.notifyMembers(ctx, updated, kind)
	return updated, nil
}

// notifyMembers enqueues one notification of the given kind per current
// member. Failures to load the roster are logged and swallowed: the mutation
// already committed and notifications are best-effort.
func (s *eventService) notifyMembers(ctx context.Context, event *domain.Event, kind domain.NotificationKind) {
	members, err := s.eventRepo.ListMembers(ctx, event.ID)
	if err != nil {
		s.logger.Error("list members for notification", "event_id", event.ID, "kind", string(kind), "err", err)
		return
	}
	for _, member := range members {
		data := s.emailData(event)
		data.Email = member.Email
		data.MembersCount = len(members)
		s.dispatcher.Enqueue(domain.DispatchJob{
			Kind:    kind,
			Email:   member.Email,
			Data:    data,
			UserID:  member.ID,
			EventID: event.ID,
		})
	}
}

// notifyAdmins sends a membership change notice to every administrator
// email. count must be the post-commit member count.
func (s *eventService) notifyAdmins(ctx context.Context, event *domain.Event, member *domain.User, kind domain.NotificationKind, count int) {
	adminEmails, err := s.users.ListAdminEmails(ctx)
	if err != nil {
		s.logger.Error("list admin emails", "event_id", event.ID, "kind", string(kind), "err", err)
		return
	}
	for _, email := range adminEmails {
		data := s.emailData(event)
		data.Email = email
		data.MemberName = member.FullName()
		data.MembersCount = count
		s.dispatcher.Enqueue(domain.DispatchJob{
			Kind:  kind,
			Email: email,
			Data:  data,
		})
	}
}

func (s *eventService) JoinEvent(ctx context.Context, eventID, userID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	mu := s.lockFor(eventID)
	mu.Lock()
	defer mu.Unlock()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.InviteOnly && !event.IsInvited(userID) {
		return nil, domain.ErrNotInvited
	}
	if event.IsMember(userID) {
		return nil, domain.ErrAlreadyMember
	}
	if event.MaxMembers != nil && event.MemberCount() >= *event.MaxMembers {
		return nil, domain.ErrEventFull
	}
	if event.Status == domain.StatusCancelled {
		return nil, domain.ErrEventCancelled
	}
	if event.Status == domain.StatusCompleted {
		return nil, domain.ErrEventCompleted
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	// The repository re-validates under the row lock; the count it returns
	// is post-commit, which is what the admin notice must carry.
	count, err := s.eventRepo.AddMember(ctx, eventID, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyMember),
			errors.Is(err, domain.ErrEventFull),
			errors.Is(err, domain.ErrEventCancelled),
			errors.Is(err, domain.ErrEventCompleted),
			errors.Is(err, domain.ErrNotFound):
			return nil, err
		}
		return nil, fmt.Errorf("add member: %w", err)
	}

	s.notifyAdmins(ctx, event, user, domain.KindMemberConfirmed, count)

	refreshed, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event after join: %w", err)
	}
	return refreshed, nil
}

func (s *eventService) LeaveEvent(ctx context.Context, eventID, userID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	mu := s.lockFor(eventID)
	mu.Lock()
	defer mu.Unlock()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !event.IsMember(userID) {
		return nil, domain.ErrNotMember
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	count, err := s.eventRepo.RemoveMember(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotMember) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("remove member: %w", err)
	}

	s.notifyAdmins(ctx, event, user, domain.KindMemberCancelled, count)

	refreshed, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event after leave: %w", err)
	}
	return refreshed, nil
}

func (s *eventService) LikeEvent(ctx context.Context, eventID, userID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	mu := s.lockFor(eventID)
	mu.Lock()
	defer mu.Unlock()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.HasLiked(userID) {
		return nil, domain.ErrAlreadyLiked
	}
	if err := s.eventRepo.AddLike(ctx, eventID, userID); err != nil {
		if errors.Is(err, domain.ErrAlreadyLiked) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("add like: %w", err)
	}
	refreshed, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event after like: %w", err)
	}
	return refreshed, nil
}

func (s *eventService) UnlikeEvent(ctx context.Context, eventID, userID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	mu := s.lockFor(eventID)
	mu.Lock()
	defer mu.Unlock()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !event.HasLiked(userID) {
		return nil, domain.ErrNotLiked
	}
	if err := s.eventRepo.RemoveLike(ctx, eventID, userID); err != nil {
		if errors.Is(err, domain.ErrNotLiked) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("remove like: %w", err)
	}
	refreshed, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event after unlike: %w", err)
	}
	return refreshed, nil
}

func (s *eventService) CommentEvent(ctx context.Context, eventID, userID, body string, rating *int) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	mu := s.lockFor(eventID)
	mu.Lock()
	defer mu.Unlock()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if !event.IsMember(userID) {
		return domain.ErrNotMember
	}
	if event.Status != domain.StatusCompleted {
		return domain.ErrEventNotCompleted
	}
	exists, err := s.eventRepo.HasComment(ctx, eventID, userID)
	if err != nil {
		return fmt.Errorf("check comment: %w", err)
	}
	if exists {
		return domain.ErrAlreadyCommented
	}
	if rating != nil && (*rating < 1 || *rating > 5) {
		return domain.ErrInvalidRating
	}

	comment := &domain.Comment{
		EventID:   eventID,
		UserID:    userID,
		Body:      body,
		Rating:    rating,
		CreatedAt: time.Now(),
	}
	if err := s.eventRepo.CreateComment(ctx, comment); err != nil {
		if errors.Is(err, domain.ErrAlreadyCommented) || errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

// DeleteEvent removes the event, forcing every current member through the
// leave path first so the admin notification contract stays uniform. This is
// O(members) by design.
func (s *eventService) DeleteEvent(ctx context.Context, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	members, err := s.eventRepo.ListMembers(ctx, eventID)
	if err != nil {
		return fmt.Errorf("list members: %w", err)
	}
	for _, member := range members {
		if _, err := s.LeaveEvent(ctx, eventID, member.ID); err != nil {
			// A member who left concurrently is fine; anything else aborts.
			if errors.Is(err, domain.ErrNotMember) {
				continue
			}
			return fmt.Errorf("remove member %s: %w", member.ID, err)
		}
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) EventComments(ctx context.Context, eventID string) ([]*domain.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	comments, err := s.eventRepo.ListComments(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	if comments == nil {
		comments = []*domain.Comment{}
	}
	return comments, nil
}

func (s *eventService) EventMembers(ctx context.Context, eventID string) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	members, err := s.eventRepo.ListMembers(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	if members == nil {
		members = []*domain.User{}
	}
	return members, nil
}

func (s *eventService) ExportMembers(ctx context.Context, eventID string) (string, error) {
	members, err := s.EventMembers(ctx, eventID)
	if err != nil {
		return "", err
	}
	path, err := s.exporter.Export(eventID, members)
	if err != nil {
		return "", fmt.Errorf("export members: %w", err)
	}
	return path, nil
}
