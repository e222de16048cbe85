package controllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"eventboard/internal/delivery/http/helpers"
	"eventboard/internal/delivery/http/middleware"
	"eventboard/internal/domain"
)

// uuidRegex matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
	Users   domain.UserDirectory
}

func NewEventController(logger *slog.Logger, svc domain.EventService, users domain.UserDirectory) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
		Users:   users,
	}
}

// writeDomainError maps domain sentinel errors to HTTP responses. Unknown
// errors are logged and reported as 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
	case errors.Is(err, domain.ErrUserNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "user not found")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrNotInvited):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "not invited to this event")
	case errors.Is(err, domain.ErrAlreadyMember),
		errors.Is(err, domain.ErrNotMember),
		errors.Is(err, domain.ErrEventFull),
		errors.Is(err, domain.ErrEventCancelled),
		errors.Is(err, domain.ErrEventCompleted),
		errors.Is(err, domain.ErrEventNotCompleted),
		errors.Is(err, domain.ErrAlreadyLiked),
		errors.Is(err, domain.ErrNotLiked),
		errors.Is(err, domain.ErrAlreadyCommented),
		errors.Is(err, domain.ErrInvalidRating),
		errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, domain.ErrAlreadyRead),
		errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
	}
}

// callerID extracts the authenticated user ID or writes a 401.
func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return "", false
	}
	return userID, true
}

// eventIDParam validates the eventID path value or writes a 400.
func eventIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return "", false
	}
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return "", false
	}
	return eventID, true
}

// caller returns the authenticated user, or writes a 401/500.
func (c *EventController) caller(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	userID, ok := callerID(w, r)
	if !ok {
		return nil, false
	}
	user, err := c.Users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unknown user")
			return nil, false
		}
		c.Logger.ErrorContext(r.Context(), "user lookup failed", "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		return nil, false
	}
	return user, true
}

// requireAdmin returns the authenticated admin user, or writes a 401/403.
func (c *EventController) requireAdmin(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user, ok := c.caller(w, r)
	if !ok {
		return nil, false
	}
	if !user.IsAdmin {
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "admin access required")
		return nil, false
	}
	return user, true
}

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Name             string     `json:"name"`
	ImageURL         string     `json:"image_url"`
	Description      string     `json:"description"`
	ShortDescription *string    `json:"short_description"`
	StartDate        *time.Time `json:"start_date"`
	EndDate          *time.Time `json:"end_date"`
	Location         *string    `json:"location"`
	City             *string    `json:"city"`
	PayData          *string    `json:"pay_data"`
	MaxMembers       *int       `json:"max_members"`
	Type             string     `json:"type"`
	InviteOnly       bool       `json:"invite_only"`
	InvitedUserIDs   []string   `json:"invited_user_ids"`
}

func (req *CreateEventRequest) Validate() []string {
	var errs []string
	if req.Name == "" {
		errs = append(errs, "name is required")
	}
	if req.Description == "" {
		errs = append(errs, "description is required")
	}
	if req.EndDate == nil {
		errs = append(errs, "end_date is required")
	}
	if req.Type == "" {
		errs = append(errs, "type is required")
	} else if !domain.EventType(req.Type).IsValid() {
		errs = append(errs, "invalid event type")
	}
	if req.MaxMembers != nil && *req.MaxMembers < 1 {
		errs = append(errs, "max_members must be positive")
	}
	return errs
}

// CreateEventSuccessResponse is the success response envelope for POST /events (201).
type CreateEventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// Create godoc
// @Summary Create an event
// @Description Creates a new event. Admin only. The initial status is derived from start_date: events starting today or earlier open as active, later (or undated) events open as coming soon.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body controllers.CreateEventRequest true "Event to create"
// @Success 201 {object} controllers.CreateEventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) Create(w http.ResponseWriter, r *http.Request) {
	if _, ok := c.requireAdmin(w, r); !ok {
		return
	}
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	spec := domain.CreateEventSpec{
		Name:             req.Name,
		ImageURL:         req.ImageURL,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		StartDate:        req.StartDate,
		EndDate:          *req.EndDate,
		Location:         req.Location,
		City:             req.City,
		PayData:          req.PayData,
		MaxMembers:       req.MaxMembers,
		Type:             domain.EventType(req.Type),
		InviteOnly:       req.InviteOnly,
		InvitedUserIDs:   req.InvitedUserIDs,
	}
	event, err := c.Service.CreateEvent(r.Context(), spec)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// ListEventsSuccessResponse is the success response envelope for GET /events (200).
type ListEventsSuccessResponse struct {
	Data  []*domain.Event   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// List godoc
// @Summary List events
// @Description Lists events matching the given filters. Completed events are excluded unless include_completed=true; cancelled events are excluded unless the caller is an admin passing include_cancelled=true. Non-admins never see invite-only events they are not invited to.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param name query string false "Exact name match"
// @Param member_id query string false "Only events the given user has joined"
// @Param from query string false "Overlap range start (YYYY-MM-DD or RFC3339)"
// @Param to query string false "Overlap range end (YYYY-MM-DD or RFC3339)"
// @Param type query []string false "Event types" collectionFormat(multi)
// @Param city query []string false "Cities" collectionFormat(multi)
// @Param status query string false "Exact status match"
// @Param max_members query int false "Maximum capacity"
// @Param include_completed query bool false "Include completed events"
// @Param include_cancelled query bool false "Include cancelled events (admin)"
// @Success 200 {object} controllers.ListEventsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) List(w http.ResponseWriter, r *http.Request) {
	user, ok := c.caller(w, r)
	if !ok {
		return
	}
	filter, errMsg := parseEventFilter(r)
	if errMsg != "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, errMsg)
		return
	}
	events, err := c.Service.ListEvents(r.Context(), filter, user.ID, user.IsAdmin)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// Liked godoc
// @Summary List liked events
// @Description Lists the events the caller has liked, including completed ones. Invite-only events the caller is not invited to are hidden from non-admins.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListEventsSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/liked [get]
func (c *EventController) Liked(w http.ResponseWriter, r *http.Request) {
	user, ok := c.caller(w, r)
	if !ok {
		return
	}
	events, err := c.Service.LikedEvents(r.Context(), user.ID, user.IsAdmin)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

func parseEventFilter(r *http.Request) (domain.EventFilter, string) {
	q := r.URL.Query()
	filter := domain.EventFilter{
		Name:     q.Get("name"),
		MemberID: q.Get("member_id"),
	}
	if v := q.Get("from"); v != "" {
		t, err := parseDateParam(v)
		if err != nil {
			return filter, "invalid from date"
		}
		filter.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := parseDateParam(v)
		if err != nil {
			return filter, "invalid to date"
		}
		filter.To = &t
	}
	for _, v := range q["type"] {
		t := domain.EventType(v)
		if !t.IsValid() {
			return filter, "invalid event type"
		}
		filter.Types = append(filter.Types, t)
	}
	filter.Cities = q["city"]
	if v := q.Get("status"); v != "" {
		s := domain.EventStatus(v)
		if !s.IsValid() {
			return filter, "invalid status"
		}
		filter.Status = &s
	}
	if v := q.Get("max_members"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return filter, "invalid max_members"
		}
		filter.MaxMembers = &n
	}
	filter.IncludeCompleted = q.Get("include_completed") == "true"
	filter.IncludeCancelled = q.Get("include_cancelled") == "true"
	return filter, ""
}

func parseDateParam(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}

// GetEventSuccessResponse is the success response envelope for GET /events/{eventID} (200).
type GetEventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// Get godoc
// @Summary Get an event
// @Description Returns the event with its member, like, and invited id sets. Invite-only events are hidden from users who are not invited, members, or admins.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.GetEventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) Get(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	user, ok := c.caller(w, r)
	if !ok {
		return
	}
	event, err := c.Service.GetEvent(r.Context(), eventID, user.ID, user.IsAdmin)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// UpdateEventRequest is the request body for PATCH /events/{eventID}.
// All fields are optional; omitted fields are left unchanged.
type UpdateEventRequest struct {
	Name             *string    `json:"name"`
	ImageURL         *string    `json:"image_url"`
	Description      *string    `json:"description"`
	ShortDescription *string    `json:"short_description"`
	StartDate        *time.Time `json:"start_date"`
	EndDate          *time.Time `json:"end_date"`
	Location         *string    `json:"location"`
	City             *string    `json:"city"`
	PayData          *string    `json:"pay_data"`
	MaxMembers       *int       `json:"max_members"`
	Type             *string    `json:"type"`
	InviteOnly       *bool      `json:"invite_only"`
	Status           *string    `json:"status"`
}

func (req *UpdateEventRequest) Validate() []string {
	var errs []string
	if req.Name != nil && *req.Name == "" {
		errs = append(errs, "name cannot be empty")
	}
	if req.Description != nil && *req.Description == "" {
		errs = append(errs, "description cannot be empty")
	}
	if req.Type != nil && !domain.EventType(*req.Type).IsValid() {
		errs = append(errs, "invalid event type")
	}
	if req.Status != nil && !domain.EventStatus(*req.Status).IsValid() {
		errs = append(errs, "invalid status")
	}
	if req.MaxMembers != nil && *req.MaxMembers < 1 {
		errs = append(errs, "max_members must be positive")
	}
	return errs
}

// UpdateEventSuccessResponse is the success response envelope for PATCH /events/{eventID} (200).
type UpdateEventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// Update godoc
// @Summary Update an event
// @Description Partially updates an event. Admin only. Setting status to cancelled notifies all members; any other change sends an update notification.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param request body controllers.UpdateEventRequest true "Fields to update"
// @Success 200 {object} controllers.UpdateEventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [patch]
func (c *EventController) Update(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	if _, ok := c.requireAdmin(w, r); !ok {
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	upd := domain.EventUpdate{
		Name:             req.Name,
		ImageURL:         req.ImageURL,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		Location:         req.Location,
		City:             req.City,
		PayData:          req.PayData,
		MaxMembers:       req.MaxMembers,
		InviteOnly:       req.InviteOnly,
	}
	if req.Type != nil {
		t := domain.EventType(*req.Type)
		upd.Type = &t
	}
	if req.Status != nil {
		s := domain.EventStatus(*req.Status)
		upd.Status = &s
	}
	event, err := c.Service.UpdateEvent(r.Context(), eventID, upd)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// Delete godoc
// @Summary Delete an event
// @Description Removes an event. Admin only. Every member is withdrawn first, so admins receive a cancellation notice per member before the event disappears.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) Delete(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	if _, ok := c.requireAdmin(w, r); !ok {
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), eventID); err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Join godoc
// @Summary Join an event
// @Description Adds the caller to the event's member list. Fails when the event is full, cancelled, completed, or invite-only and the caller is not invited.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.GetEventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/join [post]
func (c *EventController) Join(w http.ResponseWriter, r *http.Request) {
	c.memberAction(w, r, c.Service.JoinEvent)
}

// Leave godoc
// @Summary Leave an event
// @Description Removes the caller from the event's member list.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.GetEventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/leave [post]
func (c *EventController) Leave(w http.ResponseWriter, r *http.Request) {
	c.memberAction(w, r, c.Service.LeaveEvent)
}

// Like godoc
// @Summary Like an event
// @Description Adds the caller to the event's like list. Likes are open to non-members.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.GetEventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/like [post]
func (c *EventController) Like(w http.ResponseWriter, r *http.Request) {
	c.memberAction(w, r, c.Service.LikeEvent)
}

// Unlike godoc
// @Summary Remove a like
// @Description Removes the caller from the event's like list.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.GetEventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/unlike [post]
func (c *EventController) Unlike(w http.ResponseWriter, r *http.Request) {
	c.memberAction(w, r, c.Service.UnlikeEvent)
}

func (c *EventController) memberAction(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, eventID, userID string) (*domain.Event, error)) {
	eventID, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	event, err := action(r.Context(), eventID, userID)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// CommentEventRequest is the request body for POST /events/{eventID}/comments.
type CommentEventRequest struct {
	Comment string `json:"comment"`
	Rating  *int   `json:"rating"`
}

func (req *CommentEventRequest) Validate() []string {
	var errs []string
	if req.Comment == "" {
		errs = append(errs, "comment is required")
	}
	return errs
}

// Comment godoc
// @Summary Comment on an event
// @Description Posts a review of a completed event. Only members may comment, at most once per event; the optional rating must be between 1 and 5.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param request body controllers.CommentEventRequest true "Comment"
// @Success 201 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/comments [post]
func (c *EventController) Comment(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var req CommentEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.CommentEvent(r.Context(), eventID, userID, req.Comment, req.Rating); err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, map[string]string{"status": "created"})
}

// ListCommentsSuccessResponse is the success response envelope for GET /events/{eventID}/comments (200).
type ListCommentsSuccessResponse struct {
	Data  []*domain.Comment `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// Comments godoc
// @Summary List event comments
// @Description Returns the event's comments, newest first.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.ListCommentsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/comments [get]
func (c *EventController) Comments(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	if _, ok := callerID(w, r); !ok {
		return
	}
	comments, err := c.Service.EventComments(r.Context(), eventID)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, comments)
}

// ListMembersSuccessResponse is the success response envelope for GET /events/{eventID}/members (200).
type ListMembersSuccessResponse struct {
	Data  []*domain.User    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// Members godoc
// @Summary List event members
// @Description Returns the event's member roster. Admin only.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.ListMembersSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/members [get]
func (c *EventController) Members(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	if _, ok := c.requireAdmin(w, r); !ok {
		return
	}
	members, err := c.Service.EventMembers(r.Context(), eventID)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, members)
}

// ExportMembersSuccessResponse is the success response envelope for POST /events/{eventID}/members/export (200).
type ExportMembersSuccessResponse struct {
	Data  map[string]string `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ExportMembers godoc
// @Summary Export event members to CSV
// @Description Writes the event's member roster to a CSV file on the server and returns its path. Admin only.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.ExportMembersSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/members/export [post]
func (c *EventController) ExportMembers(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	if _, ok := c.requireAdmin(w, r); !ok {
		return
	}
	path, err := c.Service.ExportMembers(r.Context(), eventID)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"file": path})
}
