package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eventboard/internal/delivery/http/helpers"
	"eventboard/internal/delivery/http/middleware"
	"eventboard/internal/domain"
)

const testEventID = "11111111-1111-1111-1111-111111111111"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

type mockEventService struct {
	event    *domain.Event
	events   []*domain.Event
	comments []*domain.Comment
	members  []*domain.User
	path     string
	err      error
}

func (m *mockEventService) CreateEvent(ctx context.Context, spec domain.CreateEventSpec) (*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.event, nil
}

func (m *mockEventService) GetEvent(ctx context.Context, eventID, callerID string, isAdmin bool) (*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.event, nil
}

func (m *mockEventService) ListEvents(ctx context.Context, filter domain.EventFilter, callerID string, isAdmin bool) ([]*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.events, nil
}

func (m *mockEventService) LikedEvents(ctx context.Context, userID string, isAdmin bool) ([]*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.events, nil
}

func (m *mockEventService) UpdateEvent(ctx context.Context, eventID string, upd domain.EventUpdate) (*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.event, nil
}

func (m *mockEventService) DeleteEvent(ctx context.Context, eventID string) error {
	return m.err
}

func (m *mockEventService) JoinEvent(ctx context.Context, eventID, userID string) (*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.event, nil
}

func (m *mockEventService) LeaveEvent(ctx context.Context, eventID, userID string) (*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.event, nil
}

func (m *mockEventService) LikeEvent(ctx context.Context, eventID, userID string) (*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.event, nil
}

func (m *mockEventService) UnlikeEvent(ctx context.Context, eventID, userID string) (*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.event, nil
}

func (m *mockEventService) CommentEvent(ctx context.Context, eventID, userID, body string, rating *int) error {
	return m.err
}

func (m *mockEventService) EventComments(ctx context.Context, eventID string) ([]*domain.Comment, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.comments, nil
}

func (m *mockEventService) EventMembers(ctx context.Context, eventID string) ([]*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.members, nil
}

func (m *mockEventService) ExportMembers(ctx context.Context, eventID string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.path, nil
}

type mockUserDirectory struct {
	users map[string]*domain.User
}

func (m *mockUserDirectory) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserDirectory) ListAdminEmails(ctx context.Context) ([]string, error) {
	return nil, nil
}

func regularUsers() *mockUserDirectory {
	return &mockUserDirectory{users: map[string]*domain.User{
		"u1":    {ID: "u1"},
		"admin": {ID: "admin", IsAdmin: true},
	}}
}

func authedRequest(method, target string, body []byte, userID string) *http.Request {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if userID != "" {
		req = req.WithContext(middleware.SetUserID(req.Context(), userID))
	}
	return req
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) helpers.APIResponse {
	t.Helper()
	var resp helpers.APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return resp
}

func TestEventController_Join(t *testing.T) {
	tests := []struct {
		name       string
		eventID    string
		userID     string
		svcErr     error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "success",
			eventID:    testEventID,
			userID:     "u1",
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing user context",
			eventID:    testEventID,
			wantStatus: http.StatusUnauthorized,
			wantCode:   helpers.ErrCodeUnauthorized,
		},
		{
			name:       "invalid event id",
			eventID:    "not-a-uuid",
			userID:     "u1",
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "event not found",
			eventID:    testEventID,
			userID:     "u1",
			svcErr:     domain.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   helpers.ErrCodeNotFound,
		},
		{
			name:       "not invited",
			eventID:    testEventID,
			userID:     "u1",
			svcErr:     domain.ErrNotInvited,
			wantStatus: http.StatusForbidden,
			wantCode:   helpers.ErrCodeForbidden,
		},
		{
			name:       "event full",
			eventID:    testEventID,
			userID:     "u1",
			svcErr:     domain.ErrEventFull,
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "already member",
			eventID:    testEventID,
			userID:     "u1",
			svcErr:     domain.ErrAlreadyMember,
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockEventService{event: &domain.Event{ID: tt.eventID}, err: tt.svcErr}
			ctrl := NewEventController(discardLogger(), svc, regularUsers())

			req := authedRequest(http.MethodPost, "/events/"+tt.eventID+"/join", nil, tt.userID)
			req.SetPathValue("eventID", tt.eventID)
			w := httptest.NewRecorder()

			ctrl.Join(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantCode != "" {
				resp := decodeEnvelope(t, w)
				if resp.Error == nil || resp.Error.Code != tt.wantCode {
					t.Fatalf("expected error code %q, got %+v", tt.wantCode, resp.Error)
				}
			}
		})
	}
}

func TestEventController_Create_AdminOnly(t *testing.T) {
	svc := &mockEventService{event: &domain.Event{ID: testEventID, Name: "Offsite"}}
	ctrl := NewEventController(discardLogger(), svc, regularUsers())

	body, _ := json.Marshal(map[string]any{
		"name":        "Offsite",
		"description": "d",
		"end_date":    time.Now().Add(72 * time.Hour).Format(time.RFC3339),
		"type":        "meeting",
	})

	t.Run("non-admin forbidden", func(t *testing.T) {
		req := authedRequest(http.MethodPost, "/events", body, "u1")
		w := httptest.NewRecorder()
		ctrl.Create(w, req)
		if w.Code != http.StatusForbidden {
			t.Fatalf("expected status %d, got %d", http.StatusForbidden, w.Code)
		}
	})

	t.Run("admin creates", func(t *testing.T) {
		req := authedRequest(http.MethodPost, "/events", body, "admin")
		w := httptest.NewRecorder()
		ctrl.Create(w, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d", http.StatusCreated, w.Code)
		}
		resp := decodeEnvelope(t, w)
		if resp.Error != nil {
			t.Fatalf("expected no error, got %+v", resp.Error)
		}
	})

	t.Run("missing required fields", func(t *testing.T) {
		bad, _ := json.Marshal(map[string]any{"name": "Offsite"})
		req := authedRequest(http.MethodPost, "/events", bad, "admin")
		w := httptest.NewRecorder()
		ctrl.Create(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})

	t.Run("unknown fields rejected", func(t *testing.T) {
		bad, _ := json.Marshal(map[string]any{
			"name":        "Offsite",
			"description": "d",
			"end_date":    time.Now().Add(72 * time.Hour).Format(time.RFC3339),
			"type":        "meeting",
			"status":      "active",
		})
		req := authedRequest(http.MethodPost, "/events", bad, "admin")
		w := httptest.NewRecorder()
		ctrl.Create(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})
}

func TestEventController_Comment(t *testing.T) {
	tests := []struct {
		name       string
		body       map[string]any
		svcErr     error
		wantStatus int
	}{
		{
			name:       "success",
			body:       map[string]any{"comment": "great event", "rating": 5},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing comment body",
			body:       map[string]any{"rating": 5},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid rating from service",
			body:       map[string]any{"comment": "ok", "rating": 9},
			svcErr:     domain.ErrInvalidRating,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not completed yet",
			body:       map[string]any{"comment": "ok"},
			svcErr:     domain.ErrEventNotCompleted,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "second comment",
			body:       map[string]any{"comment": "ok"},
			svcErr:     domain.ErrAlreadyCommented,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockEventService{err: tt.svcErr}
			ctrl := NewEventController(discardLogger(), svc, regularUsers())

			body, _ := json.Marshal(tt.body)
			req := authedRequest(http.MethodPost, "/events/"+testEventID+"/comments", body, "u1")
			req.SetPathValue("eventID", testEventID)
			w := httptest.NewRecorder()

			ctrl.Comment(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestEventController_Members_AdminOnly(t *testing.T) {
	svc := &mockEventService{members: []*domain.User{{ID: "u1"}, {ID: "u2"}}}
	ctrl := NewEventController(discardLogger(), svc, regularUsers())

	t.Run("non-admin forbidden", func(t *testing.T) {
		req := authedRequest(http.MethodGet, "/events/"+testEventID+"/members", nil, "u1")
		req.SetPathValue("eventID", testEventID)
		w := httptest.NewRecorder()
		ctrl.Members(w, req)
		if w.Code != http.StatusForbidden {
			t.Fatalf("expected status %d, got %d", http.StatusForbidden, w.Code)
		}
	})

	t.Run("admin lists roster", func(t *testing.T) {
		req := authedRequest(http.MethodGet, "/events/"+testEventID+"/members", nil, "admin")
		req.SetPathValue("eventID", testEventID)
		w := httptest.NewRecorder()
		ctrl.Members(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
		}
	})
}

func TestEventController_Liked(t *testing.T) {
	svc := &mockEventService{events: []*domain.Event{{ID: testEventID, Name: "Offsite"}}}
	ctrl := NewEventController(discardLogger(), svc, regularUsers())

	t.Run("success", func(t *testing.T) {
		req := authedRequest(http.MethodGet, "/events/liked", nil, "u1")
		w := httptest.NewRecorder()
		ctrl.Liked(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
		}
	})

	t.Run("unauthenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/events/liked", nil)
		w := httptest.NewRecorder()
		ctrl.Liked(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
		}
	})
}

func TestEventController_List_FilterParsing(t *testing.T) {
	svc := &mockEventService{events: []*domain.Event{}}
	ctrl := NewEventController(discardLogger(), svc, regularUsers())

	t.Run("valid filters", func(t *testing.T) {
		req := authedRequest(http.MethodGet,
			"/events?name=offsite&from=2026-06-01&to=2026-06-30&type=meeting&type=party&city=Berlin&status=active&max_members=10&include_completed=true",
			nil, "u1")
		w := httptest.NewRecorder()
		ctrl.List(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
		}
	})

	t.Run("bad status", func(t *testing.T) {
		req := authedRequest(http.MethodGet, "/events?status=archived", nil, "u1")
		w := httptest.NewRecorder()
		ctrl.List(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})

	t.Run("bad date", func(t *testing.T) {
		req := authedRequest(http.MethodGet, "/events?from=junk", nil, "u1")
		w := httptest.NewRecorder()
		ctrl.List(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})
}
