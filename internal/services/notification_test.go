package services

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventboard/internal/domain"
)

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications map[string]*domain.Notification
	nextID        int
	err           error
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{notifications: map[string]*domain.Notification{}}
}

func (f *fakeNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.nextID++
	n.ID = "n-" + strconv.Itoa(f.nextID)
	clone := *n
	f.notifications[n.ID] = &clone
	return nil
}

func (f *fakeNotificationRepo) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notifications[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *n
	return &clone, nil
}

func (f *fakeNotificationRepo) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]*domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.Notification
	for _, n := range f.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		clone := *n
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notifications[id]
	if !ok {
		return domain.ErrNotFound
	}
	n.IsRead = true
	return nil
}

func (f *fakeNotificationRepo) Exists(ctx context.Context, eventID, userID string, kind domain.NotificationKind) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	for _, n := range f.notifications {
		if n.EventID == eventID && n.UserID == userID && n.Kind == kind {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeNotificationRepo) seed(n *domain.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifications[n.ID] = n
}

func TestNotificationService_List(t *testing.T) {
	repo := newFakeNotificationRepo()
	repo.seed(&domain.Notification{ID: "n1", UserID: "u1", EventID: "e1", Kind: domain.KindEventUpdated})
	repo.seed(&domain.Notification{ID: "n2", UserID: "u1", EventID: "e1", Kind: domain.KindEventReminder24h, IsRead: true})
	repo.seed(&domain.Notification{ID: "n3", UserID: "u2", EventID: "e1", Kind: domain.KindEventUpdated})
	svc := NewNotificationService(repo, 5*time.Second)

	all, err := svc.List(context.Background(), "u1", false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	unread, err := svc.List(context.Background(), "u1", true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "n1", unread[0].ID)

	empty, err := svc.List(context.Background(), "nobody", false)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestNotificationService_MarkRead(t *testing.T) {
	repo := newFakeNotificationRepo()
	repo.seed(&domain.Notification{ID: "n1", UserID: "u1", EventID: "e1", Kind: domain.KindEventUpdated})
	svc := NewNotificationService(repo, 5*time.Second)
	ctx := context.Background()

	_, err := svc.MarkRead(ctx, "missing", "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.MarkRead(ctx, "n1", "someone-else")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	n, err := svc.MarkRead(ctx, "n1", "u1")
	require.NoError(t, err)
	assert.True(t, n.IsRead)

	_, err = svc.MarkRead(ctx, "n1", "u1")
	assert.ErrorIs(t, err, domain.ErrAlreadyRead)
}
