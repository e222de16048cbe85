package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventboard/internal/domain"
)

type notificationService struct {
	repo           domain.NotificationRepository
	contextTimeout time.Duration
}

// NewNotificationService returns the in-app notification service.
func NewNotificationService(repo domain.NotificationRepository, timeout time.Duration) domain.NotificationService {
	return &notificationService{
		repo:           repo,
		contextTimeout: timeout,
	}
}

func (s *notificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]*domain.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	notifications, err := s.repo.ListByUser(ctx, userID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	if notifications == nil {
		notifications = []*domain.Notification{}
	}
	return notifications, nil
}

func (s *notificationService) MarkRead(ctx context.Context, notificationID, callerID string) (*domain.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	n, err := s.repo.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get notification: %w", err)
	}
	if n.UserID != callerID {
		return nil, domain.ErrForbidden
	}
	if n.IsRead {
		return nil, domain.ErrAlreadyRead
	}
	if err := s.repo.MarkRead(ctx, notificationID); err != nil {
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	n.IsRead = true
	return n, nil
}
