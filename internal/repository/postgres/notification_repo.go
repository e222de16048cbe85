package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventboard/internal/domain"
)

type notificationRepository struct {
	DB *sql.DB
}

func NewNotificationRepository(db *sql.DB) domain.NotificationRepository {
	return &notificationRepository{
		DB: db,
	}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (user_id, event_id, type, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		n.UserID, n.EventID, string(n.Kind), n.IsRead, n.CreatedAt,
	).Scan(&n.ID)
}

func (r *notificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	query := `
		SELECT n.id, n.user_id, n.event_id, e.name, n.type, n.is_read, n.created_at
		FROM notifications n
		JOIN events e ON e.id = n.event_id
		WHERE n.id = $1
	`
	n := &domain.Notification{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&n.ID, &n.UserID, &n.EventID, &n.EventName, &n.Kind, &n.IsRead, &n.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return n, nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]*domain.Notification, error) {
	query := `
		SELECT n.id, n.user_id, n.event_id, e.name, n.type, n.is_read, n.created_at
		FROM notifications n
		JOIN events e ON e.id = n.event_id
		WHERE n.user_id = $1
	`
	args := []any{userID}
	if unreadOnly {
		query += ` AND n.is_read = FALSE`
	}
	query += ` ORDER BY n.created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	notifications := make([]*domain.Notification, 0)
	for rows.Next() {
		n := &domain.Notification{}
		if err := rows.Scan(&n.ID, &n.UserID, &n.EventID, &n.EventName, &n.Kind, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *notificationRepository) Exists(ctx context.Context, eventID, userID string, kind domain.NotificationKind) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM notifications WHERE event_id = $1 AND user_id = $2 AND type = $3)`,
		eventID, userID, string(kind),
	).Scan(&exists)
	return exists, err
}
