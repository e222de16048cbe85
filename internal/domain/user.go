package domain

import (
	"context"
	"time"
)

// User represents a registered user
// swagger:model User
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	LastName  string    `json:"last_name"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName returns "Name LastName" with empty parts elided.
func (u *User) FullName() string {
	if u.Name == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.Name
	}
	return u.Name + " " + u.LastName
}

// UserDirectory is the read-only user lookup the engine consumes. Account
// management lives elsewhere.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*User, error)
	ListAdminEmails(ctx context.Context) ([]string, error)
}

// TokenVerifier verifies a bearer token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}
