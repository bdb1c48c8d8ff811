package domain

import (
	"context"
	"time"
)

// User represents an account, created either by local registration or by
// the first successful Google sign-in. Name is only set for local accounts;
// DisplayName is the provider profile name and is never used as an author key.
type User struct {
	ID           string
	Name         string
	DisplayName  string
	Email        string
	PasswordHash string
	GoogleID     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasLocalCredentials reports whether the user can sign in with email and password.
func (u *User) HasLocalCredentials() bool {
	return u.Email != "" && u.PasswordHash != ""
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// Create inserts a new user and assigns its ID. It returns
	// ErrDuplicateEmail if another user already holds the email.
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// FindOrCreateByGoogleID returns the user linked to googleID, creating
	// it with the given display name if none exists. Safe under concurrent calls.
	FindOrCreateByGoogleID(ctx context.Context, googleID, displayName string) (*User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
