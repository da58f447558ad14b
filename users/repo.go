package users

import (
	"context"
	"errors"
)

var (
	ErrNotFound         = errors.New("user not found")
	ErrPasswordMismatch = errors.New("password mismatch")
)

type Repo interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)

	// FirstTimeUser reports whether the user has never logged in.
	FirstTimeUser(ctx context.Context, id string) (bool, error)
	UpdateLastLogin(ctx context.Context, id string) error

	// UpdatePassword verifies oldPassword before setting newPassword and
	// returns ErrPasswordMismatch when it does not match. A nil user with a
	// nil error means nothing was updated.
	UpdatePassword(ctx context.Context, username, oldPassword, newPassword string) (*User, error)
	ChangePassword(ctx context.Context, username, newPassword string) (*User, error)

	Upsert(ctx context.Context, user *User) error
}
