package identity

import (
	"context"
	"errors"
)

// ErrDuplicateEmail reports a signup attempt with an email that is already
// registered.
var ErrDuplicateEmail = errors.New("email already registered")

// ErrNotFound reports a lookup for an email with no account.
var ErrNotFound = errors.New("user not found")

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
}
