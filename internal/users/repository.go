package users

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("user not found")
	ErrEmailTaken      = errors.New("email already exists")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Repository is the persistence contract for users.
// Create must report ErrEmailTaken atomically: two concurrent creates with the
// same email never both succeed.
type Repository interface {
	Create(ctx context.Context, u User) error
	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	SetActive(ctx context.Context, id string, active bool, at time.Time) (User, error)
}
