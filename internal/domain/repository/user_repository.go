package repository

import (
	"context"

	"github.com/langaide/langaide/internal/domain/entity"
)

// UserRepository is the account store.
type UserRepository interface {
	// Create persists a new account. Returns an already-exists error
	// when the username or email is taken.
	Create(ctx context.Context, user *entity.User) error

	// FindByID looks an account up by id.
	FindByID(ctx context.Context, id string) (*entity.User, error)

	// FindByUsername looks an account up by its unique handle.
	FindByUsername(ctx context.Context, username string) (*entity.User, error)

	// FindByEmail looks an account up by its unique email.
	// Login authenticates by email, not username.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// UsernameExists reports whether the handle is taken.
	UsernameExists(ctx context.Context, username string) (bool, error)
}
