package persistence

import (
	"context"
	"sync"

	"github.com/langaide/langaide/internal/domain/entity"
	"github.com/langaide/langaide/internal/domain/repository"
	"github.com/langaide/langaide/pkg/errors"
)

// MemoryUserRepository is the in-memory account store (development
// and tests).
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*entity.User
	byName  map[string]*entity.User
	byEmail map[string]*entity.User
}

// NewMemoryUserRepository creates an in-memory account repository.
func NewMemoryUserRepository() repository.UserRepository {
	return &MemoryUserRepository{
		byID:    make(map[string]*entity.User),
		byName:  make(map[string]*entity.User),
		byEmail: make(map[string]*entity.User),
	}
}

// Create persists a new account.
func (r *MemoryUserRepository) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[user.Username()]; ok {
		return errors.NewAlreadyExistsError("this username is already taken")
	}
	if _, ok := r.byEmail[user.Email()]; ok {
		return errors.NewAlreadyExistsError("this email is already registered")
	}

	r.byID[user.ID()] = user
	r.byName[user.Username()] = user
	r.byEmail[user.Email()] = user
	return nil
}

// FindByID looks an account up by id.
func (r *MemoryUserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, errors.NewNotFoundError("user not found")
	}
	return user, nil
}

// FindByUsername looks an account up by handle.
func (r *MemoryUserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byName[username]
	if !ok {
		return nil, errors.NewNotFoundError("user not found")
	}
	return user, nil
}

// FindByEmail looks an account up by email.
func (r *MemoryUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byEmail[email]
	if !ok {
		return nil, errors.NewNotFoundError("user not found")
	}
	return user, nil
}

// UsernameExists reports whether the handle is taken.
func (r *MemoryUserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byName[username]
	return ok, nil
}
