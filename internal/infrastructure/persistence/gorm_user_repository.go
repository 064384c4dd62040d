package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/langaide/langaide/internal/domain/entity"
	"github.com/langaide/langaide/internal/domain/repository"
	"github.com/langaide/langaide/internal/infrastructure/persistence/models"
	domainErrors "github.com/langaide/langaide/pkg/errors"
)

// GormUserRepository is the GORM-backed account store.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a GORM account repository.
func NewGormUserRepository(db *gorm.DB) repository.UserRepository {
	return &GormUserRepository{db: db}
}

// Create persists a new account. Uniqueness of username and email is
// checked inside one transaction so concurrent registrations cannot
// both pass; the unique indexes remain the final guard.
func (r *GormUserRepository) Create(ctx context.Context, user *entity.User) error {
	model := toUserModel(user)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.UserModel{}).Where("username = ?", model.Username).Count(&count).Error; err != nil {
			return domainErrors.NewInternalErrorWithCause("failed to check username", err)
		}
		if count > 0 {
			return domainErrors.NewAlreadyExistsError("this username is already taken")
		}

		if err := tx.Model(&models.UserModel{}).Where("email = ?", model.Email).Count(&count).Error; err != nil {
			return domainErrors.NewInternalErrorWithCause("failed to check email", err)
		}
		if count > 0 {
			return domainErrors.NewAlreadyExistsError("this email is already registered")
		}

		if err := tx.Create(model).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domainErrors.NewAlreadyExistsError("this username is already taken")
			}
			return domainErrors.NewInternalErrorWithCause("failed to create user", err)
		}
		return nil
	})

	return err
}

// FindByID looks an account up by id.
func (r *GormUserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByUsername looks an account up by handle.
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

// FindByEmail looks an account up by email.
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

// UsernameExists reports whether the handle is taken.
func (r *GormUserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("username = ?", username).
		Count(&count).Error
	if err != nil {
		return false, domainErrors.NewInternalErrorWithCause("failed to check username", err)
	}
	return count > 0, nil
}

func (r *GormUserRepository) findOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).First(&model, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.NewNotFoundError("user not found")
		}
		return nil, domainErrors.NewInternalErrorWithCause("failed to find user", err)
	}
	return toUserEntity(&model), nil
}

func toUserModel(user *entity.User) *models.UserModel {
	return &models.UserModel{
		ID:           user.ID(),
		Username:     user.Username(),
		Email:        user.Email(),
		PasswordHash: user.PasswordHash(),
		IsSuperuser:  user.IsSuperuser(),
		IsStaff:      user.IsStaff(),
		Provider:     string(user.Provider()),
		CreatedAt:    user.CreatedAt(),
		UpdatedAt:    user.UpdatedAt(),
	}
}

func toUserEntity(model *models.UserModel) *entity.User {
	return entity.ReconstructUser(
		model.ID,
		model.Username,
		model.Email,
		model.PasswordHash,
		model.IsSuperuser,
		model.IsStaff,
		entity.AuthProvider(model.Provider),
		model.CreatedAt,
		model.UpdatedAt,
	)
}
