package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/langaide/langaide/internal/domain/entity"
	"github.com/langaide/langaide/internal/domain/repository"
	"github.com/langaide/langaide/internal/infrastructure/auth"
	"github.com/langaide/langaide/internal/infrastructure/captcha"
	apperrors "github.com/langaide/langaide/pkg/errors"
)

// RegisterInput is the registration request.
type RegisterInput struct {
	Username     string
	Email        string
	Password     string
	CaptchaToken string
}

// AccountUseCase handles registration, login and username checks.
type AccountUseCase struct {
	userRepo repository.UserRepository
	hasher   *auth.PasswordHasher
	tokens   *auth.TokenManager
	captcha  captcha.Verifier
	logger   *zap.Logger
}

// NewAccountUseCase creates the account use-case.
func NewAccountUseCase(
	userRepo repository.UserRepository,
	hasher *auth.PasswordHasher,
	tokens *auth.TokenManager,
	verifier captcha.Verifier,
	logger *zap.Logger,
) *AccountUseCase {
	return &AccountUseCase{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		captcha:  verifier,
		logger:   logger,
	}
}

// Register creates a new account. The captcha is checked before any
// store access; duplicate username/email are rejected with typed
// errors and leave no row behind.
func (uc *AccountUseCase) Register(ctx context.Context, in RegisterInput) error {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	if username == "" {
		return apperrors.NewInvalidInputError("username is required")
	}
	if email == "" {
		return apperrors.NewInvalidInputError("email is required")
	}
	if in.Password == "" {
		return apperrors.NewInvalidInputError("password is required")
	}

	valid, err := uc.captcha.Verify(ctx, in.CaptchaToken)
	if err != nil {
		uc.logger.Error("Captcha verification failed", zap.Error(err))
		return err
	}
	if !valid {
		return apperrors.NewInvalidInputError("invalid reCAPTCHA")
	}

	taken, err := uc.userRepo.UsernameExists(ctx, username)
	if err != nil {
		return err
	}
	if taken {
		return apperrors.NewAlreadyExistsError("this username is already taken")
	}

	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		return apperrors.NewInternalErrorWithCause("hash password", err)
	}

	user, err := entity.NewUser(uuid.NewString(), username, email, hash)
	if err != nil {
		return apperrors.NewInvalidInputError(err.Error())
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return err
	}

	uc.logger.Info("Account registered",
		zap.String("user_id", user.ID()),
		zap.String("username", user.Username()),
	)
	return nil
}

// Login authenticates by email and returns a session token. Bad
// credentials produce the same unauthorized error whether the account
// is missing or the password is wrong.
func (uc *AccountUseCase) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", apperrors.NewUnauthorizedError("invalid email or password")
	}

	user, err := uc.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return "", apperrors.NewUnauthorizedError("invalid email or password")
		}
		return "", err
	}

	if !uc.hasher.Verify(user.PasswordHash(), password) {
		return "", apperrors.NewUnauthorizedError("invalid email or password")
	}

	token, err := uc.tokens.Generate(user.ID())
	if err != nil {
		return "", apperrors.NewInternalErrorWithCause("issue session token", err)
	}

	uc.logger.Info("User logged in", zap.String("user_id", user.ID()))
	return token, nil
}

// UsernameTaken reports whether the handle is already registered.
func (uc *AccountUseCase) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return uc.userRepo.UsernameExists(ctx, strings.TrimSpace(username))
}
