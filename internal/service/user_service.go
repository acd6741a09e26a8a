package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/pkg/crypto"
	"github.com/prn-tf/zealine/internal/repository"
)

// UserService handles account registration, authentication, and profiles.
type UserService struct {
	users  repository.UserRepository
	logger zerolog.Logger
}

// NewUserService creates a new user service.
func NewUserService(users repository.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: logger.With().Str("service", "user").Logger(),
	}
}

// ===== Input/Output Structs =====

// RegisterInput contains parameters for account registration.
type RegisterInput struct {
	Handle      string
	DisplayName string
	Email       string
	Password    string
}

// UpdateProfileInput contains the mutable profile fields. Nil pointers are
// left unchanged.
type UpdateProfileInput struct {
	UserID      uuid.UUID
	DisplayName *string
	AvatarURL   *string
	Bio         *string
}

// ===== Service Methods =====

// Register creates a new account. Handles are normalized to lowercase and
// must be unique among live accounts.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	handle := strings.ToLower(strings.TrimSpace(input.Handle))
	if !domain.ValidateHandle(handle) {
		return nil, domain.ErrInvalidHandle
	}

	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		// Length violations surface as-is; they are user errors.
		if errors.Is(err, crypto.ErrPasswordTooShort) || errors.Is(err, crypto.ErrPasswordTooLong) {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("Failed to hash password")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	user, err := domain.NewUser(handle, strings.TrimSpace(input.DisplayName), strings.TrimSpace(input.Email), hash)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, domain.ErrUserAlreadyExists
		}
		s.logger.Error().Err(err).Str("handle", handle).Msg("Failed to create user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("user_id", user.ID.String()).
		Str("handle", handle).
		Msg("User registered")

	return user, nil
}

// Authenticate checks a handle/password pair and returns the account.
// A missing handle and a wrong password are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, handle, password string) (*domain.User, error) {
	user, err := s.users.GetByHandle(ctx, strings.ToLower(strings.TrimSpace(handle)))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error().Err(err).Msg("Failed to get user by handle")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if !crypto.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetByID returns a user by id.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Str("user_id", id.String()).Msg("Failed to get user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return user, nil
}

// GetByHandle returns a user by handle.
func (s *UserService) GetByHandle(ctx context.Context, handle string) (*domain.User, error) {
	user, err := s.users.GetByHandle(ctx, strings.ToLower(strings.TrimSpace(handle)))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Str("handle", handle).Msg("Failed to get user by handle")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return user, nil
}

// UpdateProfile applies the provided profile changes.
func (s *UserService) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.DisplayName != nil {
		user.DisplayName = strings.TrimSpace(*input.DisplayName)
	}
	if input.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*input.AvatarURL)
	}
	if input.Bio != nil {
		user.Bio = strings.TrimSpace(*input.Bio)
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to update user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return user, nil
}

// Search returns users whose handle contains the query, case-insensitive.
func (s *UserService) Search(ctx context.Context, query string, input ListInput) ([]*domain.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*domain.User{}, nil
	}

	users, err := s.users.SearchByHandle(ctx, query, input.options())
	if err != nil {
		s.logger.Error().Err(err).Str("query", query).Msg("Failed to search users")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return users, nil
}

// Delete soft-deletes an account. The user's content and interaction rows
// stay in place; the reference sweep has no view of users, so readers filter
// deleted authors at render time.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.users.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Str("user_id", id.String()).Msg("Failed to delete user")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Str("user_id", id.String()).Msg("User deleted")
	return nil
}
