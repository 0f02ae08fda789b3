package service

import (
	"context"
	"errors"
	"strings"

	"github.com/spec-kit/job-board/internal/auth"
	"github.com/spec-kit/job-board/internal/config"
	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/repository"
	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

// ProfileService reads and edits the caller's own account.
type ProfileService struct {
	users      repository.UserRepository
	bcryptCost int
}

// Profile is an account plus its derived display values.
type Profile struct {
	User        *domain.User
	RoleDisplay string
	Completion  int
}

// UpdateProfileInput carries optional changes. Nil fields are left untouched.
type UpdateProfileInput struct {
	Username *string
	Email    *string
	Password *string
	FullName *string
	Phone    *string
	Location *string
	Bio      *string
}

// NewProfileService constructs the service.
func NewProfileService(cfg config.Config, users repository.UserRepository) *ProfileService {
	return &ProfileService{users: users, bcryptCost: cfg.Auth.BcryptCost}
}

// GetProfile loads the actor's account.
func (s *ProfileService) GetProfile(ctx context.Context, actor domain.Actor) (*Profile, error) {
	user, err := s.load(ctx, actor)
	if err != nil {
		return nil, err
	}
	return newProfile(user), nil
}

// UpdateProfile applies the changes after re-checking username and email uniqueness.
func (s *ProfileService) UpdateProfile(ctx context.Context, actor domain.Actor, in UpdateProfileInput) (*Profile, error) {
	user, err := s.load(ctx, actor)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if username == "" {
			return nil, apperrors.NewValidationError("Username cannot be empty.", map[string]any{"field": "username"})
		}
		if username != user.Username {
			if err := s.ensureFree(ctx, s.users.GetByUsername, username, user.ID, "Username already exists.", "username"); err != nil {
				return nil, err
			}
			user.Username = username
		}
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if !validEmail(email) {
			return nil, apperrors.NewValidationError("Please enter a valid email address.", map[string]any{"field": "email"})
		}
		if email != user.Email {
			if err := s.ensureFree(ctx, s.users.GetByEmail, email, user.ID, "Email already registered.", "email"); err != nil {
				return nil, err
			}
			user.Email = email
		}
	}
	if in.Password != nil && *in.Password != "" {
		if err := checkPassword(*in.Password); err != nil {
			return nil, err
		}
		hash, err := auth.HashPassword(*in.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewStorageError(err)
		}
		user.PasswordHash = hash
	}
	if in.FullName != nil {
		user.FullName = optional(in.FullName)
	}
	if in.Phone != nil {
		user.Phone = optional(in.Phone)
	}
	if in.Location != nil {
		user.Location = optional(in.Location)
	}
	if in.Bio != nil {
		user.Bio = optional(in.Bio)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, uniquenessConflict(err)
	}
	return newProfile(user), nil
}

func (s *ProfileService) load(ctx context.Context, actor domain.Actor) (*domain.User, error) {
	if !actor.Authenticated() {
		return nil, apperrors.NewLoginRequired()
	}
	user, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewLoginRequired()
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

type userLookup func(ctx context.Context, value string) (*domain.User, error)

func (s *ProfileService) ensureFree(ctx context.Context, lookup userLookup, value string, selfID int64, message, field string) error {
	existing, err := lookup(ctx, value)
	if err == nil && existing.ID != selfID {
		return apperrors.NewValidationError(message, map[string]any{"field": field})
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return apperrors.MapError(err)
	}
	return nil
}

func newProfile(user *domain.User) *Profile {
	return &Profile{
		User:        user,
		RoleDisplay: user.Role.DisplayName(),
		Completion:  user.ProfileCompletion(),
	}
}
