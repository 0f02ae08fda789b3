package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/job-board/internal/auth"
	"github.com/spec-kit/job-board/internal/config"
	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/events"
	"github.com/spec-kit/job-board/internal/repository"
	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

// AuthService coordinates registration, login and logout.
type AuthService struct {
	users      repository.UserRepository
	sessions   auth.SessionStore
	tokens     *auth.TokenManager
	limiter    auth.Limiter
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
	sessionCfg config.SessionConfig
}

// AuthDependencies encapsulates collaborators of the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Sessions   auth.SessionStore
	Tokens     *auth.TokenManager
	Limiter    auth.Limiter
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// RegisterInput is the self-registration form.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// LoginInput is the login form plus the caller address used for throttling.
type LoginInput struct {
	Email      string
	Password   string
	RememberMe bool
	ClientIP   string
}

// SessionResult describes a freshly opened session.
type SessionResult struct {
	User       *domain.User
	Token      string
	ExpiresAt  time.Time
	Persistent bool
	Redirect   string
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		sessions:   deps.Sessions,
		tokens:     deps.Tokens,
		limiter:    deps.Limiter,
		dispatcher: deps.Dispatcher,
		logger:     nopLogger(deps.Logger),
		bcryptCost: cfg.Auth.BcryptCost,
		sessionCfg: cfg.Session,
	}
}

// Register creates a seeker or employer account and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*SessionResult, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	if username == "" || email == "" || in.Password == "" || strings.TrimSpace(in.Role) == "" {
		return nil, apperrors.NewValidationError("All fields are required.", nil)
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}
	role, ok := domain.ParseRole(in.Role)
	if !ok || !role.SelfRegistrable() {
		return nil, apperrors.NewValidationError("Invalid role selected.", map[string]any{"field": "role"})
	}
	if !validEmail(email) {
		return nil, apperrors.NewValidationError("Please enter a valid email address.", map[string]any{"field": "email"})
	}
	if err := s.ensureAvailable(ctx, username, email); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, uniquenessConflict(err)
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventUserRegistered, user.ID, domain.ActorFromUser(user),
		events.UserRegisteredPayload{Username: user.Username, Role: user.Role}))

	return s.openSession(ctx, user, false)
}

// ensureAvailable rejects a taken username or email. The unique constraints still
// catch a concurrent registration that slips past this check.
func (s *AuthService) ensureAvailable(ctx context.Context, username, email string) error {
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return apperrors.NewValidationError("Username already exists.", map[string]any{"field": "username"})
	} else if !errors.Is(err, repository.ErrNotFound) {
		return apperrors.MapError(err)
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return apperrors.NewValidationError("Email already registered.", map[string]any{"field": "email"})
	} else if !errors.Is(err, repository.ErrNotFound) {
		return apperrors.MapError(err)
	}
	return nil
}

// Login verifies credentials. Every failure looks the same to the caller.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*SessionResult, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return nil, apperrors.NewAuthenticationError()
	}

	if s.limiter != nil && !s.limiter.Allow(ctx, loginLimiterKey(in.ClientIP, email)) {
		return nil, apperrors.NewRateLimited("Too many login attempts. Please try again later.")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = auth.CompareDummy(in.Password, s.bcryptCost)
			return nil, apperrors.NewAuthenticationError()
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, in.Password); err != nil {
		return nil, apperrors.NewAuthenticationError()
	}
	if !user.Active {
		return nil, apperrors.NewAuthenticationError()
	}
	s.upgradeHash(ctx, user, in.Password)

	return s.openSession(ctx, user, in.RememberMe)
}

// upgradeHash re-hashes a password stored under an older bcrypt cost.
// Failure only costs the upgrade; the login still succeeds.
func (s *AuthService) upgradeHash(ctx context.Context, user *domain.User, password string) {
	if !auth.NeedsRehash(user.PasswordHash, s.bcryptCost) {
		return
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		s.logger.Warn("password rehash failed", zap.Int64("user_id", user.ID), zap.Error(err))
		return
	}
	updated := *user
	updated.PasswordHash = hash
	if err := s.users.Update(ctx, &updated); err != nil {
		s.logger.Warn("password rehash not saved", zap.Int64("user_id", user.ID), zap.Error(err))
		return
	}
	user.PasswordHash = hash
}

// Logout removes the server-side session. Missing sessions are not an error.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		s.logger.Warn("delete session failed", zap.String("session_id", sessionID), zap.Error(err))
	}
	return nil
}

func (s *AuthService) openSession(ctx context.Context, user *domain.User, remember bool) (*SessionResult, error) {
	ttl := s.sessionCfg.DefaultTTL()
	if remember {
		ttl = s.sessionCfg.RememberTTL()
	}

	session := &auth.Session{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		Remember: remember,
	}
	if err := s.sessions.Create(ctx, session, ttl); err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	token, err := s.tokens.GenerateToken(session.ID, user.ID, session.ExpiresAt)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	redirect, _ := auth.DashboardPath(user.Role)
	return &SessionResult{
		User:       user,
		Token:      token,
		ExpiresAt:  session.ExpiresAt,
		Persistent: remember,
		Redirect:   redirect,
	}, nil
}

func loginLimiterKey(clientIP, email string) string {
	return clientIP + ":" + strings.ToLower(email)
}
