package auth

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/repository"
	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

const (
	actorKey   = "auth_actor"
	sessionKey = "auth_session"
)

// UserLoader reloads the account behind a session.
type UserLoader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// SessionMiddleware resolves the session cookie into a request actor.
type SessionMiddleware struct {
	tokens     *TokenManager
	sessions   SessionStore
	users      UserLoader
	cookieName string
	logger     *zap.Logger
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(tokens *TokenManager, sessions SessionStore, users UserLoader, cookieName string, logger *zap.Logger) *SessionMiddleware {
	return &SessionMiddleware{tokens: tokens, sessions: sessions, users: users, cookieName: cookieName, logger: logger}
}

// Handle never rejects a request; guards decide what anonymous callers may reach.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	c.Locals(actorKey, domain.AnonymousActor)

	raw := c.Cookies(m.cookieName)
	if raw == "" {
		return c.Next()
	}

	claims, err := m.tokens.ParseToken(raw)
	if err != nil {
		return c.Next()
	}

	ctx := c.UserContext()
	session, err := m.sessions.Get(ctx, claims.SessionID())
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			m.logger.Warn("session lookup failed", zap.Error(err))
		}
		return c.Next()
	}

	user, err := m.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = m.sessions.Delete(ctx, session.ID)
			return c.Next()
		}
		return apperrors.NewStorageError(err)
	}
	if !user.Active {
		_ = m.sessions.Delete(ctx, session.ID)
		return c.Next()
	}

	c.Locals(sessionKey, session.ID)
	c.Locals(actorKey, domain.ActorFromUser(user))
	return c.Next()
}

// ActorFromContext returns the request actor, anonymous when none was resolved.
func ActorFromContext(c *fiber.Ctx) domain.Actor {
	actor, ok := c.Locals(actorKey).(domain.Actor)
	if !ok {
		return domain.AnonymousActor
	}
	return actor
}

// SessionIDFromContext returns the active session id, if any.
func SessionIDFromContext(c *fiber.Ctx) (string, bool) {
	id, ok := c.Locals(sessionKey).(string)
	return id, ok && id != ""
}
