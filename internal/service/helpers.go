package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spec-kit/job-board/internal/auth"
	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/events"
	"github.com/spec-kit/job-board/internal/repository"
	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

// MinPasswordLength is counted in characters.
const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func validPassword(password string) bool {
	return checkPassword(password) == nil
}

func checkPassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return apperrors.NewValidationError("Password must be at least 6 characters long.", map[string]any{"field": "password"})
	}
	if len(password) > auth.MaxPasswordBytes {
		return apperrors.NewValidationError("Password must be at most 72 bytes long.", map[string]any{"field": "password"})
	}
	return nil
}

// optional trims s and turns a blank value into NULL.
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func actorRef(actor domain.Actor) *int64 {
	if !actor.Authenticated() {
		return nil
	}
	id := actor.UserID
	return &id
}

// duplicateField maps a unique constraint onto the request field it guards.
func duplicateField(err error) (string, bool) {
	var dup *repository.DuplicateError
	if !errors.As(err, &dup) {
		return "", false
	}
	switch dup.Constraint {
	case repository.ConstraintUsername:
		return "username", true
	case repository.ConstraintEmail:
		return "email", true
	default:
		return dup.Constraint, true
	}
}

// uniquenessConflict converts a late unique violation on users into a conflict.
func uniquenessConflict(err error) error {
	field, ok := duplicateField(err)
	if !ok {
		return apperrors.MapError(err)
	}
	message := "Username already exists."
	if field == "email" {
		message = "Email already registered."
	}
	return apperrors.NewConflict(message, map[string]any{"field": field})
}

func recordAudit(ctx context.Context, repo repository.AuditRepository, actor domain.Actor, entity domain.AuditEntity, entityID int64, action domain.AuditAction, details map[string]any) error {
	if repo == nil {
		return nil
	}
	return repo.Create(ctx, &domain.AuditEntry{
		ActorID:  actorRef(actor),
		Entity:   entity,
		EntityID: entityID,
		Action:   action,
		Details:  details,
	})
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil && logger != nil {
		logger.Warn("publish event failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func nopLogger(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
