package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/job-board/internal/domain"
	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

const accessDenied = "Access denied. Insufficient permissions."

// RequireSession ensures the caller has an active session.
func RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !ActorFromContext(c).Authenticated() {
			return apperrors.NewLoginRequired()
		}
		return c.Next()
	}
}

// RequireRole ensures the caller holds one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := ActorFromContext(c)
		if !actor.Authenticated() {
			return apperrors.NewLoginRequired()
		}
		if !actor.HasRole(allowed...) {
			return apperrors.NewAuthorizationError(accessDenied)
		}
		return c.Next()
	}
}

// RequirePermission ensures the caller is an admin granted capability.
func RequirePermission(capability domain.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := ActorFromContext(c)
		if !actor.Authenticated() {
			return apperrors.NewLoginRequired()
		}
		if !actor.Can(capability) {
			return apperrors.NewAuthorizationError(accessDenied)
		}
		return c.Next()
	}
}
