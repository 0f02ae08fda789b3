package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/job-board/internal/api/dto"
	"github.com/spec-kit/job-board/internal/auth"
	"github.com/spec-kit/job-board/internal/config"
	"github.com/spec-kit/job-board/internal/service"
	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

// AuthHandler exposes registration, login and logout.
type AuthHandler struct {
	auth    *service.AuthService
	session config.SessionConfig
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, session config.SessionConfig) *AuthHandler {
	return &AuthHandler{auth: authService, session: session}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}

	h.setSessionCookie(c, result)
	return respondWithMessage(c, http.StatusCreated, sessionResponse(result),
		apperrors.CategorySuccess, "Registration successful! Welcome to the job board.")
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.auth.Login(c.UserContext(), service.LoginInput{
		Email:      req.Email,
		Password:   req.Password,
		RememberMe: req.RememberMe,
		ClientIP:   c.IP(),
	})
	if err != nil {
		return err
	}

	h.setSessionCookie(c, result)
	return respondWithMessage(c, http.StatusOK, sessionResponse(result),
		apperrors.CategorySuccess, "Welcome back, "+result.User.Username+"!")
}

// Logout handles POST /auth/logout. It succeeds without a session too.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sessionID, _ := auth.SessionIDFromContext(c)
	if err := h.auth.Logout(c.UserContext(), sessionID); err != nil {
		return err
	}
	h.clearSessionCookie(c)
	return respondWithMessage(c, http.StatusOK, dto.RedirectResponse{Redirect: auth.HomePath},
		apperrors.CategoryInfo, "You have been logged out.")
}

// clearSessionCookie expires the cookie under the same path and flags it was issued with,
// otherwise browsers keep the original.
func (h *AuthHandler) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     h.session.CookieName,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.session.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Unix(0, 0),
	})
}

// setSessionCookie writes a persistent cookie for remembered sessions and a browser-session cookie otherwise.
func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, result *service.SessionResult) {
	cookie := &fiber.Cookie{
		Name:     h.session.CookieName,
		Value:    result.Token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.session.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if result.Persistent {
		cookie.Expires = result.ExpiresAt
	} else {
		cookie.SessionOnly = true
	}
	c.Cookie(cookie)
}
