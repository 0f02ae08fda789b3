package http

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

// CSRF validates the Origin or Referer of state-changing requests against
// allowedOrigins. An empty list disables the check.
func CSRF(allowedOrigins []string) fiber.Handler {
	allowedSet := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowedSet[normalizeOrigin(origin)] = true
	}

	return func(c *fiber.Ctx) error {
		if len(allowedSet) == 0 {
			return c.Next()
		}
		switch c.Method() {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return c.Next()
		}

		if origin := c.Get(fiber.HeaderOrigin); origin != "" {
			if !allowedSet[normalizeOrigin(origin)] {
				return csrfError("CSRF validation failed: invalid origin")
			}
			return c.Next()
		}
		if referer := c.Get(fiber.HeaderReferer); referer != "" {
			if !allowedSet[normalizeOrigin(extractOrigin(referer))] {
				return csrfError("CSRF validation failed: invalid referer")
			}
			return c.Next()
		}
		return csrfError("CSRF validation failed: missing origin")
	}
}

func csrfError(message string) error {
	return apperrors.NewDomainError(apperrors.CodeForbidden, message, apperrors.CategoryError, http.StatusForbidden, nil)
}

func normalizeOrigin(origin string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(origin)), "/")
}

// extractOrigin returns scheme://host of rawURL.
func extractOrigin(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}
