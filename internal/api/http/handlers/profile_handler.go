package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/job-board/internal/api/dto"
	"github.com/spec-kit/job-board/internal/auth"
	"github.com/spec-kit/job-board/internal/service"
	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

// ProfileHandler exposes the caller's own account.
type ProfileHandler struct {
	profiles *service.ProfileService
}

// NewProfileHandler constructs handler.
func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Get handles GET /profile.
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	profile, err := h.profiles.GetProfile(c.UserContext(), auth.ActorFromContext(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, profileResponse(profile))
}

// Update handles PUT /profile.
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	profile, err := h.profiles.UpdateProfile(c.UserContext(), auth.ActorFromContext(c), service.UpdateProfileInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
		Location: req.Location,
		Bio:      req.Bio,
	})
	if err != nil {
		return err
	}
	return respondWithMessage(c, http.StatusOK, profileResponse(profile),
		apperrors.CategorySuccess, "Profile updated successfully.")
}
