package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/job-board/internal/api/dto"
	"github.com/spec-kit/job-board/internal/auth"
	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/repository"
	"github.com/spec-kit/job-board/internal/service"
	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

// AdminHandler exposes user management and reporting.
type AdminHandler struct {
	admins  *service.AdminService
	reports *service.ReportService
	now     func() time.Time
}

// NewAdminHandler constructs handler.
func NewAdminHandler(admins *service.AdminService, reports *service.ReportService) *AdminHandler {
	return &AdminHandler{admins: admins, reports: reports, now: time.Now}
}

// ListUsers GET /admin/users?role=&active=&q=&page=&page_size=.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	filter := repository.UserFilter{}
	if raw := c.Query("role"); raw != "" {
		role, ok := domain.ParseRole(raw)
		if !ok {
			return apperrors.NewValidationError("Invalid role filter.", map[string]any{"role": raw})
		}
		filter.Role = &role
	}
	if raw := c.Query("active"); raw != "" {
		active := strings.EqualFold(raw, "true") || raw == "1"
		filter.Active = &active
	}
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		filter.SearchTerm = &q
	}
	page := parseInt(c.Query("page"), 1)
	if page < 1 {
		page = 1
	}
	pageSize := parseInt(c.Query("page_size"), 50)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize

	users, err := h.admins.ListUsers(c.UserContext(), auth.ActorFromContext(c), filter)
	if err != nil {
		return err
	}
	items := make([]dto.UserSummary, 0, len(users))
	for i := range users {
		items = append(items, userSummary(&users[i]))
	}
	return respond(c, http.StatusOK, items)
}

// CreateAdmin POST /admin/admins.
func (h *AdminHandler) CreateAdmin(c *fiber.Ctx) error {
	var req dto.CreateAdminRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	caps, unknown := parseCapabilities(req.Permissions)
	if unknown != "" {
		return apperrors.NewValidationError("Unknown permission.", map[string]any{"permission": unknown})
	}
	admin, err := h.admins.CreateAdmin(c.UserContext(), auth.ActorFromContext(c), service.CreateAdminInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		Permissions: caps,
	})
	if err != nil {
		return err
	}
	return respondWithMessage(c, http.StatusCreated, adminResponse(admin),
		apperrors.CategorySuccess, "Admin "+admin.Username+" created successfully.")
}

// UpdatePermissions PUT /admin/admins/:id/permissions.
func (h *AdminHandler) UpdatePermissions(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdatePermissionsRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	caps, unknown := parseCapabilities(req.Permissions)
	if unknown != "" {
		return apperrors.NewValidationError("Unknown permission.", map[string]any{"permission": unknown})
	}
	admin, err := h.admins.UpdateAdminPermissions(c.UserContext(), auth.ActorFromContext(c), id, caps)
	if err != nil {
		return err
	}
	return respondWithMessage(c, http.StatusOK, adminResponse(admin),
		apperrors.CategorySuccess, "Permissions updated.")
}

// SetActive PUT /admin/users/:id/active.
func (h *AdminHandler) SetActive(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.SetActiveRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Active == nil {
		return apperrors.NewValidationError("is_active is required", nil)
	}
	user, err := h.admins.SetUserActive(c.UserContext(), auth.ActorFromContext(c), id, *req.Active)
	if err != nil {
		return err
	}
	text := "User deactivated."
	if user.Active {
		text = "User activated."
	}
	return respondWithMessage(c, http.StatusOK, userSummary(user), apperrors.CategorySuccess, text)
}

// Overview GET /admin/reports/overview.
func (h *AdminHandler) Overview(c *fiber.Ctx) error {
	overview := h.reports.SystemOverview(c.UserContext(), h.now())
	return respond(c, http.StatusOK, overviewResponse(overview))
}
