package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/job-board/internal/api/dto"
	"github.com/spec-kit/job-board/internal/auth"
	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/service"
	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

// DashboardHandler serves the landing page and the role dashboards.
type DashboardHandler struct {
	profiles     *service.ProfileService
	jobs         *service.JobService
	applications *service.ApplicationService
	reports      *service.ReportService
	now          func() time.Time
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(profiles *service.ProfileService, jobs *service.JobService, applications *service.ApplicationService, reports *service.ReportService) *DashboardHandler {
	return &DashboardHandler{
		profiles:     profiles,
		jobs:         jobs,
		applications: applications,
		reports:      reports,
		now:          time.Now,
	}
}

// Home handles GET /. Signed-in callers are pointed at their dashboard.
func (h *DashboardHandler) Home(c *fiber.Ctx) error {
	actor := auth.ActorFromContext(c)
	if actor.Authenticated() {
		return h.dispatch(c, actor)
	}
	stats := h.reports.HomeStats(c.UserContext())
	return respond(c, http.StatusOK, dto.HomeResponse{ActiveJobs: stats.ActiveJobs, ActiveUsers: stats.ActiveUsers})
}

// Dashboard handles GET /dashboard.
func (h *DashboardHandler) Dashboard(c *fiber.Ctx) error {
	return h.dispatch(c, auth.ActorFromContext(c))
}

func (h *DashboardHandler) dispatch(c *fiber.Ctx, actor domain.Actor) error {
	path, ok := auth.DashboardPath(actor.Role)
	if !ok {
		return respondWithMessage(c, http.StatusOK, dto.RedirectResponse{Redirect: path},
			apperrors.CategoryWarning, "Unknown user role.")
	}
	return respond(c, http.StatusOK, dto.RedirectResponse{Redirect: path})
}

// Seeker handles GET /dashboard/seeker.
func (h *DashboardHandler) Seeker(c *fiber.Ctx) error {
	actor := auth.ActorFromContext(c)
	profile, err := h.profiles.GetProfile(c.UserContext(), actor)
	if err != nil {
		return err
	}
	applied, err := h.applications.AppliedJobs(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.SeekerDashboardResponse{
		Profile:      profileResponse(profile),
		Applications: appliedJobResponses(applied),
	})
}

// Employer handles GET /dashboard/employer.
func (h *DashboardHandler) Employer(c *fiber.Ctx) error {
	actor := auth.ActorFromContext(c)
	profile, err := h.profiles.GetProfile(c.UserContext(), actor)
	if err != nil {
		return err
	}
	posted, err := h.jobs.PostedJobs(c.UserContext(), actor)
	if err != nil {
		return err
	}
	recent, err := h.applications.RecentApplications(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.EmployerDashboardResponse{
		Profile:            profileResponse(profile),
		Jobs:               postedJobResponses(posted),
		RecentApplications: receivedApplicationResponses(recent),
	})
}

// Admin handles GET /dashboard/admin.
func (h *DashboardHandler) Admin(c *fiber.Ctx) error {
	actor := auth.ActorFromContext(c)
	profile, err := h.profiles.GetProfile(c.UserContext(), actor)
	if err != nil {
		return err
	}
	resp := dto.AdminDashboardResponse{
		Profile:     profileResponse(profile),
		Permissions: permissionMap(actor.Permissions),
	}
	if actor.Can(domain.CapViewReports) {
		overview := overviewResponse(h.reports.SystemOverview(c.UserContext(), h.now()))
		resp.Overview = &overview
	}
	return respond(c, http.StatusOK, resp)
}
