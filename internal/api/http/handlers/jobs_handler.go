package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/job-board/internal/api/dto"
	"github.com/spec-kit/job-board/internal/auth"
	"github.com/spec-kit/job-board/internal/service"
	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

// JobsHandler manages posting and application endpoints.
type JobsHandler struct {
	jobs         *service.JobService
	applications *service.ApplicationService
}

// NewJobsHandler constructs handler.
func NewJobsHandler(jobs *service.JobService, applications *service.ApplicationService) *JobsHandler {
	return &JobsHandler{jobs: jobs, applications: applications}
}

// List GET /jobs.
func (h *JobsHandler) List(c *fiber.Ctx) error {
	page, err := h.jobs.ListActiveJobs(c.UserContext(), parseInt(c.Query("page"), 1))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.JobPageResponse{
		Jobs:    jobResponses(page.Jobs),
		Page:    page.Page,
		PerPage: page.PerPage,
		Total:   page.Total,
		Pages:   page.Pages,
		HasPrev: page.HasPrev,
		HasNext: page.HasNext,
	})
}

// Search GET /jobs/search?q=.
func (h *JobsHandler) Search(c *fiber.Ctx) error {
	keyword := c.Query("q")
	jobs, err := h.jobs.SearchJobs(c.UserContext(), keyword)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.JobSearchResponse{Keyword: keyword, Jobs: jobResponses(jobs)})
}

// Get GET /jobs/:id.
func (h *JobsHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	job, err := h.jobs.GetJob(c.UserContext(), auth.ActorFromContext(c), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, jobResponse(job))
}

// Create POST /jobs.
func (h *JobsHandler) Create(c *fiber.Ctx) error {
	var req dto.PostJobRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	job, err := h.jobs.PostJob(c.UserContext(), auth.ActorFromContext(c), service.PostJobInput{
		Title:       req.Title,
		Description: req.Description,
		CompanyName: req.CompanyName,
		Location:    req.Location,
		SalaryRange: req.SalaryRange,
		JobType:     req.JobType,
	})
	if err != nil {
		return err
	}
	return respondWithMessage(c, http.StatusCreated, jobResponse(job),
		apperrors.CategorySuccess, "Job posted successfully!")
}

// Deactivate POST /jobs/:id/deactivate.
func (h *JobsHandler) Deactivate(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	job, err := h.jobs.DeactivateJob(c.UserContext(), auth.ActorFromContext(c), id)
	if err != nil {
		return err
	}
	return respondWithMessage(c, http.StatusOK, jobResponse(job),
		apperrors.CategorySuccess, "Job posting deactivated.")
}

// Apply POST /jobs/:id/apply.
func (h *JobsHandler) Apply(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ApplyRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return err
		}
	}
	app, err := h.applications.ApplyToJob(c.UserContext(), auth.ActorFromContext(c), id, req.CoverLetter)
	if err != nil {
		return err
	}
	return respondWithMessage(c, http.StatusCreated, applicationResponse(app),
		apperrors.CategorySuccess, "Application submitted successfully!")
}

// UpdateApplicationStatus PUT /applications/:id/status.
func (h *JobsHandler) UpdateApplicationStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	app, err := h.applications.UpdateApplicationStatus(c.UserContext(), auth.ActorFromContext(c), id, req.Status, req.Note)
	if err != nil {
		return err
	}
	return respondWithMessage(c, http.StatusOK, applicationResponse(app),
		apperrors.CategorySuccess, "Application status updated to "+string(app.Status)+".")
}
