package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/events"
	"github.com/spec-kit/job-board/internal/persistence"
	"github.com/spec-kit/job-board/internal/repository"
	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

// JobsPerPage is the public listing page size.
const JobsPerPage = 10

// JobService coordinates job posting workflows.
type JobService struct {
	jobs       repository.JobRepository
	audit      repository.AuditRepository
	tx         persistence.Transactor
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// JobDependencies bundles repositories for job service.
type JobDependencies struct {
	JobRepo    repository.JobRepository
	AuditRepo  repository.AuditRepository
	Tx         persistence.Transactor
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// PostJobInput describes a new posting.
type PostJobInput struct {
	Title       string
	Description string
	CompanyName *string
	Location    *string
	SalaryRange *string
	JobType     string
}

// JobPage is one page of the active listing.
type JobPage struct {
	Jobs    []domain.JobPosting
	Page    int
	PerPage int
	Total   int
	Pages   int
	HasPrev bool
	HasNext bool
}

// NewJobService constructs the service.
func NewJobService(deps JobDependencies) *JobService {
	return &JobService{
		jobs:       deps.JobRepo,
		audit:      deps.AuditRepo,
		tx:         deps.Tx,
		dispatcher: deps.Dispatcher,
		logger:     nopLogger(deps.Logger),
	}
}

// PostJob creates an active posting owned by the employer.
func (s *JobService) PostJob(ctx context.Context, actor domain.Actor, in PostJobInput) (*domain.JobPosting, error) {
	if !actor.Authenticated() {
		return nil, apperrors.NewLoginRequired()
	}
	if !actor.HasRole(domain.RoleEmployer) {
		return nil, apperrors.NewAuthorizationError("Only employers can post jobs.")
	}

	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("Title and description are required.", nil)
	}
	if utf8.RuneCountInString(title) > domain.MaxJobTitleLength {
		return nil, apperrors.NewValidationError("Job title must be 200 characters or fewer.", map[string]any{"field": "title"})
	}
	jobType := strings.TrimSpace(in.JobType)
	if jobType == "" {
		jobType = domain.DefaultJobType
	}

	job := &domain.JobPosting{
		Title:       title,
		Slug:        slug.Make(title),
		Description: description,
		EmployerID:  actor.UserID,
		CompanyName: optional(in.CompanyName),
		Location:    optional(in.Location),
		SalaryRange: optional(in.SalaryRange),
		JobType:     jobType,
		Active:      true,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, apperrors.MapError(err)
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventJobPosted, job.ID, actor,
		events.JobPostedPayload{Title: job.Title, Slug: job.Slug, EmployerID: job.EmployerID}))
	return job, nil
}

// DeactivateJob soft-deletes a posting. Repeating the call is harmless.
func (s *JobService) DeactivateJob(ctx context.Context, actor domain.Actor, jobID int64) (*domain.JobPosting, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("job", map[string]any{"id": jobID})
		}
		return nil, apperrors.MapError(err)
	}
	if !canManageJob(actor, job) {
		return nil, apperrors.NewAuthorizationError("You can only manage your own job postings.")
	}
	if !job.Active {
		return job, nil
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		changed, err := s.jobs.Deactivate(ctx, job.ID)
		if err != nil || !changed {
			return err
		}
		return recordAudit(ctx, s.audit, actor, domain.AuditEntityJobPosting, job.ID, domain.AuditActionJobDeactivated, map[string]any{
			"title": job.Title,
		})
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("job", map[string]any{"id": jobID})
		}
		return nil, apperrors.MapError(err)
	}
	job.Active = false

	publishEvent(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventJobDeactivated, job.ID, actor, nil))
	return job, nil
}

// ListActiveJobs returns the requested page, newest first. Pages start at 1.
func (s *JobService) ListActiveJobs(ctx context.Context, page int) (*JobPage, error) {
	if page < 1 {
		page = 1
	}
	if maxPage := math.MaxInt / JobsPerPage; page > maxPage {
		page = maxPage
	}
	jobs, total, err := s.jobs.ListActive(ctx, JobsPerPage, (page-1)*JobsPerPage)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	pages := (total + JobsPerPage - 1) / JobsPerPage
	return &JobPage{
		Jobs:    jobs,
		Page:    page,
		PerPage: JobsPerPage,
		Total:   total,
		Pages:   pages,
		HasPrev: page > 1,
		HasNext: page < pages,
	}, nil
}

// GetJob returns a posting. Inactive postings are only visible to those who may manage them.
func (s *JobService) GetJob(ctx context.Context, actor domain.Actor, jobID int64) (*domain.JobPosting, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("job", map[string]any{"id": jobID})
		}
		return nil, apperrors.MapError(err)
	}
	if !job.Active && !canManageJob(actor, job) {
		return nil, apperrors.NewNotFound("job", map[string]any{"id": jobID})
	}
	return job, nil
}

// SearchJobs matches keyword against active postings. A blank keyword matches nothing.
func (s *JobService) SearchJobs(ctx context.Context, keyword string) ([]domain.JobPosting, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return []domain.JobPosting{}, nil
	}
	jobs, err := s.jobs.Search(ctx, keyword)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return jobs, nil
}

// PostedJobs lists an employer's postings with their application counts.
func (s *JobService) PostedJobs(ctx context.Context, actor domain.Actor) ([]domain.PostedJobSummary, error) {
	if !actor.HasRole(domain.RoleEmployer) {
		return nil, apperrors.NewAuthorizationError("Only employers have posted jobs.")
	}
	jobs, err := s.jobs.ListByEmployer(ctx, actor.UserID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return jobs, nil
}

func canManageJob(actor domain.Actor, job *domain.JobPosting) bool {
	if actor.HasRole(domain.RoleEmployer) && job.EmployerID == actor.UserID {
		return true
	}
	return actor.Can(domain.CapManageJobs)
}
