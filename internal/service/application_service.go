package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/events"
	"github.com/spec-kit/job-board/internal/persistence"
	"github.com/spec-kit/job-board/internal/repository"
	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

const alreadyApplied = "You have already applied for this job."

var knownStatuses = []domain.ApplicationStatus{
	domain.ApplicationStatusPending,
	domain.ApplicationStatusReviewed,
	domain.ApplicationStatusAccepted,
	domain.ApplicationStatusRejected,
}

// ApplicationService coordinates applications and their status lifecycle.
type ApplicationService struct {
	applications repository.ApplicationRepository
	jobs         repository.JobRepository
	audit        repository.AuditRepository
	tx           persistence.Transactor
	dispatcher   events.Dispatcher
	logger       *zap.Logger
}

// ApplicationDependencies bundles repositories for the application service.
type ApplicationDependencies struct {
	ApplicationRepo repository.ApplicationRepository
	JobRepo         repository.JobRepository
	AuditRepo       repository.AuditRepository
	Tx              persistence.Transactor
	Dispatcher      events.Dispatcher
	Logger          *zap.Logger
}

// NewApplicationService constructs the service.
func NewApplicationService(deps ApplicationDependencies) *ApplicationService {
	return &ApplicationService{
		applications: deps.ApplicationRepo,
		jobs:         deps.JobRepo,
		audit:        deps.AuditRepo,
		tx:           deps.Tx,
		dispatcher:   deps.Dispatcher,
		logger:       nopLogger(deps.Logger),
	}
}

// ApplyToJob records a pending application. A seeker applies at most once per posting.
func (s *ApplicationService) ApplyToJob(ctx context.Context, actor domain.Actor, jobID int64, coverLetter string) (*domain.Application, error) {
	if !actor.Authenticated() {
		return nil, apperrors.NewLoginRequired()
	}
	if !actor.HasRole(domain.RoleSeeker) {
		return nil, apperrors.NewAuthorizationError("Only job seekers can apply for jobs.")
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("job", map[string]any{"id": jobID})
		}
		return nil, apperrors.MapError(err)
	}
	if !job.AcceptsApplications() {
		return nil, apperrors.NewNotFound("job", map[string]any{"id": jobID})
	}

	if _, err := s.applications.FindByJobAndSeeker(ctx, jobID, actor.UserID); err == nil {
		return nil, apperrors.NewConflict(alreadyApplied, map[string]any{"job_id": jobID})
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.MapError(err)
	}

	app := &domain.Application{
		JobID:       jobID,
		SeekerID:    actor.UserID,
		CoverLetter: optional(&coverLetter),
		Status:      domain.ApplicationStatusPending,
	}
	if err := s.applications.Create(ctx, app); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict(alreadyApplied, map[string]any{"job_id": jobID})
		}
		return nil, apperrors.MapError(err)
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventApplicationSubmitted, app.ID, actor,
		events.ApplicationSubmittedPayload{JobID: jobID, SeekerID: actor.UserID}))
	return app, nil
}

// UpdateApplicationStatus moves an application to status. Any known status may follow any other.
func (s *ApplicationService) UpdateApplicationStatus(ctx context.Context, actor domain.Actor, applicationID int64, rawStatus, note string) (*domain.Application, error) {
	if !actor.Authenticated() {
		return nil, apperrors.NewLoginRequired()
	}
	status, ok := domain.ParseApplicationStatus(rawStatus)
	if !ok {
		return nil, apperrors.NewValidationError("Invalid status.", map[string]any{"status": rawStatus, "allowed": knownStatuses})
	}

	app, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("application", map[string]any{"id": applicationID})
		}
		return nil, apperrors.MapError(err)
	}
	job, err := s.jobs.GetByID(ctx, app.JobID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !canReviewApplication(actor, job) {
		return nil, apperrors.NewAuthorizationError("You can only update applications for your own job postings.")
	}

	note = strings.TrimSpace(note)
	oldStatus := app.Status
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		updatedAt, err := s.applications.UpdateStatus(ctx, app.ID, status)
		if err != nil {
			return err
		}
		app.UpdatedAt = updatedAt
		details := map[string]any{"old_status": oldStatus, "new_status": status}
		if note != "" {
			details["note"] = note
		}
		return recordAudit(ctx, s.audit, actor, domain.AuditEntityApplication, app.ID, domain.AuditActionStatusChanged, details)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	app.Status = status

	publishEvent(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventApplicationStatusChanged, app.ID, actor,
		events.ApplicationStatusChangedPayload{OldStatus: oldStatus, NewStatus: status, Note: note}))
	return app, nil
}

// AppliedJobs lists the seeker's applications joined with their postings.
func (s *ApplicationService) AppliedJobs(ctx context.Context, actor domain.Actor) ([]domain.AppliedJob, error) {
	if !actor.HasRole(domain.RoleSeeker) {
		return nil, apperrors.NewAuthorizationError("Only job seekers have applications.")
	}
	items, err := s.applications.ListAppliedJobs(ctx, actor.UserID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// RecentApplications lists the latest applications to the employer's postings.
func (s *ApplicationService) RecentApplications(ctx context.Context, actor domain.Actor) ([]domain.ReceivedApplication, error) {
	if !actor.HasRole(domain.RoleEmployer) {
		return nil, apperrors.NewAuthorizationError("Only employers receive applications.")
	}
	items, err := s.applications.ListRecentForEmployer(ctx, actor.UserID, repository.RecentApplicationsLimit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

func canReviewApplication(actor domain.Actor, job *domain.JobPosting) bool {
	if actor.HasRole(domain.RoleEmployer) && job.EmployerID == actor.UserID {
		return true
	}
	return actor.Can(domain.CapManageApplications)
}
