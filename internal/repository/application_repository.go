package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/persistence"
)

// RecentApplicationsLimit caps the employer dashboard feed.
const RecentApplicationsLimit = 20

// ApplicationRepository stores seeker applications.
type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.Application) error
	GetByID(ctx context.Context, id int64) (*domain.Application, error)
	FindByJobAndSeeker(ctx context.Context, jobID, seekerID int64) (*domain.Application, error)
	UpdateStatus(ctx context.Context, id int64, status domain.ApplicationStatus) (time.Time, error)
	ListAppliedJobs(ctx context.Context, seekerID int64) ([]domain.AppliedJob, error)
	ListRecentForEmployer(ctx context.Context, employerID int64, limit int) ([]domain.ReceivedApplication, error)
}

type applicationRepository struct {
	db persistence.Querier
}

// NewApplicationRepository builds repository.
func NewApplicationRepository(db persistence.Querier) ApplicationRepository {
	return &applicationRepository{db: db}
}

const applicationColumns = `id, job_id, seeker_id, cover_letter, status, application_date, updated_at`

func (r *applicationRepository) Create(ctx context.Context, app *domain.Application) error {
	const query = `
        INSERT INTO applications (job_id, seeker_id, cover_letter, status)
        VALUES ($1,$2,$3,$4)
        RETURNING id, application_date, updated_at`
	err := persistence.QuerierFrom(ctx, r.db).QueryRow(ctx, query,
		app.JobID,
		app.SeekerID,
		app.CoverLetter,
		app.Status,
	).Scan(&app.ID, &app.AppliedAt, &app.UpdatedAt)
	return translate(err)
}

func (r *applicationRepository) GetByID(ctx context.Context, id int64) (*domain.Application, error) {
	return r.fetchSingle(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id=$1`, id)
}

func (r *applicationRepository) FindByJobAndSeeker(ctx context.Context, jobID, seekerID int64) (*domain.Application, error) {
	return r.fetchSingle(ctx, `SELECT `+applicationColumns+` FROM applications WHERE job_id=$1 AND seeker_id=$2`, jobID, seekerID)
}

func (r *applicationRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Application, error) {
	app, err := scanApplication(persistence.QuerierFrom(ctx, r.db).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translate(err)
	}
	return app, nil
}

func (r *applicationRepository) UpdateStatus(ctx context.Context, id int64, status domain.ApplicationStatus) (time.Time, error) {
	const query = `UPDATE applications SET status=$1, updated_at=NOW() WHERE id=$2 RETURNING updated_at`
	var updatedAt time.Time
	if err := persistence.QuerierFrom(ctx, r.db).QueryRow(ctx, query, status, id).Scan(&updatedAt); err != nil {
		return time.Time{}, translate(err)
	}
	return updatedAt, nil
}

func (r *applicationRepository) ListAppliedJobs(ctx context.Context, seekerID int64) ([]domain.AppliedJob, error) {
	const query = `
        SELECT a.id, j.id, j.title, j.company_name, j.location, j.job_type, j.salary_range,
               a.status, a.cover_letter, a.application_date, j.posted_date
        FROM applications a
        JOIN job_postings j ON j.id = a.job_id
        WHERE a.seeker_id=$1
        ORDER BY a.application_date DESC, a.id DESC`
	rows, err := persistence.QuerierFrom(ctx, r.db).Query(ctx, query, seekerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.AppliedJob{}
	for rows.Next() {
		var item domain.AppliedJob
		if err := rows.Scan(
			&item.ApplicationID,
			&item.JobID,
			&item.JobTitle,
			&item.CompanyName,
			&item.Location,
			&item.JobType,
			&item.SalaryRange,
			&item.Status,
			&item.CoverLetter,
			&item.AppliedAt,
			&item.PostedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func (r *applicationRepository) ListRecentForEmployer(ctx context.Context, employerID int64, limit int) ([]domain.ReceivedApplication, error) {
	if limit <= 0 {
		limit = RecentApplicationsLimit
	}
	const query = `
        SELECT a.id, j.id, j.title, COALESCE(NULLIF(u.full_name, ''), u.username), u.email,
               a.status, a.cover_letter, a.application_date
        FROM applications a
        JOIN job_postings j ON j.id = a.job_id
        JOIN users u ON u.id = a.seeker_id
        WHERE j.employer_id=$1
        ORDER BY a.application_date DESC, a.id DESC
        LIMIT $2`
	rows, err := persistence.QuerierFrom(ctx, r.db).Query(ctx, query, employerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.ReceivedApplication{}
	for rows.Next() {
		var item domain.ReceivedApplication
		if err := rows.Scan(
			&item.ApplicationID,
			&item.JobID,
			&item.JobTitle,
			&item.ApplicantName,
			&item.ApplicantEmail,
			&item.Status,
			&item.CoverLetter,
			&item.AppliedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func scanApplication(row pgx.Row) (*domain.Application, error) {
	var app domain.Application
	if err := row.Scan(
		&app.ID,
		&app.JobID,
		&app.SeekerID,
		&app.CoverLetter,
		&app.Status,
		&app.AppliedAt,
		&app.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &app, nil
}
