package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/persistence"
)

// JobRepository encapsulates job posting persistence.
type JobRepository interface {
	Create(ctx context.Context, job *domain.JobPosting) error
	GetByID(ctx context.Context, id int64) (*domain.JobPosting, error)
	ListActive(ctx context.Context, limit, offset int) ([]domain.JobPosting, int, error)
	Search(ctx context.Context, keyword string) ([]domain.JobPosting, error)
	Deactivate(ctx context.Context, id int64) (bool, error)
	ListByEmployer(ctx context.Context, employerID int64) ([]domain.PostedJobSummary, error)
}

type jobRepository struct {
	db persistence.Querier
}

// NewJobRepository instantiates repository.
func NewJobRepository(db persistence.Querier) JobRepository {
	return &jobRepository{db: db}
}

const jobColumns = `j.id, j.title, j.slug, j.description, j.employer_id, j.company_name, j.location,
               j.salary_range, j.job_type, j.posted_date, j.is_active`

func (r *jobRepository) Create(ctx context.Context, job *domain.JobPosting) error {
	const query = `
        INSERT INTO job_postings (title, slug, description, employer_id, company_name, location, salary_range, job_type, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, posted_date`
	err := persistence.QuerierFrom(ctx, r.db).QueryRow(ctx, query,
		job.Title,
		job.Slug,
		job.Description,
		job.EmployerID,
		job.CompanyName,
		job.Location,
		job.SalaryRange,
		job.JobType,
		job.Active,
	).Scan(&job.ID, &job.PostedAt)
	return translate(err)
}

func (r *jobRepository) GetByID(ctx context.Context, id int64) (*domain.JobPosting, error) {
	query := `SELECT ` + jobColumns + ` FROM job_postings j WHERE j.id=$1`
	job, err := scanJob(persistence.QuerierFrom(ctx, r.db).QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err)
	}
	return job, nil
}

func (r *jobRepository) ListActive(ctx context.Context, limit, offset int) ([]domain.JobPosting, int, error) {
	db := persistence.QuerierFrom(ctx, r.db)

	var total int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM job_postings WHERE is_active`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + jobColumns + ` FROM job_postings j
        WHERE j.is_active ORDER BY j.posted_date DESC, j.id DESC LIMIT $1 OFFSET $2`
	rows, err := db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	jobs, err := scanJobs(rows)
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

func (r *jobRepository) Search(ctx context.Context, keyword string) ([]domain.JobPosting, error) {
	if strings.TrimSpace(keyword) == "" {
		return []domain.JobPosting{}, nil
	}
	query := `SELECT ` + jobColumns + ` FROM job_postings j
        WHERE j.is_active AND (
            j.title ILIKE $1 OR j.description ILIKE $1 OR j.company_name ILIKE $1 OR j.location ILIKE $1
        )
        ORDER BY j.posted_date DESC, j.id DESC`
	rows, err := persistence.QuerierFrom(ctx, r.db).Query(ctx, query, containsPattern(keyword))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

// Deactivate reports whether the posting was active before the call.
func (r *jobRepository) Deactivate(ctx context.Context, id int64) (bool, error) {
	db := persistence.QuerierFrom(ctx, r.db)
	cmd, err := db.Exec(ctx, `UPDATE job_postings SET is_active=FALSE WHERE id=$1 AND is_active`, id)
	if err != nil {
		return false, err
	}
	if cmd.RowsAffected() > 0 {
		return true, nil
	}
	var exists bool
	if err := db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM job_postings WHERE id=$1)`, id).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, ErrNotFound
	}
	return false, nil
}

func (r *jobRepository) ListByEmployer(ctx context.Context, employerID int64) ([]domain.PostedJobSummary, error) {
	query := `SELECT ` + jobColumns + `, COUNT(a.id)
        FROM job_postings j
        LEFT JOIN applications a ON a.job_id = j.id
        WHERE j.employer_id=$1
        GROUP BY j.id
        ORDER BY j.posted_date DESC, j.id DESC`
	rows, err := persistence.QuerierFrom(ctx, r.db).Query(ctx, query, employerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.PostedJobSummary{}
	for rows.Next() {
		var summary domain.PostedJobSummary
		job := &summary.JobPosting
		if err := rows.Scan(
			&job.ID,
			&job.Title,
			&job.Slug,
			&job.Description,
			&job.EmployerID,
			&job.CompanyName,
			&job.Location,
			&job.SalaryRange,
			&job.JobType,
			&job.PostedAt,
			&job.Active,
			&summary.ApplicationCount,
		); err != nil {
			return nil, err
		}
		result = append(result, summary)
	}
	return result, rows.Err()
}

func scanJob(row pgx.Row) (*domain.JobPosting, error) {
	var job domain.JobPosting
	if err := row.Scan(
		&job.ID,
		&job.Title,
		&job.Slug,
		&job.Description,
		&job.EmployerID,
		&job.CompanyName,
		&job.Location,
		&job.SalaryRange,
		&job.JobType,
		&job.PostedAt,
		&job.Active,
	); err != nil {
		return nil, err
	}
	return &job, nil
}

func scanJobs(rows pgx.Rows) ([]domain.JobPosting, error) {
	result := []domain.JobPosting{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *job)
	}
	return result, rows.Err()
}
