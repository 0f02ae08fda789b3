package repository

import (
	"context"
	"time"

	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/persistence"
)

// RecentListLimit bounds the recent users and recent jobs lists.
const RecentListLimit = 5

// ReportWindow marks where the monthly and daily counters start.
type ReportWindow struct {
	MonthStart time.Time
	DayStart   time.Time
}

// ReportRepository runs the read-only reporting queries.
type ReportRepository interface {
	Overview(ctx context.Context, window ReportWindow) (domain.SystemOverview, error)
	HomeStats(ctx context.Context) (domain.HomeStats, error)
}

type reportRepository struct {
	db persistence.Querier
}

// NewReportRepository builds repository.
func NewReportRepository(db persistence.Querier) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Overview(ctx context.Context, window ReportWindow) (domain.SystemOverview, error) {
	const countsQuery = `
        SELECT
            (SELECT COUNT(*) FROM users),
            (SELECT COUNT(*) FROM job_postings WHERE is_active),
            (SELECT COUNT(*) FROM applications),
            (SELECT COUNT(*) FROM users WHERE role='employer'),
            (SELECT COUNT(*) FROM users WHERE role='employer' AND is_active),
            (SELECT COUNT(*) FROM users WHERE created_at >= $1),
            (SELECT COUNT(*) FROM job_postings WHERE posted_date >= $1),
            (SELECT COUNT(*) FROM applications WHERE application_date >= $1),
            (SELECT COUNT(*) FROM applications WHERE application_date >= $2),
            (SELECT COUNT(*) FROM job_postings WHERE posted_date >= $2),
            (SELECT COUNT(*) FROM users WHERE created_at >= $2)`

	db := persistence.QuerierFrom(ctx, r.db)
	overview := domain.EmptySystemOverview()
	if err := db.QueryRow(ctx, countsQuery, window.MonthStart, window.DayStart).Scan(
		&overview.TotalUsers,
		&overview.TotalJobs,
		&overview.TotalApplications,
		&overview.TotalEmployers,
		&overview.ActiveEmployers,
		&overview.NewUsersThisMonth,
		&overview.NewJobsThisMonth,
		&overview.NewApplicationsThisMonth,
		&overview.ApplicationsToday,
		&overview.JobsPostedToday,
		&overview.NewUsersToday,
	); err != nil {
		return domain.SystemOverview{}, err
	}

	users, err := r.recentUsers(ctx, db)
	if err != nil {
		return domain.SystemOverview{}, err
	}
	jobs, err := r.recentJobs(ctx, db)
	if err != nil {
		return domain.SystemOverview{}, err
	}
	overview.RecentUsers = users
	overview.RecentJobs = jobs
	return overview, nil
}

func (r *reportRepository) recentUsers(ctx context.Context, db persistence.Querier) ([]domain.RecentUser, error) {
	const query = `SELECT username, role, created_at, is_active FROM users ORDER BY created_at DESC, id DESC LIMIT $1`
	rows, err := db.Query(ctx, query, RecentListLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.RecentUser{}
	for rows.Next() {
		var u domain.RecentUser
		if err := rows.Scan(&u.Username, &u.Role, &u.CreatedAt, &u.Active); err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

func (r *reportRepository) recentJobs(ctx context.Context, db persistence.Querier) ([]domain.RecentJob, error) {
	const query = `
        SELECT j.title, COALESCE(NULLIF(j.company_name, ''), 'N/A'), j.posted_date, COUNT(a.id)
        FROM job_postings j
        LEFT JOIN applications a ON a.job_id = j.id
        GROUP BY j.id
        ORDER BY j.posted_date DESC, j.id DESC
        LIMIT $1`
	rows, err := db.Query(ctx, query, RecentListLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.RecentJob{}
	for rows.Next() {
		var j domain.RecentJob
		if err := rows.Scan(&j.Title, &j.CompanyName, &j.PostedAt, &j.ApplicationCount); err != nil {
			return nil, err
		}
		result = append(result, j)
	}
	return result, rows.Err()
}

func (r *reportRepository) HomeStats(ctx context.Context) (domain.HomeStats, error) {
	const query = `
        SELECT
            (SELECT COUNT(*) FROM job_postings WHERE is_active),
            (SELECT COUNT(*) FROM users WHERE is_active)`
	var stats domain.HomeStats
	if err := persistence.QuerierFrom(ctx, r.db).QueryRow(ctx, query).Scan(&stats.ActiveJobs, &stats.ActiveUsers); err != nil {
		return domain.HomeStats{}, err
	}
	return stats, nil
}
