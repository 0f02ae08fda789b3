package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/repository"
)

// ReportService aggregates dashboard statistics. It never fails: errors degrade to empty numbers.
type ReportService struct {
	reports repository.ReportRepository
	logger  *zap.Logger
}

// NewReportService constructs the service.
func NewReportService(reports repository.ReportRepository, logger *zap.Logger) *ReportService {
	return &ReportService{reports: reports, logger: nopLogger(logger)}
}

// ReportWindowAt returns the start of the month and day containing now, in now's location.
func ReportWindowAt(now time.Time) repository.ReportWindow {
	return repository.ReportWindow{
		MonthStart: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()),
		DayStart:   time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
	}
}

// SystemOverview returns the admin counters as of now.
func (s *ReportService) SystemOverview(ctx context.Context, now time.Time) domain.SystemOverview {
	overview, err := s.reports.Overview(ctx, ReportWindowAt(now))
	if err != nil {
		s.logger.Warn("system overview unavailable", zap.Error(err))
		return domain.EmptySystemOverview()
	}
	if overview.RecentUsers == nil {
		overview.RecentUsers = []domain.RecentUser{}
	}
	if overview.RecentJobs == nil {
		overview.RecentJobs = []domain.RecentJob{}
	}
	return overview
}

// HomeStats returns the public landing counters.
func (s *ReportService) HomeStats(ctx context.Context) domain.HomeStats {
	stats, err := s.reports.HomeStats(ctx)
	if err != nil {
		s.logger.Warn("home stats unavailable", zap.Error(err))
		return domain.HomeStats{}
	}
	return stats
}
