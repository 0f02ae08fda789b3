package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/repository"
)

func TestReportWindowAt(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	now := time.Date(2024, 3, 15, 17, 45, 12, 0, loc)

	window := ReportWindowAt(now)
	if !window.MonthStart.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, loc)) {
		t.Errorf("month start = %v", window.MonthStart)
	}
	if !window.DayStart.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, loc)) {
		t.Errorf("day start = %v", window.DayStart)
	}
}

func TestSystemOverview(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	var gotWindow repository.ReportWindow
	repo := &mockReportRepo{
		overviewFunc: func(_ context.Context, window repository.ReportWindow) (domain.SystemOverview, error) {
			gotWindow = window
			return domain.SystemOverview{TotalUsers: 4, TotalJobs: 2, ApplicationsToday: 1}, nil
		},
	}
	svc := NewReportService(repo, nil)

	overview := svc.SystemOverview(context.Background(), now)
	if overview.TotalUsers != 4 || overview.TotalJobs != 2 || overview.ApplicationsToday != 1 {
		t.Fatalf("overview = %+v", overview)
	}
	if overview.RecentUsers == nil || overview.RecentJobs == nil {
		t.Fatal("recent lists must never be nil")
	}
	if !gotWindow.DayStart.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("window = %+v", gotWindow)
	}
}

func TestReportsDegradeToZeros(t *testing.T) {
	failing := errors.New("relation does not exist")
	repo := &mockReportRepo{
		overviewFunc: func(context.Context, repository.ReportWindow) (domain.SystemOverview, error) {
			return domain.SystemOverview{TotalUsers: 99}, failing
		},
		homeStatsFunc: func(context.Context) (domain.HomeStats, error) {
			return domain.HomeStats{ActiveJobs: 7}, failing
		},
	}
	svc := NewReportService(repo, nil)

	overview := svc.SystemOverview(context.Background(), time.Now())
	if overview.TotalUsers != 0 || len(overview.RecentUsers) != 0 || overview.RecentUsers == nil {
		t.Fatalf("overview = %+v", overview)
	}
	if stats := svc.HomeStats(context.Background()); stats != (domain.HomeStats{}) {
		t.Fatalf("stats = %+v", stats)
	}
}
