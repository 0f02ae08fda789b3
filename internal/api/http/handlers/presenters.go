package handlers

import (
	"github.com/spec-kit/job-board/internal/api/dto"
	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/service"
)

func userSummary(user *domain.User) dto.UserSummary {
	return dto.UserSummary{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      string(user.Role),
		Active:    user.Active,
		CreatedAt: user.CreatedAt,
	}
}

func sessionResponse(result *service.SessionResult) dto.SessionResponse {
	return dto.SessionResponse{
		User:       userSummary(result.User),
		ExpiresAt:  result.ExpiresAt,
		Persistent: result.Persistent,
		Redirect:   result.Redirect,
	}
}

func profileResponse(profile *service.Profile) dto.ProfileResponse {
	user := profile.User
	return dto.ProfileResponse{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Role:        string(user.Role),
		RoleDisplay: profile.RoleDisplay,
		FullName:    user.FullName,
		Phone:       user.Phone,
		Location:    user.Location,
		Bio:         user.Bio,
		Completion:  profile.Completion,
		CreatedAt:   user.CreatedAt,
	}
}

func jobResponse(job *domain.JobPosting) dto.JobResponse {
	return dto.JobResponse{
		ID:          job.ID,
		Title:       job.Title,
		Slug:        job.Slug,
		Description: job.Description,
		EmployerID:  job.EmployerID,
		CompanyName: job.CompanyName,
		Location:    job.Location,
		SalaryRange: job.SalaryRange,
		JobType:     job.JobType,
		PostedAt:    job.PostedAt,
		Active:      job.Active,
	}
}

func jobResponses(jobs []domain.JobPosting) []dto.JobResponse {
	items := make([]dto.JobResponse, 0, len(jobs))
	for i := range jobs {
		items = append(items, jobResponse(&jobs[i]))
	}
	return items
}

func postedJobResponses(jobs []domain.PostedJobSummary) []dto.PostedJobResponse {
	items := make([]dto.PostedJobResponse, 0, len(jobs))
	for i := range jobs {
		items = append(items, dto.PostedJobResponse{
			JobResponse:      jobResponse(&jobs[i].JobPosting),
			ApplicationCount: jobs[i].ApplicationCount,
		})
	}
	return items
}

func applicationResponse(app *domain.Application) dto.ApplicationResponse {
	return dto.ApplicationResponse{
		ID:          app.ID,
		JobID:       app.JobID,
		SeekerID:    app.SeekerID,
		CoverLetter: app.CoverLetter,
		Status:      string(app.Status),
		AppliedAt:   app.AppliedAt,
		UpdatedAt:   app.UpdatedAt,
	}
}

func appliedJobResponses(items []domain.AppliedJob) []dto.AppliedJobResponse {
	result := make([]dto.AppliedJobResponse, 0, len(items))
	for _, item := range items {
		result = append(result, dto.AppliedJobResponse{
			ApplicationID: item.ApplicationID,
			JobID:         item.JobID,
			JobTitle:      item.JobTitle,
			CompanyName:   item.CompanyName,
			Location:      item.Location,
			JobType:       item.JobType,
			SalaryRange:   item.SalaryRange,
			Status:        string(item.Status),
			CoverLetter:   item.CoverLetter,
			AppliedAt:     item.AppliedAt,
			PostedAt:      item.PostedAt,
		})
	}
	return result
}

func receivedApplicationResponses(items []domain.ReceivedApplication) []dto.ReceivedApplicationResponse {
	result := make([]dto.ReceivedApplicationResponse, 0, len(items))
	for _, item := range items {
		result = append(result, dto.ReceivedApplicationResponse{
			ApplicationID:  item.ApplicationID,
			JobID:          item.JobID,
			JobTitle:       item.JobTitle,
			ApplicantName:  item.ApplicantName,
			ApplicantEmail: item.ApplicantEmail,
			Status:         string(item.Status),
			CoverLetter:    item.CoverLetter,
			AppliedAt:      item.AppliedAt,
		})
	}
	return result
}

func permissionMap(p domain.Permissions) map[string]bool {
	result := make(map[string]bool, len(domain.AllCapabilities))
	for _, c := range domain.AllCapabilities {
		result[string(c)] = p.Has(c)
	}
	return result
}

func adminResponse(user *domain.User) dto.AdminResponse {
	return dto.AdminResponse{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		FullName:    user.FullName,
		Active:      user.Active,
		Permissions: permissionMap(user.EffectivePermissions()),
		CreatedBy:   user.CreatedBy,
		CreatedAt:   user.CreatedAt,
	}
}

func overviewResponse(o domain.SystemOverview) dto.SystemOverviewResponse {
	users := make([]dto.RecentUserResponse, 0, len(o.RecentUsers))
	for _, u := range o.RecentUsers {
		users = append(users, dto.RecentUserResponse{
			Username:  u.Username,
			Role:      string(u.Role),
			CreatedAt: u.CreatedAt,
			Active:    u.Active,
		})
	}
	jobs := make([]dto.RecentJobResponse, 0, len(o.RecentJobs))
	for _, j := range o.RecentJobs {
		jobs = append(jobs, dto.RecentJobResponse{
			Title:            j.Title,
			CompanyName:      j.CompanyName,
			PostedAt:         j.PostedAt,
			ApplicationCount: j.ApplicationCount,
		})
	}
	return dto.SystemOverviewResponse{
		TotalUsers:               o.TotalUsers,
		TotalJobs:                o.TotalJobs,
		TotalApplications:        o.TotalApplications,
		TotalEmployers:           o.TotalEmployers,
		ActiveEmployers:          o.ActiveEmployers,
		NewUsersThisMonth:        o.NewUsersThisMonth,
		NewJobsThisMonth:         o.NewJobsThisMonth,
		NewApplicationsThisMonth: o.NewApplicationsThisMonth,
		ApplicationsToday:        o.ApplicationsToday,
		JobsPostedToday:          o.JobsPostedToday,
		NewUsersToday:            o.NewUsersToday,
		RecentUsers:              users,
		RecentJobs:               jobs,
	}
}

// parseCapabilities keeps recognized names and reports the first unknown one.
func parseCapabilities(names []string) ([]domain.Capability, string) {
	caps := make([]domain.Capability, 0, len(names))
	for _, name := range names {
		c, ok := domain.ParseCapability(name)
		if !ok {
			return nil, name
		}
		caps = append(caps, c)
	}
	return caps, ""
}
