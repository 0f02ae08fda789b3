package dto

import "time"

// CreateAdminRequest payload. Permissions lists capability names.
type CreateAdminRequest struct {
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	FullName    *string  `json:"full_name"`
	Permissions []string `json:"permissions"`
}

// UpdatePermissionsRequest payload.
type UpdatePermissionsRequest struct {
	Permissions []string `json:"permissions"`
}

// SetActiveRequest payload.
type SetActiveRequest struct {
	Active *bool `json:"is_active"`
}

// AdminResponse represents an admin with its permission bag.
type AdminResponse struct {
	ID          int64           `json:"id"`
	Username    string          `json:"username"`
	Email       string          `json:"email"`
	FullName    *string         `json:"full_name"`
	Active      bool            `json:"is_active"`
	Permissions map[string]bool `json:"permissions"`
	CreatedBy   *int64          `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
}

type RecentUserResponse struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	Active    bool      `json:"is_active"`
}

type RecentJobResponse struct {
	Title            string    `json:"title"`
	CompanyName      string    `json:"company_name"`
	PostedAt         time.Time `json:"posted_date"`
	ApplicationCount int       `json:"application_count"`
}

// SystemOverviewResponse mirrors the admin dashboard counters.
type SystemOverviewResponse struct {
	TotalUsers               int                  `json:"total_users"`
	TotalJobs                int                  `json:"total_jobs"`
	TotalApplications        int                  `json:"total_applications"`
	TotalEmployers           int                  `json:"total_employers"`
	ActiveEmployers          int                  `json:"active_employers"`
	NewUsersThisMonth        int                  `json:"new_users_this_month"`
	NewJobsThisMonth         int                  `json:"new_jobs_this_month"`
	NewApplicationsThisMonth int                  `json:"new_applications_this_month"`
	ApplicationsToday        int                  `json:"applications_today"`
	JobsPostedToday          int                  `json:"jobs_posted_today"`
	NewUsersToday            int                  `json:"new_users_today"`
	RecentUsers              []RecentUserResponse `json:"recent_users"`
	RecentJobs               []RecentJobResponse  `json:"recent_jobs"`
}

// HomeResponse is served to anonymous visitors of the landing page.
type HomeResponse struct {
	ActiveJobs  int `json:"total_jobs"`
	ActiveUsers int `json:"total_users"`
}
