package dto

import "time"

// ProfileResponse is the caller's own account.
type ProfileResponse struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	RoleDisplay string    `json:"role_display"`
	FullName    *string   `json:"full_name"`
	Phone       *string   `json:"phone"`
	Location    *string   `json:"location"`
	Bio         *string   `json:"bio"`
	Completion  int       `json:"profile_completion"`
	CreatedAt   time.Time `json:"created_at"`
}

// UpdateProfileRequest payload. Omitted fields are left unchanged.
type UpdateProfileRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
	Location *string `json:"location"`
	Bio      *string `json:"bio"`
}

type SeekerDashboardResponse struct {
	Profile      ProfileResponse      `json:"profile"`
	Applications []AppliedJobResponse `json:"applications"`
}

type EmployerDashboardResponse struct {
	Profile            ProfileResponse               `json:"profile"`
	Jobs               []PostedJobResponse           `json:"jobs"`
	RecentApplications []ReceivedApplicationResponse `json:"recent_applications"`
}

// AdminDashboardResponse omits the overview for admins without view_reports.
type AdminDashboardResponse struct {
	Profile     ProfileResponse         `json:"profile"`
	Permissions map[string]bool         `json:"permissions"`
	Overview    *SystemOverviewResponse `json:"overview,omitempty"`
}
