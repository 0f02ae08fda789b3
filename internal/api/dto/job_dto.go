package dto

import "time"

// PostJobRequest payload.
type PostJobRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	CompanyName *string `json:"company_name"`
	Location    *string `json:"location"`
	SalaryRange *string `json:"salary_range"`
	JobType     string  `json:"job_type"`
}

// JobResponse represents a posting.
type JobResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	EmployerID  int64     `json:"employer_id"`
	CompanyName *string   `json:"company_name"`
	Location    *string   `json:"location"`
	SalaryRange *string   `json:"salary_range"`
	JobType     string    `json:"job_type"`
	PostedAt    time.Time `json:"posted_date"`
	Active      bool      `json:"is_active"`
}

// PostedJobResponse is an employer posting with its application count.
type PostedJobResponse struct {
	JobResponse
	ApplicationCount int `json:"application_count"`
}

// JobPageResponse is one page of the public listing.
type JobPageResponse struct {
	Jobs    []JobResponse `json:"jobs"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
	Total   int           `json:"total"`
	Pages   int           `json:"pages"`
	HasPrev bool          `json:"has_prev"`
	HasNext bool          `json:"has_next"`
}

// JobSearchResponse lists search matches.
type JobSearchResponse struct {
	Keyword string        `json:"keyword"`
	Jobs    []JobResponse `json:"jobs"`
}

// ApplyRequest payload.
type ApplyRequest struct {
	CoverLetter string `json:"cover_letter"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

// ApplicationResponse represents an application.
type ApplicationResponse struct {
	ID          int64     `json:"id"`
	JobID       int64     `json:"job_id"`
	SeekerID    int64     `json:"seeker_id"`
	CoverLetter *string   `json:"cover_letter"`
	Status      string    `json:"status"`
	AppliedAt   time.Time `json:"application_date"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AppliedJobResponse is a seeker application joined with its posting.
type AppliedJobResponse struct {
	ApplicationID int64     `json:"application_id"`
	JobID         int64     `json:"job_id"`
	JobTitle      string    `json:"job_title"`
	CompanyName   *string   `json:"company_name"`
	Location      *string   `json:"location"`
	JobType       string    `json:"job_type"`
	SalaryRange   *string   `json:"salary_range"`
	Status        string    `json:"status"`
	CoverLetter   *string   `json:"cover_letter"`
	AppliedAt     time.Time `json:"application_date"`
	PostedAt      time.Time `json:"posted_date"`
}

// ReceivedApplicationResponse is an application to an employer posting.
type ReceivedApplicationResponse struct {
	ApplicationID  int64     `json:"application_id"`
	JobID          int64     `json:"job_id"`
	JobTitle       string    `json:"job_title"`
	ApplicantName  string    `json:"applicant_name"`
	ApplicantEmail string    `json:"applicant_email"`
	Status         string    `json:"status"`
	CoverLetter    *string   `json:"cover_letter"`
	AppliedAt      time.Time `json:"application_date"`
}
