package domain

import "time"

// DefaultJobType is applied when an employer leaves the job type blank.
const DefaultJobType = "full-time"

// MaxJobTitleLength bounds the posting title, counted in characters.
const MaxJobTitleLength = 200

// JobPosting is an employer-owned listing.
type JobPosting struct {
	ID          int64
	Title       string
	Slug        string
	Description string
	EmployerID  int64
	CompanyName *string
	Location    *string
	SalaryRange *string
	JobType     string
	PostedAt    time.Time
	Active      bool
}

// AcceptsApplications reports whether seekers may apply.
func (j *JobPosting) AcceptsApplications() bool {
	return j != nil && j.Active
}

// PostedJobSummary is an employer's posting with its application count.
type PostedJobSummary struct {
	JobPosting
	ApplicationCount int
}
