package domain

import "time"

// ApplicationStatus enumerates the lifecycle states of an application.
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusReviewed ApplicationStatus = "reviewed"
	ApplicationStatusAccepted ApplicationStatus = "accepted"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// ParseApplicationStatus validates a raw status value. Matching is exact.
func ParseApplicationStatus(raw string) (ApplicationStatus, bool) {
	status := ApplicationStatus(raw)
	switch status {
	case ApplicationStatusPending, ApplicationStatusReviewed, ApplicationStatusAccepted, ApplicationStatusRejected:
		return status, true
	default:
		return "", false
	}
}

// Application is a seeker's submission against one posting.
type Application struct {
	ID          int64
	JobID       int64
	SeekerID    int64
	CoverLetter *string
	Status      ApplicationStatus
	AppliedAt   time.Time
	UpdatedAt   time.Time
}

// AppliedJob joins a seeker's application with its posting.
type AppliedJob struct {
	ApplicationID int64
	JobID         int64
	JobTitle      string
	CompanyName   *string
	Location      *string
	JobType       string
	SalaryRange   *string
	Status        ApplicationStatus
	CoverLetter   *string
	AppliedAt     time.Time
	PostedAt      time.Time
}

// ReceivedApplication is an application to one of an employer's postings.
type ReceivedApplication struct {
	ApplicationID  int64
	JobID          int64
	JobTitle       string
	ApplicantName  string
	ApplicantEmail string
	Status         ApplicationStatus
	CoverLetter    *string
	AppliedAt      time.Time
}
