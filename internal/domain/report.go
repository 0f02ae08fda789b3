package domain

import "time"

// RecentUser is a row of the system overview's newest users list.
type RecentUser struct {
	Username  string
	Role      Role
	CreatedAt time.Time
	Active    bool
}

// RecentJob is a row of the system overview's newest postings list.
type RecentJob struct {
	Title            string
	CompanyName      string
	PostedAt         time.Time
	ApplicationCount int
}

// SystemOverview aggregates the admin dashboard counters.
type SystemOverview struct {
	TotalUsers               int
	TotalJobs                int
	TotalApplications        int
	TotalEmployers           int
	ActiveEmployers          int
	NewUsersThisMonth        int
	NewJobsThisMonth         int
	NewApplicationsThisMonth int
	ApplicationsToday        int
	JobsPostedToday          int
	NewUsersToday            int
	RecentUsers              []RecentUser
	RecentJobs               []RecentJob
}

// EmptySystemOverview is the degraded snapshot served when reporting fails.
func EmptySystemOverview() SystemOverview {
	return SystemOverview{RecentUsers: []RecentUser{}, RecentJobs: []RecentJob{}}
}

// HomeStats are the public landing page counters.
type HomeStats struct {
	ActiveJobs  int
	ActiveUsers int
}
