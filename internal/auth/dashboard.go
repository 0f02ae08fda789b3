package auth

import "github.com/spec-kit/job-board/internal/domain"

// HomePath is the neutral landing page.
const HomePath = "/"

// DashboardPath maps a role to its dashboard. Unknown roles land on the home page.
func DashboardPath(role domain.Role) (string, bool) {
	switch role {
	case domain.RoleSeeker:
		return "/dashboard/seeker", true
	case domain.RoleEmployer:
		return "/dashboard/employer", true
	case domain.RoleAdmin:
		return "/dashboard/admin", true
	default:
		return HomePath, false
	}
}
