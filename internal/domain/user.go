package domain

import (
	"strings"
	"time"
)

// Role enumerates the identities a user account can take.
type Role string

const (
	RoleSeeker   Role = "seeker"
	RoleEmployer Role = "employer"
	RoleAdmin    Role = "admin"
)

// ParseRole validates a raw role value. Matching is exact; anything else is rejected.
func ParseRole(raw string) (Role, bool) {
	role := Role(raw)
	switch role {
	case RoleSeeker, RoleEmployer, RoleAdmin:
		return role, true
	default:
		return "", false
	}
}

// SelfRegistrable reports whether the role may be chosen at sign-up.
func (r Role) SelfRegistrable() bool {
	return r == RoleSeeker || r == RoleEmployer
}

// DisplayName returns the human readable role label.
func (r Role) DisplayName() string {
	switch r {
	case RoleSeeker:
		return "Job Seeker"
	case RoleEmployer:
		return "Employer"
	case RoleAdmin:
		return "Administrator"
	default:
		return "Unknown"
	}
}

// User is the identity record shared by seekers, employers and admins.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	Active       bool
	FullName     *string
	Phone        *string
	Location     *string
	Bio          *string
	Permissions  Permissions
	CreatedBy    *int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EffectivePermissions returns the capability bag; it is only honored for admins.
func (u *User) EffectivePermissions() Permissions {
	if u == nil || u.Role != RoleAdmin {
		return Permissions{}
	}
	return u.Permissions
}

// ProfileCompletion returns the share of filled profile fields as a whole percentage.
func (u *User) ProfileCompletion() int {
	fields := []string{u.Username, u.Email, deref(u.FullName), deref(u.Phone), deref(u.Location), deref(u.Bio)}
	completed := 0
	for _, field := range fields {
		if strings.TrimSpace(field) != "" {
			completed++
		}
	}
	return completed * 100 / len(fields)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
