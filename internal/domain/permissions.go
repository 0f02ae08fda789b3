package domain

import "encoding/json"

// Capability names a single admin right stored in the permission bag.
type Capability string

const (
	CapManageUsers        Capability = "manage_users"
	CapManageJobs         Capability = "manage_jobs"
	CapManageApplications Capability = "manage_applications"
	CapViewReports        Capability = "view_reports"
	CapSystemSettings     Capability = "system_settings"
)

// AllCapabilities lists every recognized capability in display order.
var AllCapabilities = []Capability{
	CapManageUsers,
	CapManageJobs,
	CapManageApplications,
	CapViewReports,
	CapSystemSettings,
}

// ParseCapability validates a capability name.
func ParseCapability(raw string) (Capability, bool) {
	for _, c := range AllCapabilities {
		if string(c) == raw {
			return c, true
		}
	}
	return "", false
}

// Permissions is the in-memory form of an admin permission bag.
type Permissions struct {
	ManageUsers        bool `json:"manage_users"`
	ManageJobs         bool `json:"manage_jobs"`
	ManageApplications bool `json:"manage_applications"`
	ViewReports        bool `json:"view_reports"`
	SystemSettings     bool `json:"system_settings"`
}

// DefaultAdminPermissions grants every capability.
func DefaultAdminPermissions() Permissions {
	return Permissions{
		ManageUsers:        true,
		ManageJobs:         true,
		ManageApplications: true,
		ViewReports:        true,
		SystemSettings:     true,
	}
}

// PermissionsFrom builds a bag from a list of granted capabilities.
func PermissionsFrom(caps []Capability) Permissions {
	var p Permissions
	for _, c := range caps {
		p.set(c, true)
	}
	return p
}

// Has reports whether the capability is granted.
func (p Permissions) Has(c Capability) bool {
	switch c {
	case CapManageUsers:
		return p.ManageUsers
	case CapManageJobs:
		return p.ManageJobs
	case CapManageApplications:
		return p.ManageApplications
	case CapViewReports:
		return p.ViewReports
	case CapSystemSettings:
		return p.SystemSettings
	default:
		return false
	}
}

// Any reports whether at least one capability is granted.
func (p Permissions) Any() bool {
	return p != Permissions{}
}

// Granted lists the granted capabilities.
func (p Permissions) Granted() []Capability {
	granted := make([]Capability, 0, len(AllCapabilities))
	for _, c := range AllCapabilities {
		if p.Has(c) {
			granted = append(granted, c)
		}
	}
	return granted
}

func (p *Permissions) set(c Capability, v bool) {
	switch c {
	case CapManageUsers:
		p.ManageUsers = v
	case CapManageJobs:
		p.ManageJobs = v
	case CapManageApplications:
		p.ManageApplications = v
	case CapViewReports:
		p.ViewReports = v
	case CapSystemSettings:
		p.SystemSettings = v
	}
}

// Serialize renders the bag as the JSON document persisted on the user row.
func (p Permissions) Serialize() string {
	raw, err := json.Marshal(p)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

// ParsePermissions decodes a stored bag. Missing or corrupted input yields the empty bag.
// Only exact capability names grant anything; encoding/json would otherwise match
// struct tags case-insensitively.
func ParsePermissions(raw string) Permissions {
	if raw == "" {
		return Permissions{}
	}
	var values map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return Permissions{}
	}
	var p Permissions
	for _, c := range AllCapabilities {
		value, ok := values[string(c)]
		if !ok {
			continue
		}
		var granted bool
		if err := json.Unmarshal(value, &granted); err != nil {
			return Permissions{}
		}
		p.set(c, granted)
	}
	return p
}

var legacyCapabilities = map[string]Capability{
	"can_manage_users":     CapManageUsers,
	"can_manage_jobs":      CapManageJobs,
	"can_view_analytics":   CapViewReports,
	"can_moderate_content": CapManageApplications,
}

// MigrateLegacyPermissions rewrites a bag that may use the old can_* keys.
// The second result reports whether any legacy key was found.
func MigrateLegacyPermissions(raw string) (Permissions, bool) {
	var values map[string]any
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return Permissions{}, false
	}
	p := ParsePermissions(raw)
	migrated := false
	for key, value := range values {
		c, ok := legacyCapabilities[key]
		if !ok {
			continue
		}
		migrated = true
		if granted, ok := value.(bool); ok && granted {
			p.set(c, true)
		}
	}
	return p, migrated
}
