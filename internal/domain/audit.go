package domain

import "time"

// AuditEntity identifies the kind of record an audit entry refers to.
type AuditEntity string

const (
	AuditEntityUser        AuditEntity = "user"
	AuditEntityJobPosting  AuditEntity = "job_posting"
	AuditEntityApplication AuditEntity = "application"
)

// AuditAction captures what happened to the entity.
type AuditAction string

const (
	AuditActionAdminCreated       AuditAction = "admin_created"
	AuditActionPermissionsChanged AuditAction = "permissions_changed"
	AuditActionUserActivation     AuditAction = "activation_changed"
	AuditActionJobDeactivated     AuditAction = "job_deactivated"
	AuditActionStatusChanged      AuditAction = "status_changed"
)

// AuditEntry is an immutable record written alongside a mutation.
type AuditEntry struct {
	ID        int64
	ActorID   *int64
	Entity    AuditEntity
	EntityID  int64
	Action    AuditAction
	Details   map[string]any
	CreatedAt time.Time
}
