package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/job-board/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventJobPosted                EventType = "job_posted"
	EventJobDeactivated           EventType = "job_deactivated"
	EventApplicationSubmitted     EventType = "application_submitted"
	EventApplicationStatusChanged EventType = "application_status_changed"
	EventAdminCreated             EventType = "admin_created"
	EventUserRegistered           EventType = "user_registered"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID int64       `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	EntityID  int64       `json:"entity_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewEvent stamps a fresh id and timestamp.
func NewEvent(eventType EventType, entityID int64, actor domain.Actor, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		EntityID:  entityID,
		Actor:     Actor{UserID: actor.UserID, Role: actor.Role},
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// JobPostedPayload payload.
type JobPostedPayload struct {
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	EmployerID int64  `json:"employer_id"`
}

// ApplicationSubmittedPayload payload.
type ApplicationSubmittedPayload struct {
	JobID    int64 `json:"job_id"`
	SeekerID int64 `json:"seeker_id"`
}

// ApplicationStatusChangedPayload payload.
type ApplicationStatusChangedPayload struct {
	OldStatus domain.ApplicationStatus `json:"old_status"`
	NewStatus domain.ApplicationStatus `json:"new_status"`
	Note      string                   `json:"note,omitempty"`
}

// AdminCreatedPayload payload.
type AdminCreatedPayload struct {
	Username    string              `json:"username"`
	Permissions []domain.Capability `json:"permissions"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}
