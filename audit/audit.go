// Package audit provides structured security event records for the
// authentication and authorization flows.
package audit

import (
	"context"
	"time"
)

// Event represents a security event worth keeping: a registration, a
// login outcome, a denied action.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`     // e.g. "identity.login.success"
	ActorID   string    `json:"actor_id"` // identity performing the action
	SubjectID string    `json:"subject_id"`
	Status    string    `json:"status"` // "success", "failure", "blocked"
	Message   string    `json:"message"`
	IPAddress string    `json:"ip_address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Recorder persists audit events. Recording is best-effort: flows log
// recorder failures but never fail the user action over them.
type Recorder interface {
	Record(ctx context.Context, event *Event) error
}
