package audit

import "time"

// Event is an immutable, append-only security audit record.
//
// Invariants:
// - Events are never updated or deleted.
// - Actor and ip capture are best-effort; never block auth flows on audit
//   failures.
type Event struct {
	ID   string    `json:"id" db:"id"`
	Type EventType `json:"type" db:"type"`

	// ActorUserID is the subject causing the event, when known.
	ActorUserID int64  `json:"actor_user_id,omitempty" db:"actor_user_id"`
	ActorRole   string `json:"actor_role,omitempty" db:"actor_role"`
	IPAddress   string `json:"ip_address,omitempty" db:"ip_address"`

	// Target identifiers (optional, depending on the event type).
	TargetUserID int64 `json:"target_user_id,omitempty" db:"target_user_id"`
	TeamID       int64 `json:"team_id,omitempty" db:"team_id"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeLogin        EventType = "login"
	EventTypeLoginFailed  EventType = "login_failed"
	EventTypeLogout       EventType = "logout"
	EventTypeAccessDenied EventType = "access_denied"
	EventTypeLockoutBlock EventType = "lockout_block"
	EventTypeAdminAction  EventType = "admin_action"
)
