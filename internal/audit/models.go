package audit

import "time"

// Event is an immutable, append-only audit log record of an auth decision.
//
// Invariants:
// - Events are never updated or deleted.
// - Type is required.
// - Tokens and passwords are never recorded.
type Event struct {
	ID   string    `json:"id" db:"id"`
	Type EventType `json:"type" db:"type"`

	// ActorUserID is the authenticated user causing the event (if known).
	ActorUserID string `json:"actor_user_id,omitempty" db:"actor_user_id"`
	ActorRole   string `json:"actor_role,omitempty" db:"actor_role"`

	// TargetUserID is the account acted upon, e.g. by a privilege change.
	TargetUserID string `json:"target_user_id,omitempty" db:"target_user_id"`

	// Email is the login identifier presented, kept for failed logins.
	Email string `json:"email,omitempty" db:"email"`

	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`

	Message  string `json:"message,omitempty" db:"message"`
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeRegister        EventType = "register"
	EventTypeLogin           EventType = "login"
	EventTypeLoginFailed     EventType = "login_failed"
	EventTypeAccessDenied    EventType = "access_denied"
	EventTypePrivilegeChange EventType = "privilege_change"
)
