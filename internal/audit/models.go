package audit

import "time"

// Event is an immutable, append-only audit record of a guarded mutation.
//
// Invariants:
// - Events are never updated or deleted.
// - ActorUserID is the verified token subject; it is required.
// - Recording is best-effort and never fails the request that caused it.
type Event struct {
	ID   string    `json:"id"`
	Type EventType `json:"type"`

	ActorUserID string `json:"actorUserId"`
	ActorRole   string `json:"actorRole,omitempty"`
	IPAddress   string `json:"ipAddress,omitempty"`

	// TargetID is the id of the user or product the mutation touched.
	TargetID string `json:"targetId,omitempty"`
	Message  string `json:"message,omitempty"`
	// Metadata is an optional JSON object with event-specific detail, such as
	// the fields a product update touched.
	Metadata string `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

type EventType string

const (
	EventUserCreated       EventType = "user_created"
	EventUserStatusChanged EventType = "user_status_changed"
	EventProductCreated    EventType = "product_created"
	EventProductUpdated    EventType = "product_updated"
	EventProductDeleted    EventType = "product_deleted"
)

// Actor identifies who caused an event and from where.
type Actor struct {
	UserID string
	Role   string
	IP     string
}
