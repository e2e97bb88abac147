package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/municipal-helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketDeleted       EventType = "ticket_deleted"
)

// Actor identifies who caused an event.
type Actor struct {
	UserID   int64       `json:"user_id"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

// ActorFrom builds an actor from a caller identity.
func ActorFrom(identity *domain.Identity) Actor {
	if identity == nil {
		return Actor{}
	}
	return Actor{UserID: identity.UserID, Username: identity.Username, Role: identity.Role}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Folio     string      `json:"folio"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewEvent stamps a fresh event.
func NewEvent(eventType EventType, folio string, actor Actor, at time.Time, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Folio:     folio,
		Actor:     actor,
		Timestamp: at,
		Payload:   payload,
	}
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Area      string `json:"area"`
	Service   string `json:"service"`
	Requester string `json:"requester"`
}

// TicketStatusChangedPayload carries what the requester notification needs.
type TicketStatusChangedPayload struct {
	Service    string              `json:"service"`
	OldStatus  domain.TicketStatus `json:"old_status"`
	NewStatus  domain.TicketStatus `json:"new_status"`
	OwnerEmail string              `json:"owner_email"`
	OwnerName  string              `json:"owner_name"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct {
	Requester string `json:"requester"`
}
