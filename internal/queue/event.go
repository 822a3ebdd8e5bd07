// Package queue carries domain events over RabbitMQ: a topic-exchange
// publisher used by the API and the consumer behind cmd/auditlog.
package queue

import (
	"context"
	"time"
)

// Routing keys, also used as Event.Type.
const (
	UserRegistered  = "user.registered"
	UserRoleUpdated = "user.role_updated"
	UserDeleted     = "user.deleted"
	ContactCreated  = "contact.created"
	ContactUpdated  = "contact.updated"
	ContactDeleted  = "contact.deleted"
)

// Event is published after a mutation has been committed. It carries ids
// only, never contact details or credentials.
type Event struct {
	Type       string    `json:"type"`
	ActorID    string    `json:"actor_id"`
	SubjectID  string    `json:"subject_id"`
	OwnerID    string    `json:"owner_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent stamps an event with the current UTC time.
func NewEvent(typ, actorID, subjectID, ownerID string) Event {
	return Event{Type: typ, ActorID: actorID, SubjectID: subjectID, OwnerID: ownerID, OccurredAt: time.Now().UTC()}
}

// Emitter is what services publish through.
type Emitter interface {
	Publish(ctx context.Context, ev Event) error
}

// Nop drops every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
