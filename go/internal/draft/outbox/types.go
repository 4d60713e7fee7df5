// Package outbox stores draft events in Postgres and relays them to subscribers.
// Events are written to division_outbox, announced with NOTIFY and published by the
// Listener, which also polls for anything a notification missed.
package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event represents an outbox row
type Event struct {
	ID         uuid.UUID       `json:"id"`
	DivisionID uuid.UUID       `json:"division_id"`
	EventType  string          `json:"event_type"`
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  time.Time       `json:"created_at"`
	SentAt     *time.Time      `json:"sent_at,omitempty"`
}

// Envelope is the message body published for every event.
type Envelope struct {
	EventID    uuid.UUID       `json:"eventId"`
	EventType  string          `json:"eventType"`
	DivisionID uuid.UUID       `json:"divisionId"`
	Timestamp  time.Time       `json:"timestamp"`
	Payload    json.RawMessage `json:"payload"`
}

// NewEnvelope wraps an event for publishing.
func NewEnvelope(event Event) Envelope {
	ts := event.CreatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return Envelope{
		EventID:    event.ID,
		EventType:  event.EventType,
		DivisionID: event.DivisionID,
		Timestamp:  ts,
		Payload:    event.Payload,
	}
}

// Publisher delivers an event to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, event Event) error

func (f PublisherFunc) Publish(ctx context.Context, event Event) error {
	return f(ctx, event)
}
