package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// EventWriter stores an outbox event.
type EventWriter interface {
	Insert(ctx context.Context, event Event) error
}

// Sink turns engine events into outbox rows.
type Sink struct {
	writer EventWriter
	clock  clockwork.Clock
}

// NewSink creates a sink writing through writer.
func NewSink(writer EventWriter, clock clockwork.Clock) *Sink {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Sink{writer: writer, clock: clock}
}

// Emit encodes payload and inserts it as a new event.
func (s *Sink) Emit(ctx context.Context, eventType string, divisionID uuid.UUID, payload any) error {
	event, err := newEvent(eventType, divisionID, payload, s.clock)
	if err != nil {
		return err
	}
	if err := s.writer.Insert(ctx, event); err != nil {
		return err
	}

	log.Info().
		Str("division_id", divisionID.String()).
		Str("event_type", eventType).
		Str("event_id", event.ID.String()).
		Msg("outbox event inserted")
	return nil
}

// PublishWriter is an EventWriter that skips storage and publishes immediately.
// It backs deployments without Postgres.
type PublishWriter struct {
	Publisher Publisher
}

func (w PublishWriter) Insert(ctx context.Context, event Event) error {
	return w.Publisher.Publish(ctx, event)
}

func newEvent(eventType string, divisionID uuid.UUID, payload any, clock clockwork.Clock) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	if err := validateEventPayload(data); err != nil {
		return Event{}, fmt.Errorf("invalid %s payload: %w", eventType, err)
	}
	return Event{
		ID:         uuid.New(),
		DivisionID: divisionID,
		EventType:  eventType,
		Payload:    data,
		CreatedAt:  clock.Now().UTC(),
	}, nil
}

// validateEventPayload validates that the event payload is not empty
func validateEventPayload(payload []byte) error {
	if len(payload) == 0 || string(payload) == "null" {
		return fmt.Errorf("event payload cannot be empty")
	}
	return nil
}
