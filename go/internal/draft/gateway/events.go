package gateway

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mcdev12/tierdraft/go/internal/draft/events"
	"github.com/mcdev12/tierdraft/go/internal/draft/outbox"
)

// EventTypeSync is sent once to a new connection with the division snapshot.
const EventTypeSync = "division.sync"

// DivisionEvent is the frame written to websocket clients.
type DivisionEvent struct {
	ID         string          `json:"id"`          // Event UUID
	DivisionID string          `json:"division_id"` // Division UUID
	Type       string          `json:"type"`        // Event type
	Timestamp  time.Time       `json:"timestamp"`   // Event creation time
	Data       json.RawMessage `json:"data"`        // Event-specific payload
}

// FromEnvelope converts a relayed outbox envelope to a client frame.
func FromEnvelope(env outbox.Envelope) *DivisionEvent {
	return &DivisionEvent{
		ID:         env.EventID.String(),
		DivisionID: env.DivisionID.String(),
		Type:       env.EventType,
		Timestamp:  env.Timestamp,
		Data:       env.Payload,
	}
}

// ParseEventPayload decodes event data into its payload struct.
func ParseEventPayload(event *DivisionEvent) (any, error) {
	var target any
	switch event.Type {
	case events.DraftAdded:
		target = &events.DraftAddedPayload{}
	case events.DraftCounter:
		target = &events.DraftCounterPayload{}
	case events.DraftCompleted:
		target = &events.DraftCompletedPayload{}
	case events.DraftStatus:
		target = &events.DraftStatusPayload{}
	case events.DraftSkip:
		target = &events.DraftSkipPayload{}
	case events.DraftTrade:
		target = &events.DraftTradePayload{}
	default:
		return nil, fmt.Errorf("unknown event type: %s", event.Type)
	}
	if err := json.Unmarshal(event.Data, target); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", event.Type, err)
	}
	return target, nil
}
