package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/tierdraft/go/internal/draft/outbox"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

// JetStreamConsumerConfig holds configuration for the JetStream consumer
type JetStreamConsumerConfig struct {
	StreamName        string
	ConsumerName      string
	SubjectFilter     string        // e.g., "tierdraft.events.>"
	MaxDeliver        int           // Max delivery attempts
	AckWait           time.Duration // How long to wait for ack
	MaxAckPending     int           // Max messages pending ack
	InactiveThreshold time.Duration // Consumer is removed after this long without a client
}

// DefaultJetStreamConsumerConfig returns default JetStream consumer configuration
func DefaultJetStreamConsumerConfig() JetStreamConsumerConfig {
	return JetStreamConsumerConfig{
		StreamName:        "DIVISION_EVENTS",
		ConsumerName:      "division-gateway",
		SubjectFilter:     "tierdraft.events.>",
		MaxDeliver:        5,
		AckWait:           30 * time.Second,
		MaxAckPending:     100,
		InactiveThreshold: 5 * time.Minute,
	}
}

// broadcaster receives decoded events.
type broadcaster interface {
	BroadcastToDivision(divisionID uuid.UUID, event *DivisionEvent)
}

// EventConsumer consumes events from JetStream and broadcasts to WebSocket clients
type EventConsumer struct {
	target   broadcaster
	js       jetstream.JetStream
	consumer jetstream.Consumer
	config   JetStreamConsumerConfig
}

// NewEventConsumer creates a consumer on nc. Every gateway instance gets its own
// consumer so each one sees every event.
func NewEventConsumer(ctx context.Context, nc *nats.Conn, target broadcaster, config JetStreamConsumerConfig) (*EventConsumer, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	ec := &EventConsumer{
		target: target,
		js:     js,
		config: config,
	}
	if err := ec.ensureConsumer(ctx); err != nil {
		return nil, fmt.Errorf("ensure consumer: %w", err)
	}
	return ec, nil
}

// ensureConsumer creates or gets the JetStream consumer
func (ec *EventConsumer) ensureConsumer(ctx context.Context) error {
	stream, err := ec.js.Stream(ctx, ec.config.StreamName)
	if err != nil {
		return fmt.Errorf("get stream: %w", err)
	}

	name := fmt.Sprintf("%s-%s", ec.config.ConsumerName, uuid.New().String()[:8])
	consumer, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Name:              name,
		Description:       "Division gateway WebSocket consumer",
		FilterSubject:     ec.config.SubjectFilter,
		DeliverPolicy:     jetstream.DeliverNewPolicy,
		AckPolicy:         jetstream.AckExplicitPolicy,
		MaxDeliver:        ec.config.MaxDeliver,
		AckWait:           ec.config.AckWait,
		MaxAckPending:     ec.config.MaxAckPending,
		ReplayPolicy:      jetstream.ReplayInstantPolicy,
		InactiveThreshold: ec.config.InactiveThreshold,
	})
	if err != nil {
		return fmt.Errorf("create consumer: %w", err)
	}

	log.Info().
		Str("consumer", name).
		Str("stream", ec.config.StreamName).
		Msg("created JetStream consumer")

	ec.consumer = consumer
	return nil
}

// Start begins consuming events from JetStream
func (ec *EventConsumer) Start(ctx context.Context) error {
	log.Info().
		Str("stream", ec.config.StreamName).
		Str("filter", ec.config.SubjectFilter).
		Msg("starting JetStream event consumer")

	messageCh := make(chan jetstream.Msg, 100)

	consumeCtx, err := ec.consumer.Consume(func(msg jetstream.Msg) {
		select {
		case messageCh <- msg:
		case <-ctx.Done():
			_ = msg.Nak()
		}
	})
	if err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}
	defer consumeCtx.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("event consumer shutting down")
			return nil
		case msg := <-messageCh:
			if err := ec.processMessage(msg.Data()); err != nil {
				log.Error().
					Err(err).
					Str("subject", msg.Subject()).
					Msg("failed to process message")
				// malformed messages will not get better on redelivery
				if termErr := msg.Term(); termErr != nil {
					log.Error().Err(termErr).Msg("failed to terminate message")
				}
				continue
			}
			if ackErr := msg.Ack(); ackErr != nil {
				log.Error().Err(ackErr).Msg("failed to ACK message")
			}
		}
	}
}

// processMessage decodes an envelope and hands it to the broadcaster.
func (ec *EventConsumer) processMessage(data []byte) error {
	var envelope outbox.Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("unmarshal event envelope: %w", err)
	}
	if envelope.DivisionID == uuid.Nil {
		return fmt.Errorf("event %s has no division id", envelope.EventID)
	}

	event := FromEnvelope(envelope)
	if _, err := ParseEventPayload(event); err != nil {
		return err
	}

	ec.target.BroadcastToDivision(envelope.DivisionID, event)

	log.Debug().
		Str("event_id", event.ID).
		Str("division_id", event.DivisionID).
		Str("event_type", event.Type).
		Msg("event broadcasted to WebSocket clients")
	return nil
}
