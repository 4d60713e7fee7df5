// Package gateway pushes division events to websocket clients.
package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Service is the gateway that handles WebSocket connections and event broadcasting
type Service struct {
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
	eventConsumer     *EventConsumer
}

// Config holds configuration for the gateway service
type Config struct {
	ConnectionConfig ConnectionConfig
	JetStreamConfig  JetStreamConsumerConfig
}

// DefaultConfig returns default configuration for the gateway
func DefaultConfig() Config {
	return Config{
		ConnectionConfig: DefaultConnectionConfig(),
		JetStreamConfig:  DefaultJetStreamConsumerConfig(),
	}
}

// NewService creates the gateway. With a nil nc no JetStream consumer is created and
// events must be fed through Manager().Publish.
func NewService(ctx context.Context, config Config, nc *nats.Conn, state StateProvider) (*Service, error) {
	connectionManager := NewConnectionManager(config.ConnectionConfig, state)

	s := &Service{
		connectionManager: connectionManager,
		wsHandler:         NewWebSocketHandler(connectionManager),
	}

	if nc != nil {
		consumer, err := NewEventConsumer(ctx, nc, connectionManager, config.JetStreamConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create event consumer: %w", err)
		}
		s.eventConsumer = consumer
	}
	return s, nil
}

// Manager exposes the connection manager.
func (s *Service) Manager() *ConnectionManager {
	return s.connectionManager
}

// Start runs the broadcaster and, when configured, the JetStream consumer until ctx ends.
func (s *Service) Start(ctx context.Context) error {
	log.Info().Bool("jetstream", s.eventConsumer != nil).Msg("starting division gateway")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.connectionManager.Start(ctx)
		return nil
	})
	if s.eventConsumer != nil {
		g.Go(func() error {
			return s.eventConsumer.Start(ctx)
		})
	}

	err := g.Wait()
	log.Info().Msg("division gateway stopped")
	return err
}

// RegisterRoutes registers the WebSocket HTTP routes
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.wsHandler.RegisterRoutes(mux)
}
