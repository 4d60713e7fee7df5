package outbox

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

type ListenerConfig struct {
	DatabaseURL      string        // Postgres DSN for LISTEN/NOTIFY
	NotifyChannel    string        // Channel name to LISTEN on
	FallbackInterval time.Duration // How often to poll for missed events
	MaxRetries       int
	RetryDelay       time.Duration
	PingInterval     time.Duration
	BatchSize        int // Max events to fetch per batch
}

func DefaultListenerConfig() ListenerConfig {
	return ListenerConfig{
		DatabaseURL:      "",
		NotifyChannel:    "division_outbox_events",
		FallbackInterval: 30 * time.Second,
		MaxRetries:       5,
		RetryDelay:       200 * time.Millisecond,
		PingInterval:     90 * time.Second,
		BatchSize:        100,
	}
}

// EventStore is what the listener reads and updates.
type EventStore interface {
	FetchByID(ctx context.Context, id uuid.UUID) (Event, error)
	FetchUnsent(ctx context.Context, limit int) ([]Event, error)
	MarkSent(ctx context.Context, ids ...uuid.UUID) error
	CountPending(ctx context.Context) (int, error)
}

type notificationSource interface {
	NotificationChannel() <-chan *pq.Notification
	Ping() error
	Close() error
}

type Listener struct {
	store     EventStore
	conn      notificationSource
	publisher Publisher
	metrics   MetricsCollector
	cfg       ListenerConfig

	stopOnce sync.Once
	stopErr  error

	mu        sync.Mutex
	running   bool
	processed uint64
	lastEvent time.Time
}

// NewListener opens a LISTEN connection on cfg.NotifyChannel.
func NewListener(store EventStore, publisher Publisher, metrics MetricsCollector, cfg ListenerConfig) (*Listener, error) {
	l := pq.NewListener(
		cfg.DatabaseURL,
		10*time.Second,
		time.Minute,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				log.Error().Err(err).Msg("listener event")
			}
		},
	)
	if err := l.Listen(cfg.NotifyChannel); err != nil {
		_ = l.Close()
		return nil, fmt.Errorf("failed to listen to channel: %w", err)
	}

	log.Info().
		Str("channel", cfg.NotifyChannel).
		Msg("listening for notifications")

	return newListener(store, l, publisher, metrics, cfg), nil
}

func newListener(store EventStore, conn notificationSource, publisher Publisher, metrics MetricsCollector, cfg ListenerConfig) *Listener {
	if metrics == nil {
		metrics = &NoOpMetricsCollector{}
	}
	return &Listener{
		store:     store,
		conn:      conn,
		publisher: NewMetricPublisher(publisher, metrics),
		metrics:   metrics,
		cfg:       cfg,
	}
}

// Start relays events until ctx is cancelled. Unsent events are drained once at startup.
func (l *Listener) Start(ctx context.Context) error {
	log.Info().
		Str("channel", l.cfg.NotifyChannel).
		Dur("ping_interval", l.cfg.PingInterval).
		Dur("fallback_interval", l.cfg.FallbackInterval).
		Msg("listener started")

	l.setRunning(true)
	defer l.setRunning(false)

	pingTicker := time.NewTicker(l.cfg.PingInterval)
	fallbackTicker := time.NewTicker(l.cfg.FallbackInterval)
	defer pingTicker.Stop()
	defer fallbackTicker.Stop()

	if err := l.processUnsent(ctx); err != nil {
		log.Error().Err(err).Msg("failed to process unsent events")
	}

	notify := l.conn.NotificationChannel()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("listener shutting down")
			return l.Stop()
		case note := <-notify:
			if note == nil {
				// connection was re-established; anything sent meanwhile is picked up by polling
				continue
			}
			if err := l.handleNotification(ctx, note.Extra); err != nil {
				log.Error().Err(err).Msg("failed to handle notification")
			}
		case <-fallbackTicker.C:
			if err := l.processUnsent(ctx); err != nil {
				log.Error().Err(err).Msg("failed to process unsent events")
			}
		case <-pingTicker.C:
			if err := l.conn.Ping(); err != nil {
				log.Error().Err(err).Msg("failed to ping listener")
			}
		}
	}
}

// Stop closes the LISTEN connection. Later calls return the first result.
func (l *Listener) Stop() error {
	l.stopOnce.Do(func() {
		l.stopErr = l.conn.Close()
	})
	return l.stopErr
}

// Running reports whether Start is active.
func (l *Listener) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Stats returns the number of published events and when the last one went out.
func (l *Listener) Stats() (uint64, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.processed, l.lastEvent
}

func (l *Listener) setRunning(running bool) {
	l.mu.Lock()
	l.running = running
	l.mu.Unlock()
}

func (l *Listener) recordSent(n int) {
	l.mu.Lock()
	l.processed += uint64(n)
	l.lastEvent = time.Now()
	l.mu.Unlock()
}

// handleNotification handles a pg listen notification. Extra is the event ID.
func (l *Listener) handleNotification(ctx context.Context, extra string) error {
	id, err := uuid.Parse(extra)
	if err != nil {
		return fmt.Errorf("invalid event ID in notification: %w", err)
	}

	event, err := l.store.FetchByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			// already relayed by the fallback poll
			return nil
		}
		return fmt.Errorf("failed to fetch outbox event: %w", err)
	}

	if err := l.publishWithRetry(ctx, event); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	if err := l.store.MarkSent(ctx, id); err != nil {
		return err
	}
	l.recordSent(1)

	log.Debug().Str("event_id", id.String()).Str("event_type", event.EventType).Msg("published and marked event as sent")
	return nil
}

// processUnsent publishes one batch of unsent events.
func (l *Listener) processUnsent(ctx context.Context) error {
	start := time.Now()

	if pending, err := l.store.CountPending(ctx); err == nil {
		l.metrics.RecordOutboxLag(pending)
	}

	unsent, err := l.store.FetchUnsent(ctx, l.cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to fetch unsent outbox events: %w", err)
	}
	if len(unsent) == 0 {
		return nil
	}

	sent := make([]uuid.UUID, 0, len(unsent))
	for _, event := range unsent {
		if err := l.publishWithRetry(ctx, event); err != nil {
			log.Error().Err(err).Str("event_id", event.ID.String()).Msg("failed to publish event")
			continue
		}
		sent = append(sent, event.ID)
	}

	if err := l.store.MarkSent(ctx, sent...); err != nil {
		return err
	}
	l.recordSent(len(sent))
	l.metrics.RecordBatchProcessed(len(sent), time.Since(start))

	log.Info().
		Int("total", len(unsent)).
		Int("successful", len(sent)).
		Msg("processed unsent events batch")
	return nil
}

// publishWithRetry attempts to publish an outbox event with a linear backoff.
func (l *Listener) publishWithRetry(ctx context.Context, event Event) error {
	var lastErr error

	for attempt := 0; attempt <= l.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := l.cfg.RetryDelay * time.Duration(attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := l.publisher.Publish(ctx, event); err != nil {
			lastErr = err
			l.metrics.RecordPublishAttempt(event.EventType, attempt+1, false)
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("event_id", event.ID.String()).
				Msg("failed to publish, retrying")
			continue
		}
		l.metrics.RecordPublishAttempt(event.EventType, attempt+1, true)

		if attempt > 0 {
			log.Info().
				Int("attempt", attempt+1).
				Str("event_id", event.ID.String()).
				Msg("publish succeeded after retry")
		}
		return nil
	}

	return fmt.Errorf("publish failed after %d attempts: %w", l.cfg.MaxRetries+1, lastErr)
}
