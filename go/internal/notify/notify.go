// Package notify delivers human readable draft messages to a division's chat channel.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Message is the body published for every notification.
type Message struct {
	ChannelID string    `json:"channel_id"`
	Text      string    `json:"text"`
	SentAt    time.Time `json:"sent_at"`
}

// Publisher is the subset of *nats.Conn used for notifications.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Routes maps a channel ID to the subject its messages are published on.
type Routes map[string]string

// NATSNotifier publishes notifications on core NATS. A chat bridge subscribes to the
// subjects and forwards the text.
type NATSNotifier struct {
	conn          Publisher
	subjectPrefix string
	routes        Routes
	clock         clockwork.Clock
}

// NewNATSNotifier creates a notifier publishing on <subjectPrefix>.<channelID> unless
// routes names another subject for the channel.
func NewNATSNotifier(conn Publisher, subjectPrefix string, routes Routes) *NATSNotifier {
	return &NATSNotifier{
		conn:          conn,
		subjectPrefix: subjectPrefix,
		routes:        routes,
		clock:         clockwork.NewRealClock(),
	}
}

func (n *NATSNotifier) subject(channelID string) string {
	if s, ok := n.routes[channelID]; ok && s != "" {
		return s
	}
	return n.subjectPrefix + "." + channelID
}

func (n *NATSNotifier) Send(_ context.Context, channelID string, message string) error {
	if channelID == "" {
		return errors.New("channel id is required")
	}
	data, err := json.Marshal(Message{
		ChannelID: channelID,
		Text:      message,
		SentAt:    n.clock.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	subject := n.subject(channelID)
	if err := n.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish notification to %s: %w", subject, err)
	}
	return nil
}

// LogNotifier writes notifications to the log. Used when no NATS server is configured.
type LogNotifier struct{}

func (LogNotifier) Send(_ context.Context, channelID string, message string) error {
	log.Info().Str("channel_id", channelID).Str("text", message).Msg("notification")
	return nil
}

// Sender is implemented by every notifier.
type Sender interface {
	Send(ctx context.Context, channelID string, message string) error
}

// Multi sends to every notifier and joins their errors.
type Multi []Sender

func (m Multi) Send(ctx context.Context, channelID string, message string) error {
	var errs []error
	for _, s := range m {
		if err := s.Send(ctx, channelID, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
