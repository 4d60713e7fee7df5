package outbox

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mcdev12/tierdraft/go/internal/sqlutil"
	"github.com/sqlc-dev/pqtype"
)

//go:embed schema.sql
var schema string

// ErrEventNotFound is returned when an event is missing or already sent.
var ErrEventNotFound = errors.New("outbox event not found or already sent")

type Repository struct {
	db            *sql.DB
	notifyChannel string
}

// NewRepository creates a repository that announces inserts on notifyChannel.
func NewRepository(db *sql.DB, notifyChannel string) *Repository {
	return &Repository{
		db:            db,
		notifyChannel: notifyChannel,
	}
}

// Migrate creates the outbox table if it does not exist.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate division_outbox: %w", err)
	}
	return nil
}

// Insert stores the event and notifies listeners in the same transaction.
func (r *Repository) Insert(ctx context.Context, event Event) error {
	err := sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO division_outbox (id, division_id, event_type, payload, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
			event.ID,
			event.DivisionID,
			event.EventType,
			pqtype.NullRawMessage{RawMessage: event.Payload, Valid: len(event.Payload) > 0},
			event.CreatedAt,
		)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `SELECT pg_notify($1, $2)`, r.notifyChannel, event.ID.String())
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to insert %s outbox event: %w", event.EventType, err)
	}
	return nil
}

// FetchUnsent returns up to limit unsent events, oldest first.
func (r *Repository) FetchUnsent(ctx context.Context, limit int) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, division_id, event_type, payload, created_at, sent_at
		FROM division_outbox
		WHERE sent_at IS NULL
		ORDER BY created_at
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unsent outbox events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// FetchByID returns an unsent event.
func (r *Repository) FetchByID(ctx context.Context, id uuid.UUID) (Event, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, division_id, event_type, payload, created_at, sent_at
		FROM division_outbox
		WHERE id = $1 AND sent_at IS NULL`, id)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Event{}, ErrEventNotFound
		}
		return Event{}, err
	}
	return event, nil
}

// MarkSent stamps sent_at on the given events.
func (r *Repository) MarkSent(ctx context.Context, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE division_outbox SET sent_at = now() WHERE id = ANY($1::uuid[])`, pq.Array(strs))
	if err != nil {
		return fmt.Errorf("failed to mark outbox events as sent: %w", err)
	}
	return nil
}

// CountPending returns how many events are waiting to be published.
func (r *Repository) CountPending(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM division_outbox WHERE sent_at IS NULL`).Scan(&count)
	return count, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (Event, error) {
	var (
		event   Event
		payload pqtype.NullRawMessage
		sentAt  sql.NullTime
	)
	if err := s.Scan(&event.ID, &event.DivisionID, &event.EventType, &payload, &event.CreatedAt, &sentAt); err != nil {
		return Event{}, fmt.Errorf("failed to scan outbox event: %w", err)
	}
	if payload.Valid {
		event.Payload = payload.RawMessage
	}
	event.SentAt = sqlutil.TimePtr(sentAt)
	return event, nil
}
