// Package jobs holds the background job contract between the draft engine and the scheduler.
package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Kind names a job handler.
type Kind string

const (
	KindSkipPick     Kind = "skip-pick"
	KindSkipReminder Kind = "skip-reminder"
)

// MaxRetries caps how often a skip-pick job reschedules itself after a no-op.
const MaxRetries = 10

// Payload is what a job carries to its handler.
type Payload struct {
	// DraftCounter is the counter value the job was scheduled against.
	DraftCounter int       `json:"draft_counter"`
	TeamID       uuid.UUID `json:"team_id"`
	SkipTime     time.Time `json:"skip_time"`
	Retry        int       `json:"retry"`
}

// Job is one scheduled unit of work.
type Job struct {
	ID         uuid.UUID `json:"id"`
	Kind       Kind      `json:"kind"`
	DivisionID uuid.UUID `json:"division_id"`
	RunAt      time.Time `json:"run_at"`
	Payload    Payload   `json:"payload"`
}

// New creates a job with a fresh ID.
func New(kind Kind, divisionID uuid.UUID, runAt time.Time, payload Payload) Job {
	return Job{
		ID:         uuid.New(),
		Kind:       kind,
		DivisionID: divisionID,
		RunAt:      runAt,
		Payload:    payload,
	}
}

// Scheduler runs jobs at their RunAt time.
type Scheduler interface {
	Schedule(ctx context.Context, job Job) error
	// Cancel drops every pending job of kind for the division.
	Cancel(ctx context.Context, kind Kind, divisionID uuid.UUID) error
}
