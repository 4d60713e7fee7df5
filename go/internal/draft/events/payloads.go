package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/tierdraft/go/internal/models"
)

// Event payload types that are shared between the engine, the outbox relay and the gateway

const (
	DraftAdded     = "draft.added"
	DraftCounter   = "draft.counter"
	DraftCompleted = "draft.completed"
	DraftStatus    = "draft.status"
	DraftSkip      = "league.draft.skip"
	DraftTrade     = "draft.trade"
)

// CurrentPick is the snapshot of the pick on the clock.
type CurrentPick struct {
	Status       models.DivisionStatus `json:"status"`
	Round        int                   `json:"round"`
	Position     int                   `json:"position"`
	DraftCounter int                   `json:"draft_counter"`
	TeamID       *uuid.UUID            `json:"team_id,omitempty"`
	SkipTime     *time.Time            `json:"skip_time,omitempty"`
}

// DraftAddedPayload is the payload for a draft.added event
type DraftAddedPayload struct {
	DivisionID  uuid.UUID   `json:"division_id"`
	TeamID      uuid.UUID   `json:"team_id"`
	TeamName    string      `json:"team_name"`
	Pick        models.Pick `json:"pick"`
	AutoPicked  bool        `json:"auto_picked"`
	SnipeCount  int         `json:"snipe_count"`
	Eligible    []uuid.UUID `json:"eligible"`
	CurrentPick CurrentPick `json:"current_pick"`
}

// DraftCounterPayload is the payload for a draft.counter event, emitted when the turn
// moves without a pick being made.
type DraftCounterPayload struct {
	DivisionID  uuid.UUID   `json:"division_id"`
	Eligible    []uuid.UUID `json:"eligible"`
	CurrentPick CurrentPick `json:"current_pick"`
}

// DraftCompletedPayload is the payload for a draft.completed event
type DraftCompletedPayload struct {
	DivisionID   uuid.UUID `json:"division_id"`
	DraftCounter int       `json:"draft_counter"`
	CompletedAt  time.Time `json:"completed_at"`
}

// DraftStatusPayload is the payload for a draft.status event
type DraftStatusPayload struct {
	DivisionID    uuid.UUID             `json:"division_id"`
	Status        models.DivisionStatus `json:"status"`
	SkipTime      *time.Time            `json:"skip_time,omitempty"`
	RemainingTime *time.Duration        `json:"remaining_time,omitempty"`
	ChangedAt     time.Time             `json:"changed_at"`
}

// DraftSkipPayload is the payload for a league.draft.skip event
type DraftSkipPayload struct {
	DivisionID uuid.UUID `json:"division_id"`
	TeamID     uuid.UUID `json:"team_id"`
	SkipCount  int       `json:"skip_count"`
	Forced     bool      `json:"forced"`
	TimerSec   int       `json:"timer_sec"`
	SkippedAt  time.Time `json:"skipped_at"`
}

// DraftTradePayload is the payload for a draft.trade event
type DraftTradePayload struct {
	DivisionID uuid.UUID    `json:"division_id"`
	Trade      models.Trade `json:"trade"`
}
