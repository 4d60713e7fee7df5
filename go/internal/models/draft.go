package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftStyle defines how the pick order repeats between rounds.
type DraftStyle string

const (
	DraftStyleSnake  DraftStyle = "snake"
	DraftStyleLinear DraftStyle = "linear"
)

// DivisionStatus defines the status of a division's draft.
type DivisionStatus string

const (
	DivisionStatusPreDraft   DivisionStatus = "PRE_DRAFT"
	DivisionStatusInProgress DivisionStatus = "IN_PROGRESS"
	DivisionStatusPaused     DivisionStatus = "PAUSED"
	DivisionStatusCompleted  DivisionStatus = "COMPLETED"
)

// Division represents one draft instance and the teams drafting in it.
type Division struct {
	ID            uuid.UUID      `json:"id"`
	Name          string         `json:"name"`
	Teams         []*Team        `json:"teams"` // stored relative order
	DraftCounter  int            `json:"draft_counter"`
	DraftStyle    DraftStyle     `json:"draft_style"`
	Status        DivisionStatus `json:"status"`
	SkipTime      *time.Time     `json:"skip_time,omitempty"`
	RemainingTime *time.Duration `json:"remaining_time,omitempty"` // set while paused
	TimerLength   int            `json:"timer_length"`             // base seconds per pick
	ChannelID     string         `json:"channel_id,omitempty"`
	RandomOrder   bool           `json:"random_order"`
	Trades        []Trade        `json:"trades"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Team looks up a team in the division by ID.
func (d *Division) Team(id uuid.UUID) (*Team, bool) {
	for _, t := range d.Teams {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// Drafted reports whether any team in the division currently holds itemID.
func (d *Division) Drafted(itemID string) bool {
	for _, t := range d.Teams {
		if t.HasItem(itemID) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so that callers can mutate it without touching stored state.
func (d *Division) Clone() *Division {
	if d == nil {
		return nil
	}
	c := *d
	if d.SkipTime != nil {
		t := *d.SkipTime
		c.SkipTime = &t
	}
	if d.RemainingTime != nil {
		r := *d.RemainingTime
		c.RemainingTime = &r
	}
	c.Teams = make([]*Team, len(d.Teams))
	for i, t := range d.Teams {
		c.Teams[i] = t.Clone()
	}
	c.Trades = make([]Trade, len(d.Trades))
	for i, tr := range d.Trades {
		c.Trades[i] = tr.Clone()
	}
	return &c
}
