package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// TradeSide is one half of a trade. TeamID is nil when the side is the free pool.
type TradeSide struct {
	TeamID *uuid.UUID `json:"team_id,omitempty"`
	Items  []string   `json:"items"`
}

// Trade is an immutable entry in a division's trade log.
type Trade struct {
	ID        uuid.UUID `json:"id"`
	Side1     TradeSide `json:"side1"`
	Side2     TradeSide `json:"side2"`
	Stage     string    `json:"stage"`
	Timestamp time.Time `json:"timestamp"`
}

// Clone returns a deep copy of the trade record.
func (t Trade) Clone() Trade {
	t.Side1 = t.Side1.clone()
	t.Side2 = t.Side2.clone()
	return t
}

func (s TradeSide) clone() TradeSide {
	if s.TeamID != nil {
		id := *s.TeamID
		s.TeamID = &id
	}
	s.Items = slices.Clone(s.Items)
	return s
}
