package models

import (
	"slices"
	"time"
)

// Pick is a committed draft selection. Immutable once appended to a team's draft,
// except through trade settlement.
type Pick struct {
	ItemID    string    `json:"item_id"`
	Addons    []string  `json:"addons,omitempty"`
	Picker    string    `json:"picker"`
	Timestamp time.Time `json:"timestamp"`
}

// StagedPick is a pre-staged selection a coach queued for an upcoming round.
type StagedPick struct {
	ItemID string   `json:"item_id"`
	Addons []string `json:"addons,omitempty"`
}

func (p Pick) clone() Pick {
	p.Addons = slices.Clone(p.Addons)
	return p
}

func (s StagedPick) clone() StagedPick {
	s.Addons = slices.Clone(s.Addons)
	return s
}
