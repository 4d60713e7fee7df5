package models

import (
	"github.com/google/uuid"
)

// Coach is the resolved owner of a team, joined in by the persistence layer.
type Coach struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Team represents a drafting team in a division
type Team struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Coach     Coach          `json:"coach"`
	Draft     []Pick         `json:"draft"`
	Picks     [][]StagedPick `json:"picks"` // staged queue, one list per upcoming round
	SkipCount int            `json:"skip_count"`
}

// HasItem reports whether itemID is in the team's committed draft.
func (t *Team) HasItem(itemID string) bool {
	return t.draftIndex(itemID) >= 0
}

// RemoveItem drops itemID from the committed draft and reports whether it was present.
func (t *Team) RemoveItem(itemID string) bool {
	i := t.draftIndex(itemID)
	if i < 0 {
		return false
	}
	t.Draft = append(t.Draft[:i], t.Draft[i+1:]...)
	return true
}

// StripStaged removes itemID from every staged round and returns how many entries were removed.
func (t *Team) StripStaged(itemID string) int {
	removed := 0
	for r, round := range t.Picks {
		kept := round[:0]
		for _, sp := range round {
			if sp.ItemID == itemID {
				removed++
				continue
			}
			kept = append(kept, sp)
		}
		t.Picks[r] = kept
	}
	return removed
}

func (t *Team) draftIndex(itemID string) int {
	for i, p := range t.Draft {
		if p.ItemID == itemID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the team.
func (t *Team) Clone() *Team {
	if t == nil {
		return nil
	}
	c := *t
	c.Draft = make([]Pick, len(t.Draft))
	for i, p := range t.Draft {
		c.Draft[i] = p.clone()
	}
	c.Picks = make([][]StagedPick, len(t.Picks))
	for r, round := range t.Picks {
		c.Picks[r] = make([]StagedPick, len(round))
		for i, sp := range round {
			c.Picks[r][i] = sp.clone()
		}
	}
	return &c
}
