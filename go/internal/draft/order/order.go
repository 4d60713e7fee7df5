// Package order derives the deterministic team order of a division and expands it into
// the full pick sequence for snake and linear drafts.
//
// The order is never persisted. It is recomputed from the division ID on every read, so
// StableOrder must return the same permutation for the same inputs.
package order

import (
	"slices"

	"github.com/google/uuid"
	"github.com/mcdev12/tierdraft/go/internal/models"
)

// Slot is one pick in the expanded draft board.
type Slot struct {
	Round       int       `json:"round"`        // 0-based
	Pick        int       `json:"pick"`         // 1-indexed pick number within round
	OverallPick int       `json:"overall_pick"` // 0-based, matches Division.DraftCounter
	TeamID      uuid.UUID `json:"team_id"`
}

// Seed folds the character codes of key into a 31-bit seed.
func Seed(key string) uint32 {
	var h uint32
	for _, c := range key {
		h = (h*31 + uint32(c)) & 0x7fffffff
	}
	return h
}

// unitRand is a pure function of (seed, i) returning a value in [0, 1).
func unitRand(seed uint32, i int) float64 {
	x := seed + uint32(i)*0x6d2b79f5
	x = (x ^ (x >> 15)) * (x | 1)
	x ^= x + (x^(x>>7))*(x|61)
	x ^= x >> 14
	return float64(x) / 4294967296.0
}

// StableOrder returns a copy of items shuffled with a Fisher–Yates pass seeded from key.
// With randomize false the stored order is returned unchanged.
func StableOrder[T any](key string, items []T, randomize bool) []T {
	out := slices.Clone(items)
	if !randomize {
		return out
	}

	seed := Seed(key)
	for i := len(out) - 1; i > 0; i-- {
		j := int(unitRand(seed, i) * float64(i+1))
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// GeneratePickOrder repeats order once per round, reversing odd rounds for snake drafts.
func GeneratePickOrder[T any](order []T, rounds int, style models.DraftStyle) []T {
	if rounds <= 0 {
		return nil
	}
	out := make([]T, 0, len(order)*rounds)
	for round := 0; round < rounds; round++ {
		out = append(out, RoundOrder(order, round, style)...)
	}
	return out
}

// RoundOrder is the picking order of a single 0-based round.
func RoundOrder[T any](order []T, round int, style models.DraftStyle) []T {
	if style == models.DraftStyleSnake && round%2 == 1 {
		rev := slices.Clone(order)
		slices.Reverse(rev)
		return rev
	}
	return order
}

// DivisionOrder is the stable team order of a division.
func DivisionOrder(div *models.Division) []*models.Team {
	return StableOrder(div.ID.String(), div.Teams, div.RandomOrder)
}

// Board expands the division into every pick slot of the draft.
func Board(div *models.Division, rounds int) []Slot {
	teams := DivisionOrder(div)
	ids := make([]uuid.UUID, len(teams))
	for i, t := range teams {
		ids[i] = t.ID
	}

	slots := make([]Slot, 0, len(ids)*rounds)
	overall := 0
	for round := 0; round < rounds; round++ {
		for pick, teamID := range RoundOrder(ids, round, div.DraftStyle) {
			slots = append(slots, Slot{
				Round:       round,
				Pick:        pick + 1,
				OverallPick: overall,
				TeamID:      teamID,
			})
			overall++
		}
	}
	return slots
}
