// Package turn resolves whose turn it is in a division and which teams may draft right now.
package turn

import (
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/tierdraft/go/internal/draft/legality"
	"github.com/mcdev12/tierdraft/go/internal/draft/order"
	"github.com/mcdev12/tierdraft/go/internal/models"
	"github.com/mcdev12/tierdraft/go/internal/tierlist"
)

// MinTimer is the floor of the per-pick timer regardless of how often a team was skipped.
const MinTimer = 30 * time.Second

// Position locates a draft counter within the pick grid. Both fields are 0-based.
type Position struct {
	Round    int `json:"round"`
	Position int `json:"position"`
}

// CurrentPick maps a global draft counter onto (round, position).
func CurrentPick(draftCounter, teamCount int) Position {
	if teamCount <= 0 {
		return Position{}
	}
	return Position{
		Round:    draftCounter / teamCount,
		Position: draftCounter % teamCount,
	}
}

// PickingOrder is the team order for round, reversed on odd snake rounds.
func PickingOrder(teamOrder []*models.Team, round int, style models.DraftStyle) []*models.Team {
	return order.RoundOrder(teamOrder, round, style)
}

// CurrentTeam returns the team on the clock, or nil once every round is exhausted.
func CurrentTeam(div *models.Division, teamOrder []*models.Team, rounds int) *models.Team {
	pos := CurrentPick(div.DraftCounter, len(teamOrder))
	if len(teamOrder) == 0 || pos.Round >= rounds {
		return nil
	}
	return PickingOrder(teamOrder, pos.Round, div.DraftStyle)[pos.Position]
}

// EligibleTeams returns the teams allowed to draft: every team behind the number of picks
// it was expected to have made by the current counter, plus the team at the current position.
// pickOrder is the expanded sequence from order.GeneratePickOrder.
func EligibleTeams(div *models.Division, pickOrder []*models.Team) []*models.Team {
	if div.Status != models.DivisionStatusInProgress {
		return nil
	}

	expected := make(map[uuid.UUID]int, len(div.Teams))
	for i := 0; i < div.DraftCounter && i < len(pickOrder); i++ {
		expected[pickOrder[i].ID]++
	}

	var current uuid.UUID
	if div.DraftCounter < len(pickOrder) {
		current = pickOrder[div.DraftCounter].ID
	}

	var eligible []*models.Team
	seen := make(map[uuid.UUID]bool, len(div.Teams))
	for _, t := range pickOrder {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true

		team, ok := div.Team(t.ID)
		if !ok {
			continue
		}
		if len(team.Draft) < expected[team.ID] || team.ID == current {
			eligible = append(eligible, team)
		}
	}
	return eligible
}

// CanTeamDraft reports whether team still owes a pick as of the current round.
func CanTeamDraft(div *models.Division, teamOrder []*models.Team, team *models.Team) bool {
	if div.Status != models.DivisionStatusInProgress {
		return false
	}

	pos := CurrentPick(div.DraftCounter, len(teamOrder))
	idx := -1
	for i, t := range PickingOrder(teamOrder, pos.Round, div.DraftStyle) {
		if t.ID == team.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	owed := pos.Round
	if idx <= pos.Position {
		owed++
	}
	return len(team.Draft) < owed
}

// DoneDrafting reports whether team has reached its roster or budget ceiling.
func DoneDrafting(tl *tierlist.TierList, team *models.Team) (bool, error) {
	if len(team.Draft) >= tl.DraftCount.Max {
		return true, nil
	}
	remaining, err := legality.Remaining(tl, team)
	if err != nil {
		return false, err
	}
	picksLeft := tl.DraftCount.Max - len(team.Draft)
	return remaining < 1 || picksLeft <= 0, nil
}

// TimerFor halves the base timer for every time the team was skipped, floored at MinTimer.
func TimerFor(base time.Duration, skipCount int) time.Duration {
	if skipCount < 0 {
		skipCount = 0
	}
	if skipCount > 30 {
		return MinTimer
	}
	d := base / time.Duration(1<<skipCount)
	if d < MinTimer {
		return MinTimer
	}
	return d
}
