package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/tierdraft/go/internal/draft/events"
	"github.com/mcdev12/tierdraft/go/internal/draft/legality"
	"github.com/mcdev12/tierdraft/go/internal/draft/order"
	"github.com/mcdev12/tierdraft/go/internal/draft/turn"
	"github.com/mcdev12/tierdraft/go/internal/models"
	"github.com/mcdev12/tierdraft/go/internal/tierlist"
)

// Snapshot is a read-only view of a division for clients.
type Snapshot struct {
	Division    *models.Division   `json:"division"`
	Order       []uuid.UUID        `json:"order"`
	Rounds      int                `json:"rounds"`
	CurrentPick events.CurrentPick `json:"current_pick"`
	Eligible    []uuid.UUID        `json:"eligible"`
	Remaining   map[uuid.UUID]int  `json:"remaining_points"`
	Board       []order.Slot       `json:"board"`
}

// CurrentPick returns the round, position and team on the clock.
func (e *Engine) CurrentPick(ctx context.Context, divisionID uuid.UUID) (events.CurrentPick, error) {
	div, tl, err := e.load(ctx, divisionID)
	if err != nil {
		return events.CurrentPick{}, err
	}
	return currentPickOf(div, teamOrder(div), tl.Rounds()), nil
}

// EligibleTeams returns the teams allowed to draft right now.
func (e *Engine) EligibleTeams(ctx context.Context, divisionID uuid.UUID) ([]*models.Team, error) {
	div, tl, err := e.load(ctx, divisionID)
	if err != nil {
		return nil, err
	}
	pickOrder := order.GeneratePickOrder(teamOrder(div), tl.Rounds(), div.DraftStyle)
	return turn.EligibleTeams(div, pickOrder), nil
}

// DivisionSnapshot returns the division with its derived draft state.
func (e *Engine) DivisionSnapshot(ctx context.Context, divisionID uuid.UUID) (*Snapshot, error) {
	div, tl, err := e.load(ctx, divisionID)
	if err != nil {
		return nil, err
	}
	teams := teamOrder(div)
	rounds := tl.Rounds()

	remaining := make(map[uuid.UUID]int, len(div.Teams))
	for _, team := range div.Teams {
		points, err := legality.Remaining(tl, team)
		if err != nil {
			return nil, err
		}
		remaining[team.ID] = points
	}

	return &Snapshot{
		Division:    div,
		Order:       teamIDs(teams),
		Rounds:      rounds,
		CurrentPick: currentPickOf(div, teams, rounds),
		Eligible:    teamIDs(turn.EligibleTeams(div, order.GeneratePickOrder(teams, rounds, div.DraftStyle))),
		Remaining:   remaining,
		Board:       order.Board(div, rounds),
	}, nil
}

func (e *Engine) load(ctx context.Context, divisionID uuid.UUID) (*models.Division, *tierlist.TierList, error) {
	div, err := e.store.GetDivision(ctx, divisionID)
	if err != nil {
		return nil, nil, err
	}
	tl, err := e.tierLists.ForDivision(ctx, divisionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve tier list: %w", err)
	}
	return div, tl, nil
}

func teamOrder(div *models.Division) []*models.Team {
	return order.DivisionOrder(div)
}

func currentPickOf(div *models.Division, teams []*models.Team, rounds int) events.CurrentPick {
	pos := turn.CurrentPick(div.DraftCounter, len(teams))
	cp := events.CurrentPick{
		Status:       div.Status,
		Round:        pos.Round,
		Position:     pos.Position,
		DraftCounter: div.DraftCounter,
		SkipTime:     div.SkipTime,
	}
	if div.Status == models.DivisionStatusCompleted {
		return cp
	}
	if team := turn.CurrentTeam(div, teams, rounds); team != nil {
		id := team.ID
		cp.TeamID = &id
	}
	return cp
}

func teamIDs(teams []*models.Team) []uuid.UUID {
	ids := make([]uuid.UUID, len(teams))
	for i, t := range teams {
		ids[i] = t.ID
	}
	return ids
}
