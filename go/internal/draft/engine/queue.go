package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/tierdraft/go/internal/models"
)

// ErrQueueTooLong is returned when a staged queue covers more rounds than the team has left.
var ErrQueueTooLong = errors.New("staged queue longer than remaining rounds")

// SetStagedPicks replaces a team's staged queue. Entries are advisory: they are only
// checked for legality when they reach the front of the queue on the team's turn.
func (e *Engine) SetStagedPicks(ctx context.Context, divisionID, teamID uuid.UUID, picks [][]models.StagedPick) error {
	return e.run(ctx, "set_staged_picks", divisionID, func(_ context.Context, s *scope) error {
		team, ok := s.div.Team(teamID)
		if !ok {
			return fmt.Errorf("%w: team %s, division %s", ErrTeamNotInDivision, teamID, s.div.ID)
		}
		if left := s.rounds - len(team.Draft); len(picks) > left {
			return fmt.Errorf("%w: %d rounds staged, %d left", ErrQueueTooLong, len(picks), left)
		}

		staged := (&models.Team{Picks: picks}).Clone().Picks
		for r, round := range staged {
			kept := round[:0]
			for _, sp := range round {
				if sp.ItemID != "" && !s.div.Drafted(sp.ItemID) {
					kept = append(kept, sp)
				}
			}
			staged[r] = kept
		}
		team.Picks = staged
		s.touch(team)
		return nil
	})
}
