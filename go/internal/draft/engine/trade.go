package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/mcdev12/tierdraft/go/internal/draft/events"
	"github.com/mcdev12/tierdraft/go/internal/draft/legality"
	"github.com/mcdev12/tierdraft/go/internal/models"
	"github.com/rs/zerolog/log"
)

// ErrInvalidTrade is returned for self-trades and sides that list an item twice.
var ErrInvalidTrade = errors.New("invalid trade")

// Trade exchanges already drafted items between two sides. A side without a team trades
// with the free pool: its items must be on the tier list and undrafted. Turn order and
// budget checks do not apply. It returns nil without error when neither side names a team.
func (e *Engine) Trade(ctx context.Context, divisionID uuid.UUID, side1, side2 models.TradeSide, stage string) (*models.Trade, error) {
	if side1.TeamID == nil && side2.TeamID == nil {
		return nil, nil
	}
	if side1.TeamID != nil && side2.TeamID != nil && *side1.TeamID == *side2.TeamID {
		return nil, fmt.Errorf("%w: team %s cannot trade with itself", ErrInvalidTrade, *side1.TeamID)
	}
	for _, side := range []models.TradeSide{side1, side2} {
		if dup, ok := duplicateItem(side.Items); ok {
			return nil, fmt.Errorf("%w: %s listed twice on one side", ErrInvalidTrade, dup)
		}
	}

	var record models.Trade
	err := e.run(ctx, "trade", divisionID, func(ctx context.Context, s *scope) error {
		for _, side := range []models.TradeSide{side1, side2} {
			if err := checkPoolItems(s, side); err != nil {
				return err
			}
		}

		team1, given1, err := takeItems(s, side1)
		if err != nil {
			return err
		}
		team2, given2, err := takeItems(s, side2)
		if err != nil {
			return err
		}

		receive(s, team1, side2.Items, given2)
		receive(s, team2, side1.Items, given1)

		record = models.Trade{
			ID:        uuid.New(),
			Side1:     models.TradeSide{TeamID: side1.TeamID, Items: slices.Clone(side1.Items)},
			Side2:     models.TradeSide{TeamID: side2.TeamID, Items: slices.Clone(side2.Items)},
			Stage:     stage,
			Timestamp: s.now,
		}
		s.div.Trades = append(s.div.Trades, record)
		if err := s.tx.AppendTrade(ctx, s.div.ID, record); err != nil {
			return fmt.Errorf("failed to append trade: %w", err)
		}

		e.emit(s, events.DraftTrade, events.DraftTradePayload{DivisionID: s.div.ID, Trade: record.Clone()})
		e.notify(s, tradeMessage(team1, team2, side1.Items, side2.Items))
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("division_id", divisionID.String()).
		Str("trade_id", record.ID.String()).
		Strs("side1", side1.Items).
		Strs("side2", side2.Items).
		Msg("trade settled")
	return &record, nil
}

func duplicateItem(items []string) (string, bool) {
	seen := make(map[string]struct{}, len(items))
	for _, itemID := range items {
		if _, ok := seen[itemID]; ok {
			return itemID, true
		}
		seen[itemID] = struct{}{}
	}
	return "", false
}

// checkPoolItems verifies that items offered by the free pool are listed and not held by
// any team.
func checkPoolItems(s *scope, side models.TradeSide) error {
	if side.TeamID != nil {
		return nil
	}
	for _, itemID := range side.Items {
		if !s.tl.Has(itemID) {
			return fmt.Errorf("%w: %s", legality.ErrUnknownItem, itemID)
		}
		if s.div.Drafted(itemID) {
			return fmt.Errorf("%w: %s", legality.ErrAlreadyDrafted, itemID)
		}
	}
	return nil
}

// takeItems verifies that the side's team holds every listed item, then removes them and
// returns the original pick records keyed by item.
func takeItems(s *scope, side models.TradeSide) (*models.Team, map[string]models.Pick, error) {
	if side.TeamID == nil {
		return nil, nil, nil
	}
	team, ok := s.div.Team(*side.TeamID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: team %s, division %s", ErrTeamNotInDivision, *side.TeamID, s.div.ID)
	}

	given := make(map[string]models.Pick, len(side.Items))
	for _, itemID := range side.Items {
		i := slices.IndexFunc(team.Draft, func(p models.Pick) bool { return p.ItemID == itemID })
		if i < 0 {
			return nil, nil, fmt.Errorf("%w: %s is not in %s's draft", ErrItemNotFound, itemID, team.Name)
		}
		given[itemID] = team.Draft[i]
	}
	for _, itemID := range side.Items {
		team.RemoveItem(itemID)
	}
	s.touch(team)
	return team, given, nil
}

// receive appends items to team as new picks made by the team's coach. Addons carry over
// from the previous owner's pick record.
func receive(s *scope, team *models.Team, items []string, previous map[string]models.Pick) {
	if team == nil {
		return
	}
	for _, itemID := range items {
		pick := models.Pick{ItemID: itemID, Picker: team.Coach.Name, Timestamp: s.now}
		if prev, ok := previous[itemID]; ok {
			pick.Addons = slices.Clone(prev.Addons)
		}
		team.Draft = append(team.Draft, pick)
	}
	s.touch(team)
}
