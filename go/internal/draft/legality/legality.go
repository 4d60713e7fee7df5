// Package legality decides whether a pick is legal for a team right now.
// Every function here is pure: it reads the tier list and division and never mutates them.
package legality

import (
	"errors"
	"fmt"

	"github.com/mcdev12/tierdraft/go/internal/models"
	"github.com/mcdev12/tierdraft/go/internal/tierlist"
)

var (
	ErrMissingItem           = errors.New("missing item")
	ErrUnknownItem           = errors.New("unknown item")
	ErrInvalidAddonSelection = errors.New("invalid addon selection")
	ErrAlreadyDrafted        = errors.New("item already drafted")
	ErrInsufficientBudget    = errors.New("insufficient budget")
)

// Check runs the legality rules in order and returns the first failure.
func Check(tl *tierlist.TierList, div *models.Division, team *models.Team, pick models.Pick) error {
	if pick.ItemID == "" {
		return fmt.Errorf("%w: pick has no item id", ErrMissingItem)
	}
	if !tl.Has(pick.ItemID) {
		return fmt.Errorf("%w: %s is not on the tier list", ErrUnknownItem, pick.ItemID)
	}
	if err := checkAddons(tl, pick); err != nil {
		return err
	}
	if div.Drafted(pick.ItemID) {
		return fmt.Errorf("%w: %s has already been drafted", ErrAlreadyDrafted, pick.ItemID)
	}

	cost, err := tl.Cost(pick.ItemID, pick.Addons)
	if err != nil {
		return fmt.Errorf("failed to price pick: %w", err)
	}
	spend, err := Spend(tl, team)
	if err != nil {
		return err
	}

	picksAfter := len(team.Draft) + 1
	minRequired := max(tl.DraftCount.Min, picksAfter)
	ceiling := tl.PointTotal + picksAfter - minRequired
	if spend+cost > ceiling {
		return fmt.Errorf("%w: %s costs %d, %d of %d points available",
			ErrInsufficientBudget, pick.ItemID, cost, ceiling-spend, ceiling)
	}
	return nil
}

func checkAddons(tl *tierlist.TierList, pick models.Pick) error {
	defined := tl.AddonsFor(pick.ItemID)
	seen := make(map[string]struct{}, len(pick.Addons))
	for _, name := range pick.Addons {
		if _, ok := defined[name]; !ok {
			return fmt.Errorf("%w: %s has no addon %q", ErrInvalidAddonSelection, pick.ItemID, name)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: addon %q selected twice", ErrInvalidAddonSelection, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// Spend sums the cost of every committed pick, pricing addon picks by their addons.
func Spend(tl *tierlist.TierList, team *models.Team) (int, error) {
	total := 0
	for _, p := range team.Draft {
		cost, err := tl.Cost(p.ItemID, p.Addons)
		if err != nil {
			return 0, fmt.Errorf("failed to price drafted item %s: %w", p.ItemID, err)
		}
		total += cost
	}
	return total, nil
}

// Remaining is the point budget left for the team.
func Remaining(tl *tierlist.TierList, team *models.Team) (int, error) {
	spend, err := Spend(tl, team)
	if err != nil {
		return 0, err
	}
	return tl.PointTotal - spend, nil
}
