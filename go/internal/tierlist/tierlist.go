package tierlist

import (
	"errors"
	"fmt"
)

// ErrItemNotListed is returned when an item has no entry on the tier list.
var ErrItemNotListed = errors.New("item not on tier list")

// ErrAddonNotListed is returned when an addon is not defined for an item.
var ErrAddonNotListed = errors.New("addon not defined for item")

// DraftCount bounds a team's roster size.
type DraftCount struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// Item is a draftable entry: its tier and optional addon-specific costs.
type Item struct {
	Tier   string         `yaml:"tier" json:"tier"`
	Addons map[string]int `yaml:"addons,omitempty" json:"addons,omitempty"`
}

// TierList maps items to tiers and tiers to costs, and carries the budget bounds.
type TierList struct {
	Name       string          `yaml:"name" json:"name"`
	PointTotal int             `yaml:"point_total" json:"point_total"`
	DraftCount DraftCount      `yaml:"draft_count" json:"draft_count"`
	Tiers      map[string]int  `yaml:"tiers" json:"tiers"`
	Items      map[string]Item `yaml:"items" json:"items"`
}

// Has reports whether itemID is on the tier list.
func (t *TierList) Has(itemID string) bool {
	_, ok := t.Items[itemID]
	return ok
}

// Tier returns the tier name of itemID.
func (t *TierList) Tier(itemID string) (string, error) {
	item, ok := t.Items[itemID]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrItemNotListed, itemID)
	}
	return item.Tier, nil
}

// AddonsFor returns the addon cost table of itemID, nil when it defines none.
func (t *TierList) AddonsFor(itemID string) map[string]int {
	return t.Items[itemID].Addons
}

// Cost prices a pick. With addons the addon costs replace the tier cost entirely.
func (t *TierList) Cost(itemID string, addons []string) (int, error) {
	item, ok := t.Items[itemID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrItemNotListed, itemID)
	}
	if len(addons) == 0 {
		cost, ok := t.Tiers[item.Tier]
		if !ok {
			return 0, fmt.Errorf("tier %q of item %s has no cost", item.Tier, itemID)
		}
		return cost, nil
	}

	total := 0
	for _, name := range addons {
		cost, ok := item.Addons[name]
		if !ok {
			return 0, fmt.Errorf("%w: %s on %s", ErrAddonNotListed, name, itemID)
		}
		total += cost
	}
	return total, nil
}

// Rounds is the number of draft rounds, one per roster slot.
func (t *TierList) Rounds() int {
	return t.DraftCount.Max
}

// Validate checks the tier list is internally consistent.
func (t *TierList) Validate() error {
	if t.PointTotal <= 0 {
		return fmt.Errorf("point_total must be greater than 0")
	}
	if t.DraftCount.Max <= 0 {
		return fmt.Errorf("draft_count.max must be greater than 0")
	}
	if t.DraftCount.Min < 0 || t.DraftCount.Min > t.DraftCount.Max {
		return fmt.Errorf("draft_count.min must be between 0 and draft_count.max")
	}
	for id, item := range t.Items {
		if _, ok := t.Tiers[item.Tier]; !ok {
			return fmt.Errorf("item %s references unknown tier %q", id, item.Tier)
		}
	}
	return nil
}
