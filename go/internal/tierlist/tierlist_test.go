package tierlist

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
name: gen9 ou
point_total: 100
draft_count:
  min: 2
  max: 4
tiers:
  S: 40
  A: 25
  B: 10
items:
  garchomp:
    tier: S
  rotom-wash:
    tier: A
    addons:
      water: 12
      steel: 18
  ferrothorn:
    tier: B
`

func TestParseAndCost(t *testing.T) {
	tl, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	tests := []struct {
		name    string
		item    string
		addons  []string
		want    int
		wantErr error
	}{
		{name: "tier cost", item: "garchomp", want: 40},
		{name: "single addon replaces tier cost", item: "rotom-wash", addons: []string{"water"}, want: 12},
		{name: "addons are summed", item: "rotom-wash", addons: []string{"water", "steel"}, want: 30},
		{name: "unknown item", item: "mew", wantErr: ErrItemNotListed},
		{name: "unknown addon", item: "rotom-wash", addons: []string{"fire"}, wantErr: ErrAddonNotListed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tl.Cost(tc.item, tc.addons)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	assert.Equal(t, 4, tl.Rounds())
	tier, err := tl.Tier("ferrothorn")
	require.NoError(t, err)
	assert.Equal(t, "B", tier)
}

func TestValidateRejectsBrokenTierLists(t *testing.T) {
	_, err := Parse([]byte(`
point_total: 100
draft_count: {min: 5, max: 3}
tiers: {A: 1}
`))
	require.Error(t, err)

	_, err = Parse([]byte(`
point_total: 100
draft_count: {min: 1, max: 3}
tiers: {A: 1}
items:
  x: {tier: Z}
`))
	require.Error(t, err)
}

func TestFileSourceFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "default.yaml"), []byte(sampleYAML), 0o644))

	divisionID := uuid.New()
	src := NewFileSource(dir)

	tl, err := src.ForDivision(context.Background(), divisionID)
	require.NoError(t, err)
	assert.Equal(t, "gen9 ou", tl.Name)

	override := []byte(`
name: override
point_total: 50
draft_count: {min: 1, max: 2}
tiers: {A: 5}
items:
  x: {tier: A}
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, divisionID.String()+".yaml"), override, 0o644))

	tl, err = src.ForDivision(context.Background(), divisionID)
	require.NoError(t, err)
	assert.Equal(t, "override", tl.Name)
}
