package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mcdev12/tierdraft/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORE_DRIVER", "SCHEDULER_WORKERS", "OUTBOX_FALLBACK_INTERVAL", "DB_NAME"} {
		t.Setenv(key, "")
	}
	cfg := FromEnv()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, 4, cfg.SchedulerWorkers)
	assert.Equal(t, 30*time.Second, cfg.OutboxFallback)
	assert.Equal(t, "tierdraft", cfg.Database.Database)
	assert.NoError(t, cfg.Validate())
	assert.False(t, cfg.Postgres())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("SCHEDULER_WORKERS", "8")
	t.Setenv("OUTBOX_FALLBACK_INTERVAL", "45")
	t.Setenv("OUTBOX_PING_INTERVAL", "2m")
	t.Setenv("LOG_PRETTY", "false")
	t.Setenv("OUTBOX_BATCH_SIZE", "lots")

	cfg := FromEnv()
	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.Postgres())
	assert.Equal(t, 8, cfg.SchedulerWorkers)
	assert.Equal(t, 45*time.Second, cfg.OutboxFallback)
	assert.Equal(t, 2*time.Minute, cfg.OutboxPing)
	assert.False(t, cfg.LogPretty)
	assert.Equal(t, 100, cfg.OutboxBatchSize)
}

func TestValidate(t *testing.T) {
	cfg := FromEnv()
	cfg.StoreDriver = "sqlite"
	assert.Error(t, cfg.Validate())

	cfg = FromEnv()
	cfg.SchedulerWorkers = 0
	assert.Error(t, cfg.Validate())
}

const seedYAML = `
notify:
  routes:
    draft-channel: discord.bridge.1234
divisions:
  - id: 6f1c2b8e-4d7a-4c55-9a43-3f0f4f1b2a10
    name: Division A
    draft_style: linear
    channel_id: draft-channel
    teams:
      - id: 0b7e7f4e-0e55-4c1a-8f0c-2b9a3c6d1e01
        name: Team One
        coach: {id: "100", name: Ash}
      - id: 0b7e7f4e-0e55-4c1a-8f0c-2b9a3c6d1e02
        name: Team Two
        coach: {id: "200", name: Misty}
`

func TestLoadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o600))

	seed, err := LoadSeed(path)
	require.NoError(t, err)
	assert.Equal(t, "discord.bridge.1234", seed.Notify.Routes["draft-channel"])
	require.Len(t, seed.Divisions, 1)

	div, err := seed.Divisions[0].Division()
	require.NoError(t, err)
	assert.Equal(t, models.DraftStyleLinear, div.DraftStyle)
	assert.Equal(t, models.DivisionStatusPreDraft, div.Status)
	assert.Equal(t, 240, div.TimerLength)
	require.Len(t, div.Teams, 2)
	assert.Equal(t, "Misty", div.Teams[1].Coach.Name)

	empty, err := LoadSeed("")
	require.NoError(t, err)
	assert.Empty(t, empty.Divisions)
}

func TestDivisionSeedValidation(t *testing.T) {
	team := TeamSeed{ID: "0b7e7f4e-0e55-4c1a-8f0c-2b9a3c6d1e01", Name: "T"}
	base := DivisionSeed{ID: "6f1c2b8e-4d7a-4c55-9a43-3f0f4f1b2a10", Teams: []TeamSeed{team}}

	tests := []struct {
		name   string
		mutate func(d *DivisionSeed)
	}{
		{"bad id", func(d *DivisionSeed) { d.ID = "nope" }},
		{"bad style", func(d *DivisionSeed) { d.DraftStyle = "random" }},
		{"no teams", func(d *DivisionSeed) { d.Teams = nil }},
		{"duplicate team", func(d *DivisionSeed) { d.Teams = []TeamSeed{team, team} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := base
			tt.mutate(&d)
			_, err := d.Division()
			assert.Error(t, err)
		})
	}

	div, err := base.Division()
	require.NoError(t, err)
	assert.Equal(t, models.DraftStyleSnake, div.DraftStyle)
}
