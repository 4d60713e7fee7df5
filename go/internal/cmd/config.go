package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mcdev12/tierdraft/go/internal/config"
	"github.com/mcdev12/tierdraft/go/internal/draft/store"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func setupLogging(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// seedDivisions creates the seed file's divisions that the store does not know yet.
func seedDivisions(ctx context.Context, st store.Store, seed *config.Seed) error {
	created := 0
	for _, ds := range seed.Divisions {
		div, err := ds.Division()
		if err != nil {
			return err
		}
		_, err = st.GetDivision(ctx, div.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrDivisionNotFound) {
			return fmt.Errorf("failed to look up division %s: %w", div.ID, err)
		}

		now := time.Now().UTC()
		div.CreatedAt, div.UpdatedAt = now, now
		if err := st.CreateDivision(ctx, div); err != nil {
			return fmt.Errorf("failed to create division %s: %w", div.ID, err)
		}
		created++
		log.Info().
			Str("division_id", div.ID.String()).
			Str("name", div.Name).
			Int("teams", len(div.Teams)).
			Msg("seeded division")
	}
	if created > 0 {
		log.Info().Int("divisions", created).Msg("seed complete")
	}
	return nil
}
