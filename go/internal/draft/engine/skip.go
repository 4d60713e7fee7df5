package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/tierdraft/go/internal/draft/events"
	"github.com/mcdev12/tierdraft/go/internal/draft/turn"
	"github.com/mcdev12/tierdraft/go/internal/models"
	"github.com/rs/zerolog/log"
)

// skipTolerance absorbs clock skew between the job runner and the stored skip time.
const skipTolerance = time.Second

// ForceSkip marks the team on the clock as skipped and advances the draft. It reports
// false when the division is not in progress.
func (e *Engine) ForceSkip(ctx context.Context, divisionID uuid.UUID) (bool, error) {
	skipped := false
	err := e.run(ctx, "force_skip", divisionID, func(ctx context.Context, s *scope) error {
		var err error
		skipped, err = e.forceSkip(ctx, s)
		return err
	})
	return skipped, err
}

// SkipIfDue is the scheduler's entry point. It only skips when the division is still on
// the pick the job was scheduled for and the skip time has actually arrived; otherwise the
// call is a no-op and reports false.
func (e *Engine) SkipIfDue(ctx context.Context, divisionID uuid.UUID, draftCounter int, skipTime time.Time) (bool, error) {
	skipped := false
	err := e.run(ctx, "skip_if_due", divisionID, func(ctx context.Context, s *scope) error {
		div := s.div
		switch {
		case div.Status != models.DivisionStatusInProgress:
			return nil
		case div.DraftCounter != draftCounter:
			return nil
		case div.SkipTime == nil || absDuration(div.SkipTime.Sub(skipTime)) > skipTolerance:
			return nil
		case s.now.Add(skipTolerance).Before(*div.SkipTime):
			return nil
		}
		var err error
		skipped, err = e.forceSkip(ctx, s)
		return err
	})
	return skipped, err
}

func (e *Engine) forceSkip(ctx context.Context, s *scope) (bool, error) {
	if s.div.Status != models.DivisionStatusInProgress {
		return false, nil
	}
	current := turn.CurrentTeam(s.div, s.order, s.rounds)
	if current == nil {
		return false, nil
	}

	current.SkipCount++
	s.touch(current)
	timer := turn.TimerFor(time.Duration(s.div.TimerLength)*time.Second, current.SkipCount)
	e.emit(s, events.DraftSkip, events.DraftSkipPayload{
		DivisionID: s.div.ID,
		TeamID:     current.ID,
		SkipCount:  current.SkipCount,
		Forced:     true,
		TimerSec:   int(timer / time.Second),
		SkippedAt:  s.now,
	})
	e.notify(s, skippedMessage(current, timer))
	s.later("metric", func(context.Context) { e.metrics.RecordSkip("forced") })

	log.Info().
		Str("division_id", s.div.ID.String()).
		Str("team_id", current.ID.String()).
		Int("skip_count", current.SkipCount).
		Msg("team skipped")

	return true, e.advance(ctx, s, nil, true)
}

// RemindCurrentTeam tells the coach on the clock how long they have left. It is a no-op,
// reporting false, when the skip time moved since the reminder was scheduled.
func (e *Engine) RemindCurrentTeam(ctx context.Context, divisionID uuid.UUID, skipTime time.Time) (bool, error) {
	div, err := e.store.GetDivision(ctx, divisionID)
	if err != nil {
		return false, err
	}
	if div.Status != models.DivisionStatusInProgress || div.SkipTime == nil {
		return false, nil
	}
	if absDuration(div.SkipTime.Sub(skipTime)) > skipTolerance {
		return false, nil
	}

	tl, err := e.tierLists.ForDivision(ctx, divisionID)
	if err != nil {
		return false, err
	}
	current := turn.CurrentTeam(div, teamOrder(div), tl.Rounds())
	if current == nil || div.ChannelID == "" {
		return false, nil
	}

	left := div.SkipTime.Sub(e.clock.Now()).Round(time.Minute)
	if err := e.notifier.Send(ctx, div.ChannelID, reminderMessage(current, left)); err != nil {
		log.Warn().Err(err).Str("division_id", divisionID.String()).Msg("failed to send skip reminder")
		return false, nil
	}
	return true, nil
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
