package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/tierdraft/go/internal/draft/events"
	"github.com/mcdev12/tierdraft/go/internal/models"
	"github.com/rs/zerolog/log"
)

// StateChange is the requested transition of SetDivisionState.
type StateChange string

const (
	StatePlay  StateChange = "play"
	StatePause StateChange = "pause"
)

// SetDivisionState starts, resumes or pauses a division's draft.
//
// Pausing snapshots the time left on the clock and cancels pending skip jobs. Resuming
// restarts the clock from that snapshot. Starting from PRE_DRAFT puts the first live
// team on the clock and runs its staged picks.
func (e *Engine) SetDivisionState(ctx context.Context, divisionID uuid.UUID, change StateChange) (models.DivisionStatus, error) {
	var status models.DivisionStatus
	err := e.run(ctx, "set_state", divisionID, func(ctx context.Context, s *scope) error {
		var err error
		switch change {
		case StatePause:
			err = e.pause(s)
		case StatePlay:
			err = e.play(ctx, s)
		default:
			err = fmt.Errorf("%w: unknown state %q", ErrInvalidStateChange, change)
		}
		status = s.div.Status
		return err
	})
	if err != nil {
		return "", err
	}

	log.Info().
		Str("division_id", divisionID.String()).
		Str("change", string(change)).
		Str("status", string(status)).
		Msg("division state changed")
	return status, nil
}

func (e *Engine) pause(s *scope) error {
	if s.div.Status != models.DivisionStatusInProgress {
		return fmt.Errorf("%w: cannot pause a %s draft", ErrInvalidStateChange, s.div.Status)
	}

	s.div.Status = models.DivisionStatusPaused
	s.div.RemainingTime = nil
	if s.div.SkipTime != nil {
		remaining := max(s.div.SkipTime.Sub(s.now), 0)
		s.div.RemainingTime = &remaining
	}
	s.div.SkipTime = nil
	e.cancelJobs(s)
	e.queueStatus(s)
	e.notify(s, pausedMessage(s.div))
	return nil
}

func (e *Engine) play(ctx context.Context, s *scope) error {
	var remaining *time.Duration
	switch s.div.Status {
	case models.DivisionStatusPaused:
		remaining = s.div.RemainingTime
	case models.DivisionStatusPreDraft:
	default:
		return fmt.Errorf("%w: cannot play a %s draft", ErrInvalidStateChange, s.div.Status)
	}

	s.div.Status = models.DivisionStatusInProgress
	next, err := e.settle(ctx, s, remaining)
	if err != nil {
		return err
	}
	e.queueStatus(s)
	if next != nil {
		e.queueCounter(s)
	}
	return e.cascade(ctx, s, next)
}

func (e *Engine) queueStatus(s *scope) {
	e.emit(s, events.DraftStatus, events.DraftStatusPayload{
		DivisionID:    s.div.ID,
		Status:        s.div.Status,
		SkipTime:      s.div.SkipTime,
		RemainingTime: s.div.RemainingTime,
		ChangedAt:     s.now,
	})
}
