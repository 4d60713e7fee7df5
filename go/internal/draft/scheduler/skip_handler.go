package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/tierdraft/go/internal/draft/events"
	"github.com/mcdev12/tierdraft/go/internal/draft/jobs"
	"github.com/mcdev12/tierdraft/go/internal/models"
	"github.com/rs/zerolog/log"
)

const (
	// retryDelay is how far out a no-op skip job reschedules itself.
	retryDelay = time.Minute
	// retryMargin is the minimum gap between the retry and the skip time for a retry to
	// be worth scheduling.
	retryMargin = 61 * time.Second
)

// DivisionSkipper is the part of the draft engine the skip jobs drive.
type DivisionSkipper interface {
	SkipIfDue(ctx context.Context, divisionID uuid.UUID, draftCounter int, skipTime time.Time) (bool, error)
	RemindCurrentTeam(ctx context.Context, divisionID uuid.UUID, skipTime time.Time) (bool, error)
	CurrentPick(ctx context.Context, divisionID uuid.UUID) (events.CurrentPick, error)
}

// SkipHandler runs skip-pick and skip-reminder jobs.
type SkipHandler struct {
	skipper   DivisionSkipper
	scheduler jobs.Scheduler
	clock     clockwork.Clock
	metrics   *Metrics
}

// NewSkipHandler creates a handler. Retries are scheduled through scheduler.
func NewSkipHandler(skipper DivisionSkipper, scheduler jobs.Scheduler, clock clockwork.Clock, metrics *Metrics) *SkipHandler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SkipHandler{
		skipper:   skipper,
		scheduler: scheduler,
		clock:     clock,
		metrics:   metrics,
	}
}

// Handle implements Handler.
func (h *SkipHandler) Handle(ctx context.Context, job jobs.Job) error {
	switch job.Kind {
	case jobs.KindSkipPick:
		return h.handleSkip(ctx, job)
	case jobs.KindSkipReminder:
		_, err := h.skipper.RemindCurrentTeam(ctx, job.DivisionID, job.Payload.SkipTime)
		return err
	default:
		return fmt.Errorf("unknown job kind %q", job.Kind)
	}
}

func (h *SkipHandler) handleSkip(ctx context.Context, job jobs.Job) error {
	skipped, err := h.skipper.SkipIfDue(ctx, job.DivisionID, job.Payload.DraftCounter, job.Payload.SkipTime)
	if err != nil {
		log.Error().
			Err(err).
			Str("division_id", job.DivisionID.String()).
			Int("draft_counter", job.Payload.DraftCounter).
			Msg("skip attempt failed")
	}
	if skipped {
		return nil
	}
	if rerr := h.retry(ctx, job); rerr != nil {
		return rerr
	}
	return err
}

// retry reschedules a skip job that did nothing when the division still has a pending
// skip far enough in the future. This keeps a draft moving if a later skip job was lost.
func (h *SkipHandler) retry(ctx context.Context, job jobs.Job) error {
	cp, err := h.skipper.CurrentPick(ctx, job.DivisionID)
	if err != nil {
		return fmt.Errorf("failed to read current pick: %w", err)
	}
	if cp.Status != models.DivisionStatusInProgress || cp.SkipTime == nil {
		return nil
	}

	runAt := h.clock.Now().Add(retryDelay)
	if cp.SkipTime.Sub(runAt) <= retryMargin {
		return nil
	}
	if job.Payload.Retry >= jobs.MaxRetries {
		h.metrics.recordGaveUp()
		log.Warn().
			Str("division_id", job.DivisionID.String()).
			Int("retry", job.Payload.Retry).
			Msg("skip job retries exhausted")
		return nil
	}

	next := jobs.New(jobs.KindSkipPick, job.DivisionID, runAt, jobs.Payload{
		DraftCounter: cp.DraftCounter,
		SkipTime:     *cp.SkipTime,
		Retry:        job.Payload.Retry + 1,
	})
	if cp.TeamID != nil {
		next.Payload.TeamID = *cp.TeamID
	}
	if err := h.scheduler.Schedule(ctx, next); err != nil {
		return fmt.Errorf("failed to reschedule skip job: %w", err)
	}
	h.metrics.recordRetry()
	log.Debug().
		Str("division_id", job.DivisionID.String()).
		Int("retry", next.Payload.Retry).
		Time("run_at", runAt).
		Msg("skip job rescheduled")
	return nil
}
