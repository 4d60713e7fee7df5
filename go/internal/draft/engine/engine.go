// Package engine is the draft commit coordinator. It validates picks, commits them together
// with the turn advance inside one store transaction, cascades staged auto-picks, detects
// completion, and settles trades. Notifications, events and job scheduling are queued on the
// transaction scope and only run after a successful commit.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/tierdraft/go/internal/draft/jobs"
	"github.com/mcdev12/tierdraft/go/internal/draft/order"
	"github.com/mcdev12/tierdraft/go/internal/draft/store"
	"github.com/mcdev12/tierdraft/go/internal/models"
	"github.com/mcdev12/tierdraft/go/internal/tierlist"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotYourTurn        = errors.New("not your turn")
	ErrTeamNotInDivision  = errors.New("team not in division")
	ErrItemNotFound       = errors.New("item not found")
	ErrInvalidStateChange = errors.New("invalid state change")
)

// EventSink receives domain events once their transaction has committed.
type EventSink interface {
	Emit(ctx context.Context, eventType string, divisionID uuid.UUID, payload any) error
}

// Notifier delivers human readable messages to a division's channel. Best effort.
type Notifier interface {
	Send(ctx context.Context, channelID string, message string) error
}

// Engine coordinates every mutation of a division's draft.
type Engine struct {
	store     store.Store
	tierLists tierlist.Source
	jobs      jobs.Scheduler
	events    EventSink
	notifier  Notifier
	clock     clockwork.Clock
	metrics   MetricsCollector
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the real clock, mostly for tests.
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithMetrics attaches a metrics collector.
func WithMetrics(m MetricsCollector) Option {
	return func(e *Engine) { e.metrics = m }
}

// New creates an Engine.
func New(st store.Store, tierLists tierlist.Source, scheduler jobs.Scheduler, events EventSink, notifier Notifier, opts ...Option) *Engine {
	e := &Engine{
		store:     st,
		tierLists: tierLists,
		jobs:      scheduler,
		events:    events,
		notifier:  notifier,
		clock:     clockwork.NewRealClock(),
		metrics:   &NoOpMetricsCollector{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// effect is a side effect queued on a scope, run only after commit.
type effect struct {
	kind string
	run  func(ctx context.Context)
}

// scope is one transaction plus the state loaded into it. Auto-pick cascades share the
// scope of the call that started them so the whole chain commits or aborts together.
type scope struct {
	tx     store.Tx
	tl     *tierlist.TierList
	div    *models.Division
	order  []*models.Team
	rounds int
	now    time.Time

	touched map[uuid.UUID]*models.Team
	effects []effect
	depth   int
}

func (s *scope) total() int {
	return len(s.div.Teams) * s.rounds
}

func (s *scope) touch(team *models.Team) {
	s.touched[team.ID] = team
}

func (s *scope) later(kind string, fn func(ctx context.Context)) {
	s.effects = append(s.effects, effect{kind: kind, run: fn})
}

func (s *scope) pickOrder() []*models.Team {
	return order.GeneratePickOrder(s.order, s.rounds, s.div.DraftStyle)
}

// save writes every touched team and the division back through the transaction.
func (s *scope) save(ctx context.Context) error {
	for _, team := range s.order {
		if _, ok := s.touched[team.ID]; !ok {
			continue
		}
		if err := s.tx.UpdateTeam(ctx, s.div.ID, team); err != nil {
			return err
		}
	}
	s.div.UpdatedAt = s.now
	return s.tx.UpdateDivision(ctx, s.div)
}

// run loads the division inside a transaction, applies fn, persists, commits, and only
// then flushes the queued side effects in order. On error nothing is flushed.
func (e *Engine) run(ctx context.Context, op string, divisionID uuid.UUID, fn func(ctx context.Context, s *scope) error) error {
	start := time.Now()

	tl, err := e.tierLists.ForDivision(ctx, divisionID)
	if err != nil {
		return fmt.Errorf("failed to resolve tier list: %w", err)
	}

	var committed *scope
	err = e.store.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		div, err := tx.GetDivision(ctx, divisionID)
		if err != nil {
			return err
		}
		s := &scope{
			tx:      tx,
			tl:      tl,
			div:     div,
			order:   order.DivisionOrder(div),
			rounds:  tl.Rounds(),
			now:     e.clock.Now(),
			touched: make(map[uuid.UUID]*models.Team),
		}
		if err := fn(ctx, s); err != nil {
			return err
		}
		if err := s.save(ctx); err != nil {
			return fmt.Errorf("failed to save division: %w", err)
		}
		committed = s
		return nil
	})
	e.metrics.RecordCommit(op, err == nil, time.Since(start))
	if err != nil {
		return err
	}

	flushCtx := context.WithoutCancel(ctx)
	for _, eff := range committed.effects {
		eff.run(flushCtx)
	}
	log.Debug().
		Str("division_id", divisionID.String()).
		Str("op", op).
		Int("effects", len(committed.effects)).
		Msg("draft transaction committed")
	return nil
}

func (e *Engine) emit(s *scope, eventType string, payload any) {
	divisionID := s.div.ID
	s.later("event", func(ctx context.Context) {
		if err := e.events.Emit(ctx, eventType, divisionID, payload); err != nil {
			log.Error().Err(err).
				Str("division_id", divisionID.String()).
				Str("event_type", eventType).
				Msg("failed to emit draft event")
		}
	})
}

func (e *Engine) notify(s *scope, message string) {
	channelID := s.div.ChannelID
	if channelID == "" {
		return
	}
	divisionID := s.div.ID
	s.later("notification", func(ctx context.Context) {
		if err := e.notifier.Send(ctx, channelID, message); err != nil {
			log.Warn().Err(err).
				Str("division_id", divisionID.String()).
				Str("channel_id", channelID).
				Msg("failed to send draft notification")
		}
	})
}

func (e *Engine) schedule(s *scope, job jobs.Job) {
	s.later("schedule", func(ctx context.Context) {
		if err := e.jobs.Schedule(ctx, job); err != nil {
			log.Error().Err(err).
				Str("division_id", job.DivisionID.String()).
				Str("job_kind", string(job.Kind)).
				Msg("failed to schedule job")
		}
	})
}

func (e *Engine) cancelJobs(s *scope) {
	divisionID := s.div.ID
	s.later("cancel", func(ctx context.Context) {
		for _, kind := range []jobs.Kind{jobs.KindSkipPick, jobs.KindSkipReminder} {
			if err := e.jobs.Cancel(ctx, kind, divisionID); err != nil {
				log.Error().Err(err).
					Str("division_id", divisionID.String()).
					Str("job_kind", string(kind)).
					Msg("failed to cancel job")
			}
		}
	})
}
