// Package scheduler runs draft jobs at their due time. Each pending job owns a one-shot
// clockwork timer; fired jobs are handed to a fixed worker pool. Jobs can optionally be
// persisted so a restarted process re-arms them through Recover.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/tierdraft/go/internal/draft/jobs"
	"github.com/rs/zerolog/log"
)

// Handler processes a fired job.
type Handler interface {
	Handle(ctx context.Context, job jobs.Job) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, job jobs.Job) error

func (f HandlerFunc) Handle(ctx context.Context, job jobs.Job) error {
	return f(ctx, job)
}

// JobStore persists pending jobs.
type JobStore interface {
	Save(ctx context.Context, job jobs.Job) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByKind(ctx context.Context, kind jobs.Kind, divisionID uuid.UUID) error
	Claim(ctx context.Context, instanceID string) ([]jobs.Job, error)
}

// Config tunes the worker pool.
type Config struct {
	Workers   int
	QueueSize int
}

// DefaultConfig returns a small pool suitable for a single process.
func DefaultConfig() Config {
	return Config{Workers: 4, QueueSize: 64}
}

type pendingJob struct {
	job   jobs.Job
	timer clockwork.Timer
}

// Scheduler implements jobs.Scheduler.
type Scheduler struct {
	clock      clockwork.Clock
	store      JobStore
	metrics    *Metrics
	instanceID string

	numWorkers int
	workCh     chan jobs.Job
	done       chan struct{}
	stopOnce   sync.Once

	activeTimers   map[uuid.UUID]*pendingJob
	activeTimersMu sync.Mutex
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the real clock.
func WithClock(c clockwork.Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithStore persists jobs in store.
func WithStore(store JobStore) Option {
	return func(s *Scheduler) { s.store = store }
}

// WithMetrics attaches scheduler metrics.
func WithMetrics(m *Metrics) Option {
	return func(s *Scheduler) { s.metrics = m }
}

// New creates a Scheduler. Jobs may be scheduled before Run; they are dispatched once
// the workers start.
func New(cfg Config, opts ...Option) *Scheduler {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = cfg.Workers * 2
	}
	s := &Scheduler{
		clock:        clockwork.NewRealClock(),
		instanceID:   uuid.New().String()[:8],
		numWorkers:   cfg.Workers,
		workCh:       make(chan jobs.Job, cfg.QueueSize),
		done:         make(chan struct{}),
		activeTimers: make(map[uuid.UUID]*pendingJob),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule persists the job (when a store is configured) and arms its timer.
func (s *Scheduler) Schedule(ctx context.Context, job jobs.Job) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if s.store != nil {
		if err := s.store.Save(ctx, job); err != nil {
			return fmt.Errorf("failed to persist job: %w", err)
		}
	}
	s.arm(job)
	return nil
}

// Cancel stops every pending job of kind for the division.
func (s *Scheduler) Cancel(ctx context.Context, kind jobs.Kind, divisionID uuid.UUID) error {
	s.activeTimersMu.Lock()
	cancelled := 0
	for id, p := range s.activeTimers {
		if p.job.Kind != kind || p.job.DivisionID != divisionID {
			continue
		}
		stopAndDrainTimer(p.timer)
		delete(s.activeTimers, id)
		cancelled++
	}
	s.activeTimersMu.Unlock()

	if cancelled > 0 {
		log.Debug().
			Str("division_id", divisionID.String()).
			Str("job_kind", string(kind)).
			Int("cancelled", cancelled).
			Msg("cancelled pending jobs")
	}

	if s.store != nil {
		if err := s.store.DeleteByKind(ctx, kind, divisionID); err != nil {
			return fmt.Errorf("failed to delete persisted jobs: %w", err)
		}
	}
	return nil
}

// Pending returns the number of armed timers.
func (s *Scheduler) Pending() int {
	s.activeTimersMu.Lock()
	defer s.activeTimersMu.Unlock()
	return len(s.activeTimers)
}

// Recover re-arms every persisted job. Jobs already past due fire immediately.
func (s *Scheduler) Recover(ctx context.Context) (int, error) {
	if s.store == nil {
		return 0, nil
	}
	pending, err := s.store.Claim(ctx, s.instanceID)
	if err != nil {
		return 0, fmt.Errorf("failed to claim persisted jobs: %w", err)
	}
	for _, job := range pending {
		s.arm(job)
	}
	log.Info().Str("instance", s.instanceID).Int("jobs", len(pending)).Msg("recovered scheduled jobs")
	return len(pending), nil
}

// arm creates the one-shot timer for job, replacing any timer with the same ID.
func (s *Scheduler) arm(job jobs.Job) {
	duration := max(job.RunAt.Sub(s.clock.Now()), 0)
	timer := s.clock.NewTimer(duration)
	s.replaceTimer(job, timer)

	go func(job jobs.Job, t clockwork.Timer) {
		select {
		case <-t.Chan():
			if !s.removeTimer(job.ID, t) {
				return
			}
			select {
			case s.workCh <- job:
				log.Debug().Str("job_id", job.ID.String()).Str("job_kind", string(job.Kind)).Msg("timer fired - enqueued for processing")
			case <-s.done:
			}
		case <-s.done:
			stopAndDrainTimer(t)
		}
	}(job, timer)

	log.Debug().
		Str("division_id", job.DivisionID.String()).
		Str("job_kind", string(job.Kind)).
		Time("run_at", job.RunAt).
		Dur("duration", duration).
		Msg("scheduled one-shot timer")
}

// replaceTimer atomically replaces a timer for a job, properly cancelling any existing timer.
func (s *Scheduler) replaceTimer(job jobs.Job, timer clockwork.Timer) {
	s.activeTimersMu.Lock()
	defer s.activeTimersMu.Unlock()

	if existing, ok := s.activeTimers[job.ID]; ok {
		stopAndDrainTimer(existing.timer)
	}
	s.activeTimers[job.ID] = &pendingJob{job: job, timer: timer}
}

// removeTimer drops a fired timer and reports whether it was still the active one.
func (s *Scheduler) removeTimer(id uuid.UUID, t clockwork.Timer) bool {
	s.activeTimersMu.Lock()
	defer s.activeTimersMu.Unlock()
	p, ok := s.activeTimers[id]
	if !ok || p.timer != t {
		return false
	}
	delete(s.activeTimers, id)
	return true
}

// stopAndDrainTimer safely stops a timer and drains its channel.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}

// Run starts the worker pool and blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context, handler Handler) error {
	log.Info().Str("instance", s.instanceID).Int("workers", s.numWorkers).Msg("scheduler started")

	var wg sync.WaitGroup
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	for i := 0; i < s.numWorkers; i++ {
		wg.Add(1)
		go s.worker(workerCtx, &wg, i, handler)
	}

	<-ctx.Done()
	log.Info().Str("instance", s.instanceID).Msg("shutting down workers")

	s.stop()
	cancelWorkers()
	wg.Wait()
	log.Info().Str("instance", s.instanceID).Msg("all workers shut down")
	return nil
}

func (s *Scheduler) stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.activeTimersMu.Lock()
		for id, p := range s.activeTimers {
			stopAndDrainTimer(p.timer)
			delete(s.activeTimers, id)
		}
		s.activeTimersMu.Unlock()
	})
}

// worker processes fired jobs from the work channel
func (s *Scheduler) worker(ctx context.Context, wg *sync.WaitGroup, workerID int, handler Handler) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("instance", s.instanceID).Int("worker_id", workerID).Msg("worker shutting down")
			return
		case job := <-s.workCh:
			log.Info().
				Str("division_id", job.DivisionID.String()).
				Str("job_kind", string(job.Kind)).
				Int("retry", job.Payload.Retry).
				Int("worker_id", workerID).
				Msg("worker handling job")

			err := handler.Handle(ctx, job)
			s.metrics.recordFired(job.Kind, err == nil)
			if err != nil {
				log.Error().
					Err(err).
					Str("division_id", job.DivisionID.String()).
					Str("job_kind", string(job.Kind)).
					Int("worker_id", workerID).
					Msg("job handling failed")
			}
			if s.store != nil {
				if err := s.store.Delete(ctx, job.ID); err != nil {
					log.Error().Err(err).Str("job_id", job.ID.String()).Msg("failed to delete finished job")
				}
			}
		}
	}
}

var (
	_ jobs.Scheduler = (*Scheduler)(nil)
	_ JobStore       = (*PostgresJobStore)(nil)
	_ Handler        = (*SkipHandler)(nil)
)
