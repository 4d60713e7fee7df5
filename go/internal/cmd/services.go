package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/tierdraft/go/internal/config"
	"github.com/mcdev12/tierdraft/go/internal/draft/engine"
	"github.com/mcdev12/tierdraft/go/internal/draft/gateway"
	"github.com/mcdev12/tierdraft/go/internal/draft/outbox"
	"github.com/mcdev12/tierdraft/go/internal/draft/scheduler"
	"github.com/mcdev12/tierdraft/go/internal/draft/store"
	"github.com/mcdev12/tierdraft/go/internal/draft/store/postgres"
	"github.com/mcdev12/tierdraft/go/internal/notify"
	"github.com/mcdev12/tierdraft/go/internal/tierlist"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
)

// Services is everything draftd runs.
type Services struct {
	Registry  *prometheus.Registry
	Store     store.Store
	Engine    *engine.Engine
	Scheduler *scheduler.Scheduler
	Skipper   *scheduler.SkipHandler
	Gateway   *gateway.Service
	Listener  *outbox.Listener      // nil without postgres
	Health    *outbox.HealthChecker // nil without postgres

	pool *pgxpool.Pool
	db   *sql.DB
	nc   *nats.Conn
}

// lazyState lets the gateway and the engine reference each other.
type lazyState struct {
	engine *engine.Engine
}

func (l *lazyState) DivisionSnapshot(ctx context.Context, divisionID uuid.UUID) (*engine.Snapshot, error) {
	return l.engine.DivisionSnapshot(ctx, divisionID)
}

func setupServices(ctx context.Context, cfg config.Config, seed *config.Seed) (_ *Services, err error) {
	s := &Services{Registry: prometheus.NewRegistry()}
	defer func() {
		if err != nil {
			s.Close()
		}
	}()
	s.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	clock := clockwork.NewRealClock()

	if cfg.NATSURL != "" {
		s.nc, err = outbox.ConnectNATS(cfg.NATSURL, cfg.NATSMaxReconnects, cfg.NATSReconnectWait)
		if err != nil {
			return nil, err
		}
	}

	var repo *outbox.Repository
	schedOpts := []scheduler.Option{scheduler.WithClock(clock)}
	if cfg.Postgres() {
		s.pool, s.db, err = setupDatabase(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		pgStore := postgres.New(s.pool)
		if err := pgStore.Migrate(ctx); err != nil {
			return nil, err
		}
		s.Store = pgStore

		repo = outbox.NewRepository(s.db, cfg.OutboxChannel)
		if err := repo.Migrate(ctx); err != nil {
			return nil, err
		}
		if cfg.PersistJobs {
			jobStore := scheduler.NewPostgresJobStore(s.db)
			if err := jobStore.Migrate(ctx); err != nil {
				return nil, err
			}
			schedOpts = append(schedOpts, scheduler.WithStore(jobStore))
		}
	} else {
		s.Store = store.NewMemory()
	}

	if err := seedDivisions(ctx, s.Store, seed); err != nil {
		return nil, fmt.Errorf("failed to seed divisions: %w", err)
	}

	// with NATS, the gateway reads the JetStream stream; without it events go to it directly
	var jsPublisher *outbox.JetStreamPublisher
	if s.nc != nil {
		jsPublisher, err = outbox.NewJetStreamPublisher(ctx, s.nc, outbox.DefaultJetStreamConfig())
		if err != nil {
			return nil, err
		}
	}
	state := &lazyState{}
	s.Gateway, err = gateway.NewService(ctx, gateway.DefaultConfig(), s.nc, state)
	if err != nil {
		return nil, err
	}
	var relay outbox.Publisher = s.Gateway.Manager()
	if jsPublisher != nil {
		relay = jsPublisher
	}

	var sink engine.EventSink
	if repo != nil {
		sink = outbox.NewSink(repo, clock)
		listenerCfg := outbox.DefaultListenerConfig()
		listenerCfg.DatabaseURL = cfg.Database.DSN()
		listenerCfg.NotifyChannel = cfg.OutboxChannel
		listenerCfg.BatchSize = cfg.OutboxBatchSize
		listenerCfg.FallbackInterval = cfg.OutboxFallback
		listenerCfg.PingInterval = cfg.OutboxPing
		s.Listener, err = outbox.NewListener(repo, relay, outbox.NewPrometheusMetrics(s.Registry), listenerCfg)
		if err != nil {
			return nil, err
		}
		s.Health = outbox.NewHealthChecker(s.Listener, s.db, repo, s.nc, cfg.OutboxStale)
	} else {
		sink = outbox.NewSink(outbox.PublishWriter{Publisher: relay}, clock)
	}

	var notifier engine.Notifier = notify.LogNotifier{}
	if s.nc != nil {
		notifier = notify.Multi{
			notify.LogNotifier{},
			notify.NewNATSNotifier(s.nc, cfg.NotifyPrefix, notify.Routes(seed.Notify.Routes)),
		}
	}

	schedMetrics := scheduler.NewMetrics(s.Registry)
	schedOpts = append(schedOpts, scheduler.WithMetrics(schedMetrics))
	s.Scheduler = scheduler.New(scheduler.Config{
		Workers:   cfg.SchedulerWorkers,
		QueueSize: cfg.SchedulerQueueSize,
	}, schedOpts...)

	s.Engine = engine.New(
		s.Store,
		tierlist.NewFileSource(cfg.TierListDir),
		s.Scheduler,
		sink,
		notifier,
		engine.WithClock(clock),
		engine.WithMetrics(engine.NewPrometheusMetrics(s.Registry)),
	)
	state.engine = s.Engine
	s.Skipper = scheduler.NewSkipHandler(s.Engine, s.Scheduler, clock, schedMetrics)

	log.Info().
		Str("store", cfg.StoreDriver).
		Bool("nats", s.nc != nil).
		Bool("persist_jobs", cfg.Postgres() && cfg.PersistJobs).
		Msg("services initialized")
	return s, nil
}

// Close releases connections. Safe on a partially built Services.
func (s *Services) Close() {
	if s.Listener != nil {
		if err := s.Listener.Stop(); err != nil {
			log.Warn().Err(err).Msg("failed to stop outbox listener")
		}
	}
	if s.nc != nil {
		if err := s.nc.Drain(); err != nil {
			s.nc.Close()
		}
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
}
