// Command draftd serves the tier-list draft engine.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcdev12/tierdraft/go/internal/config"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	setupLogging(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("draftd exited")
	}
}

func run(ctx context.Context, cfg config.Config) error {
	seed, err := config.LoadSeed(cfg.SeedFile)
	if err != nil {
		return err
	}

	services, err := setupServices(ctx, cfg, seed)
	if err != nil {
		return err
	}
	defer services.Close()

	if _, err := services.Scheduler.Recover(ctx); err != nil {
		return err
	}

	server := setupServer(cfg.Port, services)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return services.Scheduler.Run(ctx, services.Skipper)
	})
	g.Go(func() error {
		return services.Gateway.Start(ctx)
	})
	if services.Listener != nil {
		g.Go(func() error {
			return services.Listener.Start(ctx)
		})
	}
	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Msg("draftd listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting down")
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
