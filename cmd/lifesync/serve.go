// cmd/lifesync/serve.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/FairForge/lifesync/internal/api"
	"github.com/FairForge/lifesync/internal/config"
	"github.com/FairForge/lifesync/internal/dashboard/handlers"
	"github.com/FairForge/lifesync/internal/dataset"
	"github.com/FairForge/lifesync/internal/ratelimit"
	"github.com/FairForge/lifesync/internal/simulator"
	"github.com/FairForge/lifesync/internal/watch"
)

func newServeCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard and simulator HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, logger)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close failed", zap.Error(err))
		}
	}()

	store := dataset.NewStore(cfg.Data.Dataset, logger.Named("dataset"))
	if err := store.Reload(); err != nil {
		logger.Warn("dashboard unavailable until the dataset loads", zap.Error(err))
	}

	var limiter *ratelimit.ClientLimiter
	if cfg.RateLimit.Enabled() {
		limiter = ratelimit.NewClientLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst, cfg.RateLimit.Idle)
		go sweep(ctx, limiter, cfg.RateLimit.Idle)
	}

	sim, err := simulator.NewHandler(a.service, limiter, logger.Named("simulator"))
	if err != nil {
		return err
	}

	health := api.NewHealthChecker()
	health.Register("dataset", func() error {
		_, err := store.Current()
		return err
	})
	health.Register("models", func() error {
		_, err := a.models.Models()
		return err
	})

	server := api.NewServer(cfg.Server, logger, a.metrics, health,
		handlers.NewDashboardHandler(store, cfg.Data.ShapDir, logger.Named("dashboard")),
		handlers.NewAPIHandler(store, cfg.Data.FeatureImportance, cfg.Data.ShapDir, logger.Named("dashboard")),
		sim,
	)

	if cfg.Data.Watch {
		a.watchArtifacts(ctx, store)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// watchArtifacts reloads the dataset and the model files when they change
// on disk.
func (a *app) watchArtifacts(ctx context.Context, store *dataset.Store) {
	quiet := a.cfg.Data.WatchQuiet

	go func() {
		err := watch.OnChange(ctx, []string{store.Path()}, quiet, a.logger.Named("watch"), func() {
			_ = store.Reload()
		})
		if err != nil {
			a.logger.Warn("dataset watch stopped", zap.Error(err))
		}
	}()

	if paths := a.models.Source().Paths(); len(paths) > 0 {
		go func() {
			err := watch.OnChange(ctx, paths, quiet, a.logger.Named("watch"), func() {
				_ = a.models.Load(ctx)
			})
			if err != nil {
				a.logger.Warn("model watch stopped", zap.Error(err))
			}
		}()
	}
}

// sweep drops idle rate limit buckets until ctx is done.
func sweep(ctx context.Context, limiter *ratelimit.ClientLimiter, every time.Duration) {
	if every <= 0 {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.Sweep()
		}
	}
}
