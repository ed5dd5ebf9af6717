// cmd/lifesync/app.go
package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/FairForge/lifesync/internal/api"
	"github.com/FairForge/lifesync/internal/archive"
	"github.com/FairForge/lifesync/internal/auth"
	"github.com/FairForge/lifesync/internal/cache"
	"github.com/FairForge/lifesync/internal/config"
	"github.com/FairForge/lifesync/internal/database"
	"github.com/FairForge/lifesync/internal/encoder"
	"github.com/FairForge/lifesync/internal/history"
	"github.com/FairForge/lifesync/internal/model"
	"github.com/FairForge/lifesync/internal/reporting"
	"github.com/FairForge/lifesync/internal/simulator"
)

// app holds the components shared by every command.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *api.Metrics
	models  *model.Registry
	service *simulator.Service
	closers []func() error
}

// newApp wires the simulator. Model load failures are logged and leave the
// simulator unavailable; configuration errors are returned.
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: api.NewMetrics(),
		models:  model.NewRegistry(cfg.Models.Source(), logger.Named("models")),
	}

	if err := a.models.Load(ctx); err != nil {
		logger.Warn("simulator unavailable until models load", zap.Error(err))
	}

	recorder, reader := a.history(ctx)

	signer, err := auth.NewSigner(cfg.Auth.DownloadSecret, cfg.Auth.DownloadTTL)
	if err != nil {
		return nil, fmt.Errorf("create download signer: %w", err)
	}
	if cfg.Auth.DownloadSecret == "" {
		logger.Info("no download secret configured, report links expire with the process")
	}

	opts := []simulator.Option{
		simulator.WithHistory(recorder, reader),
		simulator.WithCache(cache.NewLRU(cfg.Cache.Capacity, cfg.Cache.TTL)),
		simulator.WithSigner(signer),
		simulator.WithObserver(a.metrics),
	}
	if cfg.Archive.Enabled() {
		store, err := archive.New(ctx, cfg.Archive, logger.Named("archive"))
		if err != nil {
			return nil, fmt.Errorf("create report archive: %w", err)
		}
		opts = append(opts, simulator.WithArchive(store, cfg.Archive.Prefix))
		logger.Info("report archive enabled", zap.String("backend", store.Name()))
	}

	a.service = simulator.NewService(
		a.models,
		encoder.New(encoder.WithCountryFallback(cfg.Encoder.CountryFallback)),
		reporting.NewGenerator(logger.Named("reports"), reporting.WithPrefix(cfg.Reports.Prefix)),
		logger,
		opts...,
	)
	return a, nil
}

// history builds the sink fan-out. The primary CSV file is also the reader.
func (a *app) history(ctx context.Context) (history.Recorder, history.Reader) {
	primary := history.NewCSVRecorder(a.cfg.History.Path)
	sinks := []history.Sink{{Name: "csv", Recorder: primary}}

	if p := a.cfg.History.SecondaryPath; p != "" {
		sinks = append(sinks, history.Sink{Name: "csv-secondary", Recorder: history.NewCSVRecorder(p)})
	}

	if a.cfg.History.Postgres {
		store, err := a.postgres(ctx)
		if err != nil {
			a.logger.Warn("postgres history mirror disabled", zap.Error(err))
		} else {
			sinks = append(sinks, history.Sink{Name: "postgres", Recorder: store})
		}
	}

	return history.NewMulti(a.logger.Named("history"), sinks...), primary
}

func (a *app) postgres(ctx context.Context) (*database.HistoryStore, error) {
	pg, err := database.NewPostgres(a.cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := pg.Ping(ctx); err != nil {
		_ = pg.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := pg.CreateTables(ctx); err != nil {
		_ = pg.Close()
		return nil, err
	}
	a.closers = append(a.closers, pg.Close)
	return database.NewHistoryStore(pg.DB()), nil
}

func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	_ = a.logger.Sync()
	return errors.Join(errs...)
}
