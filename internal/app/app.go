package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"meetingsync/internal/config"
	"meetingsync/internal/infrastructure/bmlt"
	"meetingsync/internal/infrastructure/nominatim"
	"meetingsync/internal/infrastructure/scheduler"
	"meetingsync/internal/infrastructure/storage"
	"meetingsync/internal/infrastructure/wordpress"
	"meetingsync/internal/logging"
	"meetingsync/internal/metrics"
	"meetingsync/internal/usecase"
)

// Application wires config to the sync pipeline and its lifecycle.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	metrics  *metrics.Metrics
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Addr != "" {
		m = metrics.New(cfg.Metrics.Addr)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:   wordpress.NewClient(cfg.Source.BaseURL, nil),
		Registry: bmlt.NewClient(cfg.Registry, nil),
		Geocoder: nominatim.NewClient(nil),
		Store:    storage.NewFileStore(cfg.DataDir),
		Metrics:  m,
		Logger:   baseLogger.With("component", "pipeline"),
		Config:   cfg,
	})

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		pipeline: pipeline,
		metrics:  m,
	}
}

// Run executes a single sync when no cron expression is configured, or runs
// once immediately and then on schedule until the context is canceled.
func (a *Application) Run(ctx context.Context) error {
	if a.metrics != nil {
		go func() {
			if err := a.metrics.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics listener stopped", "error", err)
			}
		}()
		defer func() { _ = a.metrics.Shutdown(context.Background()) }()
	}

	if a.cfg.Scheduler.CronExpression == "" {
		return a.pipeline.Run(ctx)
	}

	if err := a.pipeline.Run(ctx); err != nil {
		a.logger.Error("initial run failed", "error", err)
	}

	driver := scheduler.New(a.cfg.Scheduler.CronExpression, a.cfg.Scheduler.Location())
	runner := usecase.NewScheduler(driver, a.pipeline, a.logger.With("component", "scheduler"))
	if err := runner.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	return runner.Stop(context.Background())
}
