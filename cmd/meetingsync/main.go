package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"meetingsync/internal/app"
	"meetingsync/internal/config"
	"meetingsync/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("info").Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application := app.New(cfg, logger)
	if err := application.Run(ctx); err != nil {
		logger.Error("sync failed", "error", err)
		os.Exit(1)
	}
}
