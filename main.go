package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"libris/internal/app"
	"libris/internal/config"
	"libris/internal/logger"
)

func main() {
	slog.SetDefault(logger.New())

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := app.Bootstrap(cfg)
	if err != nil {
		slog.Error("failed to bootstrap", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("migrations applied successfully")

	a, err := app.New(cfg, db)
	if err != nil {
		slog.Error("failed to build app", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
