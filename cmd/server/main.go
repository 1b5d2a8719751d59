package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/app"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/config"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/logging"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if _, err := logging.Init(cfg.Log); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}

	// Wait for interrupt signal for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}

	if err := server.Run(ctx); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}
