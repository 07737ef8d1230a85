package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/ivkov/toolshelf/internal/mailer"
	"github.com/ivkov/toolshelf/internal/tasks"
	"github.com/ivkov/toolshelf/pkg/config"
	"github.com/ivkov/toolshelf/pkg/queue"
	"github.com/ivkov/toolshelf/pkg/util"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := util.NewLogger(cfg.Server.Env)
	slog.SetDefault(logger)

	logger.Info("starting toolshelf worker")

	// Create Asynq server
	srv := queue.NewServer(&cfg.Redis, 10)

	// Register task handlers
	handler := tasks.NewHandler(mailer.New(&cfg.SMTP), logger)
	mux := asynq.NewServeMux()
	handler.RegisterHandlers(mux)

	// Handle shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down worker...")
		srv.Shutdown()
	}()

	logger.Info("worker started, waiting for tasks...")

	if err := srv.Run(mux); err != nil {
		logger.Error("worker error", "error", err)
	}

	logger.Info("worker stopped")
}
