package main

import (
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/tenantplatform/internal/config"
	"github.com/nikhilbhutani/tenantplatform/internal/queue"
	"github.com/nikhilbhutani/tenantplatform/internal/queue/workers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
	slog.SetDefault(logger)

	srv := queue.NewServer(cfg.Redis, cfg.Worker.Concurrency)

	registry := queue.NewHandlersRegistry()

	billingWorker := workers.NewBillingWorker(workers.NewLogMailer(logger))
	registry.Register(queue.TypeBillingEmail, asynq.HandlerFunc(billingWorker.ProcessTask))

	slog.Info("starting worker", "concurrency", cfg.Worker.Concurrency, "queue", queue.QueueBilling)
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
