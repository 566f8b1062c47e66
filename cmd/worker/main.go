package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rezkam/ledger/internal/application/scheduler"
	"github.com/rezkam/ledger/internal/config"
	"github.com/rezkam/ledger/internal/infrastructure/observability"
	"github.com/rezkam/ledger/internal/infrastructure/persistence"
)

const telemetryShutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("worker exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadWorkerConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	shutdownTelemetry, err := observability.Setup(ctx, observability.Config{
		Enabled:     cfg.Observability.OTelEnabled,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		return fmt.Errorf("failed to set up observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			slog.Error("failed to shut down telemetry", "error", err)
		}
	}()

	store, err := persistence.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	sched := scheduler.New(store,
		scheduler.WithInterval(cfg.Scheduler.Interval),
		scheduler.WithOperationTimeout(cfg.Scheduler.OperationTimeout),
	)

	// Start blocks until the signal context is cancelled and in-flight cycles finish.
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("scheduler failed: %w", err)
	}

	slog.Info("Worker shut down gracefully")
	return nil
}
