package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rezkam/ledger/internal/application/ledger"
	"github.com/rezkam/ledger/internal/application/scheduler"
	"github.com/rezkam/ledger/internal/config"
	"github.com/rezkam/ledger/internal/infrastructure/archive"
	httpserver "github.com/rezkam/ledger/internal/infrastructure/http"
	"github.com/rezkam/ledger/internal/infrastructure/http/handler"
	"github.com/rezkam/ledger/internal/infrastructure/observability"
	"github.com/rezkam/ledger/internal/infrastructure/persistence"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadServerConfig()
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
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			slog.Error("failed to shut down telemetry", "error", err)
		}
	}()

	store, err := persistence.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	sink, err := archive.Open(ctx, cfg.Archive)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("failed to open archive: %w", err)
	}
	cleanup := newCleanup(sink, store)
	defer cleanup()

	var ledgerSink ledger.Sink
	if sink != nil {
		ledgerSink = sink
	}
	service := ledger.NewService(store, ledgerSink, ledger.Config{
		DefaultHorizonMonths: cfg.Ledger.DefaultHorizonMonths,
		MaxHorizonMonths:     cfg.Ledger.MaxHorizonMonths,
	})
	sched := scheduler.New(store,
		scheduler.WithInterval(cfg.Scheduler.Interval),
		scheduler.WithOperationTimeout(cfg.Scheduler.OperationTimeout),
	)

	server := httpserver.NewAPIServer(handler.NewRouter(service, sched), store, httpserver.ServerConfig{
		Host:              cfg.HTTP.Host,
		Port:              cfg.HTTP.Port,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MaxBodyBytes:      cfg.HTTP.MaxBodyBytes,
		TLSCertFile:       tlsFile(cfg.HTTP.TLSEnabled, cfg.HTTP.TLSCertFile),
		TLSKeyFile:        tlsFile(cfg.HTTP.TLSEnabled, cfg.HTTP.TLSKeyFile),
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// The embedded scheduler stops on the same signal as the server.
	schedCtx, cancelSched := context.WithCancel(ctx)
	defer cancelSched()
	schedDone := make(chan struct{})
	if cfg.Scheduler.Enabled {
		go func() {
			defer close(schedDone)
			if err := sched.Start(schedCtx); err != nil {
				slog.Error("scheduler stopped with error", "error", err)
			}
		}()
	} else {
		close(schedDone)
	}

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err, ok := <-serverErr:
		if ok && err != nil {
			cancelSched()
			<-schedDone
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	cancelSched()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shut down http server", "error", err)
	}

	select {
	case <-schedDone:
	case <-shutdownCtx.Done():
		slog.Warn("Scheduler did not stop before shutdown timeout")
	}

	slog.Info("Server stopped")
	return nil
}

func tlsFile(enabled bool, path string) string {
	if !enabled {
		return ""
	}
	return path
}
