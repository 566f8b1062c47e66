package config

import (
	"fmt"

	"github.com/rezkam/ledger/internal/env"
)

// WorkerConfig holds all configuration for the worker binary.
type WorkerConfig struct {
	Database      DatabaseConfig
	Scheduler     SchedulerConfig
	Observability ObservabilityConfig
}

// LoadWorkerConfig loads and validates worker configuration from environment.
func LoadWorkerConfig() (*WorkerConfig, error) {
	cfg := &WorkerConfig{}

	if err := env.Load(cfg, env.WithPrefix(EnvPrefix)); err != nil {
		return nil, fmt.Errorf("failed to load worker config: %w", err)
	}

	return cfg, nil
}
