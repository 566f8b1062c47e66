package config

import (
	"fmt"

	"github.com/rezkam/ledger/internal/env"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	// DatabaseDSN points at a disposable PostgreSQL database. Tests that need it skip when empty.
	DatabaseDSN string `env:"TEST_DB_DSN"`
	GCSBucket   string `env:"TEST_GCS_BUCKET"`
	S3Bucket    string `env:"TEST_S3_BUCKET"`
	S3Region    string `env:"TEST_S3_REGION"`
}

// LoadTestConfig loads test configuration from environment.
func LoadTestConfig() (*TestConfig, error) {
	cfg := &TestConfig{}

	if err := env.Load(cfg, env.WithPrefix(EnvPrefix)); err != nil {
		return nil, fmt.Errorf("failed to load test config: %w", err)
	}

	return cfg, nil
}
