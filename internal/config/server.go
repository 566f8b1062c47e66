package config

import (
	"fmt"
	"time"

	"github.com/rezkam/ledger/internal/env"
)

// EnvPrefix namespaces every ledger variable; env tags are relative to it.
const EnvPrefix = "LEDGER_"

// ServerConfig holds all configuration for the server binary.
type ServerConfig struct {
	Database        DatabaseConfig
	HTTP            HTTPConfig
	Ledger          LedgerConfig
	Scheduler       SchedulerConfig
	Archive         ArchiveConfig
	Observability   ObservabilityConfig
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Host              string        `env:"HTTP_HOST"`
	Port              string        `env:"HTTP_PORT" default:"8080"`
	ReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" default:"5s"`
	WriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" default:"10s"`
	IdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" default:"120s"`
	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" default:"5s"`
	MaxHeaderBytes    int           `env:"HTTP_MAX_HEADER_BYTES" default:"1048576"`
	MaxBodyBytes      int64         `env:"HTTP_MAX_BODY_BYTES" default:"1048576"`

	// TLS configuration for HTTPS
	TLSEnabled  bool   `env:"TLS_ENABLED"`
	TLSCertFile string `env:"TLS_CERT_FILE"`
	TLSKeyFile  string `env:"TLS_KEY_FILE"`
}

// Validate validates HTTP server configuration.
func (c *HTTPConfig) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("LEDGER_HTTP_PORT is required")
	}
	if c.TLSEnabled && (c.TLSCertFile == "" || c.TLSKeyFile == "") {
		return fmt.Errorf("LEDGER_TLS_CERT_FILE and LEDGER_TLS_KEY_FILE are required when TLS is enabled")
	}
	return nil
}

// LedgerConfig holds template service configuration.
type LedgerConfig struct {
	DefaultHorizonMonths int `env:"DEFAULT_HORIZON_MONTHS" default:"12"`
	MaxHorizonMonths     int `env:"MAX_HORIZON_MONTHS" default:"120"`
}

// Validate validates template service configuration.
func (c *LedgerConfig) Validate() error {
	if c.DefaultHorizonMonths <= 0 {
		return fmt.Errorf("LEDGER_DEFAULT_HORIZON_MONTHS must be positive, got %d", c.DefaultHorizonMonths)
	}
	if c.MaxHorizonMonths < c.DefaultHorizonMonths {
		return fmt.Errorf("LEDGER_MAX_HORIZON_MONTHS (%d) must be >= LEDGER_DEFAULT_HORIZON_MONTHS (%d)", c.MaxHorizonMonths, c.DefaultHorizonMonths)
	}
	return nil
}

// LoadServerConfig loads and validates server configuration from environment.
func LoadServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{}

	if err := env.Load(cfg, env.WithPrefix(EnvPrefix)); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}

	return cfg, nil
}
