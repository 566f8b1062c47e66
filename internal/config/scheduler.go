package config

import (
	"fmt"
	"time"
)

// SchedulerConfig holds the recurring transaction scheduler settings.
type SchedulerConfig struct {
	// Enabled runs the scheduler inside the server process. The worker binary ignores it.
	Enabled          bool          `env:"SCHEDULER_ENABLED" default:"false"`
	Interval         time.Duration `env:"SCHEDULER_INTERVAL" default:"1h"`
	OperationTimeout time.Duration `env:"SCHEDULER_OPERATION_TIMEOUT" default:"30s"`
}

// Validate validates the scheduler configuration.
func (c *SchedulerConfig) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("LEDGER_SCHEDULER_INTERVAL must be positive, got %s", c.Interval)
	}
	if c.OperationTimeout <= 0 {
		return fmt.Errorf("LEDGER_SCHEDULER_OPERATION_TIMEOUT must be positive, got %s", c.OperationTimeout)
	}
	return nil
}
