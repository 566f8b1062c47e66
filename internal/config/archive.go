package config

import "fmt"

// Supported archive backends.
const (
	ArchiveNone = "none"
	ArchiveFS   = "fs"
	ArchiveGCS  = "gcs"
	ArchiveS3   = "s3"
)

// ArchiveConfig selects where forecast exports are written.
type ArchiveConfig struct {
	Backend string `env:"ARCHIVE_BACKEND" default:"none"`
	Dir     string `env:"ARCHIVE_DIR" default:"./ledger-exports"`
	Bucket  string `env:"ARCHIVE_BUCKET"`
	Region  string `env:"ARCHIVE_AWS_REGION"`
	Profile string `env:"ARCHIVE_AWS_PROFILE"`
}

// Validate validates the archive configuration.
func (c *ArchiveConfig) Validate() error {
	switch c.Backend {
	case ArchiveNone:
	case ArchiveFS:
		if c.Dir == "" {
			return fmt.Errorf("LEDGER_ARCHIVE_DIR is required when LEDGER_ARCHIVE_BACKEND is 'fs'")
		}
	case ArchiveGCS, ArchiveS3:
		if c.Bucket == "" {
			return fmt.Errorf("LEDGER_ARCHIVE_BUCKET is required when LEDGER_ARCHIVE_BACKEND is '%s'", c.Backend)
		}
	default:
		return fmt.Errorf("unknown LEDGER_ARCHIVE_BACKEND: %s", c.Backend)
	}
	return nil
}
