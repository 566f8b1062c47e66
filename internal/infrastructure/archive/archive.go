// Package archive opens the object store that forecast exports are written to.
package archive

import (
	"context"
	"fmt"

	"github.com/rezkam/ledger/internal/application/ledger"
	"github.com/rezkam/ledger/internal/config"
	"github.com/rezkam/ledger/internal/infrastructure/archive/fs"
	"github.com/rezkam/ledger/internal/infrastructure/archive/gcs"
	"github.com/rezkam/ledger/internal/infrastructure/archive/s3"
)

// Sink is an archive backend that owns resources.
type Sink interface {
	ledger.Sink
	Close() error
}

var (
	_ Sink = (*fs.Sink)(nil)
	_ Sink = (*gcs.Sink)(nil)
	_ Sink = (*s3.Sink)(nil)
)

// Open creates the backend named by cfg.Backend.
// It returns a nil Sink for config.ArchiveNone, which disables exports.
func Open(ctx context.Context, cfg config.ArchiveConfig) (Sink, error) {
	var (
		sink Sink
		err  error
	)

	switch cfg.Backend {
	case config.ArchiveNone, "":
		return nil, nil
	case config.ArchiveFS:
		sink, err = openFS(cfg.Dir)
	case config.ArchiveGCS:
		sink, err = openGCS(ctx, cfg.Bucket)
	case config.ArchiveS3:
		sink, err = openS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown archive backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s archive: %w", cfg.Backend, err)
	}
	return sink, nil
}

func openFS(dir string) (Sink, error) {
	sink, err := fs.NewSink(dir)
	if err != nil {
		return nil, err
	}
	return sink, nil
}

func openGCS(ctx context.Context, bucket string) (Sink, error) {
	sink, err := gcs.NewSink(ctx, bucket)
	if err != nil {
		return nil, err
	}
	return sink, nil
}

func openS3(ctx context.Context, cfg config.ArchiveConfig) (Sink, error) {
	sink, err := s3.NewSink(ctx, cfg.Bucket, cfg.Region, cfg.Profile)
	if err != nil {
		return nil, err
	}
	return sink, nil
}
