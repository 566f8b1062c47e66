package main

import (
	"io"
	"log/slog"
)

// newCleanup constructs the shutdown hook: close the export archive first so
// pending uploads are flushed, then close the shared store.
func newCleanup(archive io.Closer, store io.Closer) func() {
	return func() {
		if archive != nil {
			if err := archive.Close(); err != nil {
				slog.Error("failed to close archive", slog.String("error", err.Error()))
			}
		}

		if store != nil {
			if err := store.Close(); err != nil {
				slog.Error("failed to close store", slog.String("error", err.Error()))
			}
		}
	}
}
