package archive_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/ledger/internal/config"
	"github.com/rezkam/ledger/internal/infrastructure/archive"
)

func TestOpen_None(t *testing.T) {
	sink, err := archive.Open(context.Background(), config.ArchiveConfig{Backend: config.ArchiveNone})
	require.NoError(t, err)
	assert.Nil(t, sink)
}

func TestOpen_FS(t *testing.T) {
	ctx := context.Background()
	sink, err := archive.Open(ctx, config.ArchiveConfig{Backend: config.ArchiveFS, Dir: t.TempDir()})
	require.NoError(t, err)
	defer sink.Close()

	require.NoError(t, sink.Put(ctx, "forecasts/tpl/a.json", []byte(`{}`)))
	names, err := sink.List(ctx, "forecasts/tpl/")
	require.NoError(t, err)
	assert.Equal(t, []string{"forecasts/tpl/a.json"}, names)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := archive.Open(context.Background(), config.ArchiveConfig{Backend: "ftp"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ftp")
}
