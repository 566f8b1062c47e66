// Package compliance holds the behavioural test suite every archive backend must pass.
package compliance

import (
	"context"
	"path"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/ledger/internal/application/ledger"
	"github.com/rezkam/ledger/internal/domain"
)

// RunSinkComplianceTest runs a standard set of tests against a Sink implementation.
// setup returns a Sink and a cleanup function that receives every name the test wrote.
// Each subtest writes below its own random prefix so shared buckets stay isolated.
func RunSinkComplianceTest(t *testing.T, setup func(t *testing.T) (ledger.Sink, func(names []string))) {
	t.Run("PutAndGet", func(t *testing.T) {
		sink, teardown := setup(t)
		ctx := context.Background()
		name := path.Join("forecasts", uuid.NewString(), "20240529T100000.000Z.json")
		defer teardown([]string{name})

		require.NoError(t, sink.Put(ctx, name, []byte(`{"template_id":"tpl"}`)))

		data, err := sink.Get(ctx, name)
		require.NoError(t, err)
		assert.JSONEq(t, `{"template_id":"tpl"}`, string(data))
	})

	t.Run("PutReplaces", func(t *testing.T) {
		sink, teardown := setup(t)
		ctx := context.Background()
		name := path.Join("forecasts", uuid.NewString(), "export.json")
		defer teardown([]string{name})

		require.NoError(t, sink.Put(ctx, name, []byte(`{"v":1}`)))
		require.NoError(t, sink.Put(ctx, name, []byte(`{"v":2}`)))

		data, err := sink.Get(ctx, name)
		require.NoError(t, err)
		assert.JSONEq(t, `{"v":2}`, string(data))
	})

	t.Run("GetMissing", func(t *testing.T) {
		sink, teardown := setup(t)
		defer teardown(nil)

		_, err := sink.Get(context.Background(), path.Join("forecasts", uuid.NewString(), "missing.json"))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("ListByPrefixSorted", func(t *testing.T) {
		sink, teardown := setup(t)
		ctx := context.Background()
		root := path.Join("forecasts", uuid.NewString())
		other := path.Join("forecasts", uuid.NewString())

		names := []string{
			path.Join(root, "20240601T000000.000Z.json"),
			path.Join(root, "20240101T000000.000Z.json"),
			path.Join(other, "20240301T000000.000Z.json"),
		}
		defer teardown(names)

		for _, name := range names {
			require.NoError(t, sink.Put(ctx, name, []byte(`{}`)))
		}

		listed, err := sink.List(ctx, root+"/")
		require.NoError(t, err)
		assert.Equal(t, []string{names[1], names[0]}, listed)

		empty, err := sink.List(ctx, path.Join("forecasts", uuid.NewString())+"/")
		require.NoError(t, err)
		assert.Empty(t, empty)
	})
}
