package downloads

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psytech/suvichar/internal/kv"
	"github.com/psytech/suvichar/internal/logging"
)

func TestAddPrependsWithoutDedup(t *testing.T) {
	records := kv.NewMemoryStore()
	store := NewStore(records, logging.Discard())
	ctx := context.Background()

	assert.Empty(t, store.List(ctx))

	for _, ref := range []string{"a.png", "b.png", "a.png"} {
		_, err := store.Add(ctx, ref)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"a.png", "b.png", "a.png"}, store.List(ctx))
	assert.Equal(t, []string{"a.png", "b.png", "a.png"}, NewStore(records, logging.Discard()).List(ctx))
}

func TestCorruptRecordReadsEmpty(t *testing.T) {
	records := kv.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, records.Set(ctx, RecordKey, []byte(`{"oops":1}`)))

	store := NewStore(records, logging.Discard())
	assert.Empty(t, store.List(ctx))

	refs, err := store.Add(ctx, "c.png")
	require.NoError(t, err)
	assert.Equal(t, []string{"c.png"}, refs)
}
