package kv

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psytech/suvichar/internal/config"
	"github.com/psytech/suvichar/internal/infra"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	db, err := infra.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  NewRedisStore(client, DefaultRedisPrefix),
		"sqlite": NewSQLiteStore(db),
	}
}

func TestStoreContract(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.Set(ctx, "suvichar_user_profile", []byte(`{"name":"old"}`)))
			require.NoError(t, store.Set(ctx, "suvichar_user_profile", []byte(`{"name":"new"}`)))

			got, err := store.Get(ctx, "suvichar_user_profile")
			require.NoError(t, err)
			assert.Equal(t, `{"name":"new"}`, string(got))

			require.NoError(t, store.Delete(ctx, "suvichar_user_profile"))
			_, err = store.Get(ctx, "suvichar_user_profile")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.Delete(ctx, "never-written"))
		})
	}
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, store.Set(ctx, "k", value))
	value[0] = 'x'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestOpenMemoryDriver(t *testing.T) {
	store, closeFn, err := Open(context.Background(), config.Config{StorageDriver: config.StorageMemory})
	require.NoError(t, err)
	require.NotNil(t, store)
	require.NoError(t, closeFn())
}

func TestOpenUnknownDriver(t *testing.T) {
	_, closeFn, err := Open(context.Background(), config.Config{StorageDriver: "etcd"})
	require.Error(t, err)
	require.NotNil(t, closeFn)
}
