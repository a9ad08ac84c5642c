package state

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewRedisStore(RedisOptions{URL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRedisStore(t *testing.T) {
	runStoreTests(t, newTestRedisStore(t))
}

func TestRedisStoreKeyPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	store, err := NewRedisStore(RedisOptions{
		URL:       "redis://" + mr.Addr(),
		KeyPrefix: "acme:plugin",
	})
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	err = store.Update(ctx, "id-1", func(ctx context.Context, tx Txn) error {
		return tx.Put(ctx, testRecord("id-1", "alpha"))
	})
	require.NoError(t, err)

	assert.True(t, mr.Exists("acme:plugin:id-1"))
}

func TestRedisStoreInvalidURL(t *testing.T) {
	_, err := NewRedisStore(RedisOptions{URL: "not-a-url"})
	assert.Error(t, err)
}
