package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectorhive/core/manifest"
)

func testRecord(id, alias string) Record {
	return Record{
		ID:    id,
		Alias: alias,
		Manifest: manifest.Manifest{
			Name:        alias,
			DisplayName: alias,
			Description: "test plugin",
			Version:     "1.0.0",
			Type:        manifest.TypeStorage,
		},
		CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

// runStoreTests exercises the Store contract against one backend.
func runStoreTests(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("GetAbsent", func(t *testing.T) {
		rec, err := store.Get(ctx, "absent")
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("PutThenGet", func(t *testing.T) {
		want := testRecord("id-1", "alpha")
		err := store.Update(ctx, "id-1", func(ctx context.Context, tx Txn) error {
			rec, err := tx.Get(ctx)
			require.NoError(t, err)
			assert.Nil(t, rec)
			return tx.Put(ctx, want)
		})
		require.NoError(t, err)

		got, err := store.Get(ctx, "id-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "alpha", got.Alias)
		assert.Equal(t, want.Manifest.Type, got.Manifest.Type)
		assert.True(t, got.CreatedAt.Equal(want.CreatedAt))
	})

	t.Run("StagedWriteVisibleInTxn", func(t *testing.T) {
		err := store.Update(ctx, "id-2", func(ctx context.Context, tx Txn) error {
			if err := tx.Put(ctx, testRecord("id-2", "beta")); err != nil {
				return err
			}
			rec, err := tx.Get(ctx)
			require.NoError(t, err)
			require.NotNil(t, rec)
			assert.Equal(t, "beta", rec.Alias)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("FailedTxnWritesNothing", func(t *testing.T) {
		boom := errors.New("bootstrap failed")
		err := store.Update(ctx, "id-3", func(ctx context.Context, tx Txn) error {
			if err := tx.Put(ctx, testRecord("id-3", "gamma")); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		rec, err := store.Get(ctx, "id-3")
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("List", func(t *testing.T) {
		recs, err := store.List(ctx)
		require.NoError(t, err)
		aliases := make(map[string]bool, len(recs))
		for _, rec := range recs {
			aliases[rec.Alias] = true
		}
		assert.True(t, aliases["alpha"])
		assert.False(t, aliases["gamma"])
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Update(ctx, "id-1", func(ctx context.Context, tx Txn) error {
			return tx.Delete(ctx)
		})
		require.NoError(t, err)

		rec, err := store.Get(ctx, "id-1")
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("ReadOnlyTxn", func(t *testing.T) {
		err := store.Update(ctx, "id-2", func(ctx context.Context, tx Txn) error {
			_, err := tx.Get(ctx)
			return err
		})
		require.NoError(t, err)

		rec, err := store.Get(ctx, "id-2")
		require.NoError(t, err)
		require.NotNil(t, rec)
	})
}
