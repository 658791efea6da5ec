//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tranchor/internal/certificate/models"
	id "tranchor/pkg/domain"
	"tranchor/pkg/platform/sentinel"
	"tranchor/pkg/testutil/containers"
)

func TestPostgresStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pg := containers.NewPostgresContainer(t)
	store := NewPostgres(pg.Pool)
	ctx := context.Background()
	require.NoError(t, store.EnsureSchema(ctx))

	issued := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("create and read back", func(t *testing.T) {
		require.NoError(t, store.Create(ctx, &models.Certificate{
			ID: 1, TotalSupply: 500, Metadata: "launch batch", IssuedAt: issued,
		}))

		got, err := store.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, uint64(500), got.TotalSupply)
		assert.Equal(t, "launch batch", got.Metadata)
		assert.WithinDuration(t, issued, got.IssuedAt, time.Millisecond)
	})

	t.Run("duplicate id maps to conflict", func(t *testing.T) {
		err := store.Create(ctx, &models.Certificate{ID: 1, IssuedAt: issued})
		assert.ErrorIs(t, err, sentinel.ErrConflict)
	})

	t.Run("max id over issued certificates", func(t *testing.T) {
		require.NoError(t, store.Create(ctx, &models.Certificate{ID: 2, TotalSupply: 10, IssuedAt: issued}))

		maxID, err := store.MaxID(ctx)
		require.NoError(t, err)
		assert.Equal(t, id.CertificateID(2), maxID)
	})

	t.Run("decrement supply enforces the floor", func(t *testing.T) {
		require.NoError(t, store.DecrementSupply(ctx, 2, 4))

		got, err := store.Get(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, uint64(6), got.TotalSupply)

		assert.ErrorIs(t, store.DecrementSupply(ctx, 2, 7), sentinel.ErrInvalidState)
		assert.ErrorIs(t, store.DecrementSupply(ctx, 99, 1), sentinel.ErrNotFound)
	})

	t.Run("list ordered by id", func(t *testing.T) {
		certs, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, certs, 2)
		assert.Equal(t, id.CertificateID(1), certs[0].ID)
		assert.Equal(t, id.CertificateID(2), certs[1].ID)
	})
}
