//go:build integration

package cached

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tranchor/internal/entitlement/adapters/staticpool"
	id "tranchor/pkg/domain"
	"tranchor/pkg/testutil/containers"
)

func TestCachedAdapter_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	rc := containers.NewRedisContainer(t)
	ctx := context.Background()

	pool := staticpool.New("pool")
	pool.SetBalance(id.ParticipantID("alice"), 100)
	pool.SetTotal(1_000)
	adapter := New(pool, rc.Client, time.Minute)

	t.Run("reads populate the cache", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))

		total, err := adapter.GetEntireBalance(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(1_000), total)

		balance, err := adapter.BalanceOf(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, uint64(100), balance)

		keys, err := rc.Client.Keys(ctx, "tranchor:pool:*").Result()
		require.NoError(t, err)
		assert.Len(t, keys, 2)
	})

	t.Run("cached value survives a source change until invalidation", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))

		_, err := adapter.BalanceOf(ctx, "alice")
		require.NoError(t, err)

		pool.SetBalance(id.ParticipantID("alice"), 999)

		balance, err := adapter.BalanceOf(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, uint64(100), balance, "stale read within the TTL window")
	})

	t.Run("pool rotation drops cached valuations", func(t *testing.T) {
		_, err := adapter.SetPoolAddress(ctx, "pool-v2")
		require.NoError(t, err)

		balance, err := adapter.BalanceOf(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, uint64(999), balance)
	})
}
