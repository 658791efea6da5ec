package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tranchor/internal/tranche/models"
	id "tranchor/pkg/domain"
	"tranchor/pkg/platform/sentinel"
)

func TestInMemoryStore_Definitions(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	t.Run("missing definition returns sentinel", func(t *testing.T) {
		_, err := store.GetDefinition(ctx, 7)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("stored definition cannot be aliased", func(t *testing.T) {
		def := &models.Definition{
			Level: 1,
			IDs:   []id.CertificateID{1, 2},
			Caps:  map[id.CertificateID]uint64{1: 50, 2: 30},
		}
		require.NoError(t, store.SaveDefinition(ctx, def))

		// Mutating the caller's copy must not leak into the store.
		def.IDs[0] = 99
		def.Caps[1] = 9999

		got, err := store.GetDefinition(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, []id.CertificateID{1, 2}, got.IDs)
		assert.Equal(t, uint64(50), got.Caps[1])

		// And mutating the returned copy must not leak either.
		got.Caps[2] = 1
		again, err := store.GetDefinition(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, uint64(30), again.Caps[2])
	})

	t.Run("list is ordered by level", func(t *testing.T) {
		s := NewInMemoryStore()
		for _, level := range []id.TrancheLevel{3, 1, 2} {
			require.NoError(t, s.SaveDefinition(ctx, &models.Definition{
				Level: level,
				IDs:   []id.CertificateID{1},
				Caps:  map[id.CertificateID]uint64{1: 1},
			}))
		}
		defs, err := s.ListDefinitions(ctx)
		require.NoError(t, err)
		require.Len(t, defs, 3)
		assert.Equal(t, id.TrancheLevel(1), defs[0].Level)
		assert.Equal(t, id.TrancheLevel(3), defs[2].Level)
	})
}

func TestInMemoryStore_Assignments_Concurrent(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	participant := id.ParticipantID("concurrent")

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(level id.TrancheLevel) {
			defer wg.Done()
			assert.NoError(t, store.Assign(ctx, participant, level))
		}(id.TrancheLevel(i))
	}
	wg.Wait()

	level, err := store.LevelOf(ctx, participant)
	require.NoError(t, err)
	assert.Less(t, uint32(level), uint32(goroutines))
}
