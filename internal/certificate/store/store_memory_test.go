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
)

func TestInMemoryStore_CreateAndGet(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	cert := &models.Certificate{ID: 1, TotalSupply: 100, Metadata: "first", IssuedAt: time.Now()}
	require.NoError(t, s.Create(ctx, cert))

	got, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), got.TotalSupply)
	assert.Equal(t, "first", got.Metadata)

	// The stored copy is isolated from the caller's struct.
	cert.TotalSupply = 0
	got, err = s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), got.TotalSupply)
}

func TestInMemoryStore_CreateConflict(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, &models.Certificate{ID: 1, TotalSupply: 10}))

	err := s.Create(ctx, &models.Certificate{ID: 1, TotalSupply: 20})

	assert.ErrorIs(t, err, sentinel.ErrConflict)
}

func TestInMemoryStore_GetMissing(t *testing.T) {
	s := NewInMemoryStore()

	_, err := s.Get(context.Background(), 404)

	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryStore_MaxIDTracksHighest(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	maxID, err := s.MaxID(ctx)
	require.NoError(t, err)
	assert.Zero(t, maxID)

	require.NoError(t, s.Create(ctx, &models.Certificate{ID: 1}))
	require.NoError(t, s.Create(ctx, &models.Certificate{ID: 2}))

	maxID, err = s.MaxID(ctx)
	require.NoError(t, err)
	assert.Equal(t, id.CertificateID(2), maxID)
}

func TestInMemoryStore_DecrementSupply(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, &models.Certificate{ID: 1, TotalSupply: 100}))

	require.NoError(t, s.DecrementSupply(ctx, 1, 60))

	got, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(40), got.TotalSupply)

	assert.ErrorIs(t, s.DecrementSupply(ctx, 1, 41), sentinel.ErrInvalidState)
	assert.ErrorIs(t, s.DecrementSupply(ctx, 9, 1), sentinel.ErrNotFound)
}

func TestInMemoryStore_ListOrderedByID(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	for _, certID := range []id.CertificateID{3, 1, 2} {
		require.NoError(t, s.Create(ctx, &models.Certificate{ID: certID}))
	}

	certs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, certs, 3)
	assert.Equal(t, id.CertificateID(1), certs[0].ID)
	assert.Equal(t, id.CertificateID(3), certs[2].ID)
}
