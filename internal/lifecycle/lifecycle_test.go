package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domainerrors "tranchor/pkg/domain-errors"
	"tranchor/pkg/platform/audit"
	auditmemory "tranchor/pkg/platform/audit/store/memory"
	"tranchor/pkg/platform/audit/publisher"
)

func TestPauseAndResume(t *testing.T) {
	ctx := context.Background()
	frozen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := New(WithClock(func() time.Time { return frozen }))

	paused, _ := svc.IsPaused(ctx)
	require.False(t, paused)

	require.NoError(t, svc.Pause(ctx, "ops-admin", "incident response"))

	paused, reason := svc.IsPaused(ctx)
	require.True(t, paused)
	require.Equal(t, "incident response", reason)

	status := svc.Status(ctx)
	require.Equal(t, frozen, status.PausedAt)
	require.Equal(t, "ops-admin", status.PausedBy)

	require.NoError(t, svc.Resume(ctx, "ops-admin"))
	paused, _ = svc.IsPaused(ctx)
	require.False(t, paused)
}

func TestPause_AlreadyPaused(t *testing.T) {
	ctx := context.Background()
	svc := New()
	require.NoError(t, svc.Pause(ctx, "a", "first"))

	err := svc.Pause(ctx, "b", "second")

	require.True(t, domainerrors.HasCode(err, domainerrors.CodeConflict))
	_, reason := svc.IsPaused(ctx)
	require.Equal(t, "first", reason)
}

func TestPause_RequiresReason(t *testing.T) {
	err := New().Pause(context.Background(), "a", "")
	require.True(t, domainerrors.HasCode(err, domainerrors.CodeValidation))
}

func TestResume_NotPaused(t *testing.T) {
	err := New().Resume(context.Background(), "a")
	require.True(t, domainerrors.HasCode(err, domainerrors.CodeConflict))
}

func TestPauseResume_Audited(t *testing.T) {
	ctx := context.Background()
	store := auditmemory.NewInMemoryStore()
	pub := publisher.NewPublisher(store)
	svc := New(WithAuditPublisher(pub))

	require.NoError(t, svc.Pause(ctx, "ops-admin", "maintenance"))
	require.NoError(t, svc.Resume(ctx, "ops-admin"))

	events, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, audit.EventEnginePaused, events[0].Action)
	require.Equal(t, "maintenance", events[0].Reason)
	require.Equal(t, audit.EventEngineResumed, events[1].Action)
}
