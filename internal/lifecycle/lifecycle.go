// Package lifecycle controls the engine's suspension state. While the
// engine is paused every state-mutating operation is refused; reads stay
// available.
package lifecycle

import (
	"context"
	"log/slog"
	"sync"
	"time"

	domainerrors "tranchor/pkg/domain-errors"
	"tranchor/pkg/platform/audit"
	"tranchor/pkg/requestcontext"
)

// Status is a snapshot of the engine's suspension state.
type Status struct {
	Paused   bool      `json:"paused"`
	Reason   string    `json:"reason,omitempty"`
	PausedAt time.Time `json:"paused_at,omitzero"`
	PausedBy string    `json:"paused_by,omitempty"`
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	mu     sync.RWMutex
	status Status

	now            func() time.Time
	auditPublisher AuditPublisher
	logger         *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) { s.auditPublisher = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(opts ...Option) *Service {
	s := &Service{
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Pause suspends the engine. Fails with a conflict when already paused.
func (s *Service) Pause(ctx context.Context, actor, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.Paused {
		return domainerrors.Newf(domainerrors.CodeConflict, "engine already paused: %s", s.status.Reason)
	}
	if reason == "" {
		return domainerrors.New(domainerrors.CodeValidation, "pause reason is required")
	}
	s.status = Status{
		Paused:   true,
		Reason:   reason,
		PausedAt: s.now().UTC(),
		PausedBy: actor,
	}

	s.logger.WarnContext(ctx, "engine paused", "reason", reason, "actor", actor)
	s.audit(ctx, audit.Event{
		Category: audit.CategoryOperations,
		Action:   audit.EventEnginePaused,
		Reason:   reason,
		ActorID:  actor,
	})
	return nil
}

// Resume lifts a suspension. Fails with a conflict when the engine is
// already active.
func (s *Service) Resume(ctx context.Context, actor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.status.Paused {
		return domainerrors.New(domainerrors.CodeConflict, "engine is not paused")
	}
	s.status = Status{}

	s.logger.InfoContext(ctx, "engine resumed", "actor", actor)
	s.audit(ctx, audit.Event{
		Category: audit.CategoryOperations,
		Action:   audit.EventEngineResumed,
		ActorID:  actor,
	})
	return nil
}

// IsPaused reports whether the engine is suspended and, if so, why.
func (s *Service) IsPaused(_ context.Context) (bool, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status.Paused, s.status.Reason
}

// Status returns the current suspension snapshot.
func (s *Service) Status(_ context.Context) Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Service) audit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "audit emit failed", "action", event.Action, "error", err)
	}
}
