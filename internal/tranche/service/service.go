// Package service implements the tranche registry: tranche definitions,
// participant assignment, and the eligibility lookups the guard and the
// redemption engine depend on.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tranchor/internal/tranche/models"
	"tranchor/internal/tranche/ports"
	id "tranchor/pkg/domain"
	dErrors "tranchor/pkg/domain-errors"
	"tranchor/pkg/platform/audit"
	"tranchor/pkg/platform/sentinel"
	"tranchor/pkg/requestcontext"
)

type Store = ports.RegistryStore

type Registry struct {
	store          Store
	auditPublisher ports.AuditPublisher
	logger         *slog.Logger

	// enforceIDExclusivity rejects binding a certificate id to more than one
	// level. Off by default: shared reward ids across levels are allowed.
	enforceIDExclusivity bool
}

type Option func(*Registry)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

func WithAuditPublisher(publisher ports.AuditPublisher) Option {
	return func(r *Registry) { r.auditPublisher = publisher }
}

// WithIDExclusivity makes cross-level id reuse a definition error.
func WithIDExclusivity() Option {
	return func(r *Registry) { r.enforceIDExclusivity = true }
}

func New(store Store, opts ...Option) (*Registry, error) {
	if store == nil {
		return nil, fmt.Errorf("registry store is required")
	}

	reg := &Registry{store: store}
	for _, opt := range opts {
		opt(reg)
	}
	return reg, nil
}

// Define creates or replaces a tranche level's id set and caps.
func (r *Registry) Define(ctx context.Context, level id.TrancheLevel, ids []id.CertificateID, caps map[id.CertificateID]uint64) error {
	for _, certID := range ids {
		if !certID.Valid() {
			return dErrors.Newf(dErrors.CodeInvalidID, "certificate id must be positive, got %d", certID)
		}
		if _, ok := caps[certID]; !ok {
			return dErrors.Newf(dErrors.CodeValidation, "missing cap for certificate %d", certID)
		}
	}
	if len(caps) != len(ids) {
		return dErrors.New(dErrors.CodeValidation, "caps must cover exactly the listed certificate ids")
	}

	if r.enforceIDExclusivity {
		if err := r.checkExclusivity(ctx, level, ids); err != nil {
			return err
		}
	}

	def := &models.Definition{Level: level, IDs: ids, Caps: caps}
	if err := r.store.SaveDefinition(ctx, def); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "save tranche definition")
	}

	r.logAudit(ctx, audit.EventTrancheDefined, audit.Event{
		Category: audit.CategoryCompliance,
		Level:    level,
		Amount:   uint64(len(ids)),
	})
	return nil
}

func (r *Registry) checkExclusivity(ctx context.Context, level id.TrancheLevel, ids []id.CertificateID) error {
	defs, err := r.store.ListDefinitions(ctx)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "list tranche definitions")
	}
	for _, def := range defs {
		if def.Level == level {
			continue
		}
		for _, certID := range ids {
			if def.Includes(certID) {
				return dErrors.Newf(dErrors.CodeConflict,
					"certificate %d already bound to level %d", certID, def.Level)
			}
		}
	}
	return nil
}

// Assign overwrites the participant's tranche level. Assigning to a level
// without a definition is allowed; the level simply entitles nothing until
// defined.
func (r *Registry) Assign(ctx context.Context, participant id.ParticipantID, level id.TrancheLevel) error {
	if participant.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "participant is required")
	}

	if err := r.store.Assign(ctx, participant, level); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "assign participant level")
	}

	r.logAudit(ctx, audit.EventParticipantAssigned, audit.Event{
		Category:    audit.CategoryCompliance,
		Participant: participant,
		Level:       level,
	})
	return nil
}

// IDsForLevel returns the level's ordered certificate ids. An unregistered
// level yields an empty sequence, not an error.
func (r *Registry) IDsForLevel(ctx context.Context, level id.TrancheLevel) ([]id.CertificateID, error) {
	def, err := r.store.GetDefinition(ctx, level)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "get tranche definition")
	}
	return def.IDs, nil
}

// CapFor returns the per-(level, id) maximum redeemable amount, zero when the
// level or id is unknown.
func (r *Registry) CapFor(ctx context.Context, level id.TrancheLevel, certID id.CertificateID) (uint64, error) {
	def, err := r.store.GetDefinition(ctx, level)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return 0, nil
		}
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "get tranche definition")
	}
	return def.CapFor(certID), nil
}

// Definition returns a level's full definition, or a not_found error when
// the level was never defined.
func (r *Registry) Definition(ctx context.Context, level id.TrancheLevel) (*models.Definition, error) {
	def, err := r.store.GetDefinition(ctx, level)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "tranche level %s is not defined", level)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "get tranche definition")
	}
	return def, nil
}

// List returns every defined tranche ordered by level.
func (r *Registry) List(ctx context.Context) ([]*models.Definition, error) {
	defs, err := r.store.ListDefinitions(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list tranche definitions")
	}
	return defs, nil
}

// LevelOf returns the participant's assigned level. The boolean is false when
// the participant was never assigned.
func (r *Registry) LevelOf(ctx context.Context, participant id.ParticipantID) (id.TrancheLevel, bool, error) {
	level, err := r.store.LevelOf(ctx, participant)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return 0, false, nil
		}
		return 0, false, dErrors.Wrap(err, dErrors.CodeInternal, "get participant level")
	}
	return level, true, nil
}

// DefinitionFor resolves a participant straight to their tranche definition.
// Returns nil when the participant is unassigned or the level is undefined.
func (r *Registry) DefinitionFor(ctx context.Context, participant id.ParticipantID) (*models.Definition, error) {
	level, ok, err := r.LevelOf(ctx, participant)
	if err != nil || !ok {
		return nil, err
	}
	def, err := r.store.GetDefinition(ctx, level)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "get tranche definition")
	}
	return def, nil
}

func (r *Registry) logAudit(ctx context.Context, action audit.AuditEvent, event audit.Event) {
	event.Action = action
	event.RequestID = requestcontext.RequestID(ctx)
	if r.logger != nil {
		r.logger.InfoContext(ctx, string(event.Action),
			"participant", event.Participant,
			"level", event.Level,
			"request_id", event.RequestID,
			"log_type", "audit",
		)
	}
	if r.auditPublisher == nil {
		return
	}
	if err := r.auditPublisher.Emit(ctx, event); err != nil && r.logger != nil {
		r.logger.WarnContext(ctx, "failed to emit audit event", "event", event.Action, "error", err)
	}
}
