// Package ports defines shared interfaces for the tranche module.
package ports

import (
	"context"

	"tranchor/internal/tranche/models"
	id "tranchor/pkg/domain"
	"tranchor/pkg/platform/audit"
)

// RegistryStore persists tranche definitions and participant assignments.
type RegistryStore interface {
	// SaveDefinition creates or replaces a level's definition.
	SaveDefinition(ctx context.Context, def *models.Definition) error

	// GetDefinition returns a level's definition, or sentinel.ErrNotFound.
	GetDefinition(ctx context.Context, level id.TrancheLevel) (*models.Definition, error)

	// ListDefinitions returns all definitions, ordered by level.
	ListDefinitions(ctx context.Context) ([]*models.Definition, error)

	// Assign overwrites the participant's level. No history is retained.
	Assign(ctx context.Context, participant id.ParticipantID, level id.TrancheLevel) error

	// LevelOf returns the participant's level, or sentinel.ErrNotFound when
	// the participant has never been assigned.
	LevelOf(ctx context.Context, participant id.ParticipantID) (id.TrancheLevel, error)
}

// AuditPublisher emits audit events for registry mutations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
