// Package ports defines shared interfaces for the certificate module.
package ports

import (
	"context"

	"tranchor/internal/certificate/models"
	id "tranchor/pkg/domain"
	"tranchor/pkg/platform/audit"
)

// CertificateStore persists certificate existence, supply, and the running
// maximum issued id.
type CertificateStore interface {
	// Create records a new certificate. Returns sentinel.ErrConflict when the
	// id already exists.
	Create(ctx context.Context, cert *models.Certificate) error

	// Get returns a certificate, or sentinel.ErrNotFound.
	Get(ctx context.Context, certID id.CertificateID) (*models.Certificate, error)

	// Exists reports whether the certificate was ever issued.
	Exists(ctx context.Context, certID id.CertificateID) (bool, error)

	// MaxID returns the greatest issued id, zero when nothing was issued.
	MaxID(ctx context.Context) (id.CertificateID, error)

	// DecrementSupply reduces a certificate's total supply. Called by the
	// ledger on retirement; returns sentinel.ErrInvalidState when the
	// decrement would underflow.
	DecrementSupply(ctx context.Context, certID id.CertificateID, amount uint64) error

	// List returns all certificates ordered by id.
	List(ctx context.Context) ([]*models.Certificate, error)
}

// Minter credits freshly issued supply to the custodian's holdings.
type Minter interface {
	Mint(ctx context.Context, recipient id.ParticipantID, certID id.CertificateID, amount uint64) error
}

// AuditPublisher emits audit events for issuance.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
