// Package service implements the certificate issuer. Issuance is the only
// way a certificate comes into existence, and ids must be minted in strict
// ascending sequence with no gaps.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"tranchor/internal/certificate/metrics"
	"tranchor/internal/certificate/models"
	"tranchor/internal/certificate/ports"
	id "tranchor/pkg/domain"
	dErrors "tranchor/pkg/domain-errors"
	"tranchor/pkg/platform/audit"
	"tranchor/pkg/platform/sentinel"
	"tranchor/pkg/requestcontext"
)

type (
	Store          = ports.CertificateStore
	Minter         = ports.Minter
	AuditPublisher = ports.AuditPublisher
)

// Issuer issues certificates in strict id sequence and credits minted supply
// to the custodian.
type Issuer struct {
	store          Store
	minter         Minter
	custodian      id.ParticipantID
	auditPublisher AuditPublisher
	logger         *slog.Logger
	metrics        *metrics.Metrics

	// issueMu serializes issuance so the sequence check and the create are
	// one atomic step.
	issueMu sync.Mutex
}

type Option func(*Issuer)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Issuer) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Issuer) { s.auditPublisher = publisher }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Issuer) { s.metrics = m }
}

func New(store Store, minter Minter, custodian id.ParticipantID, opts ...Option) (*Issuer, error) {
	if store == nil {
		return nil, fmt.Errorf("certificate store is required")
	}
	if minter == nil {
		return nil, fmt.Errorf("minter is required")
	}
	if custodian.IsZero() {
		return nil, fmt.Errorf("custodian is required")
	}

	svc := &Issuer{store: store, minter: minter, custodian: custodian}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Issue mints amount units of certificate certID to the custodian.
//
// Sequencing invariants:
//   - certID must be positive
//   - certID must be strictly greater than the current maximum issued id
//   - the immediately preceding id must already exist (except for id 1)
func (s *Issuer) Issue(ctx context.Context, certID id.CertificateID, amount uint64, metadata string) (*models.Certificate, error) {
	if !certID.Valid() {
		return nil, dErrors.New(dErrors.CodeInvalidID, "certificate id must be positive")
	}
	if amount == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "issuance amount must be positive")
	}

	s.issueMu.Lock()
	defer s.issueMu.Unlock()

	maxID, err := s.store.MaxID(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "read max certificate id")
	}
	if certID <= maxID {
		return nil, dErrors.Newf(dErrors.CodeSequenceViolation,
			"certificate id %d is not greater than current maximum %d", certID, maxID)
	}

	if certID > 1 {
		exists, err := s.store.Exists(ctx, certID.Pred())
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "check predecessor certificate")
		}
		if !exists {
			if s.metrics != nil {
				s.metrics.RecordSequenceViolation()
			}
			return nil, dErrors.Newf(dErrors.CodeSequenceViolation,
				"certificate %d does not exist", certID.Pred())
		}
	}

	cert := &models.Certificate{
		ID:          certID,
		TotalSupply: amount,
		Metadata:    metadata,
		IssuedAt:    requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, cert); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Newf(dErrors.CodeSequenceViolation,
				"certificate %d already exists", certID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create certificate")
	}

	if err := s.minter.Mint(ctx, s.custodian, certID, amount); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "credit custodian holdings")
	}

	if s.metrics != nil {
		s.metrics.RecordIssued(uint64(certID), amount)
	}
	s.logAudit(ctx, cert)
	return cert, nil
}

// Get returns an issued certificate.
func (s *Issuer) Get(ctx context.Context, certID id.CertificateID) (*models.Certificate, error) {
	cert, err := s.store.Get(ctx, certID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "certificate %d not found", certID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "get certificate")
	}
	return cert, nil
}

// List returns all issued certificates ordered by id.
func (s *Issuer) List(ctx context.Context) ([]*models.Certificate, error) {
	certs, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list certificates")
	}
	return certs, nil
}

// MaxID returns the greatest issued certificate id.
func (s *Issuer) MaxID(ctx context.Context) (id.CertificateID, error) {
	maxID, err := s.store.MaxID(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "read max certificate id")
	}
	return maxID, nil
}

func (s *Issuer) logAudit(ctx context.Context, cert *models.Certificate) {
	event := audit.Event{
		Category:      audit.CategoryCompliance,
		Action:        audit.EventCertificateIssued,
		Participant:   s.custodian,
		CertificateID: cert.ID,
		Amount:        cert.TotalSupply,
		RequestID:     requestcontext.RequestID(ctx),
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(event.Action),
			"certificate_id", cert.ID,
			"amount", cert.TotalSupply,
			"custodian", s.custodian,
			"request_id", event.RequestID,
			"log_type", "audit",
		)
	}
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "event", event.Action, "error", err)
	}
}
