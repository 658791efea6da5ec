// Package ledger tracks per-participant certificate holdings and applies
// every movement of units. State-mutating entry points are serialized by a
// single engine lock so guard decisions are always made against settled
// balances.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	id "tranchor/pkg/domain"
	domainerrors "tranchor/pkg/domain-errors"
	"tranchor/pkg/platform/audit"
	"tranchor/pkg/platform/sentinel"
	"tranchor/pkg/requestcontext"
)

type Service struct {
	store  HoldingsStore
	guard  MovementGuard
	supply SupplyReducer

	pauser         Pauser
	auditPublisher AuditPublisher
	logger         *slog.Logger

	engineMu sync.Mutex
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) { s.auditPublisher = p }
}

func WithPauser(p Pauser) Option {
	return func(s *Service) { s.pauser = p }
}

func New(store HoldingsStore, guard MovementGuard, supply SupplyReducer, opts ...Option) *Service {
	s := &Service{
		store:  store,
		guard:  guard,
		supply: supply,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mint credits newly issued units to a recipient. Callers are trusted; no
// entitlement check applies to issuance.
func (s *Service) Mint(ctx context.Context, recipient id.ParticipantID, certID id.CertificateID, amount uint64) error {
	s.engineMu.Lock()
	defer s.engineMu.Unlock()

	if err := s.ensureActive(ctx); err != nil {
		return err
	}
	return s.store.Credit(ctx, recipient, certID, amount)
}

// Transfer moves units between participants. The sender is the guard
// subject and the configured boundary rule applies.
func (s *Service) Transfer(ctx context.Context, from, to id.ParticipantID, certID id.CertificateID, amount uint64) error {
	s.engineMu.Lock()
	defer s.engineMu.Unlock()

	if err := s.ensureActive(ctx); err != nil {
		return err
	}
	if _, err := s.guard.Check(ctx, from, certID, amount); err != nil {
		return err
	}
	if amount == 0 {
		return nil
	}
	if err := s.store.ApplyBatch(ctx, from, to, []Pair{{CertificateID: certID, Amount: amount}}); err != nil {
		return mapStoreErr(err)
	}

	s.audit(ctx, audit.Event{
		Category:      audit.CategoryCompliance,
		Participant:   from,
		CertificateID: certID,
		Action:        audit.EventTransferExecuted,
		Amount:        amount,
		Decision:      "allowed",
	})
	return nil
}

// BatchTransfer moves several certificate amounts from one participant to
// another in a single atomic step. Every element is validated against the
// guard subject with the inclusive boundary before anything moves; this is
// the path batch redemption settles through.
func (s *Service) BatchTransfer(ctx context.Context, from, to, subject id.ParticipantID, pairs []Pair) error {
	s.engineMu.Lock()
	defer s.engineMu.Unlock()

	if err := s.ensureActive(ctx); err != nil {
		return err
	}
	for _, p := range pairs {
		if _, err := s.guard.CheckInclusive(ctx, subject, p.CertificateID, p.Amount); err != nil {
			return err
		}
	}

	moved := make([]Pair, 0, len(pairs))
	for _, p := range pairs {
		if p.Amount > 0 {
			moved = append(moved, p)
		}
	}
	if len(moved) == 0 {
		return nil
	}
	if err := s.store.ApplyBatch(ctx, from, to, moved); err != nil {
		return mapStoreErr(err)
	}
	return nil
}

// Retire debits units from a holder and shrinks the certificate's total
// supply by the same amount.
func (s *Service) Retire(ctx context.Context, holder id.ParticipantID, certID id.CertificateID, amount uint64) error {
	s.engineMu.Lock()
	defer s.engineMu.Unlock()

	if err := s.ensureActive(ctx); err != nil {
		return err
	}
	if _, err := s.guard.Check(ctx, holder, certID, amount); err != nil {
		return err
	}
	if amount == 0 {
		return nil
	}
	if err := s.store.Debit(ctx, holder, certID, amount); err != nil {
		return mapStoreErr(err)
	}
	if err := s.supply.DecrementSupply(ctx, certID, amount); err != nil {
		// Restore the holding so supply and holdings stay consistent.
		if creditErr := s.store.Credit(ctx, holder, certID, amount); creditErr != nil {
			s.logger.ErrorContext(ctx, "retire rollback failed",
				"participant", holder, "certificate_id", certID, "error", creditErr)
		}
		return mapStoreErr(err)
	}

	s.audit(ctx, audit.Event{
		Category:      audit.CategoryCompliance,
		Participant:   holder,
		CertificateID: certID,
		Action:        audit.EventCertificateRetired,
		Amount:        amount,
		Decision:      "allowed",
	})
	return nil
}

// HoldingOf returns a participant's balance for one certificate.
func (s *Service) HoldingOf(ctx context.Context, participant id.ParticipantID, certID id.CertificateID) (uint64, error) {
	return s.store.Holding(ctx, participant, certID)
}

// HoldingsOf returns all nonzero balances of a participant.
func (s *Service) HoldingsOf(ctx context.Context, participant id.ParticipantID) (map[id.CertificateID]uint64, error) {
	return s.store.HoldingsOf(ctx, participant)
}

func (s *Service) ensureActive(ctx context.Context) error {
	if s.pauser == nil {
		return nil
	}
	if paused, reason := s.pauser.IsPaused(ctx); paused {
		return domainerrors.Newf(domainerrors.CodeSuspended, "engine is paused: %s", reason)
	}
	return nil
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

func mapStoreErr(err error) error {
	if errors.Is(err, sentinel.ErrInvalidState) {
		return domainerrors.Wrap(err, domainerrors.CodeInsufficientHolding, "insufficient holding")
	}
	return err
}
