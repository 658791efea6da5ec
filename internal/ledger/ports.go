package ledger

import (
	"context"

	id "tranchor/pkg/domain"
	"tranchor/pkg/platform/audit"
)

// Pair is one (certificate, amount) element of a movement.
type Pair struct {
	CertificateID id.CertificateID
	Amount        uint64
}

// HoldingsStore persists per-(participant, certificate) balances. The
// ledger service serializes all mutations, so implementations only need to
// be internally consistent, not transactional across calls.
type HoldingsStore interface {
	// Holding returns the participant's balance for one certificate.
	Holding(ctx context.Context, participant id.ParticipantID, certID id.CertificateID) (uint64, error)

	// HoldingsOf returns all nonzero balances of a participant.
	HoldingsOf(ctx context.Context, participant id.ParticipantID) (map[id.CertificateID]uint64, error)

	// Credit increases a balance.
	Credit(ctx context.Context, participant id.ParticipantID, certID id.CertificateID, amount uint64) error

	// Debit decreases a balance. Returns sentinel.ErrInvalidState when the
	// balance is insufficient.
	Debit(ctx context.Context, participant id.ParticipantID, certID id.CertificateID, amount uint64) error

	// ApplyBatch atomically debits from and credits to for every pair.
	ApplyBatch(ctx context.Context, from, to id.ParticipantID, pairs []Pair) error
}

// MovementGuard validates one movement element before it is applied.
type MovementGuard interface {
	Check(ctx context.Context, subject id.ParticipantID, certID id.CertificateID, amount uint64) (uint64, error)
	CheckInclusive(ctx context.Context, subject id.ParticipantID, certID id.CertificateID, amount uint64) (uint64, error)
}

// SupplyReducer shrinks a certificate's total supply when units are retired.
type SupplyReducer interface {
	DecrementSupply(ctx context.Context, certID id.CertificateID, amount uint64) error
}

// Pauser reports the engine's suspension state.
type Pauser interface {
	IsPaused(ctx context.Context) (bool, string)
}

// AuditPublisher emits audit events for executed movements.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
