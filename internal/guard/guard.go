// Package guard intercepts every certificate movement and enforces the
// sender's dynamically computed entitlement for the moved id.
package guard

import (
	"context"
	"log/slog"

	"tranchor/internal/tranche/models"
	id "tranchor/pkg/domain"
	dErrors "tranchor/pkg/domain-errors"
	"tranchor/pkg/platform/audit"
	"tranchor/pkg/requestcontext"
)

// Registry resolves a movement subject to their tranche definition.
type Registry interface {
	DefinitionFor(ctx context.Context, participant id.ParticipantID) (*models.Definition, error)
}

// CapComputer derives the dynamic entitlement for a requested amount.
type CapComputer interface {
	ComputeCap(ctx context.Context, participant id.ParticipantID, requestedAmount uint64) (uint64, error)
}

// AuditPublisher records blocked movements.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Guard enforces entitlement caps on certificate movements.
//
// The default boundary is strict: the full allowed amount itself is not
// transferable, only strictly less. WithInclusiveBoundary flips this;
// redemption batches always run inclusive.
type Guard struct {
	registry       Registry
	calc           CapComputer
	inclusive      bool
	auditPublisher AuditPublisher
	logger         *slog.Logger
}

type Option func(*Guard)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) { g.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(g *Guard) { g.auditPublisher = publisher }
}

// WithInclusiveBoundary allows moving the full allowed amount.
func WithInclusiveBoundary() Option {
	return func(g *Guard) { g.inclusive = true }
}

func New(registry Registry, calc CapComputer, opts ...Option) *Guard {
	g := &Guard{registry: registry, calc: calc}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Check validates a movement of amount units of certID by subject using the
// guard's configured boundary. Returns the allowed amount on success so
// callers can surface it.
func (g *Guard) Check(ctx context.Context, subject id.ParticipantID, certID id.CertificateID, amount uint64) (uint64, error) {
	return g.check(ctx, subject, certID, amount, g.inclusive)
}

// CheckInclusive validates a movement allowing the full computed entitlement.
// The redemption engine moves exactly the computed amounts, so its batch
// elements run through this path.
func (g *Guard) CheckInclusive(ctx context.Context, subject id.ParticipantID, certID id.CertificateID, amount uint64) (uint64, error) {
	return g.check(ctx, subject, certID, amount, true)
}

// Allowance returns the subject's current entitlement for certID without
// validating any amount. Zero when the subject's tranche does not include
// the id.
func (g *Guard) Allowance(ctx context.Context, subject id.ParticipantID, certID id.CertificateID) (uint64, error) {
	def, err := g.registry.DefinitionFor(ctx, subject)
	if err != nil {
		return 0, err
	}
	if def == nil || !def.Includes(certID) {
		return 0, nil
	}
	return g.calc.ComputeCap(ctx, subject, def.CapFor(certID))
}

func (g *Guard) check(ctx context.Context, subject id.ParticipantID, certID id.CertificateID, amount uint64, inclusive bool) (uint64, error) {
	// Zero-amount movements are vacuous and pass without a tranche lookup.
	if amount == 0 {
		return 0, nil
	}

	def, err := g.registry.DefinitionFor(ctx, subject)
	if err != nil {
		return 0, err
	}
	if def == nil || !def.Includes(certID) {
		err := dErrors.Newf(dErrors.CodeNotEntitled,
			"participant %s is not entitled to certificate %d", subject, certID)
		g.auditBlocked(ctx, subject, certID, amount, err)
		return 0, err
	}

	allowed, err := g.calc.ComputeCap(ctx, subject, def.CapFor(certID))
	if err != nil {
		return 0, err
	}

	exceeds := amount >= allowed
	if inclusive {
		exceeds = amount > allowed
	}
	if exceeds {
		err := dErrors.Newf(dErrors.CodeExceedsEntitlement,
			"amount %d exceeds allowed %d for certificate %d", amount, allowed, certID)
		g.auditBlocked(ctx, subject, certID, amount, err)
		return allowed, err
	}
	return allowed, nil
}

func (g *Guard) auditBlocked(ctx context.Context, subject id.ParticipantID, certID id.CertificateID, amount uint64, cause error) {
	event := audit.Event{
		Category:      audit.CategorySecurity,
		Action:        audit.EventTransferBlocked,
		Participant:   subject,
		CertificateID: certID,
		Amount:        amount,
		Reason:        string(dErrors.CodeOf(cause)),
		RequestID:     requestcontext.RequestID(ctx),
	}
	if g.logger != nil {
		g.logger.WarnContext(ctx, string(event.Action),
			"participant", subject,
			"certificate_id", certID,
			"amount", amount,
			"reason", event.Reason,
			"request_id", event.RequestID,
			"log_type", "audit",
		)
	}
	if g.auditPublisher == nil {
		return
	}
	if err := g.auditPublisher.Emit(ctx, event); err != nil && g.logger != nil {
		g.logger.WarnContext(ctx, "failed to emit audit event", "event", event.Action, "error", err)
	}
}
