// Package redemption settles batches of reward certificates. A caller
// submits the certificate ids it wants to redeem; the service intersects
// them with the caller's tranche, computes the entitled amount for each
// match and settles the whole batch from the custodian in one movement.
package redemption

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"tranchor/internal/ledger"
	"tranchor/internal/tranche/models"
	id "tranchor/pkg/domain"
	domainerrors "tranchor/pkg/domain-errors"
	"tranchor/pkg/platform/audit"
	"tranchor/pkg/requestcontext"
)

// Line is one settled certificate within a receipt.
type Line struct {
	CertificateID id.CertificateID `json:"certificate_id"`
	Amount        uint64           `json:"amount"`
}

// Receipt records the outcome of a redemption request. A request whose ids
// share nothing with the caller's tranche yields an empty receipt, not an
// error.
type Receipt struct {
	Participant id.ParticipantID   `json:"participant"`
	Requested   []id.CertificateID `json:"requested"`
	Lines       []Line             `json:"lines"`
	Total       uint64             `json:"total"`
	RedeemedAt  time.Time          `json:"redeemed_at"`
}

// Empty reports whether nothing was settled.
func (r Receipt) Empty() bool { return len(r.Lines) == 0 }

type Registry interface {
	DefinitionFor(ctx context.Context, participant id.ParticipantID) (*models.Definition, error)
}

type EntitlementSource interface {
	Allowance(ctx context.Context, subject id.ParticipantID, certID id.CertificateID) (uint64, error)
}

type Settler interface {
	BatchTransfer(ctx context.Context, from, to, subject id.ParticipantID, pairs []ledger.Pair) error
}

type Pauser interface {
	IsPaused(ctx context.Context) (bool, string)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	registry  Registry
	guard     EntitlementSource
	settler   Settler
	custodian id.ParticipantID

	pauser         Pauser
	auditPublisher AuditPublisher
	logger         *slog.Logger
	tracer         trace.Tracer
	now            func() time.Time
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

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(registry Registry, guard EntitlementSource, settler Settler, custodian id.ParticipantID, opts ...Option) *Service {
	s := &Service{
		registry:  registry,
		guard:     guard,
		settler:   settler,
		custodian: custodian,
		logger:    slog.Default(),
		tracer:    otel.Tracer("tranchor/redemption"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Redeem settles the entitled amounts for every requested certificate that
// belongs to the caller's tranche. Matches keep the tranche's own ordering
// regardless of request order, and the whole batch settles atomically from
// the custodian to the caller.
func (s *Service) Redeem(ctx context.Context, caller id.ParticipantID, requested []id.CertificateID) (Receipt, error) {
	ctx, span := s.tracer.Start(ctx, "redemption.Redeem", trace.WithAttributes(
		attribute.String("participant", caller.String()),
		attribute.Int("requested_count", len(requested)),
	))
	defer span.End()

	receipt, err := s.redeem(ctx, caller, requested)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(domainerrors.CodeOf(err)))
		return Receipt{}, err
	}
	span.SetAttributes(
		attribute.Int("matched_count", len(receipt.Lines)),
		attribute.Int64("total_amount", int64(receipt.Total)),
	)
	return receipt, nil
}

func (s *Service) redeem(ctx context.Context, caller id.ParticipantID, requested []id.CertificateID) (Receipt, error) {
	for _, certID := range requested {
		if !certID.Valid() {
			return Receipt{}, domainerrors.Newf(domainerrors.CodeInvalidID,
				"certificate id must be positive, got %d", certID)
		}
	}
	if s.pauser != nil {
		if paused, reason := s.pauser.IsPaused(ctx); paused {
			return Receipt{}, domainerrors.Newf(domainerrors.CodeSuspended, "engine is paused: %s", reason)
		}
	}

	receipt := Receipt{
		Participant: caller,
		Requested:   requested,
		RedeemedAt:  s.now().UTC(),
	}

	def, err := s.registry.DefinitionFor(ctx, caller)
	if err != nil {
		return Receipt{}, err
	}
	if def == nil {
		return s.finishEmpty(ctx, receipt)
	}

	wanted := make(map[id.CertificateID]struct{}, len(requested))
	for _, certID := range requested {
		wanted[certID] = struct{}{}
	}

	// The tranche's ordering wins over request order.
	var pairs []ledger.Pair
	for _, certID := range def.IDs {
		if _, ok := wanted[certID]; !ok {
			continue
		}
		amount, err := s.guard.Allowance(ctx, caller, certID)
		if err != nil {
			return Receipt{}, err
		}
		pairs = append(pairs, ledger.Pair{CertificateID: certID, Amount: amount})
	}
	if len(pairs) == 0 {
		return s.finishEmpty(ctx, receipt)
	}

	if err := s.settler.BatchTransfer(ctx, s.custodian, caller, caller, pairs); err != nil {
		return Receipt{}, err
	}

	for _, p := range pairs {
		receipt.Lines = append(receipt.Lines, Line{CertificateID: p.CertificateID, Amount: p.Amount})
		receipt.Total += p.Amount
	}

	redemptionsTotal.WithLabelValues("settled").Inc()
	certificatesRedeemed.Add(float64(len(receipt.Lines)))
	unitsRedeemed.Add(float64(receipt.Total))

	s.logger.InfoContext(ctx, "redemption settled",
		"participant", caller, "lines", len(receipt.Lines), "total", receipt.Total)
	s.audit(ctx, audit.Event{
		Category:    audit.CategoryCompliance,
		Participant: caller,
		Action:      audit.EventRedemptionExecuted,
		Amount:      receipt.Total,
		Decision:    "allowed",
	})
	return receipt, nil
}

func (s *Service) finishEmpty(ctx context.Context, receipt Receipt) (Receipt, error) {
	redemptionsTotal.WithLabelValues("empty").Inc()
	s.logger.InfoContext(ctx, "redemption matched nothing", "participant", receipt.Participant)
	s.audit(ctx, audit.Event{
		Category:    audit.CategoryOperations,
		Participant: receipt.Participant,
		Action:      audit.EventRedemptionEmpty,
		Decision:    "allowed",
	})
	return receipt, nil
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
