package audit

import (
	"context"
	"time"

	id "tranchor/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance:
	// issuance, redemption, tranche definition changes.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring:
	// blocked transfers, suspension toggles, admin key failures.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for debugging and operational
	// visibility: routine transfers, adapter cache refreshes.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID            string
	Category      EventCategory
	Timestamp     time.Time
	Participant   id.ParticipantID
	CertificateID id.CertificateID
	Level         id.TrancheLevel
	Action        AuditEvent
	Amount        uint64
	Decision      string
	Reason        string
	// RequestID is the correlation id from the HTTP request context.
	RequestID string
	// ActorID tracks who performed the action when different from
	// Participant. Used for admin operations performed on a participant's
	// behalf (assignment, clawback).
	ActorID string
}

type AuditEvent string

const (
	// Issuance events
	EventCertificateIssued AuditEvent = "certificate_issued"

	// Movement events
	EventTransferExecuted   AuditEvent = "transfer_executed"
	EventTransferBlocked    AuditEvent = "transfer_blocked"
	EventCertificateRetired AuditEvent = "certificate_retired"

	// Redemption events
	EventRedemptionExecuted AuditEvent = "redemption_executed"
	EventRedemptionEmpty    AuditEvent = "redemption_empty"

	// Registry events
	EventTrancheDefined      AuditEvent = "tranche_defined"
	EventParticipantAssigned AuditEvent = "participant_assigned"

	// Lifecycle events
	EventEnginePaused  AuditEvent = "engine_paused"
	EventEngineResumed AuditEvent = "engine_resumed"
)

// Store persists audit events. Implementations must be safe for concurrent
// use; Append is called from the async publisher worker.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByParticipant(ctx context.Context, participant id.ParticipantID) ([]Event, error)
}
