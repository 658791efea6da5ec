package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"tranchor/internal/guard"
	"tranchor/internal/ledger"
	id "tranchor/pkg/domain"
	"tranchor/pkg/platform/audit/publisher"
	"tranchor/pkg/platform/httputil"
	"tranchor/pkg/requestcontext"
)

type participantHandler struct {
	ledger *ledger.Service
	guard  *guard.Guard
	audit  *publisher.Publisher
	logger *slog.Logger
}

type holdingResponse struct {
	CertificateID uint64 `json:"certificate_id"`
	Balance       uint64 `json:"balance"`
}

func (h *participantHandler) Holdings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	participant := requestcontext.ParticipantID(ctx)

	holdings, err := h.ledger.HoldingsOf(ctx, participant)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	out := make([]holdingResponse, 0, len(holdings))
	for certID, balance := range holdings {
		out = append(out, holdingResponse{CertificateID: uint64(certID), Balance: balance})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"participant": participant,
		"holdings":    out,
	})
}

func (h *participantHandler) Allowance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	certID, err := id.ParseCertificateID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	participant := requestcontext.ParticipantID(ctx)
	allowed, err := h.guard.Allowance(ctx, participant, certID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"participant":    participant,
		"certificate_id": uint64(certID),
		"allowance":      allowed,
	})
}

type auditEventResponse struct {
	Category      string    `json:"category"`
	Action        string    `json:"action"`
	Timestamp     time.Time `json:"timestamp"`
	CertificateID uint64    `json:"certificate_id,omitempty"`
	Amount        uint64    `json:"amount,omitempty"`
	Decision      string    `json:"decision,omitempty"`
	Reason        string    `json:"reason,omitempty"`
}

func (h *participantHandler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	participant := requestcontext.ParticipantID(ctx)

	events, err := h.audit.List(ctx, participant)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	out := make([]auditEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, auditEventResponse{
			Category:      string(e.Category),
			Action:        string(e.Action),
			Timestamp:     e.Timestamp,
			CertificateID: uint64(e.CertificateID),
			Amount:        e.Amount,
			Decision:      e.Decision,
			Reason:        e.Reason,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"participant": participant,
		"events":      out,
	})
}
