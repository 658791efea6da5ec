package server

import (
	"log/slog"
	"net/http"

	"tranchor/internal/ledger"
	"tranchor/internal/platform/middleware"
	id "tranchor/pkg/domain"
	"tranchor/pkg/platform/httputil"
	"tranchor/pkg/requestcontext"
)

type transferHandler struct {
	ledger *ledger.Service
	logger *slog.Logger
}

type transferRequest struct {
	To            string `json:"to"`
	CertificateID uint64 `json:"certificate_id"`
	Amount        uint64 `json:"amount"`
}

// Transfer moves units out of the authenticated participant's holding. The
// sender is always the caller; the entitlement guard decides whether the
// amount may move.
func (h *transferHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[transferRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}

	from := requestcontext.ParticipantID(ctx)
	if req.To == "" {
		httputil.WriteError(w, validationErr("to is required"))
		return
	}
	certID := id.CertificateID(req.CertificateID)
	if !certID.Valid() {
		httputil.WriteError(w, validationErr("certificate_id must be positive"))
		return
	}

	if err := h.ledger.Transfer(ctx, from, id.ParticipantID(req.To), certID, req.Amount); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"from":           from,
		"to":             req.To,
		"certificate_id": req.CertificateID,
		"amount":         req.Amount,
	})
}

type retireRequest struct {
	Holder        string `json:"holder"`
	CertificateID uint64 `json:"certificate_id"`
	Amount        uint64 `json:"amount"`
}

// Retire permanently removes units from circulation. Admin-only; the holder
// is named explicitly rather than inferred from the token.
func (h *transferHandler) Retire(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[retireRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	if req.Holder == "" {
		httputil.WriteError(w, validationErr("holder is required"))
		return
	}
	certID := id.CertificateID(req.CertificateID)
	if !certID.Valid() {
		httputil.WriteError(w, validationErr("certificate_id must be positive"))
		return
	}

	if err := h.ledger.Retire(ctx, id.ParticipantID(req.Holder), certID, req.Amount); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"holder":         req.Holder,
		"certificate_id": req.CertificateID,
		"amount":         req.Amount,
	})
}
