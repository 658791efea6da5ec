package server

import (
	"log/slog"
	"net/http"

	"tranchor/internal/platform/middleware"
	"tranchor/internal/redemption"
	id "tranchor/pkg/domain"
	"tranchor/pkg/platform/httputil"
	"tranchor/pkg/requestcontext"
)

type redemptionHandler struct {
	svc    *redemption.Service
	logger *slog.Logger
}

type redeemRequest struct {
	CertificateIDs []uint64 `json:"certificate_ids"`
}

func (h *redemptionHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[redeemRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}

	requested := make([]id.CertificateID, 0, len(req.CertificateIDs))
	for _, raw := range req.CertificateIDs {
		requested = append(requested, id.CertificateID(raw))
	}

	receipt, err := h.svc.Redeem(ctx, requestcontext.ParticipantID(ctx), requested)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, receipt)
}
