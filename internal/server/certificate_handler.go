package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"tranchor/internal/certificate/models"
	"tranchor/internal/certificate/service"
	"tranchor/internal/platform/middleware"
	id "tranchor/pkg/domain"
	domainerrors "tranchor/pkg/domain-errors"
	"tranchor/pkg/platform/httputil"
)

type certificateHandler struct {
	issuer *service.Issuer
	logger *slog.Logger
}

type issueCertificateRequest struct {
	ID       uint64 `json:"id"`
	Amount   uint64 `json:"amount"`
	Metadata string `json:"metadata,omitempty"`
}

type certificateResponse struct {
	ID          uint64    `json:"id"`
	TotalSupply uint64    `json:"total_supply"`
	Metadata    string    `json:"metadata,omitempty"`
	IssuedAt    time.Time `json:"issued_at"`
}

func toCertificateResponse(c *models.Certificate) certificateResponse {
	return certificateResponse{
		ID:          uint64(c.ID),
		TotalSupply: c.TotalSupply,
		Metadata:    c.Metadata,
		IssuedAt:    c.IssuedAt,
	}
}

func (h *certificateHandler) Issue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[issueCertificateRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}

	cert, err := h.issuer.Issue(ctx, id.CertificateID(req.ID), req.Amount, req.Metadata)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toCertificateResponse(cert))
}

func (h *certificateHandler) Get(w http.ResponseWriter, r *http.Request) {
	certID, err := id.ParseCertificateID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	cert, err := h.issuer.Get(r.Context(), certID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCertificateResponse(cert))
}

func (h *certificateHandler) List(w http.ResponseWriter, r *http.Request) {
	certs, err := h.issuer.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	out := make([]certificateResponse, 0, len(certs))
	for _, c := range certs {
		out = append(out, toCertificateResponse(c))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"certificates": out})
}

func validationErr(message string) error {
	return domainerrors.New(domainerrors.CodeValidation, message)
}
