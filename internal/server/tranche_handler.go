package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tranchor/internal/platform/middleware"
	"tranchor/internal/tranche/models"
	trancheservice "tranchor/internal/tranche/service"
	id "tranchor/pkg/domain"
	"tranchor/pkg/platform/httputil"
)

type trancheHandler struct {
	registry *trancheservice.Registry
	logger   *slog.Logger
}

type defineTrancheRequest struct {
	Level uint32            `json:"level"`
	IDs   []uint64          `json:"certificate_ids"`
	Caps  map[uint64]uint64 `json:"caps"`
}

type trancheResponse struct {
	Level uint32            `json:"level"`
	IDs   []uint64          `json:"certificate_ids"`
	Caps  map[uint64]uint64 `json:"caps"`
}

func toTrancheResponse(def *models.Definition) trancheResponse {
	out := trancheResponse{
		Level: uint32(def.Level),
		IDs:   make([]uint64, 0, len(def.IDs)),
		Caps:  make(map[uint64]uint64, len(def.Caps)),
	}
	for _, certID := range def.IDs {
		out.IDs = append(out.IDs, uint64(certID))
	}
	for certID, amount := range def.Caps {
		out.Caps[uint64(certID)] = amount
	}
	return out
}

func (h *trancheHandler) Define(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[defineTrancheRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}

	ids := make([]id.CertificateID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		ids = append(ids, id.CertificateID(raw))
	}
	caps := make(map[id.CertificateID]uint64, len(req.Caps))
	for raw, amount := range req.Caps {
		caps[id.CertificateID(raw)] = amount
	}

	if err := h.registry.Define(ctx, id.TrancheLevel(req.Level), ids, caps); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"level": req.Level})
}

type assignRequest struct {
	Participant string `json:"participant"`
	Level       uint32 `json:"level"`
}

func (h *trancheHandler) Assign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[assignRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	if req.Participant == "" {
		httputil.WriteError(w, validationErr("participant is required"))
		return
	}

	if err := h.registry.Assign(ctx, id.ParticipantID(req.Participant), id.TrancheLevel(req.Level)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"participant": req.Participant,
		"level":       req.Level,
	})
}

func (h *trancheHandler) Get(w http.ResponseWriter, r *http.Request) {
	level, err := id.ParseTrancheLevel(chi.URLParam(r, "level"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	def, err := h.registry.Definition(r.Context(), level)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toTrancheResponse(def))
}

func (h *trancheHandler) List(w http.ResponseWriter, r *http.Request) {
	defs, err := h.registry.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	out := make([]trancheResponse, 0, len(defs))
	for _, def := range defs {
		out = append(out, toTrancheResponse(def))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"tranches": out})
}
