package server

import (
	"log/slog"
	"net/http"
	"strconv"

	"tranchor/internal/entitlement/adapters/staticpool"
	"tranchor/internal/entitlement/ports"
	"tranchor/internal/platform/middleware"
	id "tranchor/pkg/domain"
	"tranchor/pkg/platform/httputil"
	"tranchor/pkg/requestcontext"
)

// poolHandler manages the balance source the entitlement calculator reads
// from. Writes go to the authoritative static pool; reads go through the
// configured adapter so a cache layer stays on the read path.
type poolHandler struct {
	pool    *staticpool.Adapter
	adapter ports.AdapterPort
	logger  *slog.Logger
}

type setPoolAddressRequest struct {
	Address string `json:"address"`
}

func (h *poolHandler) SetAddress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[setPoolAddressRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	if req.Address == "" {
		httputil.WriteError(w, validationErr("address is required"))
		return
	}

	previous, err := h.adapter.SetPoolAddress(ctx, req.Address)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"address":  req.Address,
		"previous": previous,
	})
}

type setPoolBalanceRequest struct {
	Participant string `json:"participant"`
	Balance     uint64 `json:"balance"`
}

func (h *poolHandler) SetBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[setPoolBalanceRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	if req.Participant == "" {
		httputil.WriteError(w, validationErr("participant is required"))
		return
	}

	h.pool.SetBalance(id.ParticipantID(req.Participant), req.Balance)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"participant": req.Participant,
		"balance":     req.Balance,
	})
}

type setPoolTotalRequest struct {
	Total uint64 `json:"total"`
}

func (h *poolHandler) SetTotal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[setPoolTotalRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}

	h.pool.SetTotal(req.Total)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"total": req.Total})
}

func (h *poolHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address, err := h.adapter.GetPoolAddress(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	total, err := h.adapter.GetEntireBalance(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"address": address,
		"total":   total,
	})
}

// Share reports the caller's pool share scaled by the requested max amount.
func (h *poolHandler) Share(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	maxAmount := uint64(10_000)
	if raw := r.URL.Query().Get("max"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || parsed == 0 {
			httputil.WriteError(w, validationErr("max must be a positive integer"))
			return
		}
		maxAmount = parsed
	}

	participant := requestcontext.ParticipantID(ctx)
	share, err := h.adapter.GetPoolShare(ctx, participant, maxAmount)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"participant": participant,
		"max":         maxAmount,
		"share":       share,
	})
}
