package server

import (
	"log/slog"
	"net/http"

	"tranchor/internal/lifecycle"
	"tranchor/internal/platform/middleware"
	"tranchor/pkg/platform/httputil"
	"tranchor/pkg/requestcontext"
)

type lifecycleHandler struct {
	svc    *lifecycle.Service
	logger *slog.Logger
}

type pauseRequest struct {
	Reason string `json:"reason"`
}

func (h *lifecycleHandler) Pause(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[pauseRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}

	actor := requestcontext.ParticipantID(ctx).String()
	if err := h.svc.Pause(ctx, actor, req.Reason); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.svc.Status(ctx))
}

func (h *lifecycleHandler) Resume(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := requestcontext.ParticipantID(ctx).String()
	if err := h.svc.Resume(ctx, actor); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.svc.Status(ctx))
}

func (h *lifecycleHandler) Status(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.svc.Status(r.Context()))
}
