package server

import (
	"log/slog"
	"net/http"
	"time"

	"tranchor/internal/platform/auth"
	"tranchor/internal/platform/middleware"
	"tranchor/pkg/platform/httputil"
)

const (
	adminTokenTTL       = 15 * time.Minute
	participantTokenTTL = time.Hour
)

type authHandler struct {
	auth   *auth.Service
	logger *slog.Logger
}

type exchangeKeyRequest struct {
	AdminKey string `json:"admin_key"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func (h *authHandler) ExchangeAdminKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[exchangeKeyRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}

	token, err := h.auth.ExchangeAdminKey(req.AdminKey, adminTokenTTL)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(adminTokenTTL.Seconds()),
	})
}

type participantTokenRequest struct {
	Participant string `json:"participant"`
}

func (h *authHandler) IssueParticipantToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[participantTokenRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	if req.Participant == "" {
		httputil.WriteError(w, validationErr("participant is required"))
		return
	}

	token, err := h.auth.Generate(req.Participant, auth.RoleParticipant, participantTokenTTL)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(participantTokenTTL.Seconds()),
	})
}
