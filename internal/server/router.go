// Package server wires the engine's services into the HTTP API. Handlers
// stay thin: decode, call a service, translate the error envelope.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tranchor/internal/certificate/service"
	"tranchor/internal/entitlement/adapters/staticpool"
	"tranchor/internal/entitlement/ports"
	"tranchor/internal/guard"
	"tranchor/internal/ledger"
	"tranchor/internal/lifecycle"
	"tranchor/internal/platform/auth"
	"tranchor/internal/platform/metrics"
	"tranchor/internal/platform/middleware"
	"tranchor/internal/redemption"
	trancheservice "tranchor/internal/tranche/service"
	"tranchor/pkg/platform/audit/publisher"
)

// Deps are the wired services the router exposes.
type Deps struct {
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
	Auth       *auth.Service
	Issuer     *service.Issuer
	Registry   *trancheservice.Registry
	Ledger     *ledger.Service
	Guard      *guard.Guard
	Redemption *redemption.Service
	Lifecycle  *lifecycle.Service
	Audit      *publisher.Publisher

	// Pool is the authoritative balance source; Adapter is the read path,
	// possibly wrapped in a cache.
	Pool    *staticpool.Adapter
	Adapter ports.AdapterPort

	// Ready reports infrastructure health for the readiness probe. Nil means
	// always ready.
	Ready func() error
}

func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.Logger(d.Logger))
	if d.Metrics != nil {
		r.Use(middleware.LatencyMiddleware(d.Metrics))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if d.Ready != nil {
			if err := d.Ready(); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	authH := &authHandler{auth: d.Auth, logger: d.Logger}
	certH := &certificateHandler{issuer: d.Issuer, logger: d.Logger}
	trancheH := &trancheHandler{registry: d.Registry, logger: d.Logger}
	transferH := &transferHandler{ledger: d.Ledger, logger: d.Logger}
	redeemH := &redemptionHandler{svc: d.Redemption, logger: d.Logger}
	lifecycleH := &lifecycleHandler{svc: d.Lifecycle, logger: d.Logger}
	participantH := &participantHandler{ledger: d.Ledger, guard: d.Guard, audit: d.Audit, logger: d.Logger}
	poolH := &poolHandler{pool: d.Pool, adapter: d.Adapter, logger: d.Logger}

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)

		r.Post("/auth/token", authH.ExchangeAdminKey)

		// Admin surface: issuance, registry configuration, lifecycle.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(d.Auth, d.Logger))

			r.Post("/auth/participant-tokens", authH.IssueParticipantToken)
			r.Post("/certificates", certH.Issue)
			r.Post("/tranches", trancheH.Define)
			r.Put("/tranches/assignments", trancheH.Assign)
			r.Post("/lifecycle/pause", lifecycleH.Pause)
			r.Post("/lifecycle/resume", lifecycleH.Resume)
			r.Post("/retirements", transferH.Retire)
			r.Put("/pool/address", poolH.SetAddress)
			r.Put("/pool/total", poolH.SetTotal)
			r.Post("/pool/balances", poolH.SetBalance)
		})

		// Participant surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(d.Auth, d.Logger))

			r.Get("/certificates", certH.List)
			r.Get("/certificates/{id}", certH.Get)
			r.Get("/tranches", trancheH.List)
			r.Get("/tranches/{level}", trancheH.Get)
			r.Get("/lifecycle", lifecycleH.Status)
			r.Post("/transfers", transferH.Transfer)
			r.Post("/redemptions", redeemH.Redeem)
			r.Get("/pool", poolH.Get)
			r.Get("/participants/me/pool-share", poolH.Share)
			r.Get("/participants/me/holdings", participantH.Holdings)
			r.Get("/participants/me/allowances/{id}", participantH.Allowance)
			r.Get("/participants/me/audit", participantH.AuditTrail)
		})
	})

	return r
}
