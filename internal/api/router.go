// Package api serves the local JSON control API over the app service.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/pysugar/codex-accounts/internal/app"
	"github.com/pysugar/codex-accounts/internal/metrics"
)

// NewRouter builds the control API. An empty adminPassword disables auth.
func NewRouter(svc *app.Service, m *metrics.Metrics, adminPassword string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(recordRequests(m))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.With(optionalAdminAuth(adminPassword)).Handle("/metrics", m.Handler())

	h := &handlers{svc: svc}
	r.Route("/api", func(r chi.Router) {
		r.Use(optionalAdminAuth(adminPassword))

		r.Get("/state", h.state)
		r.Get("/storage-path", h.storagePath)
		r.Get("/version", h.version)

		// OAuth
		r.Post("/oauth/start", h.startFlow)
		r.Get("/oauth/flows/{id}", h.flowStatus)
		r.Post("/oauth/flows/{id}/callback", h.completeWithCallback)

		// Accounts
		r.Post("/accounts/refresh", h.refreshAll)
		r.Post("/accounts/import", h.importAccounts)
		r.Delete("/accounts/{id}", h.removeAccount)
		r.Post("/accounts/{id}/activate", h.activateAccount)
		r.Post("/accounts/{id}/switch", h.switchAccount)
		r.Post("/accounts/{id}/refresh", h.refreshAccount)
		r.Put("/settings/ide", h.setPreferredIDE)

		// Discovery
		r.Get("/discovery/scan", h.discoveryScan)

		// Proxies
		r.Post("/proxies", h.saveProxy)
		r.Put("/proxies/active", h.setActiveProxy)
		r.Delete("/proxies/{id}", h.deleteProxy)
		r.Post("/proxies/{id}/test", h.testProxy)
	})
	return r
}
