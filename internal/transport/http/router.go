package httptransport

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MandalaChain/E-Certificate/internal/platform/metrics"
	"github.com/MandalaChain/E-Certificate/internal/platform/middleware"
)

// RouterConfig carries the cross-cutting pieces the router wires around the
// handlers.
type RouterConfig struct {
	Validator middleware.IdentityValidator
	Metrics   *metrics.Metrics
	Registry  *prometheus.Registry
}

// NewRouter mounts the full HTTP surface. Mutating certificate, category and
// role endpoints sit behind bearer auth; verification, reads and the relay
// endpoint are open. The relay carries its own proof of identity.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	if cfg.Metrics != nil {
		r.Use(durationMiddleware(cfg.Metrics))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		// Open surface: lookups, verification and the signed relay.
		r.Post("/certificates/verify", h.handleVerify)
		r.Get("/certificates/{hash}", h.handleGetRecord)
		r.Get("/certificates/{hash}/issued-at", h.handleGetIssuedAt)
		r.Get("/certificates/{hash}/audit", h.handleAuditTrail)
		r.Post("/relay/execute", h.handleRelayExecute)
		r.Get("/relay/nonce", h.handleRelayNonce)

		// Gated surface: the services enforce roles, auth only establishes
		// who is calling.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(cfg.Validator, h.logger))
			r.Post("/certificates", h.handleIssue)
			r.Post("/certificates/redeem", h.handleRedeem)
			r.Post("/certificates/transfer", h.handleTransfer)
			r.Put("/certificates/ref", h.handleSetExternalRef)
			r.Put("/certificates/deadline", h.handleExtendDeadline)
			r.Post("/categories", h.handleApproveCategory)
			r.Post("/roles/grant", h.handleGrantRole)
			r.Post("/roles/revoke", h.handleRevokeRole)
			r.Get("/roles", h.handleGetRole)
		})
	})

	return r
}

func durationMiddleware(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			m.HTTPDuration.WithLabelValues(route, strconv.Itoa(ww.Status())).
				Observe(time.Since(start).Seconds())
		})
	}
}
