// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/vendorbooking/internal/authz"
	"github.com/tomtom215/vendorbooking/internal/middleware"
	"github.com/tomtom215/vendorbooking/internal/rbac"
)

// LoginPath is exempt from CSRF checks; there is no session yet.
const LoginPath = "/api/v1/auth/login"

// Router wires the handler and middleware into a chi route tree.
type Router struct {
	handler        *Handler
	chiMiddleware  *ChiMiddleware
	gate           *rbac.Middleware
	policyHandlers *authz.PolicyHandlers
}

// NewRouter creates a Router. cfg may be nil for the defaults.
func NewRouter(handler *Handler, cfg *ChiMiddlewareConfig) *Router {
	router := &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(cfg),
		gate:          rbac.NewMiddleware(WriteDeny),
	}
	if handler.enforcer != nil {
		router.policyHandlers = authz.NewPolicyHandlers(handler.enforcer, envelope{})
	}
	return router
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight
	r.Use(chimiddleware.Compress(5, "application/json"))
	r.Use(middleware.PrometheusMetrics)
	if h.perfMon != nil {
		r.Use(h.perfMon.Middleware)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteNotFound(w, r, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
	})

	r.Handle("/metrics", promhttp.Handler())

	// ========================
	// Health Endpoints
	// ========================
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	// ========================
	// Authentication Endpoints
	// ========================
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(h.sessions.Authenticate)
		r.Use(h.csrf.Protect)

		r.With(router.chiMiddleware.RateLimitLogin()).Post("/login", h.Login)
		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(h.sessions.RequireAuth)
			r.Get("/me", h.Me)
			r.Get("/can", h.Can)
		})
	})

	// ========================
	// Console API
	// ========================
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(h.sessions.Authenticate)
		r.Use(h.sessions.RequireAuth)
		r.Use(h.csrf.Protect)
		r.Use(router.chiMiddleware.RateLimitWrite())

		r.Get("/modules", h.Modules)
		r.With(router.gate.RequirePrivilege(rbac.PrivDashboardView)).Get("/dashboard", h.GetDashboard)

		h.mountResources(r, router.gate, router.chiMiddleware.RateLimitExport())

		if router.policyHandlers != nil {
			r.Route("/authz", func(r chi.Router) {
				r.Use(router.gate.RequireAdmin())
				r.Get("/roles", router.policyHandlers.ListRoles)
				r.Get("/roles/{role}", router.policyHandlers.GetRole)
				r.Post("/check", router.policyHandlers.Check)
				r.Get("/policies", router.policyHandlers.GetPolicies)
				r.Post("/sync", h.SyncRoles)
			})
		}

		r.Route("/admin", func(r chi.Router) {
			r.Use(router.gate.RequireAdmin())
			r.Get("/status", h.AdminStatus)
			r.Delete("/cache", h.ClearCache)
			r.Get("/performance", h.Performance)
			if h.trail != nil {
				r.Get("/audit", h.AuditEvents)
				r.Get("/audit/stats", h.AuditStats)
			}
		})
	})

	return r
}
