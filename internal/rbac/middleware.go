// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package rbac

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/vendorbooking/internal/logging"
	"github.com/tomtom215/vendorbooking/internal/metrics"
)

// Error codes written on deny.
const (
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeLoading      = "PRIVILEGES_LOADING"
)

// DenyFunc writes a refusal. The API layer supplies one that renders its
// response envelope.
type DenyFunc func(w http.ResponseWriter, r *http.Request, status int, code, message string)

// Middleware gates chi routes on the Gate found in the request context.
type Middleware struct {
	deny  DenyFunc
	audit *logging.AuditLogger
}

// NewMiddleware creates the middleware. A nil deny writes a bare JSON error.
func NewMiddleware(deny DenyFunc) *Middleware {
	if deny == nil {
		deny = WriteDeny
	}
	return &Middleware{deny: deny, audit: logging.NewAuditLogger()}
}

// RequirePrivilege admits requests whose session holds privilege.
func (m *Middleware) RequirePrivilege(privilege string) func(http.Handler) http.Handler {
	return m.require(privilege, func(g *Gate) bool { return g.HasAccess(privilege) })
}

// RequireModule admits requests whose session may enter moduleID.
func (m *Middleware) RequireModule(moduleID string) func(http.Handler) http.Handler {
	return m.require("module:"+moduleID, func(g *Gate) bool { return g.CanAccessModule(moduleID) })
}

// RequireAdmin admits superusers and holders of admin.access.
func (m *Middleware) RequireAdmin() func(http.Handler) http.Handler {
	return m.RequirePrivilege(PrivAdminAccess)
}

func (m *Middleware) require(label string, allow func(*Gate) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			g := FromContext(r.Context())
			if g == nil {
				m.deny(w, r, http.StatusUnauthorized, CodeUnauthorized, "Authentication required.")
				return
			}
			if !g.Ready() {
				w.Header().Set("Retry-After", "1")
				m.deny(w, r, http.StatusServiceUnavailable, CodeLoading, "Permissions are still loading. Please retry.")
				return
			}
			if !allow(g) {
				metrics.AccessDenied.WithLabelValues(label).Inc()
				m.audit.AccessDenied(logging.UserFromContext(r.Context()), label, r.URL.Path)
				m.deny(w, r, http.StatusForbidden, CodeForbidden, "You do not have permission to perform this action.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WriteDeny is the default DenyFunc: a bare JSON error body.
func WriteDeny(w http.ResponseWriter, _ *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   map[string]string{"code": code, "message": message},
	}); err != nil {
		logging.Error().Err(err).Msg("Failed to encode deny response")
	}
}
