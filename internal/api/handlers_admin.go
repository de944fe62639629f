// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package api

import (
	"net/http"
	"strconv"

	"github.com/tomtom215/vendorbooking/internal/logging"
	"github.com/tomtom215/vendorbooking/internal/models"
)

// roleSyncLimit caps the roles fetched by SyncRoles.
const roleSyncLimit = 1000

// SyncRoles copies the backend role list into the role table.
// POST /api/v1/authz/sync
func (h *Handler) SyncRoles(w http.ResponseWriter, r *http.Request) {
	if h.enforcer == nil {
		WriteError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Role table is not configured")
		return
	}
	svc, session, err := h.services(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	roles, err := svc.Roles.ListAll(r.Context(), models.ListParams{PageSize: models.MaxPageSize, IsActive: models.Bool(true)}, roleSyncLimit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	synced, err := h.enforcer.SyncRoles(roles)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("username", session.Username).
		Int("roles", len(roles)).
		Int("synced", synced).
		Msg("Role table synced from backend")
	h.audit.AdminAction(session.Username, "role_sync", map[string]string{
		"fetched": strconv.Itoa(len(roles)),
		"synced":  strconv.Itoa(synced),
	})
	WriteSuccess(w, r, map[string]int{"fetched": len(roles), "synced": synced})
}

// AdminStatus reports sessions, cache and submit guard state.
// GET /api/v1/admin/status
func (h *Handler) AdminStatus(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.auth.Store().Count(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	status := map[string]interface{}{
		"sessions":          sessions,
		"token_sources":     h.auth.Tracked(),
		"submits_in_flight": h.guard.Len(),
		"backend_breaker":   h.client.BreakerState(),
	}
	if h.cache != nil {
		stats := h.cache.GetStats()
		status["cache"] = map[string]interface{}{
			"entries":      h.cache.Len(),
			"hits":         stats.Hits,
			"misses":       stats.Misses,
			"evictions":    stats.Evictions,
			"hit_rate":     h.cache.HitRate(),
			"last_cleanup": stats.LastCleanup,
		}
	}
	WriteSuccess(w, r, status)
}

// ClearCache drops every cached list and record.
// DELETE /api/v1/admin/cache
func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	n := 0
	if h.cache != nil {
		n = h.cache.Len()
		h.cache.Clear()
	}
	logging.Ctx(r.Context()).Info().Int("entries", n).Msg("Cache cleared")
	h.audit.AdminAction(logging.UserFromContext(r.Context()), "cache_clear", map[string]string{"entries": strconv.Itoa(n)})
	WriteSuccess(w, r, map[string]int{"cleared": n})
}

// Performance returns per-route latency percentiles and the most recent
// requests.
// GET /api/v1/admin/performance?recent=50
func (h *Handler) Performance(w http.ResponseWriter, r *http.Request) {
	if h.perfMon == nil {
		WriteError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Performance monitoring is disabled")
		return
	}
	recent := 50
	if v, err := strconv.Atoi(r.URL.Query().Get("recent")); err == nil && v >= 0 && v <= 1000 {
		recent = v
	}
	WriteSuccess(w, r, map[string]interface{}{
		"endpoints": h.perfMon.GetStats(),
		"recent":    h.perfMon.GetRecentMetrics(recent),
	})
}
