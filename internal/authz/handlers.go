// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package authz

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/vendorbooking/internal/logging"
)

// Responder renders handler output. The API package implements it with its
// response envelope.
type Responder interface {
	Respond(w http.ResponseWriter, r *http.Request, status int, data interface{})
	Fail(w http.ResponseWriter, r *http.Request, status int, code, message string)
}

// PolicyHandlers exposes the role table to administrators.
type PolicyHandlers struct {
	enforcer *Enforcer
	out      Responder
}

// NewPolicyHandlers creates a new PolicyHandlers instance.
func NewPolicyHandlers(enforcer *Enforcer, out Responder) *PolicyHandlers {
	return &PolicyHandlers{enforcer: enforcer, out: out}
}

// ListRoles returns every role with its expanded privileges.
// GET /api/v1/authz/roles
func (h *PolicyHandlers) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.enforcer.Roles()
	if err != nil {
		logging.CtxErr(r.Context(), err).Msg("Failed to list roles")
		h.out.Fail(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list roles")
		return
	}
	h.out.Respond(w, r, http.StatusOK, map[string]interface{}{
		"roles":        roles,
		"default_role": h.enforcer.config.DefaultRole,
	})
}

// GetRole returns one role.
// GET /api/v1/authz/roles/{role}
func (h *PolicyHandlers) GetRole(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "role")
	info, ok, err := h.enforcer.Role(name)
	if err != nil {
		logging.CtxErr(r.Context(), err).Str("role", name).Msg("Failed to read role")
		h.out.Fail(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to read role")
		return
	}
	if !ok {
		h.out.Fail(w, r, http.StatusNotFound, "NOT_FOUND", "Role not found")
		return
	}
	h.out.Respond(w, r, http.StatusOK, info)
}

// CheckRequest is the body of Check.
type CheckRequest struct {
	Role      string `json:"role"`
	Privilege string `json:"privilege"`
}

// Check evaluates a privilege against a role from the table.
// POST /api/v1/authz/check
func (h *PolicyHandlers) Check(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.out.Fail(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if req.Role == "" || req.Privilege == "" {
		h.out.Fail(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "role and privilege are required")
		return
	}

	superuser := h.enforcer.IsSuperuserRole(req.Role)
	allowed := superuser
	if !allowed {
		var err error
		allowed, err = h.enforcer.Allowed(req.Role, req.Privilege)
		if errors.Is(err, ErrUnknownPrivilege) {
			h.out.Fail(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "privilege must look like module.action")
			return
		}
		if err != nil {
			logging.CtxErr(r.Context(), err).Msg("Permission check error")
			h.out.Fail(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Permission check failed")
			return
		}
	}

	h.out.Respond(w, r, http.StatusOK, map[string]interface{}{
		"role":      req.Role,
		"privilege": req.Privilege,
		"allowed":   allowed,
		"superuser": superuser,
	})
}

// GetPolicies returns the raw table rows.
// GET /api/v1/authz/policies
func (h *PolicyHandlers) GetPolicies(w http.ResponseWriter, r *http.Request) {
	policies := h.enforcer.GetPolicy()
	policyList := make([]map[string]string, 0, len(policies))
	for _, p := range policies {
		if len(p) >= 3 {
			policyList = append(policyList, map[string]string{"role": p[0], "module": p[1], "action": p[2]})
		}
	}

	groupings := h.enforcer.GetGroupingPolicy()
	groupingList := make([]map[string]string, 0, len(groupings))
	for _, g := range groupings {
		if len(g) >= 2 {
			groupingList = append(groupingList, map[string]string{"role": g[0], "inherits": g[1]})
		}
	}

	h.out.Respond(w, r, http.StatusOK, map[string]interface{}{
		"policies":  policyList,
		"groupings": groupingList,
	})
}
