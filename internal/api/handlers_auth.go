// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/vendorbooking/internal/auth"
	"github.com/tomtom215/vendorbooking/internal/models"
	"github.com/tomtom215/vendorbooking/internal/rbac"
	"github.com/tomtom215/vendorbooking/internal/validation"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required,max=256"`
}

// SessionInfo describes the caller's session. Login and Me return it.
type SessionInfo struct {
	// Token is only set by Login; it is a bearer alternative to the cookie.
	Token      string              `json:"token,omitempty"`
	CSRFToken  string              `json:"csrf_token"`
	ExpiresAt  time.Time           `json:"expires_at"`
	User       *models.User        `json:"user"`
	Privileges []string            `json:"privileges"`
	Superuser  bool                `json:"superuser"`
	Modules    []rbac.ModuleAccess `json:"modules"`
}

func (h *Handler) sessionInfo(session *auth.Session) *SessionInfo {
	gate := session.Gate()
	privileges := gate.Privileges()
	if privileges == nil {
		privileges = []string{}
	}
	return &SessionInfo{
		CSRFToken:  h.csrf.Token(session),
		ExpiresAt:  session.ExpiresAt,
		User:       session.User(),
		Privileges: privileges,
		Superuser:  gate.IsSuperuser(),
		Modules:    gate.ModuleList(),
	}
}

// Login authenticates against the backend and opens a console session.
// POST /api/v1/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteBadRequest(w, r, err.Error())
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if verr := validation.ValidateStruct(&req); verr != nil {
		h.fail(w, r, verr)
		return
	}

	result, err := h.auth.Login(r.Context(), req.Username, req.Password, clientIP(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.sessions.SetSessionCookie(w, result.Session.ID)
	info := h.sessionInfo(result.Session)
	info.Token = result.Token
	WriteSuccess(w, r, info)
}

// Logout ends the session on the backend and in the console. It succeeds
// without a session so a client can always clear its cookie.
// POST /api/v1/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if session := auth.SessionFromContext(r.Context()); session != nil {
		if err := h.auth.Logout(r.Context(), session); err != nil && !errors.Is(err, auth.ErrSessionNotFound) {
			h.fail(w, r, err)
			return
		}
	}
	h.sessions.ClearSessionCookie(w)
	WriteSuccess(w, r, map[string]bool{"logged_out": true})
}

// Me returns the session's user, privileges and module access. With
// ?refresh=true the privilege list is fetched from the backend again.
// GET /api/v1/auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		h.fail(w, r, auth.ErrSessionNotFound)
		return
	}

	if refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh")); refresh {
		if err := h.auth.ReloadPrivileges(r.Context(), session); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	WriteSuccess(w, r, h.sessionInfo(session))
}

// CanResponse is the body of Can.
type CanResponse struct {
	Privilege string `json:"privilege"`
	Allowed   bool   `json:"allowed"`
}

// Can reports whether the session holds a privilege.
// GET /api/v1/auth/can?privilege=carrier.edit
func (h *Handler) Can(w http.ResponseWriter, r *http.Request) {
	privilege := strings.TrimSpace(r.URL.Query().Get("privilege"))
	if privilege == "" {
		WriteBadRequest(w, r, "privilege is required")
		return
	}

	gate := rbac.FromContext(r.Context())
	if gate == nil {
		h.fail(w, r, auth.ErrSessionNotFound)
		return
	}
	allowed, err := gate.Can(privilege)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteSuccess(w, r, CanResponse{Privilege: privilege, Allowed: allowed})
}

// Modules lists every console module with the session's access to it.
// GET /api/v1/modules
func (h *Handler) Modules(w http.ResponseWriter, r *http.Request) {
	gate := rbac.FromContext(r.Context())
	if gate == nil {
		h.fail(w, r, auth.ErrSessionNotFound)
		return
	}
	if !gate.Ready() {
		h.fail(w, r, rbac.ErrNotReady)
		return
	}
	WriteSuccess(w, r, gate.ModuleList())
}
