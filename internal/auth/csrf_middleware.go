// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/tomtom215/vendorbooking/internal/logging"
	"github.com/tomtom215/vendorbooking/internal/rbac"
)

// CSRF protection errors
var (
	// ErrCSRFTokenMissing indicates no CSRF token was provided.
	ErrCSRFTokenMissing = errors.New("CSRF token missing")

	// ErrCSRFTokenInvalid indicates the CSRF token doesn't match the session.
	ErrCSRFTokenInvalid = errors.New("CSRF token invalid")
)

// CodeCSRFFailed is the error code written on a rejected token.
const CodeCSRFFailed = "CSRF_FAILED"

// CSRFHeader carries the token on state-changing requests.
const CSRFHeader = "X-CSRF-Token"

// CSRFMiddleware protects cookie-authenticated sessions against cross-site
// requests. The token is an HMAC of the session ID, so it needs no storage
// and dies with the session. Bearer-token callers are exempt because
// browsers never attach the Authorization header on their own.
type CSRFMiddleware struct {
	secret      []byte
	exemptPaths []string
	deny        rbac.DenyFunc
}

// NewCSRFMiddleware creates the middleware. deny renders 403 responses; nil
// writes a bare JSON error.
func NewCSRFMiddleware(secret string, exemptPaths []string, deny rbac.DenyFunc) *CSRFMiddleware {
	if deny == nil {
		deny = rbac.WriteDeny
	}
	return &CSRFMiddleware{
		secret:      []byte("csrf:" + secret),
		exemptPaths: exemptPaths,
		deny:        deny,
	}
}

// Token returns the CSRF token for session.
func (m *CSRFMiddleware) Token(session *Session) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(session.ID))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Protect validates the token on unsafe methods. It must run after
// SessionMiddleware.Authenticate.
func (m *CSRFMiddleware) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isSafeMethod(r.Method) || m.isExemptPath(r.URL.Path) || r.Header.Get("Authorization") != "" {
			next.ServeHTTP(w, r)
			return
		}

		session := SessionFromContext(r.Context())
		if session == nil {
			// RequireAuth decides what anonymous callers get.
			next.ServeHTTP(w, r)
			return
		}

		if err := m.validate(r, session); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Str("path", r.URL.Path).Msg("CSRF validation failed")
			m.deny(w, r, http.StatusForbidden, CodeCSRFFailed, err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *CSRFMiddleware) validate(r *http.Request, session *Session) error {
	got := r.Header.Get(CSRFHeader)
	if got == "" {
		return ErrCSRFTokenMissing
	}
	if !hmac.Equal([]byte(got), []byte(m.Token(session))) {
		return ErrCSRFTokenInvalid
	}
	return nil
}

func (m *CSRFMiddleware) isExemptPath(path string) bool {
	for _, exempt := range m.exemptPaths {
		if strings.HasPrefix(path, exempt) {
			return true
		}
	}
	return false
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}
