// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/vendorbooking/internal/config"
	"github.com/tomtom215/vendorbooking/internal/logging"
	"github.com/tomtom215/vendorbooking/internal/rbac"
)

// Error codes written by RequireAuth.
const (
	CodeSessionExpired = "SESSION_EXPIRED"
)

type contextKey int

const (
	sessionContextKey contextKey = iota
	staleContextKey
)

// ContextWithSession attaches session to ctx.
func ContextWithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// SessionFromContext returns the request's session, or nil.
func SessionFromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionContextKey).(*Session)
	return s
}

// SessionMiddlewareConfig holds configuration for the session middleware.
type SessionMiddlewareConfig struct {
	// CookieName is the name of the session cookie.
	CookieName string

	// SessionTTL is the session time-to-live.
	SessionTTL time.Duration

	// SlidingSession enables session expiry extension on each request.
	SlidingSession bool

	CookiePath     string
	CookieSecure   bool
	CookieSameSite http.SameSite
}

// DefaultSessionMiddlewareConfig returns sensible defaults.
func DefaultSessionMiddlewareConfig() *SessionMiddlewareConfig {
	return &SessionMiddlewareConfig{
		CookieName:     "vbt_session",
		SessionTTL:     8 * time.Hour,
		SlidingSession: true,
		CookiePath:     "/",
		CookieSecure:   true,
		CookieSameSite: http.SameSiteLaxMode,
	}
}

// SessionMiddlewareConfigFrom builds the middleware config from the
// security section.
func SessionMiddlewareConfigFrom(sec *config.SecurityConfig) *SessionMiddlewareConfig {
	cfg := DefaultSessionMiddlewareConfig()
	if sec.CookieName != "" {
		cfg.CookieName = sec.CookieName
	}
	if sec.SessionTimeout > 0 {
		cfg.SessionTTL = sec.SessionTimeout
	}
	cfg.CookieSecure = sec.CookieSecure
	return cfg
}

// SessionMiddleware resolves the caller's session from the session cookie
// or a bearer JWT and installs the session, its RBAC gate and the username
// in the request context.
type SessionMiddleware struct {
	store  SessionStore
	jwt    *JWTManager
	config *SessionMiddlewareConfig
	deny   rbac.DenyFunc
}

// NewSessionMiddleware creates a new session middleware. deny renders 401
// responses; nil writes a bare JSON error.
func NewSessionMiddleware(store SessionStore, jwt *JWTManager, config *SessionMiddlewareConfig, deny rbac.DenyFunc) *SessionMiddleware {
	if config == nil {
		config = DefaultSessionMiddlewareConfig()
	}
	if deny == nil {
		deny = rbac.WriteDeny
	}
	return &SessionMiddleware{
		store:  store,
		jwt:    jwt,
		config: config,
		deny:   deny,
	}
}

// Authenticate looks up the session and sets the request context. Requests
// without a valid session continue anonymously; RequireAuth rejects them.
func (m *SessionMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID, presented := m.extractSessionID(r)
		if sessionID == "" {
			if presented {
				r = r.WithContext(context.WithValue(r.Context(), staleContextKey, true))
			}
			next.ServeHTTP(w, r)
			return
		}

		session, err := m.store.Get(r.Context(), sessionID)
		if err != nil {
			if !errors.Is(err, ErrSessionNotFound) && !errors.Is(err, ErrSessionExpired) {
				logging.CtxErr(r.Context(), err).Msg("Session lookup error")
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), staleContextKey, true)))
			return
		}

		if m.config.SlidingSession {
			newExpiry := time.Now().Add(m.config.SessionTTL)
			if touchErr := m.store.Touch(r.Context(), sessionID, newExpiry); touchErr != nil {
				logging.CtxErr(r.Context(), touchErr).Msg("Failed to touch session")
			}
		}

		ctx := ContextWithSession(r.Context(), session)
		ctx = rbac.ContextWithGate(ctx, session.Gate())
		ctx = logging.ContextWithUser(ctx, session.Username)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects requests without a session. A request that presented
// a session which no longer exists gets SESSION_EXPIRED and a cleared cookie.
func (m *SessionMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionFromContext(r.Context()) != nil {
			next.ServeHTTP(w, r)
			return
		}
		if stale, _ := r.Context().Value(staleContextKey).(bool); stale {
			m.ClearSessionCookie(w)
			m.deny(w, r, http.StatusUnauthorized, CodeSessionExpired, "Your session has expired. Please log in again.")
			return
		}
		m.deny(w, r, http.StatusUnauthorized, rbac.CodeUnauthorized, "Authentication required.")
	})
}

// extractSessionID reads the session ID from a bearer JWT or the cookie.
// presented reports whether the caller sent any credential at all.
func (m *SessionMiddleware) extractSessionID(r *http.Request) (id string, presented bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		token, ok := strings.CutPrefix(h, "Bearer ")
		if !ok || m.jwt == nil {
			return "", true
		}
		claims, err := m.jwt.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("Rejected bearer token")
			return "", true
		}
		return claims.SessionID(), true
	}

	cookie, err := r.Cookie(m.config.CookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	return "", false
}

// SetSessionCookie sets the session cookie on the response.
func (m *SessionMiddleware) SetSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    sessionID,
		Path:     m.config.CookiePath,
		MaxAge:   int(m.config.SessionTTL.Seconds()),
		Secure:   m.config.CookieSecure,
		HttpOnly: true,
		SameSite: m.config.CookieSameSite,
	})
}

// ClearSessionCookie clears the session cookie.
func (m *SessionMiddleware) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    "",
		Path:     m.config.CookiePath,
		MaxAge:   -1,
		Secure:   m.config.CookieSecure,
		HttpOnly: true,
		SameSite: m.config.CookieSameSite,
	})
}

// CookieName returns the configured session cookie name.
func (m *SessionMiddleware) CookieName() string {
	return m.config.CookieName
}
