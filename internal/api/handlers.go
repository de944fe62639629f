// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package api

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/vendorbooking/internal/audit"
	"github.com/tomtom215/vendorbooking/internal/auth"
	"github.com/tomtom215/vendorbooking/internal/authz"
	"github.com/tomtom215/vendorbooking/internal/backend"
	"github.com/tomtom215/vendorbooking/internal/cache"
	"github.com/tomtom215/vendorbooking/internal/config"
	"github.com/tomtom215/vendorbooking/internal/forms"
	"github.com/tomtom215/vendorbooking/internal/logging"
	"github.com/tomtom215/vendorbooking/internal/middleware"
)

// maxJSONBody bounds JSON request bodies. Spreadsheets go through the
// import handler with their own limit.
const maxJSONBody = 1 << 20

// HandlerDeps wires a Handler.
type HandlerDeps struct {
	Config   *config.Config
	Client   *backend.Client
	Auth     *auth.Manager
	Sessions *auth.SessionMiddleware
	CSRF     *auth.CSRFMiddleware

	// Enforcer is optional; without it the authz routes are not mounted.
	Enforcer *authz.Enforcer

	// Cache is optional; nil disables list caching.
	Cache *cache.Cache

	// Guard is optional; a fresh guard is created when nil.
	Guard *forms.SubmitGuard

	// PerfMon is optional.
	PerfMon *middleware.PerformanceMonitor

	// Trail is optional; without it /admin/audit is not mounted.
	Trail *audit.Trail
}

// Handler serves the console API.
type Handler struct {
	config   *config.Config
	client   *backend.Client
	auth     *auth.Manager
	sessions *auth.SessionMiddleware
	csrf     *auth.CSRFMiddleware
	enforcer *authz.Enforcer
	cache    *cache.Cache
	guard    *forms.SubmitGuard
	perfMon  *middleware.PerformanceMonitor
	audit    *logging.AuditLogger
	trail    *audit.Trail

	startTime time.Time
}

// NewHandler validates deps and returns a Handler.
func NewHandler(deps HandlerDeps) (*Handler, error) {
	switch {
	case deps.Config == nil:
		return nil, errors.New("api: config is required")
	case deps.Client == nil:
		return nil, errors.New("api: backend client is required")
	case deps.Auth == nil:
		return nil, errors.New("api: auth manager is required")
	case deps.Sessions == nil:
		return nil, errors.New("api: session middleware is required")
	case deps.CSRF == nil:
		return nil, errors.New("api: csrf middleware is required")
	}
	guard := deps.Guard
	if guard == nil {
		guard = forms.NewSubmitGuard()
	}
	return &Handler{
		config:    deps.Config,
		client:    deps.Client,
		auth:      deps.Auth,
		sessions:  deps.Sessions,
		csrf:      deps.CSRF,
		enforcer:  deps.Enforcer,
		cache:     deps.Cache,
		guard:     guard,
		perfMon:   deps.PerfMon,
		audit:     logging.NewAuditLogger(),
		trail:     deps.Trail,
		startTime: time.Now(),
	}, nil
}

// invalidator returns the cache as a forms.Invalidator. A nil *cache.Cache
// must not be boxed into a non-nil interface.
func (h *Handler) invalidator() forms.Invalidator {
	if h.cache == nil {
		return nil
	}
	return writeInvalidator{h.cache}
}

// writeInvalidator also drops the dashboard, whose counts span every
// collection.
type writeInvalidator struct{ c *cache.Cache }

func (i writeInvalidator) InvalidateResource(resource string) {
	i.c.InvalidateResource(resource)
	i.c.InvalidateResource(dashboardResource)
}

// services returns the backend wrappers of the request's session.
func (h *Handler) services(r *http.Request) (*backend.Services, *auth.Session, error) {
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		return nil, nil, auth.ErrSessionNotFound
	}
	svc, err := h.auth.Services(session)
	if err != nil {
		return nil, nil, err
	}
	return svc, session, nil
}

// decodeJSON reads a JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

// clientIP returns the caller address after chi's RealIP, without port.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
