// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/vendorbooking/internal/config"
	"github.com/tomtom215/vendorbooking/internal/logging"
	"github.com/tomtom215/vendorbooking/internal/metrics"
)

// maxResponseBody bounds how much of a response body is read.
const maxResponseBody = 32 << 20

// maxErrorBody bounds how much of an error body is read.
const maxErrorBody = 64 << 10

// Client talks to the booking backend. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter
	breaker    *breaker
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Its Timeout is
// overwritten with the configured backend timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient builds a Client from the backend configuration.
func NewClient(cfg *config.BackendConfig, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("backend base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid backend base URL: %w", err)
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{},
		userAgent:  cfg.UserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultBackendTimeout
	}
	c.httpClient.Timeout = timeout

	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	if cfg.Breaker.Enabled {
		c.breaker = newBreaker(cfg.Breaker)
	}
	return c, nil
}

// BreakerState reports the circuit breaker state for health checks.
// It returns "disabled" when no breaker is configured.
func (c *Client) BreakerState() string {
	if c.breaker == nil {
		return "disabled"
	}
	return c.breaker.state().String()
}

// request describes one backend call.
type request struct {
	method   string
	path     string
	query    url.Values
	body     []byte
	bodyType string
	accept   string

	// resource labels metrics, e.g. "carriers".
	resource string

	// anonymous requests carry no bearer token and never refresh.
	anonymous bool

	// retried marks the replay after a token refresh. A retried request that
	// is still unauthorized ends the session instead of refreshing again.
	retried bool
}

type rawResponse struct {
	status int
	header http.Header
	body   []byte
}

func jsonRequest(method, path, resource string, payload interface{}) (*request, error) {
	req := &request{method: method, path: path, resource: resource, accept: "application/json"}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		req.body = b
		req.bodyType = "application/json"
	}
	return req, nil
}

// do executes req, handling the single refresh-and-retry on 401, and
// decodes a successful JSON body into out. out may be nil or *[]byte.
func (c *Client) do(ctx context.Context, tokens TokenSource, req *request, out interface{}) error {
	var token string
	if !req.anonymous {
		if tokens == nil {
			return &Error{Kind: KindUnauthorized, Method: req.method, Path: req.path, LoggedOut: true, Err: ErrNoToken}
		}
		t, err := tokens.Token(ctx)
		if err != nil {
			return &Error{Kind: KindUnauthorized, Method: req.method, Path: req.path, LoggedOut: true, Err: err}
		}
		token = t
	}

	resp, err := c.send(ctx, req, token)
	if err != nil && !req.anonymous && Classify(err) == KindUnauthorized && !req.retried {
		logging.Ctx(ctx).Debug().Str("path", req.path).Msg("Backend rejected token, refreshing")

		fresh, rerr := tokens.Refresh(ctx, token)
		metrics.RecordTokenRefresh(rerr == nil)
		if rerr != nil {
			logging.Ctx(ctx).Warn().Err(rerr).Msg("Token refresh failed, logging out")
			tokens.Invalidate(ctx)
			return &Error{Kind: KindUnauthorized, Status: http.StatusUnauthorized, Method: req.method, Path: req.path, LoggedOut: true, Err: rerr}
		}

		req.retried = true
		resp, err = c.send(ctx, req, fresh)
		if err != nil && Classify(err) == KindUnauthorized {
			logging.Ctx(ctx).Warn().Str("path", req.path).Msg("Retried request still unauthorized, logging out")
			tokens.Invalidate(ctx)
			var be *Error
			if errors.As(err, &be) {
				be.LoggedOut = true
			}
			return err
		}
	}
	if err != nil {
		return err
	}

	switch dst := out.(type) {
	case nil:
		return nil
	case *[]byte:
		*dst = resp.body
		return nil
	default:
		if len(bytes.TrimSpace(resp.body)) == 0 {
			return nil
		}
		if err := json.Unmarshal(resp.body, out); err != nil {
			return &Error{Kind: KindUnknown, Status: resp.status, Method: req.method, Path: req.path, Err: fmt.Errorf("decode response: %w", err)}
		}
		return nil
	}
}

// send performs one HTTP exchange through the limiter and breaker. Non-2xx
// responses come back as *Error alongside the raw response.
func (c *Client) send(ctx context.Context, req *request, token string) (*rawResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &Error{Kind: classifyTransport(err), Method: req.method, Path: req.path, Err: err}
		}
	}
	if c.breaker == nil {
		return c.roundTrip(ctx, req, token)
	}
	resp, err := c.breaker.execute(func() (*rawResponse, error) {
		return c.roundTrip(ctx, req, token)
	})
	if err != nil && Classify(err) == KindUnavailable {
		return nil, &Error{Kind: KindUnavailable, Method: req.method, Path: req.path, Err: err}
	}
	return resp, err
}

func (c *Client) roundTrip(ctx context.Context, req *request, token string) (*rawResponse, error) {
	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Method: req.method, Path: req.path, Err: err}
	}
	if req.bodyType != "" {
		httpReq.Header.Set("Content-Type", req.bodyType)
	}
	if req.accept != "" {
		httpReq.Header.Set("Accept", req.accept)
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		httpReq.Header.Set("X-Correlation-ID", id)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		kind := classifyTransport(err)
		metrics.RecordBackendRequest(req.method, req.resource, kind.String(), time.Since(start))
		return nil, &Error{Kind: kind, Method: req.method, Path: req.path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	limit := int64(maxResponseBody)
	if resp.StatusCode >= 300 {
		limit = maxErrorBody
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	metrics.RecordBackendRequest(req.method, req.resource, metrics.StatusOutcome(resp.StatusCode), time.Since(start))
	if err != nil {
		return nil, &Error{Kind: classifyTransport(err), Status: resp.StatusCode, Method: req.method, Path: req.path, Err: fmt.Errorf("read body: %w", err)}
	}

	raw := &rawResponse{status: resp.StatusCode, header: resp.Header, body: data}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}

	msg, fields := parseErrorBody(data)
	logging.Ctx(ctx).Debug().
		Str("method", req.method).
		Str("path", req.path).
		Int("status", resp.StatusCode).
		Str("backend_message", msg).
		Msg("Backend returned error status")
	return raw, &Error{
		Kind:    KindFromStatus(resp.StatusCode),
		Status:  resp.StatusCode,
		Method:  req.method,
		Path:    req.path,
		Message: msg,
		Fields:  fields,
	}
}
