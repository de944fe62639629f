// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package backend

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
)

// Kind categorizes a backend failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindTimeout
	KindNetwork
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindValidation
	KindRateLimited
	KindServer
	KindUnavailable
	KindCanceled
)

var kindNames = map[Kind]string{
	KindUnknown:      "unknown",
	KindTimeout:      "timeout",
	KindNetwork:      "network",
	KindBadRequest:   "bad_request",
	KindUnauthorized: "unauthorized",
	KindForbidden:    "forbidden",
	KindNotFound:     "not_found",
	KindConflict:     "conflict",
	KindValidation:   "validation",
	KindRateLimited:  "rate_limited",
	KindServer:       "server",
	KindUnavailable:  "unavailable",
	KindCanceled:     "canceled",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

var kindMessages = map[Kind]string{
	KindTimeout:      "The request timed out. Please try again.",
	KindNetwork:      "Unable to reach the server. Check your connection.",
	KindBadRequest:   "The request could not be processed.",
	KindUnauthorized: "Your session has expired. Please log in again.",
	KindForbidden:    "You do not have permission to perform this action.",
	KindNotFound:     "The requested resource was not found.",
	KindConflict:     "The record was changed by someone else or already exists.",
	KindValidation:   "Some fields are invalid.",
	KindRateLimited:  "Too many requests. Please slow down.",
	KindServer:       "Something went wrong on the server. Please try again later.",
	KindUnavailable:  "The booking service is temporarily unavailable.",
	KindCanceled:     "The request was canceled.",
	KindUnknown:      "An unexpected error occurred.",
}

// ErrLoggedOut is matched by errors.Is when a token refresh failed, or the
// retried request was still unauthorized, and the token source was invalidated.
var ErrLoggedOut = errors.New("backend: session logged out")

// ErrNoToken is returned by a TokenSource that holds no access token.
var ErrNoToken = errors.New("backend: no access token")

// Error is a failed backend call.
type Error struct {
	Kind   Kind
	Status int
	Method string
	Path   string

	// Message is the backend's own message, if it sent one.
	Message string

	// Fields holds per-field validation messages from a 422 response.
	Fields map[string][]string

	// LoggedOut is set when the failure ended the authenticated session.
	LoggedOut bool

	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("backend ")
	if e.Method != "" {
		b.WriteString(e.Method)
		b.WriteByte(' ')
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrLoggedOut) true for logged-out failures.
func (e *Error) Is(target error) bool {
	return target == ErrLoggedOut && e.LoggedOut
}

// UserMessage returns the text shown to the user for this failure. Validation
// failures prefer the backend's own message.
func (e *Error) UserMessage() string {
	if e.Kind == KindValidation || e.Kind == KindConflict || e.Kind == KindBadRequest {
		if e.Message != "" {
			return e.Message
		}
	}
	return kindMessages[e.Kind]
}

// KindFromStatus maps an HTTP status code to a Kind. 2xx maps to KindUnknown.
func KindFromStatus(status int) Kind {
	switch {
	case status == http.StatusBadRequest:
		return KindBadRequest
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusConflict:
		return KindConflict
	case status == http.StatusUnprocessableEntity:
		return KindValidation
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status == http.StatusServiceUnavailable, status == http.StatusBadGateway, status == http.StatusGatewayTimeout:
		return KindServer
	case status >= 500:
		return KindServer
	case status >= 400:
		return KindBadRequest
	default:
		return KindUnknown
	}
}

// Classify returns the Kind of any error produced by this package, or infers
// one for transport-level errors.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return classifyTransport(err)
}

func classifyTransport(err error) Kind {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return KindUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, context.Canceled):
		return KindCanceled
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindNetwork
	}
	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) {
		return KindNetwork
	}
	return KindUnknown
}

// UserMessage returns the user-facing text for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var be *Error
	if errors.As(err, &be) {
		return be.UserMessage()
	}
	return kindMessages[classifyTransport(err)]
}

// FieldErrors returns per-field validation messages carried by err.
func FieldErrors(err error) map[string][]string {
	var be *Error
	if errors.As(err, &be) {
		return be.Fields
	}
	return nil
}

// errorBody covers the error shapes the backend is known to send:
//
//	{"message": "...", "errors": {"field": ["..."]}}
//	{"detail": "..."}
//	{"error": "..."}
type errorBody struct {
	Message string                     `json:"message"`
	Detail  json.RawMessage            `json:"detail"`
	Error   string                     `json:"error"`
	Errors  map[string]json.RawMessage `json:"errors"`
}

// maxPlainMessage bounds a non-JSON error body shown to the user.
const maxPlainMessage = 200

// truncateUTF8 cuts s to at most max bytes without splitting a rune.
func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// parseErrorBody extracts a message and field errors. Unparseable bodies
// yield a trimmed text message when they look like plain text.
func parseErrorBody(body []byte) (string, map[string][]string) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "", nil
	}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		if strings.HasPrefix(trimmed, "<") {
			return "", nil // HTML error page from a proxy
		}
		return truncateUTF8(trimmed, maxPlainMessage), nil
	}

	msg := eb.Message
	if msg == "" && len(eb.Detail) > 0 {
		var s string
		if json.Unmarshal(eb.Detail, &s) == nil {
			msg = s
		}
	}
	if msg == "" {
		msg = eb.Error
	}

	var fields map[string][]string
	if len(eb.Errors) > 0 {
		fields = make(map[string][]string, len(eb.Errors))
		for k, raw := range eb.Errors {
			var list []string
			if json.Unmarshal(raw, &list) == nil {
				fields[k] = list
				continue
			}
			var one string
			if json.Unmarshal(raw, &one) == nil {
				fields[k] = []string{one}
			}
		}
		if msg == "" {
			msg = firstFieldMessage(fields)
		}
	}
	return msg, fields
}

func firstFieldMessage(fields map[string][]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if len(fields[k]) > 0 {
			return k + ": " + fields[k][0]
		}
	}
	return ""
}
