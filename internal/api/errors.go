// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/tomtom215/vendorbooking/internal/auth"
	"github.com/tomtom215/vendorbooking/internal/backend"
	"github.com/tomtom215/vendorbooking/internal/excel"
	"github.com/tomtom215/vendorbooking/internal/forms"
	"github.com/tomtom215/vendorbooking/internal/logging"
	"github.com/tomtom215/vendorbooking/internal/rbac"
	"github.com/tomtom215/vendorbooking/internal/validation"
)

// Common API errors
var (
	// ErrInvalidID is returned for a non-numeric or non-positive {id}.
	ErrInvalidID = errors.New("invalid record id")

	// ErrUnknownResource means the {resource} segment names no collection.
	ErrUnknownResource = errors.New("unknown resource")
)

// Failure is the HTTP rendering of an error.
type Failure struct {
	Status  int
	Code    string
	Message string
	Details interface{}

	// RetryAfter is set in seconds when the caller should back off.
	RetryAfter int

	// EndSession clears the session cookie.
	EndSession bool
}

// Classify maps any error reaching a handler to its HTTP rendering. Backend
// failures keep the user-facing message of their Kind.
func Classify(err error) Failure {
	var verr *validation.RequestValidationError
	if errors.As(err, &verr) {
		api := verr.ToAPIError()
		return Failure{Status: http.StatusUnprocessableEntity, Code: ErrCodeValidationFailed, Message: api.Message, Details: api.Details}
	}

	var locked *auth.LockedError
	switch {
	case errors.As(err, &locked):
		return Failure{
			Status:     http.StatusTooManyRequests,
			Code:       ErrCodeAccountLocked,
			Message:    "Too many failed attempts. Try again later.",
			RetryAfter: int(locked.Remaining.Seconds()) + 1,
		}
	case errors.Is(err, auth.ErrInvalidCredentials):
		return Failure{Status: http.StatusUnauthorized, Code: ErrCodeInvalidCredentials, Message: "Invalid username or password."}
	case errors.Is(err, auth.ErrSessionExpired), errors.Is(err, auth.ErrSessionNotFound), errors.Is(err, backend.ErrLoggedOut):
		return Failure{Status: http.StatusUnauthorized, Code: ErrCodeSessionExpired, Message: "Your session has expired. Please log in again.", EndSession: true}
	case errors.Is(err, forms.ErrSubmitInProgress):
		return Failure{Status: http.StatusConflict, Code: ErrCodeSubmitInProgress, Message: "This form is already being submitted."}
	case errors.Is(err, rbac.ErrNotReady):
		return Failure{Status: http.StatusServiceUnavailable, Code: rbac.CodeLoading, Message: "Privileges are still loading.", RetryAfter: 1}
	case errors.Is(err, ErrInvalidID), errors.Is(err, ErrUnknownResource):
		return Failure{Status: http.StatusBadRequest, Code: ErrCodeBadRequest, Message: err.Error()}
	case errors.Is(err, excel.ErrHeaderMismatch), errors.Is(err, excel.ErrTooManyRows), errors.Is(err, excel.ErrEmptyWorkbook):
		return Failure{Status: http.StatusBadRequest, Code: ErrCodeInvalidFile, Message: err.Error()}
	}

	var berr *backend.Error
	if errors.As(err, &berr) || backend.Classify(err) != backend.KindUnknown {
		return classifyBackend(err)
	}
	return Failure{Status: http.StatusInternalServerError, Code: ErrCodeInternalError, Message: "An unexpected error occurred."}
}

func classifyBackend(err error) Failure {
	kind := backend.Classify(err)
	f := Failure{Message: backend.UserMessage(err)}
	switch kind {
	case backend.KindTimeout:
		f.Status, f.Code = http.StatusGatewayTimeout, ErrCodeBackendTimeout
	case backend.KindNetwork, backend.KindServer:
		f.Status, f.Code = http.StatusBadGateway, ErrCodeBackendError
	case backend.KindUnavailable:
		f.Status, f.Code, f.RetryAfter = http.StatusServiceUnavailable, ErrCodeServiceUnavailable, 5
	case backend.KindBadRequest:
		f.Status, f.Code = http.StatusBadRequest, ErrCodeBadRequest
	case backend.KindUnauthorized:
		f.Status, f.Code, f.EndSession = http.StatusUnauthorized, ErrCodeSessionExpired, true
	case backend.KindForbidden:
		f.Status, f.Code = http.StatusForbidden, ErrCodeForbidden
	case backend.KindNotFound:
		f.Status, f.Code = http.StatusNotFound, ErrCodeNotFound
	case backend.KindConflict:
		f.Status, f.Code = http.StatusConflict, ErrCodeConflict
	case backend.KindValidation:
		f.Status, f.Code = http.StatusUnprocessableEntity, ErrCodeValidationFailed
		if fields := backend.FieldErrors(err); len(fields) > 0 {
			f.Details = map[string]interface{}{"fields": firstMessages(fields)}
		}
	case backend.KindRateLimited:
		f.Status, f.Code, f.RetryAfter = http.StatusTooManyRequests, ErrCodeTooManyRequests, 5
	case backend.KindCanceled:
		f.Status, f.Code = http.StatusRequestTimeout, ErrCodeRequestCanceled
	default:
		f.Status, f.Code = http.StatusInternalServerError, ErrCodeInternalError
	}
	return f
}

// firstMessages flattens backend field errors to the form shape.
func firstMessages(fields map[string][]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

// fail renders err. Server-side failures are logged with the request
// context; client errors only at debug.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	f := Classify(err)

	if f.Status >= http.StatusInternalServerError {
		logging.CtxErr(r.Context(), err).Int("status", f.Status).Msg("Request failed")
	} else {
		logging.Ctx(r.Context()).Debug().Err(err).Int("status", f.Status).Msg("Request rejected")
	}

	if f.EndSession && h.sessions != nil {
		h.sessions.ClearSessionCookie(w)
	}
	if f.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(f.RetryAfter))
	}
	NewResponseWriter(w, r).ErrorWithDetails(f.Status, f.Code, f.Message, f.Details)
}
