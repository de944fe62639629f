// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package logging

import (
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// AuditEvent is a security-relevant event: logins, forced logouts, denied
// privileges and bulk imports.
type AuditEvent struct {
	Event     string
	Username  string
	SessionID string
	IPAddress string
	Success   bool
	Reason    string
	Details   map[string]string
}

// AuditLogger writes AuditEvents with session IDs shortened and free text
// truncated.
type AuditLogger struct {
	logger zerolog.Logger
}

// NewAuditLogger returns an AuditLogger on the global logger.
func NewAuditLogger() *AuditLogger {
	return &AuditLogger{logger: WithComponent("audit")}
}

// NewAuditLoggerWith returns an AuditLogger on l.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewAuditLoggerWith(l zerolog.Logger) *AuditLogger {
	return &AuditLogger{logger: l}
}

// AuditSink receives every AuditEvent after it is logged, already
// sanitized. The queryable audit trail is the only sink.
type AuditSink interface {
	Record(ev *AuditEvent)
}

type sinkBox struct{ sink AuditSink }

var auditSink atomic.Value // sinkBox

// SetAuditSink installs s for every AuditLogger. nil removes it.
func SetAuditSink(s AuditSink) {
	auditSink.Store(sinkBox{sink: s})
}

func currentAuditSink() AuditSink {
	box, _ := auditSink.Load().(sinkBox)
	return box.sink
}

// Log writes ev at info level, or warn level when it did not succeed.
func (a *AuditLogger) Log(ev *AuditEvent) {
	clean := sanitize(ev)

	e := a.logger.Info()
	status := "success"
	if !clean.Success {
		e = a.logger.Warn()
		status = "failed"
	}
	e = e.Str("event", clean.Event).Str("status", status)

	if clean.Username != "" {
		e = e.Str("username", clean.Username)
	}
	if clean.SessionID != "" {
		e = e.Str("session_id", clean.SessionID)
	}
	if clean.IPAddress != "" {
		e = e.Str("ip", clean.IPAddress)
	}
	if clean.Reason != "" {
		e = e.Str("reason", clean.Reason)
	}
	for k, v := range clean.Details {
		e = e.Str(k, v)
	}
	e.Msg("audit")

	if sink := currentAuditSink(); sink != nil {
		sink.Record(clean)
	}
}

func sanitize(ev *AuditEvent) *AuditEvent {
	clean := &AuditEvent{
		Event:     ev.Event,
		Username:  truncate(ev.Username, 64),
		SessionID: shortID(ev.SessionID),
		IPAddress: ev.IPAddress,
		Success:   ev.Success,
		Reason:    truncate(ev.Reason, 200),
	}
	if len(ev.Details) > 0 {
		clean.Details = make(map[string]string, len(ev.Details))
		for k, v := range ev.Details {
			if isSecretKey(k) {
				v = RedactToken(v)
			}
			clean.Details[k] = truncate(v, 200)
		}
	}
	return clean
}

// LoginSucceeded records a successful console login.
func (a *AuditLogger) LoginSucceeded(username, sessionID, ip string) {
	a.Log(&AuditEvent{Event: "login", Username: username, SessionID: sessionID, IPAddress: ip, Success: true})
}

// LoginFailed records a rejected login attempt.
func (a *AuditLogger) LoginFailed(username, ip, reason string) {
	a.Log(&AuditEvent{Event: "login", Username: username, IPAddress: ip, Reason: reason})
}

// LoggedOut records a logout. forced is true when the backend rejected the
// refresh token and the session was torn down.
func (a *AuditLogger) LoggedOut(username, sessionID string, forced bool) {
	event := "logout"
	if forced {
		event = "forced_logout"
	}
	a.Log(&AuditEvent{Event: event, Username: username, SessionID: sessionID, Success: true})
}

// TokenRefreshed records a backend token refresh.
func (a *AuditLogger) TokenRefreshed(username, sessionID string, success bool, reason string) {
	a.Log(&AuditEvent{Event: "token_refresh", Username: username, SessionID: sessionID, Success: success, Reason: reason})
}

// AccessDenied records a privilege check that failed.
func (a *AuditLogger) AccessDenied(username, privilege, path string) {
	a.Log(&AuditEvent{
		Event:    "access_denied",
		Username: username,
		Reason:   "missing privilege",
		Details:  map[string]string{"privilege": privilege, "path": path},
	})
}

// ImportFinished records a spreadsheet import.
func (a *AuditLogger) ImportFinished(username, filename string, rows, failed int, dryRun bool) {
	a.Log(&AuditEvent{
		Event:    "shipment_import",
		Username: username,
		Success:  failed == 0,
		Details: map[string]string{
			"file":    filename,
			"rows":    strconv.Itoa(rows),
			"failed":  strconv.Itoa(failed),
			"dry_run": strconv.FormatBool(dryRun),
		},
	})
}

// RecordChanged records a create, edit, activation change or delete of a
// backend record.
func (a *AuditLogger) RecordChanged(username, resource, action string, id int64) {
	a.Log(&AuditEvent{
		Event:    "record_" + action,
		Username: username,
		Success:  true,
		Details:  map[string]string{"resource": resource, "id": strconv.FormatInt(id, 10)},
	})
}

// ExportFinished records a shipment workbook export.
func (a *AuditLogger) ExportFinished(username string, rows int) {
	a.Log(&AuditEvent{
		Event:    "shipment_export",
		Username: username,
		Success:  true,
		Details:  map[string]string{"rows": strconv.Itoa(rows)},
	})
}

// AdminAction records a superuser operation such as a cache clear.
func (a *AuditLogger) AdminAction(username, action string, details map[string]string) {
	a.Log(&AuditEvent{Event: "admin_" + action, Username: username, Success: true, Details: details})
}

func isSecretKey(k string) bool {
	k = strings.ToLower(k)
	return strings.Contains(k, "token") || strings.Contains(k, "password") || strings.Contains(k, "secret")
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
