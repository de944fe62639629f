// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

// Package logging provides the zerolog-based structured logger used across the
// console server and the vbtctl CLI.
//
// The package keeps one global logger that is configured once at startup:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("resource", "carriers").Msg("list served")
//
// Request-scoped logging picks up the request and correlation IDs stored by the
// HTTP middleware:
//
//	logging.Ctx(ctx).Warn().Err(err).Msg("backend call failed")
//
// # Configuration
//
// Level, format and caller reporting come from the logging section of the
// application config (LOG_LEVEL, LOG_FORMAT, LOG_CALLER).
//
// # Secrets
//
// Bearer and refresh tokens must never be written to logs verbatim. Use
// RedactToken, or the AuditLogger which sanitizes its fields.
//
// # Supervisor Integration
//
// NewSlogLogger returns an slog.Logger backed by zerolog so sutureslog can report
// service restarts through the same pipeline.
package logging
