// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

// Package audit keeps a queryable trail of the console's security events.
//
// Every logging.AuditLogger already writes its events to the structured log.
// Installing a Trail as the audit sink also stores them, so superusers can
// search them from GET /api/v1/admin/audit and download them as JSON or CEF
// for a SIEM.
//
// # Flow
//
//	AuditLogger.Log -> sanitize -> zerolog
//	                            -> Trail.Record -> buffer (chan) -> Serve -> Store
//
// Record never blocks a request: when the buffer is full the event is
// dropped and counted in vbt_audit_events_total{outcome="dropped"}.
//
// # Stores
//
//   - MemoryStore keeps the newest N events. Used with SESSION_STORE=memory.
//   - BadgerStore writes to the session database under the "audit:" prefix
//     with keys ordered by time, and sets a badger TTL equal to the
//     retention period.
//
// Serve also runs the retention sweep every CleanupInterval.
package audit
