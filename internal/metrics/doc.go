// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

// Package metrics defines the Prometheus collectors exported on /metrics.
//
// Collectors are registered with promauto at package init and grouped by
// subsystem: console API, backend client, circuit breaker, list cache, sessions,
// spreadsheet import and the audit trail.
package metrics
