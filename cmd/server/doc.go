// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

/*
Package main is the console server.

The server sits between browsers (or vbtctl) and the booking REST backend.
It holds console sessions, keeps each user's backend tokens server-side,
gates every route by privilege and turns shipment spreadsheets into backend
calls.

# Startup

 1. Configuration: koanf (defaults, config.yaml, environment)
 2. Logging: zerolog, JSON or console
 3. Session store: memory or BadgerDB
 4. Backend client: rate limiter and circuit breaker
 5. Authz: casbin role to privilege table
 6. Session manager, list cache, submit guard
 7. Audit trail: memory ring or BadgerDB, fed by the audit logger
 8. Chi router
 9. Supervisor tree: janitors, the audit writer and the HTTP server

# Configuration

	# Listener
	HTTP_PORT=8080
	HTTP_HOST=0.0.0.0
	SHUTDOWN_TIMEOUT=15s

	# Backend
	BACKEND_URL=https://booking.example.com/api/v1
	BACKEND_TIMEOUT=10s
	BACKEND_BREAKER_ENABLED=true

	# Sessions
	JWT_SECRET=<32+ chars>
	SESSION_TIMEOUT=8h
	SESSION_STORE=badger        # or memory
	SESSION_STORE_PATH=/data/sessions

	# Audit trail
	AUDIT_ENABLED=true
	AUDIT_STORE=badger          # or memory; badger needs SESSION_STORE=badger
	AUDIT_RETENTION=2160h

	# Logging
	LOG_LEVEL=info
	LOG_FORMAT=json

A config.yaml in the working directory (or at CONFIG_PATH) is read before
the environment.

# Signals

SIGINT and SIGTERM cancel the supervisor tree. The HTTP server drains
in-flight requests for up to SHUTDOWN_TIMEOUT; services still running after
that are logged by name.
*/
package main
