// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

// Package backend is the HTTP client for the remote booking REST API.
//
// A Client owns the transport concerns shared by every call:
//
//   - a fixed per-request timeout (10s by default)
//   - bearer authentication through a TokenSource
//   - exactly one token refresh and one retry when the backend answers 401;
//     the retried request is marked so it can never trigger another refresh,
//     and a failed refresh or a second 401 invalidates the token source
//   - a circuit breaker that fails fast while the backend is down
//   - an outbound token-bucket rate limit
//
// Services binds a Client to one TokenSource and exposes a typed Resource per
// REST collection (carriers, companies, customers, ...). Each Resource offers
// List, Get, Create, Update, Delete and SetActive.
//
// Every failure is returned as *Error carrying a Kind (timeout, network,
// unauthorized, forbidden, not found, validation, rate limited, server,
// unavailable). UserMessage turns any error into the text shown to the user.
package backend
