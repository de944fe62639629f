// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

/*
Package middleware provides HTTP middleware components for the console.

Key Components:

  - RequestID: request and correlation IDs for structured logging
  - PrometheusMetrics: request count, latency and in-flight gauge, labelled
    by chi route pattern
  - PerformanceMonitor: sliding window of recent requests with per-route
    percentiles, served on the admin performance endpoint

Middleware Stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(perfMon.Middleware)

Route patterns are only known once chi has matched the route, so both
recorders read the pattern after calling the next handler.
*/
package middleware
