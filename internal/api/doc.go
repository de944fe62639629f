// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

/*
Package api provides the HTTP REST API of the booking console.

The console holds no business data of its own. Every collection endpoint
forwards to the remote booking backend with the caller's backend tokens,
after the console has checked the caller's privileges, validated the form
and made sure the same form is not already being submitted.

Key Components:

  - Router: chi route tree and middleware stack
  - Handler: request handlers, one file per area
  - Response formatting: every response uses the APIResponse envelope
  - Error handling: Classify maps any error to a status and error code

API Categories:

1. Health (/api/v1/health/live, /api/v1/health/ready) and /metrics.

2. Authentication (/api/v1/auth/):
  - login, logout, me, can

3. Collections (/api/v1/{resource}):
  - carriers, companies, customers, suppliers, ports, container-types,
    container-thresholds, container-priorities, users, roles,
    shipment-orders
  - GET list and get, POST create, PUT update, PATCH /{id}/active,
    DELETE

4. Shipment workbooks (/api/v1/shipment-orders/):
  - POST import (multipart, mode=upload|rows, dry_run=true)
  - GET export, GET template

5. Dashboard and modules (/api/v1/dashboard, /api/v1/modules).

6. Administration (/api/v1/authz/, /api/v1/admin/), superuser only.

Usage Example:

	handler, err := api.NewHandler(api.HandlerDeps{
	    Config:   cfg,
	    Client:   client,
	    Auth:     manager,
	    Sessions: sessions,
	    CSRF:     csrf,
	    Cache:    listCache,
	})
	if err != nil {
	    return err
	}
	router := api.NewRouter(handler, api.ChiMiddlewareConfigFrom(&cfg.Security))
	http.ListenAndServe(":8080", router.Setup())

Error Codes:

Error responses carry a stable code in error.code, for example
SESSION_EXPIRED (the client must log in again), SUBMIT_IN_PROGRESS (the
same form is already being saved), PRIVILEGES_LOADING (retry shortly) and
VALIDATION_FAILED (error.details.fields maps form fields to messages).
*/
package api
