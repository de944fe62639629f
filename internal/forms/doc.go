// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

// Package forms holds one input form per entity, the duplicate-submit guard
// and the single submit path used by the console API.
//
// A form is the request body of a create or update. Field rules are struct
// tags checked by internal/validation; rules spanning several fields
// (threshold min <= max, ETA >= ETD, POL != POD, port kinds) are added by the
// form itself. Validate returns a field -> message map, nil when valid.
//
// Submit validates, takes the SubmitGuard slot for (session, form, record),
// calls the backend, releases the slot, and on success drops the cached
// lists of the resource. A second submit of the same form while the first
// is in flight fails with ErrSubmitInProgress.
package forms
