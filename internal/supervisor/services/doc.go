// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

/*
Package services adapts console components to suture.Service.

Components that already loop on a context, like auth.Manager (session
janitor) and cache.Cache (expiry janitor), are added to the tree directly.
This package covers the ones that need translation:

HTTPServerService wraps *http.Server. ListenAndServe runs in a goroutine and
context cancellation triggers Shutdown with a drain timeout.

BadgerGCService runs value log GC on the persistent session store at a fixed
interval. Only wired when security.session_store is "badger".

Every wrapper implements fmt.Stringer so supervisor events name it.
*/
package services
