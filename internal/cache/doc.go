// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

/*
Package cache keeps recent list and detail responses from the booking backend
so that paging back and forth through a screen does not hit the backend again.

Entries are keyed by resource, user and a hash of the request parameters:

	carriers|alice|list:3f2a...
	carriers|alice|get:9c1b...

The resource comes first so a write can drop every user's view of that
resource with one prefix scan (InvalidateResource). Logging out drops one
user's entries across resources (PurgeUser).

Values are stored as-is; callers must treat them as read-only. Expired
entries are skipped on read and removed by the janitor, which runs as a
supervised service (Serve).

# Usage

	c := cache.New(30 * time.Second)
	page, err := cache.GetOrLoad(c, cache.Key("carriers", user, "list", params),
	    func() (*models.Page[models.Carrier], error) {
	        return svc.Carriers.List(ctx, params)
	    })
*/
package cache
