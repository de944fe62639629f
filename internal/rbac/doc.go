// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

// Package rbac implements the privilege gate that guards every console route.
//
// A Gate is created per session in the loading state. Once the user's privilege
// list has been fetched from the booking backend, Load moves it to ready and
// every later decision is a set lookup:
//
//	HasAccess(p) = privileges.has(p) || superuser
//
// Decisions requested while the gate is still loading deny. There is no role
// hierarchy at this level; roles are flattened into privileges by
// internal/authz before Load is called.
//
// # Privileges
//
// Privileges are named <module>.<action>, where action is one of view,
// create, edit or delete. A few extra privileges cover operations that are
// not plain CRUD:
//
//	shipment_order.import
//	shipment_order.export
//	admin.access
//	dashboard.view
//
// # Modules
//
// Modules lists every navigable console area with the privilege needed to
// enter it. CanAccessModule denies unknown module IDs unless the user is a
// superuser.
//
// # HTTP
//
// Middleware.RequirePrivilege and Middleware.RequireModule read the session's
// Gate from the request context. They answer 403 on deny and 503 while the
// gate is loading.
package rbac
