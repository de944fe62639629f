// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

// Package authz holds the default role to privilege table, backed by Casbin.
//
// The booking backend is the source of truth for a user's privileges. When
// /auth/me returns an explicit privilege list it is used as-is. When it only
// names a role, the table in this package expands the role into privileges
// before they are loaded into the session's rbac.Gate.
//
// # Model
//
//	[request_definition]
//	r = sub, obj, act
//
//	[policy_definition]
//	p = sub, obj, act
//
//	[role_definition]
//	g = _, _
//
//	[policy_effect]
//	e = some(where (p.eft == allow))
//
//	[matchers]
//	m = g(r.sub, p.sub) && keyMatch(r.obj, p.obj) && (r.act == p.act || p.act == "*")
//
// sub is a role, obj a module ID and act an action, so the privilege
// "carrier.edit" is evaluated as (role, "carrier", "edit").
//
// # Default table
//
//	p, viewer, carrier, view
//	p, planner, shipment_order, import
//	p, master_data, carrier, *
//	p, superuser, *, *
//	g, admin, planner
//
// The full table is embedded from policy.csv. A file can replace it through
// security.casbin.policy_path; it is then reloaded every 30 seconds.
//
// # Syncing
//
// SyncRoles replaces the rows of every backend role that carries an explicit
// privilege list, so administrators see the same expansion the backend uses.
//
// # Usage
//
//	e, err := authz.NewEnforcer(ctx, authz.EnforcerConfigFrom(&cfg.Security))
//	if err != nil {
//	    return err
//	}
//	defer e.Close()
//
//	privs, superuser, err := e.Resolve(user)
//	gate.Load(privs, superuser)
package authz
