// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

/*
Package auth owns console sessions and the HTTP middleware that enforces them.

The console never checks passwords itself. Login forwards the credentials to
the booking backend, keeps the returned access and refresh tokens sealed
inside a server-side session, and fetches the user's privilege list once from
/auth/me. Browsers receive only an opaque session cookie; scripted clients
may use the signed JWT returned alongside it.

Key Components:

  - Manager: login, logout, privilege reload and the per-session backend
    token source. Concurrent 401s on one session share a single refresh;
    a failed refresh ends the session as a forced logout.
  - SessionStore: MemorySessionStore for single-process deployments and
    BadgerSessionStore when sessions must survive a restart.
  - TokenSealer: NaCl secretbox encryption of the backend token pair at rest.
  - JWTManager: HS256 bearer tokens whose ID claim is the session ID.
  - Lockout: per-username lockout with exponential backoff after repeated
    failed logins.
  - SessionMiddleware and CSRFMiddleware: request authentication, the
    SESSION_EXPIRED response for stale cookies, and double-submit CSRF
    protection derived from the session ID.

Usage Example:

	sealer, _ := auth.NewTokenSealer(cfg.Security.JWTSecret)
	jwtManager, _ := auth.NewJWTManager(&cfg.Security)
	manager, _ := auth.NewManager(auth.ManagerConfig{
	    Client:  client,
	    Store:   auth.NewMemorySessionStore(),
	    Sealer:  sealer,
	    JWT:     jwtManager,
	    Purger:  listCache,
	    Lockout: auth.NewLockout(auth.LockoutConfigFrom(&cfg.Security)),
	})

	result, err := manager.Login(ctx, "ops", "secret", r.RemoteAddr)

Thread Safety:

All exported types are safe for concurrent use.
*/
package auth
