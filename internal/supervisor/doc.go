// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

/*
Package supervisor runs the console's long-lived goroutines under suture v4.

# Tree

	vbt
	├── state-layer
	│   ├── session-janitor   (auth.Manager)
	│   ├── cache-janitor     (cache.Cache, when caching is enabled)
	│   ├── audit-trail       (audit.Trail, when AUDIT_ENABLED)
	│   └── badger-gc         (services.BadgerGCService, badger store only)
	└── api-layer
	    └── http-server       (services.HTTPServerService)

A crashing service is restarted with backoff. Failures are counted per layer,
so a janitor that keeps failing does not restart the listener.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
	    ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
	    return err
	}
	tree.AddStateService(manager)
	tree.AddStateService(listCache)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

Supervisor events are logged through sutureslog, fed by the zerolog slog
bridge in internal/logging.
*/
package supervisor
