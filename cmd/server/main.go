// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/vendorbooking/internal/api"
	"github.com/tomtom215/vendorbooking/internal/audit"
	"github.com/tomtom215/vendorbooking/internal/auth"
	"github.com/tomtom215/vendorbooking/internal/authz"
	"github.com/tomtom215/vendorbooking/internal/backend"
	"github.com/tomtom215/vendorbooking/internal/cache"
	"github.com/tomtom215/vendorbooking/internal/config"
	"github.com/tomtom215/vendorbooking/internal/forms"
	"github.com/tomtom215/vendorbooking/internal/logging"
	"github.com/tomtom215/vendorbooking/internal/middleware"
	"github.com/tomtom215/vendorbooking/internal/supervisor"
	"github.com/tomtom215/vendorbooking/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("backend", cfg.Backend.BaseURL).
		Str("session_store", cfg.Security.SessionStore).
		Str("environment", cfg.Server.Environment).
		Msg("Starting vendor booking console")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize console")
	}
	defer a.Close()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}
	a.supervise(tree)

	logging.Info().Str("addr", a.server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for services to stop")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}
	logging.Info().Msg("Console stopped")
}

// app holds the wired console.
type app struct {
	cfg      *config.Config
	stores   *auth.SessionStoreFactory
	enforcer *authz.Enforcer
	manager  *auth.Manager
	cache    *cache.Cache
	trail    *audit.Trail
	server   *http.Server
}

// newApp builds every component from cfg. The caller must Close it.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	var err error
	a.stores, err = auth.NewSessionStoreFactoryFromConfig(&cfg.Security)
	if err != nil {
		return nil, err
	}
	store := a.stores.CreateStore()

	client, err := backend.NewClient(&cfg.Backend)
	if err != nil {
		return nil, fmt.Errorf("backend client: %w", err)
	}

	a.enforcer, err = authz.NewEnforcer(ctx, authz.EnforcerConfigFrom(&cfg.Security))
	if err != nil {
		return nil, fmt.Errorf("authz enforcer: %w", err)
	}

	if cfg.Cache.Enabled {
		a.cache = cache.New(cfg.Cache.TTL).WithCleanupInterval(cfg.Cache.CleanupInterval)
	}

	if cfg.Audit.Enabled {
		a.trail = newAuditTrail(&cfg.Audit, a.stores)
		logging.SetAuditSink(a.trail)
	}

	sealer, err := auth.NewTokenSealer(cfg.Security.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("token sealer: %w", err)
	}
	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		return nil, fmt.Errorf("jwt manager: %w", err)
	}

	managerCfg := auth.ManagerConfig{
		Client:     client,
		Store:      store,
		Sealer:     sealer,
		JWT:        jwtManager,
		Resolver:   a.enforcer,
		SessionTTL: cfg.Security.SessionTimeout,
	}
	if a.cache != nil {
		managerCfg.Purger = a.cache
	}
	if lc := auth.LockoutConfigFrom(&cfg.Security); lc != nil {
		managerCfg.Lockout = auth.NewLockout(lc)
	}
	a.manager, err = auth.NewManager(managerCfg)
	if err != nil {
		return nil, err
	}

	handler, err := api.NewHandler(api.HandlerDeps{
		Config:   cfg,
		Client:   client,
		Auth:     a.manager,
		Sessions: auth.NewSessionMiddleware(store, jwtManager, auth.SessionMiddlewareConfigFrom(&cfg.Security), api.WriteDeny),
		CSRF:     auth.NewCSRFMiddleware(cfg.Security.JWTSecret, []string{api.LoginPath}, api.WriteDeny),
		Enforcer: a.enforcer,
		Cache:    a.cache,
		Guard:    forms.NewSubmitGuard(),
		PerfMon:  middleware.NewPerformanceMonitor(1000, 2*time.Second),
		Trail:    a.trail,
	})
	if err != nil {
		return nil, err
	}
	router := api.NewRouter(handler, api.ChiMiddlewareConfigFrom(&cfg.Security))

	a.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	ok = true
	return a, nil
}

// newAuditTrail stores events next to the sessions when both use badger.
func newAuditTrail(cfg *config.AuditConfig, stores *auth.SessionStoreFactory) *audit.Trail {
	var store audit.Store
	if db := stores.DB(); cfg.Store == "badger" && db != nil {
		store = audit.NewBadgerStore(db, cfg.Retention)
	} else {
		store = audit.NewMemoryStore(cfg.MaxEvents)
	}
	logging.Info().Str("store", cfg.Store).Dur("retention", cfg.Retention).Msg("Audit trail enabled")
	return audit.NewTrail(store, audit.Config{
		BufferSize:      cfg.BufferSize,
		Retention:       cfg.Retention,
		CleanupInterval: cfg.CleanupInterval,
	})
}

// supervise adds the listener and janitors to tree.
func (a *app) supervise(tree *supervisor.SupervisorTree) {
	tree.AddStateService(a.manager)
	if a.cache != nil {
		tree.AddStateService(a.cache)
	}
	if a.trail != nil {
		tree.AddStateService(a.trail)
	}
	if db := a.stores.DB(); db != nil {
		tree.AddStateService(services.NewBadgerGCService(db, 0))
	}
	tree.AddAPIService(services.NewHTTPServerService(a.server, a.cfg.Server.ShutdownTimeout))
}

// Close releases the enforcer and the session store.
func (a *app) Close() {
	if a.trail != nil {
		logging.SetAuditSink(nil)
	}
	if a.enforcer != nil {
		a.enforcer.Close()
	}
	if a.stores != nil {
		if err := a.stores.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing session store")
		}
	}
}
