// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/vendorbooking/internal/backend"
	"github.com/tomtom215/vendorbooking/internal/logging"
	"github.com/tomtom215/vendorbooking/internal/metrics"
	"github.com/tomtom215/vendorbooking/internal/models"
)

// ErrInvalidCredentials is returned by Login when the backend rejects the
// username or password.
var ErrInvalidCredentials = errors.New("invalid username or password")

// PrivilegeResolver turns a backend user into the privilege set the gate
// checks. *authz.Enforcer implements it.
type PrivilegeResolver interface {
	Resolve(user *models.User) (privileges []string, superuser bool, err error)
}

// UserPurger drops cached state for a user on logout. *cache.Cache
// implements it.
type UserPurger interface {
	PurgeUser(user string) int
}

// ManagerConfig wires a Manager.
type ManagerConfig struct {
	Client *backend.Client
	Store  SessionStore
	Sealer *TokenSealer
	JWT    *JWTManager

	// Resolver is optional; without it the backend's privilege list and
	// superuser flag are used as-is.
	Resolver PrivilegeResolver

	// Purger is optional.
	Purger UserPurger

	// Lockout is optional; nil disables username lockout.
	Lockout *Lockout

	SessionTTL      time.Duration
	CleanupInterval time.Duration
}

// Manager owns console sessions: login through the backend, the
// per-session backend token source, logout and expiry.
type Manager struct {
	client   *backend.Client
	store    SessionStore
	sealer   *TokenSealer
	jwt      *JWTManager
	resolver PrivilegeResolver
	purger   UserPurger
	lockout  *Lockout
	ttl      time.Duration
	interval time.Duration
	audit    *logging.AuditLogger

	mu      sync.Mutex
	sources map[string]*sessionTokens
}

// sessionTokens is the live token source for one session. Requests on the
// same session share it so concurrent 401s coalesce into one refresh.
type sessionTokens struct {
	source   *backend.MemoryTokenSource
	username string
	closing  atomic.Bool
}

// NewManager validates cfg and returns a Manager.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	switch {
	case cfg.Client == nil:
		return nil, errors.New("auth: backend client is required")
	case cfg.Store == nil:
		return nil, errors.New("auth: session store is required")
	case cfg.Sealer == nil:
		return nil, errors.New("auth: token sealer is required")
	case cfg.JWT == nil:
		return nil, errors.New("auth: jwt manager is required")
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	interval := cfg.CleanupInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Manager{
		client:   cfg.Client,
		store:    cfg.Store,
		sealer:   cfg.Sealer,
		jwt:      cfg.JWT,
		resolver: cfg.Resolver,
		purger:   cfg.Purger,
		lockout:  cfg.Lockout,
		ttl:      ttl,
		interval: interval,
		audit:    logging.NewAuditLogger(),
		sources:  make(map[string]*sessionTokens),
	}, nil
}

// Store returns the session store.
func (m *Manager) Store() SessionStore { return m.store }

// JWT returns the token manager.
func (m *Manager) JWT() *JWTManager { return m.jwt }

// SessionTTL returns the configured session lifetime.
func (m *Manager) SessionTTL() time.Duration { return m.ttl }

// LoginResult is a successful login.
type LoginResult struct {
	Session *Session
	// Token is a console JWT bound to the session, for bearer clients.
	Token string
}

// Login authenticates against the backend, fetches the privilege list once
// from /auth/me and stores a new session. The session is persisted before
// the privilege fetch so a token refresh during it has somewhere to land;
// until SetPrivileges runs its gate reports loading.
func (m *Manager) Login(ctx context.Context, username, password, ip string) (*LoginResult, error) {
	start := time.Now()

	if m.lockout != nil {
		if err := m.lockout.Check(username); err != nil {
			RecordLogin("locked", 0)
			m.audit.LoginFailed(username, ip, "account locked")
			return nil, err
		}
	}

	resp, err := m.client.Login(ctx, username, password)
	if err != nil {
		if backend.Classify(err) == backend.KindUnauthorized {
			RecordLogin("invalid_credentials", 0)
			m.audit.LoginFailed(username, ip, "invalid credentials")
			if m.lockout != nil {
				if lerr := m.lockout.RecordFailure(username); lerr != nil {
					return nil, lerr
				}
			}
			return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		RecordLogin("error", 0)
		m.audit.LoginFailed(username, ip, backend.Classify(err).String())
		return nil, err
	}

	seed := resp.User
	if seed == nil {
		seed = &models.User{Username: username}
	}
	session := NewSession(seed, m.ttl)
	session.IPAddress = ip
	if session.Tokens, err = m.sealer.Seal(resp.TokenPair); err != nil {
		RecordLogin("error", 0)
		return nil, err
	}
	if err := m.store.Create(ctx, session); err != nil {
		RecordLogin("error", 0)
		return nil, fmt.Errorf("create session: %w", err)
	}

	entry := m.track(session.ID, session.Username, resp.TokenPair)
	if err := m.loadPrivileges(ctx, session, entry); err != nil {
		m.forget(session.ID)
		//nolint:errcheck // the login already failed
		m.store.Delete(context.WithoutCancel(ctx), session.ID)
		RecordLogin("error", 0)
		m.audit.LoginFailed(username, ip, "privilege fetch failed")
		return nil, err
	}

	token, err := m.jwt.GenerateToken(session)
	if err != nil {
		RecordLogin("error", 0)
		return nil, err
	}

	if m.lockout != nil {
		m.lockout.RecordSuccess(username)
	}
	RecordLogin("success", time.Since(start))
	metrics.ActiveSessions.Inc()
	m.audit.LoginSucceeded(session.Username, session.ID, ip)
	return &LoginResult{Session: session, Token: token}, nil
}

// ReloadPrivileges fetches /auth/me again and replaces the session's
// privilege list, for users whose role changed mid-session.
func (m *Manager) ReloadPrivileges(ctx context.Context, session *Session) error {
	entry, err := m.tokens(session)
	if err != nil {
		return err
	}
	return m.loadPrivileges(ctx, session, entry)
}

func (m *Manager) loadPrivileges(ctx context.Context, session *Session, entry *sessionTokens) error {
	user, err := m.client.Services(entry.source).Me(ctx)
	if err != nil {
		return fmt.Errorf("fetch privileges: %w", err)
	}

	privileges, superuser := user.Privileges, user.IsSuperuser
	if m.resolver != nil {
		if privileges, superuser, err = m.resolver.Resolve(user); err != nil {
			return fmt.Errorf("resolve privileges: %w", err)
		}
	}

	// The refresh hook may have replaced the sealed tokens meanwhile.
	current, err := m.store.Get(ctx, session.ID)
	if err != nil {
		return err
	}
	if current.UserID == "0" && user.ID != 0 {
		current.UserID = strconv.FormatInt(user.ID, 10)
	}
	current.Email = user.Email
	current.FullName = user.FullName
	current.Role = user.Role
	current.SetPrivileges(privileges, superuser)
	if err := m.store.Update(ctx, current); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	*session = *current

	logging.Ctx(ctx).Debug().
		Str("username", session.Username).
		Int("privileges", len(privileges)).
		Bool("superuser", superuser).
		Msg("Privileges loaded")
	return nil
}

// Services returns backend service wrappers authenticated as the session.
func (m *Manager) Services(session *Session) (*backend.Services, error) {
	entry, err := m.tokens(session)
	if err != nil {
		return nil, err
	}
	return m.client.Services(entry.source), nil
}

// Logout revokes the backend tokens, deletes the session and purges the
// user's cached lists. Backend failures are logged, not returned: the
// console session ends regardless.
func (m *Manager) Logout(ctx context.Context, session *Session) error {
	entry, err := m.tokens(session)
	if err == nil {
		entry.closing.Store(true)
		if lerr := m.client.Services(entry.source).Logout(ctx); lerr != nil {
			logging.CtxErr(ctx, lerr).Msg("Backend logout failed")
		}
	} else {
		m.end(ctx, session.ID, session.Username, false)
	}
	return m.store.Delete(context.WithoutCancel(ctx), session.ID)
}

// tokens returns the live token source for session, opening the sealed
// pair on first use.
func (m *Manager) tokens(session *Session) (*sessionTokens, error) {
	m.mu.Lock()
	entry, ok := m.sources[session.ID]
	m.mu.Unlock()
	if ok {
		return entry, nil
	}

	pair, err := m.sealer.Open(session.Tokens)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}
	return m.track(session.ID, session.Username, pair), nil
}

func (m *Manager) track(id, username string, pair models.TokenPair) *sessionTokens {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry, ok := m.sources[id]; ok {
		return entry
	}

	entry := &sessionTokens{username: username}
	entry.source = backend.NewMemoryTokenSource(pair, m.client.RefreshTokens, backend.TokenHooks{
		OnRefresh: func(ctx context.Context, pair models.TokenPair) error {
			return m.persistTokens(ctx, id, username, pair)
		},
		OnInvalidate: func(ctx context.Context) {
			m.end(ctx, id, username, !entry.closing.Load())
		},
	})
	m.sources[id] = entry
	return entry
}

func (m *Manager) forget(id string) {
	m.mu.Lock()
	delete(m.sources, id)
	m.mu.Unlock()
}

func (m *Manager) persistTokens(ctx context.Context, id, username string, pair models.TokenPair) error {
	ctx = context.WithoutCancel(ctx)
	session, err := m.store.Get(ctx, id)
	if err != nil {
		m.audit.TokenRefreshed(username, id, false, err.Error())
		return err
	}
	if session.Tokens, err = m.sealer.Seal(pair); err != nil {
		return err
	}
	if err := m.store.Update(ctx, session); err != nil {
		m.audit.TokenRefreshed(username, id, false, err.Error())
		return err
	}
	m.audit.TokenRefreshed(username, id, true, "")
	return nil
}

// end tears down a session. forced is true when the backend ended it.
func (m *Manager) end(ctx context.Context, id, username string, forced bool) {
	ctx = context.WithoutCancel(ctx)
	m.forget(id)
	if err := m.store.Delete(ctx, id); err != nil {
		logging.CtxErr(ctx, err).Str("username", username).Msg("Failed to delete session")
	}
	if m.purger != nil {
		m.purger.PurgeUser(username)
	}

	metrics.ActiveSessions.Dec()
	reason := "logout"
	if forced {
		reason = "forced"
		metrics.ForcedLogouts.Inc()
	}
	RecordSessionTerminated(reason, 1)
	m.audit.LoggedOut(username, id, forced)
}

// Serve runs the session janitor until ctx is done. It removes expired
// sessions and drops token sources whose session is gone.
func (m *Manager) Serve(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// String names the service in supervisor logs.
func (m *Manager) String() string { return "session-janitor" }

// Sweep runs one janitor pass.
func (m *Manager) Sweep(ctx context.Context) {
	n, err := m.store.CleanupExpired(ctx)
	if err != nil {
		logging.CtxErr(ctx, err).Msg("Session cleanup failed")
	}
	if n > 0 {
		metrics.SessionsExpired.Add(float64(n))
		RecordSessionTerminated("expired", n)
		logging.Ctx(ctx).Debug().Int("sessions", n).Msg("Expired sessions removed")
	}

	m.mu.Lock()
	ids := make([]string, 0, len(m.sources))
	for id := range m.sources {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	for _, id := range ids {
		if _, err := m.store.Get(ctx, id); errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrSessionExpired) {
			m.forget(id)
		}
	}

	if m.lockout != nil {
		m.lockout.Cleanup()
	}

	if count, err := m.store.Count(ctx); err == nil {
		metrics.ActiveSessions.Set(float64(count))
	}
}

// Tracked returns how many sessions hold a live token source.
func (m *Manager) Tracked() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sources)
}
