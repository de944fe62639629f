// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package auth

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/vendorbooking/internal/models"
	"github.com/tomtom215/vendorbooking/internal/rbac"
)

// Session-related errors
var (
	// ErrSessionNotFound is returned when a session is not found in the store.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired is returned when trying to access an expired session.
	ErrSessionExpired = errors.New("session expired")
)

// Session is a logged-in console user. It carries the privilege list
// fetched from the backend at login and the sealed backend token pair.
type Session struct {
	// ID is the unique session identifier (opaque token).
	ID string `json:"id"`

	// UserID is the backend user ID.
	UserID string `json:"user_id"`

	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role,omitempty"`

	// Privileges and Superuser are resolved once at login and kept for the
	// session lifetime. Loaded stays false until they have been fetched.
	Privileges []string `json:"privileges"`
	Superuser  bool     `json:"superuser"`
	Loaded     bool     `json:"loaded"`

	// Tokens is the backend token pair sealed by a TokenSealer.
	Tokens string `json:"tokens"`

	IPAddress string `json:"ip_address,omitempty"`

	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// User returns the session's view of the backend user.
func (s *Session) User() *models.User {
	id, _ := strconv.ParseInt(s.UserID, 10, 64)
	return &models.User{
		ID:          id,
		Username:    s.Username,
		Email:       s.Email,
		FullName:    s.FullName,
		Role:        s.Role,
		IsSuperuser: s.Superuser,
		Privileges:  append([]string(nil), s.Privileges...),
		IsActive:    true,
	}
}

// Gate returns an RBAC gate for the session. It is still loading when the
// privilege list has not been fetched yet.
func (s *Session) Gate() *rbac.Gate {
	if !s.Loaded {
		return rbac.NewGate()
	}
	return rbac.NewReadyGate(s.Privileges, s.Superuser)
}

// NewSession creates a session for user valid for duration. The privilege
// list is filled in later by SetPrivileges.
func NewSession(user *models.User, duration time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:             generateSessionID(),
		UserID:         strconv.FormatInt(user.ID, 10),
		Username:       user.Username,
		Email:          user.Email,
		FullName:       user.FullName,
		Role:           user.Role,
		CreatedAt:      now,
		ExpiresAt:      now.Add(duration),
		LastAccessedAt: now,
	}
}

// SetPrivileges records the resolved privilege list and marks it loaded.
func (s *Session) SetPrivileges(privileges []string, superuser bool) {
	s.Privileges = append([]string(nil), privileges...)
	s.Superuser = superuser
	s.Loaded = true
}

// generateSessionID returns a random v4 UUID.
func generateSessionID() string {
	return uuid.NewString()
}

// SessionStore defines the interface for session storage backends.
type SessionStore interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// Get retrieves a session by ID.
	// Returns ErrSessionNotFound if not found.
	// Returns ErrSessionExpired if the session exists but is expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Update updates an existing session.
	// Returns ErrSessionNotFound if not found.
	Update(ctx context.Context, session *Session) error

	// Delete removes a session by ID.
	// Does not return error if session doesn't exist.
	Delete(ctx context.Context, id string) error

	// DeleteByUserID removes all sessions for a user.
	// Returns the count of deleted sessions.
	DeleteByUserID(ctx context.Context, userID string) (int, error)

	// Touch updates the session's last accessed time and extends expiry.
	Touch(ctx context.Context, id string, newExpiry time.Time) error

	// CleanupExpired removes all expired sessions.
	// Returns the count of deleted sessions.
	CleanupExpired(ctx context.Context) (int, error)

	// Count returns the number of stored sessions, expired or not.
	Count(ctx context.Context) (int, error)
}

// MemorySessionStore is an in-memory implementation of SessionStore.
// Sessions do not survive a restart; use the badger store for that.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

var _ SessionStore = (*MemorySessionStore)(nil)

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*Session),
	}
}

// Create stores a new session.
func (s *MemorySessionStore) Create(_ context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = copySession(session)
	return nil
}

// Get retrieves a session by ID.
func (s *MemorySessionStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	if session.IsExpired() {
		return nil, ErrSessionExpired
	}

	return copySession(session), nil
}

// Update updates an existing session.
func (s *MemorySessionStore) Update(_ context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.ID]; !ok {
		return ErrSessionNotFound
	}

	s.sessions[session.ID] = copySession(session)
	return nil
}

// Delete removes a session by ID.
func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// DeleteByUserID removes all sessions for a user.
func (s *MemorySessionStore) DeleteByUserID(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for id, session := range s.sessions {
		if session.UserID == userID {
			delete(s.sessions, id)
			count++
		}
	}
	return count, nil
}

// Touch updates the session's last accessed time and extends expiry.
func (s *MemorySessionStore) Touch(_ context.Context, id string, newExpiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}

	session.LastAccessedAt = time.Now()
	session.ExpiresAt = newExpiry
	return nil
}

// CleanupExpired removes all expired sessions.
func (s *MemorySessionStore) CleanupExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for id, session := range s.sessions {
		if session.IsExpired() {
			delete(s.sessions, id)
			count++
		}
	}
	return count, nil
}

// Count returns the number of stored sessions.
func (s *MemorySessionStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions), nil
}

// copySession creates a deep copy of a session.
func copySession(session *Session) *Session {
	copied := *session
	if session.Privileges != nil {
		copied.Privileges = make([]string, len(session.Privileges))
		copy(copied.Privileges, session.Privileges)
	}
	return &copied
}
