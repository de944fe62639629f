// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package backend

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/vendorbooking/internal/models"
)

// TokenSource supplies bearer tokens to the Client.
type TokenSource interface {
	// Token returns the current access token.
	Token(ctx context.Context) (string, error)

	// Refresh obtains a new access token after the backend rejected stale.
	// When another caller already replaced stale, the current token is
	// returned without contacting the backend.
	Refresh(ctx context.Context, stale string) (string, error)

	// Invalidate drops all tokens. It is the client-side logout.
	Invalidate(ctx context.Context)
}

// RefreshFunc exchanges a refresh token for a new token pair.
type RefreshFunc func(ctx context.Context, refreshToken string) (models.TokenPair, error)

// TokenHooks observe token lifecycle changes. Either hook may be nil.
type TokenHooks struct {
	// OnRefresh is called with the new pair after a successful refresh.
	OnRefresh func(ctx context.Context, pair models.TokenPair) error

	// OnInvalidate is called once when the source is invalidated.
	OnInvalidate func(ctx context.Context)
}

// MemoryTokenSource holds a token pair in memory. Concurrent refreshes for
// the same stale token share a single backend call.
type MemoryTokenSource struct {
	mu          sync.RWMutex
	pair        models.TokenPair
	invalidated bool

	refresh RefreshFunc
	hooks   TokenHooks
	group   singleflight.Group
}

var _ TokenSource = (*MemoryTokenSource)(nil)

// NewMemoryTokenSource creates a source seeded with pair.
func NewMemoryTokenSource(pair models.TokenPair, refresh RefreshFunc, hooks TokenHooks) *MemoryTokenSource {
	return &MemoryTokenSource{pair: pair, refresh: refresh, hooks: hooks}
}

// StaticTokenSource returns a source that never refreshes. vbtctl uses it
// when only an access token is supplied.
func StaticTokenSource(accessToken string) *MemoryTokenSource {
	return NewMemoryTokenSource(models.TokenPair{AccessToken: accessToken}, nil, TokenHooks{})
}

func (s *MemoryTokenSource) Token(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.invalidated || s.pair.AccessToken == "" {
		return "", ErrNoToken
	}
	return s.pair.AccessToken, nil
}

// Pair returns a copy of the current tokens.
func (s *MemoryTokenSource) Pair() models.TokenPair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair
}

func (s *MemoryTokenSource) Refresh(ctx context.Context, stale string) (string, error) {
	s.mu.RLock()
	current, refreshToken, dead := s.pair.AccessToken, s.pair.RefreshToken, s.invalidated
	s.mu.RUnlock()

	if dead {
		return "", ErrNoToken
	}
	if current != "" && current != stale {
		return current, nil
	}
	if s.refresh == nil || refreshToken == "" {
		return "", fmt.Errorf("refresh unavailable: %w", ErrNoToken)
	}

	v, err, _ := s.group.Do(stale, func() (interface{}, error) {
		s.mu.RLock()
		latest := s.pair.AccessToken
		s.mu.RUnlock()
		if latest != "" && latest != stale {
			return latest, nil
		}

		pair, err := s.refresh(ctx, refreshToken)
		if err != nil {
			return "", err
		}
		if pair.AccessToken == "" {
			return "", fmt.Errorf("refresh returned an empty access token")
		}
		if pair.RefreshToken == "" {
			pair.RefreshToken = refreshToken
		}

		s.mu.Lock()
		if s.invalidated {
			s.mu.Unlock()
			return "", ErrNoToken
		}
		s.pair = pair
		s.mu.Unlock()

		if s.hooks.OnRefresh != nil {
			if err := s.hooks.OnRefresh(ctx, pair); err != nil {
				return "", fmt.Errorf("persist refreshed token: %w", err)
			}
		}
		return pair.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *MemoryTokenSource) Invalidate(ctx context.Context) {
	s.mu.Lock()
	if s.invalidated {
		s.mu.Unlock()
		return
	}
	s.invalidated = true
	s.pair = models.TokenPair{}
	s.mu.Unlock()

	if s.hooks.OnInvalidate != nil {
		s.hooks.OnInvalidate(ctx)
	}
}
