// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package rbac

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrNotReady is returned when a decision is requested before the gate has
// received the user's privileges.
var ErrNotReady = errors.New("rbac: privileges not loaded")

// State is the lifecycle state of a Gate.
type State int

const (
	// StateLoading means the privilege list has not arrived yet.
	StateLoading State = iota
	// StateReady means decisions are answered from the loaded set.
	StateReady
)

func (s State) String() string {
	if s == StateReady {
		return "ready"
	}
	return "loading"
}

// Gate answers privilege questions for one authenticated session.
type Gate struct {
	mu         sync.RWMutex
	state      State
	privileges map[string]struct{}
	superuser  bool
	ready      chan struct{}
	readyOnce  sync.Once
}

// NewGate returns a gate in the loading state.
func NewGate() *Gate {
	return &Gate{
		privileges: make(map[string]struct{}),
		ready:      make(chan struct{}),
	}
}

// NewReadyGate is shorthand for NewGate followed by Load.
func NewReadyGate(privileges []string, superuser bool) *Gate {
	g := NewGate()
	g.Load(privileges, superuser)
	return g
}

// Load replaces the privilege set and marks the gate ready. Calling it again
// swaps the set in place; the gate never returns to loading.
func (g *Gate) Load(privileges []string, superuser bool) {
	set := make(map[string]struct{}, len(privileges))
	for _, p := range privileges {
		if p != "" {
			set[p] = struct{}{}
		}
	}

	g.mu.Lock()
	g.privileges = set
	g.superuser = superuser
	g.state = StateReady
	g.mu.Unlock()

	g.readyOnce.Do(func() { close(g.ready) })
}

// State reports whether the gate is loading or ready.
func (g *Gate) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// Ready reports whether the privilege set has been loaded.
func (g *Gate) Ready() bool {
	return g.State() == StateReady
}

// WaitReady blocks until the gate is ready or ctx is done.
func (g *Gate) WaitReady(ctx context.Context) error {
	select {
	case <-g.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HasAccess reports whether the session holds required or is a superuser.
// It denies while loading.
func (g *Gate) HasAccess(required string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.state != StateReady {
		return false
	}
	if g.superuser {
		return true
	}
	_, ok := g.privileges[required]
	return ok
}

// Can is HasAccess with an ErrNotReady distinction for callers that need to
// tell "denied" apart from "not yet known".
func (g *Gate) Can(privilege string) (bool, error) {
	if !g.Ready() {
		return false, ErrNotReady
	}
	return g.HasAccess(privilege), nil
}

// CanAccessModule checks the privilege registered for moduleID.
func (g *Gate) CanAccessModule(moduleID string) bool {
	m, ok := FindModule(moduleID)
	if !ok {
		return g.IsSuperuser()
	}
	return g.HasAccess(m.Privilege)
}

// IsSuperuser reports the superuser flag once ready.
func (g *Gate) IsSuperuser() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state == StateReady && g.superuser
}

// IsAdmin is true for superusers and holders of admin.access.
func (g *Gate) IsAdmin() bool {
	return g.HasAccess(PrivAdminAccess)
}

// Privileges returns the loaded set, sorted.
func (g *Gate) Privileges() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, 0, len(g.privileges))
	for p := range g.privileges {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// ModuleAccess pairs a module with the session's access to it.
type ModuleAccess struct {
	Module
	Accessible bool `json:"accessible"`
}

// ModuleList evaluates every registered module against the gate.
func (g *Gate) ModuleList() []ModuleAccess {
	out := make([]ModuleAccess, 0, len(Modules))
	for _, m := range Modules {
		out = append(out, ModuleAccess{Module: m, Accessible: g.HasAccess(m.Privilege)})
	}
	return out
}

// AccessibleModules returns the IDs of modules the session may enter.
func (g *Gate) AccessibleModules() []string {
	var out []string
	for _, m := range Modules {
		if g.HasAccess(m.Privilege) {
			out = append(out, m.ID)
		}
	}
	return out
}

type gateKey struct{}

// ContextWithGate attaches g to ctx.
func ContextWithGate(ctx context.Context, g *Gate) context.Context {
	return context.WithValue(ctx, gateKey{}, g)
}

// FromContext returns the gate stored by ContextWithGate, or nil.
func FromContext(ctx context.Context) *Gate {
	g, _ := ctx.Value(gateKey{}).(*Gate)
	return g
}
