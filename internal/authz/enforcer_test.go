// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package authz

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/vendorbooking/internal/config"
	"github.com/tomtom215/vendorbooking/internal/models"
	"github.com/tomtom215/vendorbooking/internal/rbac"
)

func newTestEnforcer(t *testing.T) *Enforcer {
	t.Helper()
	e, err := NewEnforcer(context.Background(), DefaultEnforcerConfig())
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestPrivilegesForRole(t *testing.T) {
	t.Parallel()

	e := newTestEnforcer(t)

	tests := []struct {
		role    string
		has     []string
		hasNot  []string
		wantAll bool
	}{
		{
			role:   "viewer",
			has:    []string{"dashboard.view", "carrier.view", "shipment_order.view", "container_priority.view"},
			hasNot: []string{"carrier.edit", "user.view", "shipment_order.create", "admin.access"},
		},
		{
			role:   "planner",
			has:    []string{"shipment_order.create", "shipment_order.edit", "shipment_order.import", "shipment_order.export", "port.view"},
			hasNot: []string{"shipment_order.delete", "port.edit"},
		},
		{
			role:   "master_data",
			has:    []string{"carrier.delete", "port.create", "container_threshold.edit", "shipment_order.view"},
			hasNot: []string{"shipment_order.create", "user.view"},
		},
		{
			role: "admin",
			has:  []string{"admin.access", "user.delete", "role.edit", "carrier.edit", "shipment_order.delete", "shipment_order.import"},
		},
		{role: "superuser", wantAll: true},
		{role: "nobody", hasNot: []string{"dashboard.view"}},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			got, err := e.PrivilegesForRole(tt.role)
			if err != nil {
				t.Fatalf("PrivilegesForRole() error = %v", err)
			}
			if tt.wantAll && len(got) != len(rbac.AllPrivileges()) {
				t.Errorf("got %d privileges, want all %d", len(got), len(rbac.AllPrivileges()))
			}
			for _, p := range tt.has {
				if !contains(got, p) {
					t.Errorf("%s missing %s", tt.role, p)
				}
			}
			for _, p := range tt.hasNot {
				if contains(got, p) {
					t.Errorf("%s should not have %s", tt.role, p)
				}
			}
		})
	}
}

func TestPrivilegesForRole_DefaultRole(t *testing.T) {
	t.Parallel()

	e := newTestEnforcer(t)
	empty, err := e.PrivilegesForRole("")
	if err != nil {
		t.Fatal(err)
	}
	viewer, _ := e.PrivilegesForRole("viewer")
	if len(empty) == 0 || len(empty) != len(viewer) {
		t.Errorf("empty role should expand like viewer: %v vs %v", empty, viewer)
	}
}

func TestAllowed_MalformedPrivilege(t *testing.T) {
	t.Parallel()

	e := newTestEnforcer(t)
	if _, err := e.Allowed("viewer", "carrier"); !errors.Is(err, ErrUnknownPrivilege) {
		t.Errorf("Allowed() error = %v, want ErrUnknownPrivilege", err)
	}
	ok, err := e.Allowed("viewer", "carrier.view")
	if err != nil || !ok {
		t.Errorf("Allowed(viewer, carrier.view) = %v, %v", ok, err)
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	e := newTestEnforcer(t)

	explicit := &models.User{Username: "a", Role: "viewer", Privileges: []string{"port.edit"}}
	privs, su, err := e.Resolve(explicit)
	if err != nil {
		t.Fatal(err)
	}
	if su || len(privs) != 1 || privs[0] != "port.edit" {
		t.Errorf("explicit list should win, got %v superuser=%v", privs, su)
	}

	fromRole := &models.User{Username: "b", Role: "planner"}
	privs, _, err = e.Resolve(fromRole)
	if err != nil {
		t.Fatal(err)
	}
	if !contains(privs, "shipment_order.import") {
		t.Errorf("role expansion missing shipment_order.import: %v", privs)
	}

	if _, su, _ := e.Resolve(&models.User{Role: "SuperUser"}); !su {
		t.Error("superuser role should set the flag")
	}
	if _, su, _ := e.Resolve(&models.User{Role: "viewer", IsSuperuser: true}); !su {
		t.Error("is_superuser flag should set the flag")
	}
}

func TestSyncRoles(t *testing.T) {
	t.Parallel()

	e := newTestEnforcer(t)

	// Prime the decision cache so the sync has to clear it.
	if ok, _ := e.Allowed("viewer", "carrier.view"); !ok {
		t.Fatal("viewer should start with carrier.view")
	}

	n, err := e.SyncRoles([]models.Role{
		{Name: "viewer", Privileges: []string{"port.view", "port.view"}},
		{Name: "auditor", Privileges: []string{"carrier.view", "malformed"}},
		{Name: "planner"},
		{Name: "", Privileges: []string{"carrier.view"}},
	})
	if err != nil {
		t.Fatalf("SyncRoles() error = %v", err)
	}
	if n != 2 {
		t.Errorf("synced = %d, want 2", n)
	}

	if ok, _ := e.Allowed("viewer", "carrier.view"); ok {
		t.Error("viewer rows should have been replaced")
	}
	viewer, _ := e.PrivilegesForRole("viewer")
	if len(viewer) != 1 || viewer[0] != "port.view" {
		t.Errorf("viewer = %v, want [port.view]", viewer)
	}
	auditor, _ := e.PrivilegesForRole("auditor")
	if len(auditor) != 1 || auditor[0] != "carrier.view" {
		t.Errorf("auditor = %v, want [carrier.view]", auditor)
	}
	planner, _ := e.PrivilegesForRole("planner")
	if !contains(planner, "shipment_order.create") || !contains(planner, "port.view") {
		t.Errorf("planner should keep defaults plus inherited viewer rows: %v", planner)
	}
}

func TestRoles(t *testing.T) {
	t.Parallel()

	e := newTestEnforcer(t)
	roles, err := e.Roles()
	if err != nil {
		t.Fatal(err)
	}

	byName := make(map[string]RoleInfo, len(roles))
	for _, r := range roles {
		byName[r.Name] = r
	}
	for _, want := range []string{"viewer", "planner", "master_data", "admin", "superuser"} {
		if _, ok := byName[want]; !ok {
			t.Errorf("Roles() missing %s", want)
		}
	}
	admin := byName["admin"]
	if len(admin.Inherits) != 2 || admin.Inherits[0] != "master_data" || admin.Inherits[1] != "planner" {
		t.Errorf("admin inherits = %v", admin.Inherits)
	}
	if !byName["superuser"].Superuser {
		t.Error("superuser role should be flagged")
	}

	if _, ok, err := e.Role("nope"); ok || err != nil {
		t.Errorf("Role(nope) = %v, %v", ok, err)
	}
	info, ok, err := e.Role("planner")
	if !ok || err != nil {
		t.Fatalf("Role(planner) = %v, %v", ok, err)
	}
	if len(info.Inherits) != 1 || info.Inherits[0] != "viewer" {
		t.Errorf("planner inherits = %v", info.Inherits)
	}
}

func TestNewEnforcer_PolicyFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "policy.csv")
	if err := os.WriteFile(path, []byte("p, ops, port, view\np, ops, port, edit\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultEnforcerConfig()
	cfg.PolicyPath = path
	cfg.ReloadInterval = time.Hour
	e, err := NewEnforcer(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	defer e.Close()

	privs, _ := e.PrivilegesForRole("ops")
	if len(privs) != 2 || privs[0] != "port.edit" || privs[1] != "port.view" {
		t.Errorf("ops = %v", privs)
	}
	if viewer, _ := e.PrivilegesForRole("viewer"); len(viewer) != 0 {
		t.Errorf("embedded table should not be loaded alongside a file: %v", viewer)
	}
	if err := e.LoadPolicy(); err != nil {
		t.Errorf("LoadPolicy() error = %v", err)
	}
}

func TestLoadPolicy_NoAdapter(t *testing.T) {
	t.Parallel()

	e := newTestEnforcer(t)
	if err := e.LoadPolicy(); !errors.Is(err, ErrNoAdapter) {
		t.Errorf("LoadPolicy() = %v, want ErrNoAdapter", err)
	}
}

func TestEnforcerConfigFrom(t *testing.T) {
	t.Parallel()

	sec := &config.SecurityConfig{
		SuperuserRoles: []string{"root"},
		Casbin: config.CasbinConfig{
			DefaultRole:  "planner",
			CacheEnabled: false,
			CacheTTL:     time.Minute,
		},
	}
	cfg := EnforcerConfigFrom(sec)
	if cfg.DefaultRole != "planner" || cfg.CacheEnabled || cfg.CacheTTL != time.Minute {
		t.Errorf("unexpected config %+v", cfg)
	}
	if len(cfg.SuperuserRoles) != 1 || cfg.SuperuserRoles[0] != "root" {
		t.Errorf("SuperuserRoles = %v", cfg.SuperuserRoles)
	}
	if cfg.AutoReload {
		t.Error("AutoReload should be off without a policy path")
	}
}
