// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package authz

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"

	"github.com/tomtom215/vendorbooking/internal/config"
	"github.com/tomtom215/vendorbooking/internal/logging"
	"github.com/tomtom215/vendorbooking/internal/models"
	"github.com/tomtom215/vendorbooking/internal/rbac"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// ErrUnknownPrivilege is returned for privileges not shaped <module>.<action>.
var ErrUnknownPrivilege = errors.New("authz: malformed privilege")

// EnforcerConfig holds configuration for the Casbin enforcer.
type EnforcerConfig struct {
	// ModelPath is the path to the Casbin model file.
	// If empty, uses embedded model.
	ModelPath string

	// PolicyPath is the path to the Casbin policy file.
	// If empty, uses embedded policy.
	PolicyPath string

	// AutoReload reloads PolicyPath periodically. Ignored for the embedded policy.
	AutoReload     bool
	ReloadInterval time.Duration

	// DefaultRole is used when the backend reports a user without a role.
	DefaultRole string

	// SuperuserRoles bypass every privilege check.
	SuperuserRoles []string

	CacheEnabled bool
	CacheTTL     time.Duration
}

// DefaultEnforcerConfig returns default configuration.
func DefaultEnforcerConfig() *EnforcerConfig {
	return &EnforcerConfig{
		ReloadInterval: 30 * time.Second,
		DefaultRole:    "viewer",
		SuperuserRoles: []string{"superuser"},
		CacheEnabled:   true,
		CacheTTL:       5 * time.Minute,
	}
}

// EnforcerConfigFrom maps the security section of the console config.
func EnforcerConfigFrom(sec *config.SecurityConfig) *EnforcerConfig {
	cfg := DefaultEnforcerConfig()
	cfg.ModelPath = sec.Casbin.ModelPath
	cfg.PolicyPath = sec.Casbin.PolicyPath
	cfg.AutoReload = sec.Casbin.PolicyPath != ""
	if sec.Casbin.DefaultRole != "" {
		cfg.DefaultRole = sec.Casbin.DefaultRole
	}
	if len(sec.SuperuserRoles) > 0 {
		cfg.SuperuserRoles = sec.SuperuserRoles
	}
	cfg.CacheEnabled = sec.Casbin.CacheEnabled
	if sec.Casbin.CacheTTL > 0 {
		cfg.CacheTTL = sec.Casbin.CacheTTL
	}
	return cfg
}

// Enforcer holds the role to privilege table.
type Enforcer struct {
	config   *EnforcerConfig
	enforcer *casbin.SyncedEnforcer
	cache    *decisionCache
}

// NewEnforcer creates a new authorization enforcer.
func NewEnforcer(ctx context.Context, config *EnforcerConfig) (*Enforcer, error) {
	if config == nil {
		config = DefaultEnforcerConfig()
	}

	var m model.Model
	var err error
	if config.ModelPath != "" && fileExists(config.ModelPath) {
		m, err = model.NewModelFromFile(config.ModelPath)
	} else {
		m, err = model.NewModelFromString(embeddedModel)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	if config.PolicyPath != "" && fileExists(config.PolicyPath) {
		enforcer, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(config.PolicyPath))
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
		if err == nil {
			err = loadPolicyText(enforcer, embeddedPolicy)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	if config.AutoReload && config.PolicyPath != "" {
		enforcer.StartAutoLoadPolicy(config.ReloadInterval)
	}

	e := &Enforcer{config: config, enforcer: enforcer}
	if config.CacheEnabled {
		e.cache = newDecisionCache(config.CacheTTL)
	}

	logging.Ctx(ctx).Debug().
		Int("rules", len(e.GetPolicy())).
		Str("default_role", config.DefaultRole).
		Msg("Role table loaded")
	return e, nil
}

// loadPolicyText feeds p and g lines from CSV text into the enforcer.
func loadPolicyText(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch rule := parts[1:]; parts[0] {
		case "p":
			if len(rule) >= 3 {
				if _, err := enforcer.AddPolicy(rule[0], rule[1], rule[2]); err != nil {
					return fmt.Errorf("failed to add policy %v: %w", rule, err)
				}
			}
		case "g":
			if len(rule) >= 2 {
				if _, err := enforcer.AddGroupingPolicy(rule[0], rule[1]); err != nil {
					return fmt.Errorf("failed to add grouping policy %v: %w", rule, err)
				}
			}
		}
	}
	return nil
}

// Enforce checks whether role may perform action on module.
func (e *Enforcer) Enforce(role, module, action string) (bool, error) {
	if e.cache != nil {
		if allowed, ok := e.cache.get(role, module, action); ok {
			recordCacheLookup(true)
			return allowed, nil
		}
		recordCacheLookup(false)
	}

	allowed, err := e.enforcer.Enforce(role, module, action)
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}
	recordDecision(allowed)

	if e.cache != nil {
		e.cache.set(role, module, action, allowed)
	}
	return allowed, nil
}

// Allowed checks a dotted privilege against role.
func (e *Enforcer) Allowed(role, privilege string) (bool, error) {
	module, action, ok := rbac.SplitPrivilege(privilege)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownPrivilege, privilege)
	}
	return e.Enforce(role, module, action)
}

// IsSuperuserRole reports whether role is configured as a superuser role.
func (e *Enforcer) IsSuperuserRole(role string) bool {
	for _, r := range e.config.SuperuserRoles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// PrivilegesForRole expands role into the privileges it grants, checking
// every privilege the console knows about.
func (e *Enforcer) PrivilegesForRole(role string) ([]string, error) {
	if role == "" {
		role = e.config.DefaultRole
	}
	var out []string
	for _, p := range rbac.AllPrivileges() {
		ok, err := e.Allowed(role, p)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Resolve decides the privilege set and superuser flag for a user. An
// explicit list from the backend wins; otherwise the role table fills it in.
func (e *Enforcer) Resolve(user *models.User) (privileges []string, superuser bool, err error) {
	superuser = user.IsSuperuser || e.IsSuperuserRole(user.Role)
	if len(user.Privileges) > 0 {
		return user.Privileges, superuser, nil
	}
	privileges, err = e.PrivilegesForRole(user.Role)
	if err != nil {
		return nil, false, err
	}
	return privileges, superuser, nil
}

// SyncRoles replaces the table rows of every role that arrives with an
// explicit privilege list. Roles without privileges keep their defaults.
// It returns the number of roles replaced.
func (e *Enforcer) SyncRoles(roles []models.Role) (int, error) {
	synced := 0
	for _, role := range roles {
		if role.Name == "" || len(role.Privileges) == 0 {
			continue
		}
		rules := make([][]string, 0, len(role.Privileges))
		seen := make(map[string]bool, len(role.Privileges))
		for _, p := range role.Privileges {
			module, action, ok := rbac.SplitPrivilege(p)
			if !ok {
				logging.Warn().Str("role", role.Name).Str("privilege", p).Msg("Skipping malformed privilege")
				continue
			}
			if seen[p] {
				continue
			}
			seen[p] = true
			rules = append(rules, []string{role.Name, module, action})
		}

		if _, err := e.enforcer.RemoveFilteredPolicy(0, role.Name); err != nil {
			return synced, fmt.Errorf("failed to clear role %s: %w", role.Name, err)
		}
		if len(rules) > 0 {
			if _, err := e.enforcer.AddPolicies(rules); err != nil {
				return synced, fmt.Errorf("failed to add rules for role %s: %w", role.Name, err)
			}
		}
		synced++
	}
	if e.cache != nil && synced > 0 {
		e.cache.clear()
	}
	return synced, nil
}

// RoleInfo describes one role in the table.
type RoleInfo struct {
	Name       string   `json:"name"`
	Inherits   []string `json:"inherits"`
	Superuser  bool     `json:"superuser"`
	Privileges []string `json:"privileges"`
}

// Roles returns every role named in the table, sorted by name.
func (e *Enforcer) Roles() ([]RoleInfo, error) {
	names := make(map[string]struct{})
	for _, rule := range e.GetPolicy() {
		if len(rule) > 0 {
			names[rule[0]] = struct{}{}
		}
	}
	inherits := make(map[string][]string)
	for _, rule := range e.GetGroupingPolicy() {
		if len(rule) >= 2 {
			names[rule[0]] = struct{}{}
			names[rule[1]] = struct{}{}
			inherits[rule[0]] = append(inherits[rule[0]], rule[1])
		}
	}

	out := make([]RoleInfo, 0, len(names))
	for name := range names {
		info, err := e.roleInfo(name, inherits[name])
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Role describes a single role. ok is false when the role grants nothing
// and is not mentioned in the table.
func (e *Enforcer) Role(name string) (info RoleInfo, ok bool, err error) {
	var parents []string
	known := len(e.GetFilteredPolicy(0, name)) > 0
	for _, rule := range e.GetGroupingPolicy() {
		if len(rule) >= 2 && rule[0] == name {
			parents = append(parents, rule[1])
			known = true
		}
	}
	if !known {
		return RoleInfo{}, false, nil
	}
	info, err = e.roleInfo(name, parents)
	return info, err == nil, err
}

func (e *Enforcer) roleInfo(name string, parents []string) (RoleInfo, error) {
	privs, err := e.PrivilegesForRole(name)
	if err != nil {
		return RoleInfo{}, err
	}
	if parents == nil {
		parents = []string{}
	}
	sort.Strings(parents)
	return RoleInfo{
		Name:       name,
		Inherits:   parents,
		Superuser:  e.IsSuperuserRole(name),
		Privileges: privs,
	}, nil
}

// ErrNoAdapter is returned when SavePolicy or LoadPolicy is called
// but no file adapter is configured.
var ErrNoAdapter = errors.New("no policy adapter configured; using embedded policy")

// LoadPolicy reloads the policy file.
func (e *Enforcer) LoadPolicy() error {
	if e.config.PolicyPath == "" {
		return ErrNoAdapter
	}
	if err := e.enforcer.LoadPolicy(); err != nil {
		return err
	}
	if e.cache != nil {
		e.cache.clear()
	}
	return nil
}

// Close stops the enforcer and cleans up resources.
func (e *Enforcer) Close() {
	e.enforcer.StopAutoLoadPolicy()
	if e.cache != nil {
		e.cache.stop()
	}
}

// GetPolicy returns all policy rules.
func (e *Enforcer) GetPolicy() [][]string {
	//nolint:errcheck // GetPolicy only fails if enforcer is nil, which is a programming error
	policies, _ := e.enforcer.GetPolicy()
	return policies
}

// GetFilteredPolicy returns filtered policy rules.
// fieldIndex: 0=role, 1=module, 2=action
func (e *Enforcer) GetFilteredPolicy(fieldIndex int, fieldValues ...string) [][]string {
	//nolint:errcheck // GetFilteredPolicy only fails if enforcer is nil, which is a programming error
	policies, _ := e.enforcer.GetFilteredPolicy(fieldIndex, fieldValues...)
	return policies
}

// GetGroupingPolicy returns all role inheritance rules.
func (e *Enforcer) GetGroupingPolicy() [][]string {
	//nolint:errcheck // GetGroupingPolicy only fails if enforcer is nil, which is a programming error
	policies, _ := e.enforcer.GetGroupingPolicy()
	return policies
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
