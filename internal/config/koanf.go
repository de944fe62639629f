// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/vendorbooking/config.yaml",
	"/etc/vendorbooking/config.yml",
}

// ConfigPathEnvVar names the environment variable holding an explicit config file.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultBackendTimeout is the fixed per-request timeout for backend calls.
const DefaultBackendTimeout = 10 * time.Second

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			Environment:     "development",
		},
		Backend: BackendConfig{
			BaseURL:   "",
			Timeout:   DefaultBackendTimeout,
			RateLimit: 50,
			RateBurst: 20,
			UserAgent: "vendorbooking-console",
			Breaker: BreakerConfig{
				Enabled:      true,
				MaxRequests:  3,
				Interval:     time.Minute,
				Timeout:      30 * time.Second,
				MinRequests:  10,
				FailureRatio: 0.6,
			},
		},
		Security: SecurityConfig{
			SessionTimeout:   8 * time.Hour,
			SessionStore:     "memory",
			SessionStorePath: "/data/sessions",
			CookieName:       "vbt_session",
			CookieSecure:     true,
			RateLimitReqs:    300,
			RateLimitWindow:  time.Minute,
			LoginRateLimit:   10,
			LockoutAttempts:  5,
			LockoutDuration:  15 * time.Minute,
			CORSOrigins:      []string{},
			SuperuserRoles:   []string{"superuser"},
			Casbin: CasbinConfig{
				DefaultRole:  "viewer",
				CacheEnabled: true,
				CacheTTL:     5 * time.Minute,
			},
		},
		Cache: CacheConfig{
			Enabled:         true,
			TTL:             30 * time.Second,
			CleanupInterval: time.Minute,
		},
		Import: ImportConfig{
			MaxFileSize: 10 << 20,
			MaxRows:     5000,
			ExportLimit: DefaultExportLimit,
			LookupLimit: DefaultLookupLimit,
		},
		Audit: AuditConfig{
			Enabled:         true,
			Store:           "memory",
			MaxEvents:       10000,
			BufferSize:      1000,
			Retention:       90 * 24 * time.Hour,
			CleanupInterval: time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// sliceConfigPaths hold comma-separated lists when set from the environment.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"security.superuser_roles",
}

// envMappings maps lower-cased environment variable names to koanf paths.
// Unmapped variables are ignored so unrelated environment never leaks in.
var envMappings = map[string]string{
	"http_port":               "server.port",
	"http_host":               "server.host",
	"http_read_timeout":       "server.read_timeout",
	"http_write_timeout":      "server.write_timeout",
	"http_idle_timeout":       "server.idle_timeout",
	"shutdown_timeout":        "server.shutdown_timeout",
	"environment":             "server.environment",
	"backend_url":             "backend.base_url",
	"backend_timeout":         "backend.timeout",
	"backend_rate_limit":      "backend.rate_limit",
	"backend_rate_burst":      "backend.rate_burst",
	"backend_user_agent":      "backend.user_agent",
	"backend_breaker_enabled": "backend.breaker.enabled",
	"backend_breaker_timeout": "backend.breaker.timeout",
	"jwt_secret":              "security.jwt_secret",
	"session_timeout":         "security.session_timeout",
	"session_store":           "security.session_store",
	"session_store_path":      "security.session_store_path",
	"session_cookie_name":     "security.cookie_name",
	"session_cookie_secure":   "security.cookie_secure",
	"rate_limit_requests":     "security.rate_limit_requests",
	"rate_limit_window":       "security.rate_limit_window",
	"disable_rate_limit":      "security.rate_limit_disabled",
	"login_rate_limit":        "security.login_rate_limit",
	"lockout_attempts":        "security.lockout_attempts",
	"lockout_duration":        "security.lockout_duration",
	"cors_origins":            "security.cors_origins",
	"superuser_roles":         "security.superuser_roles",
	"casbin_model_path":       "security.casbin.model_path",
	"casbin_policy_path":      "security.casbin.policy_path",
	"casbin_default_role":     "security.casbin.default_role",
	"casbin_cache_enabled":    "security.casbin.cache_enabled",
	"casbin_cache_ttl":        "security.casbin.cache_ttl",
	"cache_enabled":           "cache.enabled",
	"cache_ttl":               "cache.ttl",
	"cache_cleanup_interval":  "cache.cleanup_interval",
	"import_max_file_size":    "import.max_file_size",
	"import_max_rows":         "import.max_rows",
	"import_export_limit":     "import.export_limit",
	"import_lookup_limit":     "import.lookup_limit",
	"audit_enabled":           "audit.enabled",
	"audit_store":             "audit.store",
	"audit_max_events":        "audit.max_events",
	"audit_retention":         "audit.retention",
	"audit_buffer_size":       "audit.buffer_size",
	"audit_cleanup_interval":  "audit.cleanup_interval",
	"log_level":               "logging.level",
	"log_format":              "logging.format",
	"log_caller":              "logging.caller",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

func load(validate func(*Config) error) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if err := k.Set(path, out); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}
