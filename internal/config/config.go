// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package config

import "time"

// Config is the complete console configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Backend  BackendConfig  `koanf:"backend"`
	Security SecurityConfig `koanf:"security"`
	Cache    CacheConfig    `koanf:"cache"`
	Import   ImportConfig   `koanf:"import"`
	Audit    AuditConfig    `koanf:"audit"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig controls the console HTTP listener.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// IsProduction reports whether the console runs with production checks.
func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// BackendConfig describes the remote booking REST API.
type BackendConfig struct {
	// BaseURL is the API root, e.g. https://booking.example.com/api/v1.
	BaseURL string `koanf:"base_url"`

	// Timeout bounds every backend request, including the retried one after a
	// token refresh. The console default is 10s.
	Timeout time.Duration `koanf:"timeout"`

	// RateLimit is the outbound request rate in requests per second. 0 disables it.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`

	UserAgent string `koanf:"user_agent"`

	Breaker BreakerConfig `koanf:"breaker"`
}

// BreakerConfig tunes the circuit breaker in front of the backend.
type BreakerConfig struct {
	Enabled      bool          `koanf:"enabled"`
	MaxRequests  uint32        `koanf:"max_requests"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	MinRequests  uint32        `koanf:"min_requests"`
	FailureRatio float64       `koanf:"failure_ratio"`
}

// SecurityConfig covers console sessions, rate limiting and RBAC.
type SecurityConfig struct {
	JWTSecret      string        `koanf:"jwt_secret"`
	SessionTimeout time.Duration `koanf:"session_timeout"`

	// SessionStore is "memory" or "badger".
	SessionStore     string `koanf:"session_store"`
	SessionStorePath string `koanf:"session_store_path"`

	CookieName   string `koanf:"cookie_name"`
	CookieSecure bool   `koanf:"cookie_secure"`

	RateLimitReqs     int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	LoginRateLimit    int           `koanf:"login_rate_limit"`

	// LockoutAttempts failed logins lock a username for LockoutDuration,
	// doubling on each repeat up to a day. 0 disables lockout.
	LockoutAttempts int           `koanf:"lockout_attempts"`
	LockoutDuration time.Duration `koanf:"lockout_duration"`

	CORSOrigins []string `koanf:"cors_origins"`

	// SuperuserRoles are backend role names treated as superuser.
	SuperuserRoles []string `koanf:"superuser_roles"`

	Casbin CasbinConfig `koanf:"casbin"`
}

// CasbinConfig points at the role to privilege table.
type CasbinConfig struct {
	// ModelPath and PolicyPath override the embedded model and policy.
	ModelPath    string        `koanf:"model_path"`
	PolicyPath   string        `koanf:"policy_path"`
	DefaultRole  string        `koanf:"default_role"`
	CacheEnabled bool          `koanf:"cache_enabled"`
	CacheTTL     time.Duration `koanf:"cache_ttl"`
}

// CacheConfig controls the per-user list cache.
type CacheConfig struct {
	Enabled         bool          `koanf:"enabled"`
	TTL             time.Duration `koanf:"ttl"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
}

// ImportConfig bounds shipment spreadsheet uploads and downloads.
type ImportConfig struct {
	MaxFileSize int64 `koanf:"max_file_size"`
	MaxRows     int   `koanf:"max_rows"`

	// ExportLimit caps the orders in one export and LookupLimit each master
	// data collection loaded for code mapping. Zero takes the default.
	ExportLimit int `koanf:"export_limit"`
	LookupLimit int `koanf:"lookup_limit"`
}

// Import defaults for the caps.
const (
	DefaultExportLimit = 50000
	DefaultLookupLimit = 10000
)

// Exports returns ExportLimit or its default.
func (c ImportConfig) Exports() int {
	if c.ExportLimit > 0 {
		return c.ExportLimit
	}
	return DefaultExportLimit
}

// Lookups returns LookupLimit or its default.
func (c ImportConfig) Lookups() int {
	if c.LookupLimit > 0 {
		return c.LookupLimit
	}
	return DefaultLookupLimit
}

// AuditConfig controls the queryable audit trail behind /admin/audit.
type AuditConfig struct {
	Enabled bool `koanf:"enabled"`

	// Store is "memory" or "badger". The badger store shares the session
	// database, so it needs SessionStore "badger".
	Store     string `koanf:"store"`
	MaxEvents int    `koanf:"max_events"`

	BufferSize      int           `koanf:"buffer_size"`
	Retention       time.Duration `koanf:"retention"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
}

// LoggingConfig configures internal/logging.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads and validates the server configuration.
func Load() (*Config, error) {
	return load((*Config).Validate)
}

// LoadForCLI reads configuration and validates only what vbtctl needs.
// overrides run before validation so command-line flags can fill in what
// the file and environment leave out.
func LoadForCLI(overrides ...func(*Config)) (*Config, error) {
	return load(func(c *Config) error {
		for _, o := range overrides {
			o(c)
		}
		return c.ValidateClient()
	})
}
