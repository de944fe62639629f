// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const minJWTSecretLength = 32

var validLogFormats = map[string]bool{"json": true, "console": true}

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
}

// Validate checks the full server configuration.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateBackend,
		c.validateSecurity,
		c.validateCache,
		c.validateImport,
		c.validateAudit,
		c.validateLogging,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

// ValidateClient checks the sections used by vbtctl.
func (c *Config) ValidateClient() error {
	if err := c.validateBackend(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("HTTP_READ_TIMEOUT and HTTP_WRITE_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateBackend() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("BACKEND_URL is required")
	}
	if err := validateBaseURL(c.Backend.BaseURL); err != nil {
		return fmt.Errorf("BACKEND_URL is invalid: %w", err)
	}
	if c.Backend.Timeout <= 0 || c.Backend.Timeout > 2*time.Minute {
		return fmt.Errorf("BACKEND_TIMEOUT must be between 0 and 2m, got %s", c.Backend.Timeout)
	}
	if c.Backend.RateLimit < 0 {
		return fmt.Errorf("BACKEND_RATE_LIMIT must not be negative")
	}
	if c.Backend.RateLimit > 0 && c.Backend.RateBurst < 1 {
		return fmt.Errorf("BACKEND_RATE_BURST must be at least 1 when rate limiting is enabled")
	}
	b := c.Backend.Breaker
	if b.Enabled && (b.FailureRatio <= 0 || b.FailureRatio > 1) {
		return fmt.Errorf("backend.breaker.failure_ratio must be in (0, 1]")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	s := c.Security
	if len(s.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}
	if s.SessionTimeout < time.Minute {
		return fmt.Errorf("SESSION_TIMEOUT must be at least 1m")
	}
	switch s.SessionStore {
	case "memory":
	case "badger":
		if s.SessionStorePath == "" {
			return fmt.Errorf("SESSION_STORE_PATH is required when SESSION_STORE=badger")
		}
	default:
		return fmt.Errorf("SESSION_STORE must be memory or badger, got %q", s.SessionStore)
	}
	if s.CookieName == "" {
		return fmt.Errorf("SESSION_COOKIE_NAME must not be empty")
	}
	if !s.RateLimitDisabled {
		if s.RateLimitReqs < 1 || s.RateLimitReqs > 100000 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be between 1 and 100000")
		}
		if s.RateLimitWindow < time.Second {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be at least 1s")
		}
	}
	if s.LockoutAttempts < 0 {
		return fmt.Errorf("LOCKOUT_ATTEMPTS must not be negative")
	}
	if s.LockoutAttempts > 0 && s.LockoutDuration < time.Second {
		return fmt.Errorf("LOCKOUT_DURATION must be at least 1s")
	}
	if c.Server.IsProduction() {
		for _, o := range s.CORSOrigins {
			if strings.TrimSpace(o) == "*" {
				return fmt.Errorf("CORS_ORIGINS must not contain * in production")
			}
		}
		if !s.CookieSecure {
			return fmt.Errorf("SESSION_COOKIE_SECURE must be true in production")
		}
	}
	if s.Casbin.DefaultRole == "" {
		return fmt.Errorf("CASBIN_DEFAULT_ROLE must not be empty")
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive when the cache is enabled")
	}
	return nil
}

func (c *Config) validateImport() error {
	if c.Import.MaxFileSize < 1024 {
		return fmt.Errorf("IMPORT_MAX_FILE_SIZE must be at least 1KiB")
	}
	if c.Import.MaxRows < 1 {
		return fmt.Errorf("IMPORT_MAX_ROWS must be at least 1")
	}
	if c.Import.ExportLimit < 0 || c.Import.LookupLimit < 0 {
		return fmt.Errorf("IMPORT_EXPORT_LIMIT and IMPORT_LOOKUP_LIMIT must not be negative")
	}
	return nil
}

func (c *Config) validateAudit() error {
	a := c.Audit
	if !a.Enabled {
		return nil
	}
	switch a.Store {
	case "memory":
		if a.MaxEvents < 1 {
			return fmt.Errorf("AUDIT_MAX_EVENTS must be at least 1")
		}
	case "badger":
		if c.Security.SessionStore != "badger" {
			return fmt.Errorf("AUDIT_STORE=badger requires SESSION_STORE=badger")
		}
	default:
		return fmt.Errorf("AUDIT_STORE must be memory or badger, got %q", a.Store)
	}
	if a.BufferSize < 1 {
		return fmt.Errorf("audit.buffer_size must be at least 1")
	}
	if a.Retention < time.Hour {
		return fmt.Errorf("AUDIT_RETENTION must be at least 1h")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// validateBaseURL accepts http(s) URLs with an optional path prefix.
func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got: %s", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("must not contain a query or fragment")
	}
	return nil
}
