// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the application configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"LANDED_DB_PATH" envDefault:"./data/landed.db"`
	SessionSecret string `env:"LANDED_SESSION_SECRET,required"`
	ServerHost    string `env:"LANDED_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"LANDED_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"LANDED_ENV" envDefault:"development"`
	LogLevel      string `env:"LANDED_LOG_LEVEL" envDefault:"info"`

	// Bearer tokens
	TokenSecret string        `env:"LANDED_TOKEN_SECRET"` // Falls back to SessionSecret
	TokenTTL    time.Duration `env:"LANDED_TOKEN_TTL" envDefault:"24h"`

	// Hosting
	BaseDomain   string `env:"LANDED_BASE_DOMAIN" envDefault:"landed.page"`
	DevHost      string `env:"LANDED_DEV_HOST" envDefault:"localhost:8080"`
	DevScheme    string `env:"LANDED_DEV_SCHEME" envDefault:"http"`
	AppSubdomain string `env:"LANDED_APP_SUBDOMAIN" envDefault:"app"`

	// Custom domain verification
	PlatformIP string        `env:"LANDED_PLATFORM_IP"` // Address custom domains must resolve to
	DNSTimeout time.Duration `env:"LANDED_DNS_TIMEOUT" envDefault:"5s"`

	// Cache configuration
	RedisURL    string `env:"LANDED_REDIS_URL"`                         // Optional Redis URL for distributed caching
	CachePrefix string `env:"LANDED_CACHE_PREFIX" envDefault:"landed:"` // Redis key prefix
	CacheTTL    int    `env:"LANDED_CACHE_TTL" envDefault:"300"`        // Default cache TTL in seconds

	// Event log housekeeping
	EventRetention time.Duration `env:"LANDED_EVENT_RETENTION" envDefault:"720h"` // 0 keeps events forever
	PruneSchedule  string        `env:"LANDED_PRUNE_SCHEDULE" envDefault:"0 3 * * *"`

	// Seeding configuration
	DoSeed bool `env:"LANDED_DO_SEED" envDefault:"false"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// SigningKey returns the key used to sign bearer tokens.
func (c Config) SigningKey() string {
	if c.TokenSecret != "" {
		return c.TokenSecret
	}
	return c.SessionSecret
}

// AppHost returns the production application hostname, e.g. app.landed.page.
func (c Config) AppHost() string {
	return c.AppSubdomain + "." + c.BaseDomain
}

// DevAppHost returns the development application hostname, e.g. app.localhost:8080.
func (c Config) DevAppHost() string {
	return c.AppSubdomain + "." + c.DevHost
}

// PublicURL returns the canonical URL of a page published under subdomain.
func (c Config) PublicURL(subdomain, slug string) string {
	return "https://" + subdomain + "." + c.BaseDomain + "/" + url.PathEscape(slug)
}

// DevPublicURL returns the preview URL of a page served through the development host.
func (c Config) DevPublicURL(subdomain, slug string) string {
	return c.DevScheme + "://" + c.DevHost + "/" + subdomain + "/" + url.PathEscape(slug)
}

// VerificationEnabled returns true if custom domains can be verified.
func (c Config) VerificationEnabled() bool {
	return c.PlatformIP != ""
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("LANDED_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("LANDED_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("LANDED_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	cfg.BaseDomain = strings.ToLower(strings.TrimSpace(cfg.BaseDomain))
	cfg.DevHost = strings.ToLower(strings.TrimSpace(cfg.DevHost))
	if cfg.BaseDomain == "" {
		return nil, fmt.Errorf("LANDED_BASE_DOMAIN must not be empty")
	}
	if cfg.DNSTimeout <= 0 {
		return nil, fmt.Errorf("LANDED_DNS_TIMEOUT must be positive, got %s", cfg.DNSTimeout)
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
