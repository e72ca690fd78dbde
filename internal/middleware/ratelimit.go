// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/olegiv/landed/internal/model"
)

// maxLimiters bounds the number of tracked clients before the cache is reset.
const maxLimiters = 10000

// limiterCache is a generic rate limiter cache with double-check locking.
type limiterCache[K comparable] struct {
	limiters map[K]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
}

func newLimiterCache[K comparable](rps float64, burst int) *limiterCache[K] {
	return &limiterCache[K]{
		limiters: make(map[K]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

// get returns the rate limiter for key, creating one if needed.
func (lc *limiterCache[K]) get(key K) *rate.Limiter {
	lc.mu.RLock()
	limiter, exists := lc.limiters[key]
	lc.mu.RUnlock()
	if exists {
		return limiter
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()
	if limiter, exists = lc.limiters[key]; exists {
		return limiter
	}
	if len(lc.limiters) >= maxLimiters {
		lc.limiters = make(map[K]*rate.Limiter)
	}
	limiter = rate.NewLimiter(lc.rate, lc.burst)
	lc.limiters[key] = limiter
	return limiter
}

func (lc *limiterCache[K]) size() int {
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	return len(lc.limiters)
}

// RateLimiter limits requests per client IP.
type RateLimiter struct {
	name  string
	cache *limiterCache[string]
}

// NewRateLimiter creates a per-IP limiter allowing rps requests per second
// with the given burst. name appears in logs.
func NewRateLimiter(name string, rps float64, burst int) *RateLimiter {
	return &RateLimiter{name: name, cache: newLimiterCache[string](rps, burst)}
}

// Allow reports whether a request from ip may proceed.
func (rl *RateLimiter) Allow(ip string) bool {
	return rl.cache.get(ip).Allow()
}

// Middleware rejects requests over the limit with 429 and a JSON envelope.
// Safe methods are not counted.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		ip := ClientIP(r)
		if !rl.Allow(ip) {
			slog.Warn("rate limit exceeded",
				"limiter", rl.name,
				"ip", ip,
				"path", r.URL.Path,
				"category", model.EventCategoryAuth,
			)
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "rate_limited", "Too many requests, please slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LoginProtectionConfig holds configuration for account lockout.
type LoginProtectionConfig struct {
	// MaxFailedAttempts before the account is locked (default: 5)
	MaxFailedAttempts int
	// LockoutDuration is the base lockout time, doubling with each lockout (default: 15 minutes)
	LockoutDuration time.Duration
	// AttemptWindow is the window for counting failed attempts (default: 15 minutes)
	AttemptWindow time.Duration
}

// DefaultLoginProtectionConfig returns sensible defaults.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	}
}

type loginAttempt struct {
	count       int
	firstFailed time.Time
	lockedUntil time.Time
	lockouts    int
}

// LoginProtection locks an email out after repeated failed logins.
type LoginProtection struct {
	mu       sync.Mutex
	attempts map[string]*loginAttempt
	cfg      LoginProtectionConfig
	now      func() time.Time
}

// NewLoginProtection creates a lockout tracker. Zero config fields take defaults.
func NewLoginProtection(cfg LoginProtectionConfig) *LoginProtection {
	def := DefaultLoginProtectionConfig()
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = def.MaxFailedAttempts
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = def.LockoutDuration
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = def.AttemptWindow
	}
	return &LoginProtection{
		attempts: make(map[string]*loginAttempt),
		cfg:      cfg,
		now:      time.Now,
	}
}

func loginKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsLocked reports whether email is locked and for how much longer.
func (lp *LoginProtection) IsLocked(email string) (bool, time.Duration) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	a, ok := lp.attempts[loginKey(email)]
	if !ok {
		return false, 0
	}
	if now := lp.now(); now.Before(a.lockedUntil) {
		return true, a.lockedUntil.Sub(now)
	}
	return false, 0
}

// RecordFailure records a failed login for email and reports whether the
// account is now locked.
func (lp *LoginProtection) RecordFailure(email string) (bool, time.Duration) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	key := loginKey(email)
	now := lp.now()
	a, ok := lp.attempts[key]
	if !ok {
		lp.attempts[key] = &loginAttempt{count: 1, firstFailed: now}
		lp.pruneLocked(now)
		return false, 0
	}
	if now.Sub(a.firstFailed) > lp.cfg.AttemptWindow {
		a.count = 1
		a.firstFailed = now
		return false, 0
	}

	a.count++
	if a.count < lp.cfg.MaxFailedAttempts {
		return false, 0
	}

	lockFor := lp.cfg.LockoutDuration
	for i := 0; i < a.lockouts && lockFor < 24*time.Hour; i++ {
		lockFor *= 2
	}
	lockFor = min(lockFor, 24*time.Hour)

	a.lockedUntil = now.Add(lockFor)
	a.lockouts++
	a.count = 0

	slog.Warn("account locked after failed logins",
		"lockouts", a.lockouts,
		"duration", lockFor,
		"category", model.EventCategoryAuth,
	)
	return true, lockFor
}

// RecordSuccess clears the failure history of email.
func (lp *LoginProtection) RecordSuccess(email string) {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	delete(lp.attempts, loginKey(email))
}

// pruneLocked drops stale entries once the map grows large. Callers hold mu.
func (lp *LoginProtection) pruneLocked(now time.Time) {
	if len(lp.attempts) < maxLimiters {
		return
	}
	for key, a := range lp.attempts {
		if now.After(a.lockedUntil) && now.Sub(a.firstFailed) > lp.cfg.AttemptWindow {
			delete(lp.attempts, key)
		}
	}
}

// ClientIP returns the client address of r without the port. chi's RealIP
// middleware has already applied any proxy headers.
func ClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
