// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"time"
)

// DefaultNegativeTTL is how long an unknown host is remembered.
const DefaultNegativeTTL = 30 * time.Second

// HostCache maps verified custom domains to their owner's subdomain.
// Unknown hosts are cached as empty values for a shorter negative TTL so
// random Host headers do not reach the store on every request.
type HostCache struct {
	cache       Cacher
	ttl         time.Duration
	negativeTTL time.Duration
}

// NewHostCache creates a host cache on top of backend.
func NewHostCache(backend Cacher, ttl, negativeTTL time.Duration) *HostCache {
	if negativeTTL <= 0 {
		negativeTTL = DefaultNegativeTTL
	}
	return &HostCache{cache: backend, ttl: ttl, negativeTTL: negativeTTL}
}

// HostKey returns the cache key of a custom domain.
func HostKey(host string) string {
	return "host:" + host
}

// Resolve returns the subdomain bound to host, "" when host is not a
// verified custom domain. load is called on a miss; its errors are not cached.
func (c *HostCache) Resolve(ctx context.Context, host string, load func() (string, error)) (string, error) {
	if data, err := c.cache.Get(ctx, HostKey(host)); err == nil {
		return string(data), nil
	}

	subdomain, err := load()
	if err != nil {
		return "", err
	}

	ttl := c.ttl
	if subdomain == "" {
		ttl = c.negativeTTL
	}
	_ = c.cache.Set(ctx, HostKey(host), []byte(subdomain), ttl)
	return subdomain, nil
}

// Invalidate forgets host.
func (c *HostCache) Invalidate(ctx context.Context, host string) error {
	return c.cache.Delete(ctx, HostKey(host))
}
