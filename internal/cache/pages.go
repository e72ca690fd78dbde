// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"time"

	"github.com/olegiv/landed/internal/model"
)

// PublicPageCache caches published pages by their public address.
// Keys have the form page:{subdomain}:{slug}.
type PublicPageCache struct {
	backend Cacher
	pages   *TypedCache[model.Page]
}

// NewPublicPageCache creates a page cache on top of backend.
func NewPublicPageCache(backend Cacher, ttl time.Duration) *PublicPageCache {
	return &PublicPageCache{backend: backend, pages: NewTypedCache[model.Page](backend, ttl)}
}

// PageKey returns the cache key of a public page address.
func PageKey(subdomain, slug string) string {
	return "page:" + subdomain + ":" + slug
}

// Get returns the cached page or loads it. Load errors, including not-found,
// are returned as is and never cached.
//
// A page loaded by this call is loaded once more after it is stored. An
// unpublish that commits between the first load and the store would
// otherwise leave the stale page cached until the TTL expires.
func (c *PublicPageCache) Get(ctx context.Context, subdomain, slug string, load func() (*model.Page, error)) (*model.Page, error) {
	key := PageKey(subdomain, slug)
	loaded := false
	page, err := c.pages.GetOrSet(ctx, key, func() (*model.Page, error) {
		loaded = true
		return load()
	})
	if err != nil || !loaded {
		return page, err
	}

	fresh, err := load()
	if err != nil {
		_ = c.pages.Delete(ctx, key)
		return nil, err
	}
	if !fresh.UpdatedAt.Equal(page.UpdatedAt) {
		_ = c.pages.Delete(ctx, key)
	}
	return fresh, nil
}

// Invalidate drops the cached page at subdomain/slug. Empty parts are ignored.
func (c *PublicPageCache) Invalidate(ctx context.Context, subdomain, slug string) error {
	if subdomain == "" || slug == "" {
		return nil
	}
	return c.pages.Delete(ctx, PageKey(subdomain, slug))
}

// InvalidateSubdomain drops every cached page under subdomain.
func (c *PublicPageCache) InvalidateSubdomain(ctx context.Context, subdomain string) error {
	if subdomain == "" {
		return nil
	}
	return c.backend.DeleteByPrefix(ctx, PageKey(subdomain, ""))
}
