// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func newTestMemoryCache(ttl time.Duration, maxSize int) *MemoryCache {
	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      ttl,
		MaxSize:         maxSize,
		CleanupInterval: 0, // No background cleanup for tests
	})
}

func TestMemoryCache_BasicOperations(t *testing.T) {
	cache := newTestMemoryCache(time.Hour, 100)
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	if err := cache.Set(ctx, "key1", []byte("value1"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, err := cache.Get(ctx, "key1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(val) != "value1" {
		t.Errorf("expected value1, got %s", string(val))
	}

	has, err := cache.Has(ctx, "key1")
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if !has {
		t.Error("expected key1 to exist")
	}

	if err := cache.Delete(ctx, "key1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := cache.Get(ctx, "key1"); err != ErrCacheMiss {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCache_ReturnsCopies(t *testing.T) {
	cache := newTestMemoryCache(time.Hour, 0)
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	original := []byte("abc")
	_ = cache.Set(ctx, "k", original, 0)
	original[0] = 'X'

	got, _ := cache.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("stored value was mutated through caller slice: %s", got)
	}
	got[1] = 'Y'
	again, _ := cache.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("stored value was mutated through returned slice: %s", again)
	}
}

func TestMemoryCache_Expiration(t *testing.T) {
	cache := newTestMemoryCache(50*time.Millisecond, 0)
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	_ = cache.Set(ctx, "short", []byte("v"), 0)
	_ = cache.Set(ctx, "long", []byte("v"), time.Hour)

	time.Sleep(80 * time.Millisecond)

	if _, err := cache.Get(ctx, "short"); err != ErrCacheMiss {
		t.Errorf("expected expired entry to miss, got %v", err)
	}
	if _, err := cache.Get(ctx, "long"); err != nil {
		t.Errorf("expected long-lived entry, got %v", err)
	}
	if has, _ := cache.Has(ctx, "short"); has {
		t.Error("Has should be false for expired entry")
	}
}

func TestMemoryCache_MaxSizeEvicts(t *testing.T) {
	cache := newTestMemoryCache(time.Hour, 2)
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	_ = cache.Set(ctx, "a", []byte("1"), time.Minute)
	_ = cache.Set(ctx, "b", []byte("2"), time.Hour)
	_ = cache.Set(ctx, "c", []byte("3"), time.Hour)

	if got := cache.Stats().Items; got != 2 {
		t.Fatalf("Items = %d, want 2", got)
	}
	if _, err := cache.Get(ctx, "a"); err != ErrCacheMiss {
		t.Error("entry closest to expiry should have been evicted")
	}

	// Overwriting an existing key never evicts
	_ = cache.Set(ctx, "b", []byte("22"), time.Hour)
	if _, err := cache.Get(ctx, "c"); err != nil {
		t.Errorf("overwrite evicted another key: %v", err)
	}
}

func TestMemoryCache_DeleteByPrefix(t *testing.T) {
	cache := newTestMemoryCache(time.Hour, 0)
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	for _, k := range []string{"page:a:x", "page:a:y", "page:b:x", "host:example.com"} {
		_ = cache.Set(ctx, k, []byte("v"), 0)
	}

	if err := cache.DeleteByPrefix(ctx, "page:a:"); err != nil {
		t.Fatalf("DeleteByPrefix failed: %v", err)
	}
	if has, _ := cache.Has(ctx, "page:a:x"); has {
		t.Error("page:a:x should be deleted")
	}
	if has, _ := cache.Has(ctx, "page:b:x"); !has {
		t.Error("page:b:x should remain")
	}

	if err := cache.DeleteByPrefix(ctx, ""); err != nil {
		t.Fatalf("DeleteByPrefix failed: %v", err)
	}
	stats := cache.Stats()
	if stats.Items != 0 || stats.Size != 0 {
		t.Errorf("after empty prefix: items=%d size=%d, want 0/0", stats.Items, stats.Size)
	}
}

func TestMemoryCache_Stats(t *testing.T) {
	cache := newTestMemoryCache(time.Hour, 0)
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	_ = cache.Set(ctx, "k", []byte("1234"), 0)
	_, _ = cache.Get(ctx, "k")
	_, _ = cache.Get(ctx, "missing")

	stats := cache.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Sets != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.HitRate != 50 {
		t.Errorf("HitRate = %v, want 50", stats.HitRate)
	}
	if stats.Size != 4 {
		t.Errorf("Size = %d, want 4", stats.Size)
	}
}

func TestMemoryCache_Closed(t *testing.T) {
	cache := newTestMemoryCache(time.Hour, 0)
	_ = cache.Close()
	_ = cache.Close() // idempotent
	ctx := context.Background()

	if _, err := cache.Get(ctx, "k"); err != ErrCacheClosed {
		t.Errorf("Get after Close = %v, want ErrCacheClosed", err)
	}
	if err := cache.Set(ctx, "k", nil, 0); err != ErrCacheClosed {
		t.Errorf("Set after Close = %v, want ErrCacheClosed", err)
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := newTestMemoryCache(time.Hour, 0)
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", n%5)
			for range 100 {
				_ = cache.Set(ctx, key, []byte("v"), 0)
				_, _ = cache.Get(ctx, key)
				_ = cache.Delete(ctx, key)
			}
		}(i)
	}
	wg.Wait()

	if items := cache.Stats().Items; items < 0 || items > 5 {
		t.Errorf("Items = %d, want within [0,5]", items)
	}
}
