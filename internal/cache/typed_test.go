// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type testClaim struct {
	Subdomain string `json:"subdomain"`
	OwnerID   string `json:"ownerId"`
}

func TestTypedCache_BasicOperations(t *testing.T) {
	memCache := newTestMemoryCache(time.Hour, 0)
	defer func() { _ = memCache.Close() }()

	cache := NewTypedCache[testClaim](memCache, time.Hour)
	ctx := context.Background()

	claim := &testClaim{Subdomain: "acme", OwnerID: "acc-1"}
	if err := cache.Set(ctx, "claim:acme", claim); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, found := cache.Get(ctx, "claim:acme")
	if !found {
		t.Fatal("expected to find claim:acme")
	}
	if *got != *claim {
		t.Errorf("got %+v, want %+v", got, claim)
	}

	if err := cache.Delete(ctx, "claim:acme"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found := cache.Get(ctx, "claim:acme"); found {
		t.Error("expected claim:acme to be deleted")
	}
}

func TestTypedCache_UndecodableEntryIsMiss(t *testing.T) {
	memCache := newTestMemoryCache(time.Hour, 0)
	defer func() { _ = memCache.Close() }()

	ctx := context.Background()
	_ = memCache.Set(ctx, "claim:bad", []byte("not json"), 0)

	cache := NewTypedCache[testClaim](memCache, time.Hour)
	if _, found := cache.Get(ctx, "claim:bad"); found {
		t.Error("expected undecodable entry to be a miss")
	}
}

func TestTypedCache_SetWithTTL(t *testing.T) {
	memCache := newTestMemoryCache(time.Hour, 0)
	defer func() { _ = memCache.Close() }()

	cache := NewTypedCache[testClaim](memCache, time.Hour)
	ctx := context.Background()

	_ = cache.SetWithTTL(ctx, "claim:acme", &testClaim{Subdomain: "acme"}, 30*time.Millisecond)
	time.Sleep(60 * time.Millisecond)

	if _, found := cache.Get(ctx, "claim:acme"); found {
		t.Error("expected claim:acme to be expired")
	}
}

func TestTypedCache_GetOrSet(t *testing.T) {
	memCache := newTestMemoryCache(time.Hour, 0)
	defer func() { _ = memCache.Close() }()

	cache := NewTypedCache[testClaim](memCache, time.Hour)
	ctx := context.Background()

	callCount := 0
	loader := func() (*testClaim, error) {
		callCount++
		return &testClaim{Subdomain: "acme", OwnerID: "acc-1"}, nil
	}

	for range 2 {
		got, err := cache.GetOrSet(ctx, "claim:acme", loader)
		if err != nil {
			t.Fatalf("GetOrSet failed: %v", err)
		}
		if got.OwnerID != "acc-1" {
			t.Errorf("OwnerID = %q, want acc-1", got.OwnerID)
		}
	}
	if callCount != 1 {
		t.Errorf("expected loader to be called once, got %d", callCount)
	}
}

func TestTypedCache_GetOrSetError(t *testing.T) {
	memCache := newTestMemoryCache(time.Hour, 0)
	defer func() { _ = memCache.Close() }()

	cache := NewTypedCache[testClaim](memCache, time.Hour)
	ctx := context.Background()

	expectedErr := errors.New("database error")
	_, err := cache.GetOrSet(ctx, "claim:acme", func() (*testClaim, error) {
		return nil, expectedErr
	})
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected %v, got %v", expectedErr, err)
	}

	if has, _ := memCache.Has(ctx, "claim:acme"); has {
		t.Error("expected key to not be cached after error")
	}
}

func TestTypedCache_GetOrSetSharesConcurrentLoads(t *testing.T) {
	memCache := newTestMemoryCache(time.Hour, 0)
	defer func() { _ = memCache.Close() }()

	cache := NewTypedCache[testClaim](memCache, time.Hour)
	ctx := context.Background()

	var calls atomic.Int32
	release := make(chan struct{})
	loader := func() (*testClaim, error) {
		calls.Add(1)
		<-release
		return &testClaim{Subdomain: "acme"}, nil
	}

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.GetOrSet(ctx, "claim:acme", loader); err != nil {
				t.Errorf("GetOrSet failed: %v", err)
			}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	// Goroutines that started after the shared load finished hit the cache
	if n := calls.Load(); n != 1 {
		t.Errorf("loader called %d times, want 1", n)
	}
}
