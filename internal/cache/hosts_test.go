// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostCache_PositiveAndNegative(t *testing.T) {
	backend := newTestMemoryCache(time.Hour, 0)
	defer func() { _ = backend.Close() }()

	hosts := NewHostCache(backend, time.Hour, 40*time.Millisecond)
	ctx := context.Background()

	known := 0
	sub, err := hosts.Resolve(ctx, "www.acme.com", func() (string, error) {
		known++
		return "acme", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "acme", sub)

	unknown := 0
	loadUnknown := func() (string, error) {
		unknown++
		return "", nil
	}
	for range 3 {
		sub, err = hosts.Resolve(ctx, "random.example.net", loadUnknown)
		require.NoError(t, err)
		assert.Empty(t, sub)
	}
	assert.Equal(t, 1, unknown, "unknown host should be cached")

	time.Sleep(70 * time.Millisecond)

	_, _ = hosts.Resolve(ctx, "random.example.net", loadUnknown)
	assert.Equal(t, 2, unknown, "negative entry should expire before the positive one")

	_, _ = hosts.Resolve(ctx, "www.acme.com", func() (string, error) {
		known++
		return "acme", nil
	})
	assert.Equal(t, 1, known)
}

func TestHostCache_ErrorsAreNotCached(t *testing.T) {
	backend := newTestMemoryCache(time.Hour, 0)
	defer func() { _ = backend.Close() }()

	hosts := NewHostCache(backend, time.Hour, 0)
	ctx := context.Background()

	boom := errors.New("db down")
	_, err := hosts.Resolve(ctx, "www.acme.com", func() (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)

	has, _ := backend.Has(ctx, HostKey("www.acme.com"))
	assert.False(t, has)
}

func TestHostCache_Invalidate(t *testing.T) {
	backend := newTestMemoryCache(time.Hour, 0)
	defer func() { _ = backend.Close() }()

	hosts := NewHostCache(backend, time.Hour, 0)
	ctx := context.Background()

	_, _ = hosts.Resolve(ctx, "www.acme.com", func() (string, error) { return "acme", nil })
	require.NoError(t, hosts.Invalidate(ctx, "www.acme.com"))

	sub, err := hosts.Resolve(ctx, "www.acme.com", func() (string, error) { return "", nil })
	require.NoError(t, err)
	assert.Empty(t, sub, "lookup after invalidate must reload")
}
