// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/landed/internal/auth"
	"github.com/olegiv/landed/internal/config"
	"github.com/olegiv/landed/internal/model"
	"github.com/olegiv/landed/internal/store"
	"github.com/olegiv/landed/internal/testutil"
)

var testURLs = config.Config{
	BaseDomain: "landed.test",
	DevHost:    "localhost:8080",
	DevScheme:  "http",
}

func identity(acc store.Account) auth.Identity {
	return auth.Identity{AccountID: acc.ID, Role: acc.Role}
}

// createPage inserts a draft page named name for owner.
func createPage(t *testing.T, db *sql.DB, owner store.Account, name string) store.Page {
	t.Helper()
	now := time.Now().UTC()
	theme, err := json.Marshal(model.DefaultTheme())
	require.NoError(t, err)
	page, err := store.New(db).CreatePage(context.Background(), store.CreatePageParams{
		ID:         uuid.NewString(),
		UserID:     owner.ID,
		Name:       name,
		Components: "[]",
		Theme:      string(theme),
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	require.NoError(t, err)
	return page
}

// claim gives acc the subdomain sub.
func claim(t *testing.T, db *sql.DB, acc store.Account, sub string) {
	t.Helper()
	svc := NewSubdomainService(db, nil, nil, testutil.TestLogger(), nil)
	got, err := svc.Claim(context.Background(), acc.ID, sub)
	require.NoError(t, err)
	require.Equal(t, sub, got)
}

// publishPage publishes directly through the store, bypassing the allocator.
func publishPage(t *testing.T, db *sql.DB, page store.Page, sub, slug string) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, store.New(db).PublishPage(context.Background(), store.PublishPageParams{
		UserSubdomain: sub,
		PageSlug:      slug,
		PublicUrl:     testURLs.PublicURL(sub, slug),
		DevPublicUrl:  testURLs.DevPublicURL(sub, slug),
		PublishedAt:   now,
		UpdatedAt:     now,
		ID:            page.ID,
	}))
}
