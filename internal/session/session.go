// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the cookie session manager.
package session

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/landed/internal/auth"
)

// Lifetime is the absolute lifetime of a session.
const Lifetime = 24 * time.Hour

// New creates a session manager backed by the sessions table of db.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()
	sm.Store = sqlite3store.New(db)

	sm.Lifetime = Lifetime
	sm.IdleTimeout = 2 * time.Hour
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	sm.Cookie.Secure = !isDev // Secure cookies in production only
	if !isDev {
		// Host-only and secure, bound to the application host
		sm.Cookie.Name = "__Host-session"
	}

	return sm
}

// SignIn renews the session token and stores the account identity.
func SignIn(ctx context.Context, sm *scs.SessionManager, id auth.Identity) error {
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}
	sm.Put(ctx, auth.SessionKeyAccountID, id.AccountID)
	sm.Put(ctx, auth.SessionKeyRole, id.Role)
	return nil
}

// SignOut destroys the session.
func SignOut(ctx context.Context, sm *scs.SessionManager) error {
	return sm.Destroy(ctx)
}
