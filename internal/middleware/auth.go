// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for identity resolution, host
// routing, rate limiting and request protection.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/olegiv/landed/internal/auth"
	"github.com/olegiv/landed/internal/model"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for request data.
const (
	ContextKeyIdentity    ContextKey = "identity"
	ContextKeyRequestPath ContextKey = "request_path"
)

// LoadIdentity resolves the request credential and stores the identity in the
// context. Unauthenticated requests pass through without one.
func LoadIdentity(resolver auth.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := resolver.Resolve(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), ContextKeyIdentity, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity returns the identity of the request and whether there is one.
func GetIdentity(r *http.Request) (auth.Identity, bool) {
	id, ok := r.Context().Value(ContextKeyIdentity).(auth.Identity)
	return id, ok && id.AccountID != ""
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, ContextKeyIdentity, id)
}

// RequireAuth rejects requests without an identity with 401.
// It must run after LoadIdentity.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetIdentity(r); !ok {
			writeError(w, http.StatusUnauthorized, "unauthenticated", "Sign in to continue")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests whose identity is not an administrator.
// Anonymous requests get 401, everyone else 403.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetIdentity(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthenticated", "Sign in to continue")
			return
		}
		if !id.IsAdministrator() {
			slog.Warn("access denied",
				"status", http.StatusForbidden,
				"method", r.Method,
				"path", r.URL.Path,
				"account_id", id.AccountID,
				"role", id.Role,
				"remote_addr", r.RemoteAddr,
				"category", model.EventCategoryAuth,
			)
			writeError(w, http.StatusForbidden, "forbidden", "Forbidden: insufficient permissions")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequestPath stores the request path in the context.
// The event log handler includes it in persisted records.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextKeyRequestPath, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestPath retrieves the request path from the context.
func GetRequestPath(ctx context.Context) string {
	path, ok := ctx.Value(ContextKeyRequestPath).(string)
	if !ok {
		return ""
	}
	return path
}
