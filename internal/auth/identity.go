// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/landed/internal/model"
)

// Session keys for the signed-in account.
const (
	SessionKeyAccountID = "account_id"
	SessionKeyRole      = "role"
)

// Identity is a verified account identity.
type Identity struct {
	AccountID string `json:"accountId"`
	Role      string `json:"role"`
}

// IsAdministrator reports whether the identity has the administrator role.
func (i Identity) IsAdministrator() bool {
	return i.Role == model.RoleAdministrator
}

// Resolver turns the credential carried by a request into an identity.
// The boolean is false when the request is unauthenticated; resolvers never
// fail in any other way.
type Resolver interface {
	Resolve(r *http.Request) (Identity, bool)
}

// SessionResolver reads the identity from the scs session.
type SessionResolver struct {
	Sessions *scs.SessionManager
}

// Resolve implements Resolver.
func (s SessionResolver) Resolve(r *http.Request) (Identity, bool) {
	id := s.Sessions.GetString(r.Context(), SessionKeyAccountID)
	if id == "" {
		return Identity{}, false
	}
	role := s.Sessions.GetString(r.Context(), SessionKeyRole)
	if !model.IsValidRole(role) {
		role = model.RoleStandard
	}
	return Identity{AccountID: id, Role: role}, true
}

// TokenResolver reads the identity from an Authorization: Bearer header.
type TokenResolver struct {
	Tokens *TokenService
}

// Resolve implements Resolver.
func (t TokenResolver) Resolve(r *http.Request) (Identity, bool) {
	raw := BearerToken(r)
	if raw == "" {
		return Identity{}, false
	}
	claims, err := t.Tokens.Validate(r.Context(), raw)
	if err != nil {
		slog.Debug("bearer token rejected", "error", err, "category", model.EventCategoryAuth)
		return Identity{}, false
	}
	role := claims.Role
	if !model.IsValidRole(role) {
		role = model.RoleStandard
	}
	return Identity{AccountID: claims.Subject, Role: role}, true
}

// ChainResolver tries each resolver in order and returns the first identity.
type ChainResolver []Resolver

// Resolve implements Resolver.
func (c ChainResolver) Resolve(r *http.Request) (Identity, bool) {
	for _, res := range c {
		if id, ok := res.Resolve(r); ok {
			return id, true
		}
	}
	return Identity{}, false
}

// BearerToken returns the token of an Authorization: Bearer header, or "".
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
