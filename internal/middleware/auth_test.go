// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/olegiv/landed/internal/auth"
	"github.com/olegiv/landed/internal/model"
)

// staticResolver resolves every request to the same identity.
type staticResolver struct {
	id auth.Identity
	ok bool
}

func (s staticResolver) Resolve(*http.Request) (auth.Identity, bool) { return s.id, s.ok }

func okHandler(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestLoadIdentity(t *testing.T) {
	want := auth.Identity{AccountID: "acc-1", Role: model.RoleStandard}

	var got auth.Identity
	var found bool
	handler := LoadIdentity(staticResolver{id: want, ok: true})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = GetIdentity(r)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.True(t, found)
	assert.Equal(t, want, got)

	handler = LoadIdentity(staticResolver{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, found = GetIdentity(r)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, found)
}

func TestRequireAuth(t *testing.T) {
	handler := RequireAuth(http.HandlerFunc(okHandler))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/pages", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"success":false,"error":"Sign in to continue","code":"unauthenticated"}`, rr.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/api/pages", nil)
	req = req.WithContext(WithIdentity(req.Context(), auth.Identity{AccountID: "acc-1", Role: model.RoleStandard}))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name string
		id   *auth.Identity
		want int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"standard", &auth.Identity{AccountID: "a", Role: model.RoleStandard}, http.StatusForbidden},
		{"administrator", &auth.Identity{AccountID: "b", Role: model.RoleAdministrator}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
			if tt.id != nil {
				req = req.WithContext(WithIdentity(req.Context(), *tt.id))
			}
			rr := httptest.NewRecorder()
			RequireAdmin(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestRequestPath(t *testing.T) {
	var got string
	handler := RequestPath(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetRequestPath(r.Context())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/domains", nil))

	assert.Equal(t, "/api/domains", got)
	assert.Empty(t, GetRequestPath(context.Background()))
}
