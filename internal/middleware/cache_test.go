// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicCache(t *testing.T) {
	tests := []struct {
		name   string
		status int
		preset string
		want   string
	}{
		{"ok", http.StatusOK, "", "public, max-age=60"},
		{"not found", http.StatusNotFound, "", "no-store"},
		{"handler decides", http.StatusOK, "private", "private"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := PublicCache(60)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.preset != "" {
					w.Header().Set("Cache-Control", tt.preset)
				}
				w.WriteHeader(tt.status)
			}))

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/_sites/acme/Launch", nil))

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.want, rr.Header().Get("Cache-Control"))
		})
	}
}

func TestPublicCache_ImplicitOK(t *testing.T) {
	handler := PublicCache(300)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{}"))
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "public, max-age=300", rr.Header().Get("Cache-Control"))
}

func TestNoStore(t *testing.T) {
	handler := NoStore(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/pages", nil))

	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
}
