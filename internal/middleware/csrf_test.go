// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var testCSRFKey = []byte("12345678901234567890123456789012")

func TestDefaultCSRFConfig(t *testing.T) {
	prod := DefaultCSRFConfig(testCSRFKey, "app.landed.test", "app.localhost:8080", "localhost:8080", false)
	assert.Equal(t, []string{"app.landed.test"}, prod.TrustedOrigins)

	dev := DefaultCSRFConfig(testCSRFKey, "app.landed.test", "app.localhost:8080", "localhost:8080", true)
	assert.Equal(t, []string{"app.landed.test", "app.localhost:8080", "localhost:8080"}, dev.TrustedOrigins)

	for _, origin := range dev.TrustedOrigins {
		assert.False(t, strings.HasPrefix(origin, "http"), "trusted origins are hosts, not URLs: %s", origin)
	}
}

func TestCSRF(t *testing.T) {
	cfg := DefaultCSRFConfig(testCSRFKey, "app.landed.test", "", "", false)
	handler := CSRF(cfg)(http.HandlerFunc(okHandler))

	tests := []struct {
		name    string
		method  string
		headers map[string]string
		want    int
	}{
		{"same origin post", http.MethodPost, map[string]string{"Sec-Fetch-Site": "same-origin"}, http.StatusOK},
		{"non-browser post", http.MethodPost, nil, http.StatusOK},
		{"cross-site get", http.MethodGet, map[string]string{"Sec-Fetch-Site": "cross-site"}, http.StatusOK},
		{"cross-site post", http.MethodPost, map[string]string{
			"Sec-Fetch-Site": "cross-site",
			"Origin":         "https://evil.example",
		}, http.StatusForbidden},
		{"cross-site post with bearer token", http.MethodPost, map[string]string{
			"Sec-Fetch-Site": "cross-site",
			"Origin":         "https://evil.example",
			"Authorization":  "Bearer abc.def.ghi",
		}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "http://api.landed.test/api/subdomain", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestCSRF_CustomErrorHandler(t *testing.T) {
	cfg := DefaultCSRFConfig(testCSRFKey, "app.landed.test", "", "", false)
	called := false
	cfg.ErrorHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	})
	handler := CSRF(cfg)(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodDelete, "http://api.landed.test/api/domains/x", nil)
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	req.Header.Set("Origin", "https://evil.example")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusTeapot, rr.Code)
}
