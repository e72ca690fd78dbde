// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/olegiv/landed/internal/auth"
	"github.com/olegiv/landed/internal/cache"
	"github.com/olegiv/landed/internal/config"
	"github.com/olegiv/landed/internal/dnscheck"
	"github.com/olegiv/landed/internal/dnscheck/mocks"
	"github.com/olegiv/landed/internal/metrics"
	"github.com/olegiv/landed/internal/middleware"
	"github.com/olegiv/landed/internal/service"
	"github.com/olegiv/landed/internal/session"
	"github.com/olegiv/landed/internal/store"
	"github.com/olegiv/landed/internal/testutil"
	"github.com/olegiv/landed/internal/version"
)

const (
	testBaseDomain = "landed.test"
	testDevHost    = "localhost:8080"
	testPlatformIP = "203.0.113.10"
	testAppHost    = "app." + testBaseDomain
)

var testConfig = config.Config{
	BaseDomain:   testBaseDomain,
	DevHost:      testDevHost,
	DevScheme:    "http",
	AppSubdomain: "app",
	PlatformIP:   testPlatformIP,
}

// testEnv is a fully wired server over a temporary database.
type testEnv struct {
	db       *sql.DB
	sm       *scs.SessionManager
	tokens   *auth.TokenService
	resolver *mocks.MockResolver
	metrics  *metrics.Metrics
	handler  http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.TestDB(t)
	logger := testutil.TestLogger()
	m := metrics.New(prometheus.NewRegistry())

	backend := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = backend.Close() })
	pagesCache := cache.NewPublicPageCache(backend, time.Minute)
	hosts := cache.NewHostCache(backend, time.Minute, 30*time.Second)

	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockResolver(ctrl)

	sm := session.New(db, true)
	tokens := auth.NewTokenService("test-signing-key-0123456789abcdef", time.Hour, backend)

	domains := service.NewDomainService(db, dnscheck.NewChecker(resolver, time.Second), hosts,
		service.DomainConfig{PlatformIP: testPlatformIP, BaseDomain: testBaseDomain}, logger, m)

	h := NewRouter(RouterConfig{
		Sessions:   sm,
		Identity:   auth.ChainResolver{auth.TokenResolver{Tokens: tokens}, auth.SessionResolver{Sessions: sm}},
		Tokens:     tokens,
		Accounts:   service.NewAccountService(db, logger),
		Subdomains: service.NewSubdomainService(db, hosts, pagesCache, logger, m, testConfig.AppSubdomain),
		Pages:      service.NewPageService(db, pagesCache, logger, m),
		Publish:    service.NewPublishService(db, testConfig, pagesCache, logger, m),
		Domains:    domains,
		Events:     service.NewEventService(db),
		Health:     NewHealthHandler(db, backend, cache.CacheBackendMemory, version.Info{Version: "v1.2.3", GitCommit: "abc1234"}),
		CSRF:       middleware.DefaultCSRFConfig([]byte("test-csrf-key"), testAppHost, "app."+testDevHost, testDevHost, true),
		Security:   middleware.DefaultSecurityHeadersConfig(true),
		LoginProtection: middleware.NewLoginProtection(middleware.LoginProtectionConfig{
			MaxFailedAttempts: 3,
		}),
		HostRouter: middleware.NewHostRouter(middleware.HostRouterConfig{
			BaseDomain:   testBaseDomain,
			DevHost:      testDevHost,
			AppSubdomain: "app",
			Domains:      domains,
			Metrics:      m,
			Logger:       logger,
		}),
	})

	return &testEnv{db: db, sm: sm, tokens: tokens, resolver: resolver, metrics: m, handler: h}
}

// createAccount inserts an account that can log in with password.
func createAccount(t *testing.T, db *sql.DB, email, password, role string) store.Account {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	now := time.Now().UTC()
	acc, err := store.New(db).CreateAccount(context.Background(), store.CreateAccountParams{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)
	return acc
}

// token issues a bearer token for acc.
func (e *testEnv) token(t *testing.T, acc store.Account) string {
	t.Helper()
	tok, _, err := e.tokens.Issue(acc.ID, acc.Role)
	require.NoError(t, err)
	return tok
}

// do serves one request on host. body is JSON encoded unless nil.
func (e *testEnv) do(t *testing.T, method, host, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := newRequest(method, host, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return serve(e, req)
}

// newRequest builds a request for host from a client address.
func newRequest(method, host, path string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, "http://"+host+path, body)
	req.RemoteAddr = "192.0.2.10:43210"
	return req
}

func serve(e *testEnv, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// api serves a request against the API on the development host.
func (e *testEnv) api(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, method, testDevHost, path, token, body)
}

// decodeBody decodes a JSON response body.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "body: %s", rec.Body.String())
	return body
}

// heroPage is a minimal valid page body.
func heroPage(name string) map[string]any {
	return map[string]any{
		"name": name,
		"components": []map[string]any{
			{"id": "hero-1", "type": "hero", "props": map[string]any{"title": "Welcome"}},
		},
	}
}

// createPage creates a page through the API and returns its id.
func (e *testEnv) createPage(t *testing.T, token, name string) string {
	t.Helper()
	rec := e.api(t, http.MethodPost, "/api/pages", token, heroPage(name))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	page := decodeBody(t, rec)["page"].(map[string]any)
	return page["id"].(string)
}

// claim claims sub for the token's account through the API.
func (e *testEnv) claim(t *testing.T, token, sub string) {
	t.Helper()
	rec := e.api(t, http.MethodPost, "/api/subdomain", token, map[string]any{"subdomain": sub})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}
