// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/olegiv/landed/internal/model"
	"github.com/olegiv/landed/internal/testutil"
)

// addDomain adds name through the API and returns the domain record.
func (e *testEnv) addDomain(t *testing.T, token, name string) map[string]any {
	t.Helper()
	rec := e.api(t, http.MethodPost, RouteDomains, token, map[string]any{"domain": name})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody(t, rec)["domain"].(map[string]any)
}

func TestDomainsHandler_Add(t *testing.T) {
	env := newTestEnv(t)
	acc := testutil.CreateStandardAccount(t, env.db)
	token := env.token(t, acc)
	other := env.token(t, testutil.CreateStandardAccount(t, env.db))

	d := env.addDomain(t, token, "Shop.Example.com")
	assert.Equal(t, "shop.example.com", d["name"])
	assert.Equal(t, model.DomainStatusPending, d["status"])
	assert.Equal(t, "landed-verification="+acc.ID, d["verificationTxt"])

	tests := []struct {
		name       string
		domain     string
		wantStatus int
		wantCode   string
	}{
		{"duplicate", "shop.example.com", http.StatusConflict, "already_exists"},
		{"invalid", "not a domain", http.StatusBadRequest, "invalid_format"},
		{"platform subdomain", "acme.landed.test", http.StatusBadRequest, "invalid_format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.api(t, http.MethodPost, RouteDomains, other, map[string]any{"domain": tt.domain})
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCode, decodeBody(t, rec)["code"])
		})
	}

	rec := env.api(t, http.MethodGet, RouteDomains, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["domains"], 1)

	rec = env.api(t, http.MethodGet, RouteDomains, other, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody(t, rec)["domains"])
}

func TestDomainsHandler_VerifyFailure(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, testutil.CreateStandardAccount(t, env.db))
	d := env.addDomain(t, token, "shop.example.com")

	env.resolver.EXPECT().LookupHost(gomock.Any(), "shop.example.com").Return([]string{"198.51.100.7"}, nil)
	env.resolver.EXPECT().LookupTXT(gomock.Any(), "shop.example.com").Return([]string{d["verificationTxt"].(string)}, nil)

	rec := env.api(t, http.MethodPost, "/api/domains/"+d["id"].(string)+"/verify", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "dns_error", body["code"])
	assert.Equal(t, "address_mismatch", body["dnsReason"])
	assert.Equal(t, 1.0, promtest.ToFloat64(env.metrics.DomainVerification.WithLabelValues("address_mismatch")))
}

func TestDomainsHandler_VerifyServesCustomDomain(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, testutil.CreateStandardAccount(t, env.db))
	env.claim(t, token, "acme")
	id := env.createPage(t, token, "Launch")
	rec := env.api(t, http.MethodPost, "/api/pages/"+id+"/publish", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	d := env.addDomain(t, token, "shop.example.com")

	// Pending domains are not routed
	rec = env.do(t, http.MethodGet, "shop.example.com", "/Launch", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	env.resolver.EXPECT().LookupHost(gomock.Any(), "shop.example.com").Return([]string{testPlatformIP}, nil)
	env.resolver.EXPECT().LookupTXT(gomock.Any(), "shop.example.com").Return([]string{"v=spf1 -all", d["verificationTxt"].(string)}, nil)

	rec = env.api(t, http.MethodPost, "/api/domains/"+d["id"].(string)+"/verify", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	verified := decodeBody(t, rec)["domain"].(map[string]any)
	assert.Equal(t, model.DomainStatusVerified, verified["status"])
	assert.NotEmpty(t, verified["verifiedAt"])

	// Re-verification does no lookups
	rec = env.api(t, http.MethodPost, "/api/domains/"+d["id"].(string)+"/verify", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "shop.example.com", "/Launch", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Launch", decodeBody(t, rec)["page"].(map[string]any)["name"])
	assert.Equal(t, 1.0, promtest.ToFloat64(env.metrics.HostRoutes.WithLabelValues("custom_domain")))

	rec = env.api(t, http.MethodDelete, "/api/domains/"+d["id"].(string), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "shop.example.com", "/Launch", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "deleted domains stop routing")
}

func TestDomainsHandler_Ownership(t *testing.T) {
	env := newTestEnv(t)
	owner := env.token(t, testutil.CreateStandardAccount(t, env.db))
	other := env.token(t, testutil.CreateStandardAccount(t, env.db))
	d := env.addDomain(t, owner, "shop.example.com")

	rec := env.api(t, http.MethodPost, "/api/domains/"+d["id"].(string)+"/verify", other, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.api(t, http.MethodDelete, "/api/domains/"+d["id"].(string), other, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.api(t, http.MethodDelete, "/api/domains/unknown", owner, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
