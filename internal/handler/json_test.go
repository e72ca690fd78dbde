// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/landed/internal/dnscheck"
	"github.com/olegiv/landed/internal/service"
)

func TestStatusForKind(t *testing.T) {
	tests := []struct {
		kind service.Kind
		want int
	}{
		{service.KindUnauthenticated, http.StatusUnauthorized},
		{service.KindForbidden, http.StatusForbidden},
		{service.KindNotFound, http.StatusNotFound},
		{service.KindInvalidFormat, http.StatusBadRequest},
		{service.KindInvalidInput, http.StatusBadRequest},
		{service.KindAlreadyTaken, http.StatusConflict},
		{service.KindAlreadyExists, http.StatusConflict},
		{service.KindSubdomainRequired, http.StatusConflict},
		{service.KindSubdomainInUse, http.StatusConflict},
		{service.KindDNS, http.StatusUnprocessableEntity},
		{service.KindTransient, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, statusForKind(tt.kind))
		})
	}
}

func TestWriteServiceError(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		rec := httptest.NewRecorder()
		writeServiceError(rec, &service.Error{Kind: service.KindAlreadyTaken, Message: "Subdomain is already taken"})

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		body := decodeBody(t, rec)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Subdomain is already taken", body["error"])
		assert.Equal(t, "already_taken", body["code"])
		assert.NotContains(t, body, "needsSubdomain")
	})

	t.Run("needs subdomain", func(t *testing.T) {
		rec := httptest.NewRecorder()
		writeServiceError(rec, &service.Error{Kind: service.KindSubdomainRequired, Message: "Claim a subdomain first"})

		body := decodeBody(t, rec)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, true, body["needsSubdomain"])
	})

	t.Run("dns reason", func(t *testing.T) {
		rec := httptest.NewRecorder()
		writeServiceError(rec, &service.Error{Kind: service.KindDNS, DNS: dnscheck.ReasonTokenMissing, Message: "TXT missing"})

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "token_missing", decodeBody(t, rec)["dnsReason"])
	})

	t.Run("cause is not sent", func(t *testing.T) {
		rec := httptest.NewRecorder()
		writeServiceError(rec, &service.Error{
			Kind:    service.KindTransient,
			Message: "Something went wrong, please try again",
			Err:     errors.New("database is locked"),
		})

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "database is locked")
	})

	t.Run("foreign error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		writeServiceError(rec, errors.New("boom"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "transient", decodeBody(t, rec)["code"])
		assert.NotContains(t, rec.Body.String(), "boom")
	})
}

func TestWriteJSONSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSONSuccess(rec, map[string]any{"normalized": "acme"})

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "acme", body["normalized"])

	rec = httptest.NewRecorder()
	writeJSONStatus(rec, http.StatusCreated, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["success"])
}

func TestDecodeJSON(t *testing.T) {
	var dst claimRequest

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/subdomain", strings.NewReader(`{"subdomain":"acme"}`))
	require.True(t, decodeJSON(rec, r, &dst))
	assert.Equal(t, "acme", dst.Subdomain)

	rec = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodPost, "/api/subdomain", nil)
	assert.True(t, decodeJSON(rec, r, &dst), "empty body is accepted")

	rec = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodPost, "/api/subdomain", strings.NewReader(`{"subdomain":`))
	assert.False(t, decodeJSON(rec, r, &dst))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	big := `{"subdomain":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	r = httptest.NewRequest(http.MethodPost, "/api/subdomain", strings.NewReader(big))
	assert.False(t, decodeJSON(rec, r, &dst))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
