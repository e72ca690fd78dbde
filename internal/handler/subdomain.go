// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/landed/internal/service"
)

// SubdomainHandler handles the account subdomain routes.
type SubdomainHandler struct {
	subdomains *service.SubdomainService
}

// NewSubdomainHandler creates a new SubdomainHandler.
func NewSubdomainHandler(subdomains *service.SubdomainService) *SubdomainHandler {
	return &SubdomainHandler{subdomains: subdomains}
}

type claimRequest struct {
	Subdomain string `json:"subdomain"`
}

// Claim handles POST /api/subdomain.
func (h *SubdomainHandler) Claim(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var req claimRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	normalized, err := h.subdomains.Claim(r.Context(), id.AccountID, req.Subdomain)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONSuccess(w, map[string]any{"normalized": normalized})
}

// Get handles GET /api/subdomain. subdomain is empty when none is claimed.
func (h *SubdomainHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	sub, err := h.subdomains.Get(r.Context(), id.AccountID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONSuccess(w, map[string]any{"subdomain": sub})
}
