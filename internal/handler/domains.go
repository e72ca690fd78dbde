// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/landed/internal/service"
)

// DomainsHandler handles custom domain routes.
type DomainsHandler struct {
	domains *service.DomainService
}

// NewDomainsHandler creates a new DomainsHandler.
func NewDomainsHandler(domains *service.DomainService) *DomainsHandler {
	return &DomainsHandler{domains: domains}
}

type addDomainRequest struct {
	Domain string `json:"domain"`
}

// List handles GET /api/domains.
func (h *DomainsHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	domains, err := h.domains.List(r.Context(), id.AccountID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONSuccess(w, map[string]any{"domains": domains})
}

// Add handles POST /api/domains. The response carries the TXT value the
// owner must publish before verifying.
func (h *DomainsHandler) Add(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var req addDomainRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	d, err := h.domains.Add(r.Context(), id.AccountID, req.Domain)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, map[string]any{"domain": d})
}

// Verify handles POST /api/domains/{id}/verify.
func (h *DomainsHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	d, err := h.domains.Verify(r.Context(), id.AccountID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONSuccess(w, map[string]any{"domain": d})
}

// Delete handles DELETE /api/domains/{id}.
func (h *DomainsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if err := h.domains.Delete(r.Context(), id.AccountID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONSuccess(w, nil)
}
