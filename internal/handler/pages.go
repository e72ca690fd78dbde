// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/landed/internal/auth"
	"github.com/olegiv/landed/internal/model"
	"github.com/olegiv/landed/internal/service"
)

// PagesHandler handles page editing and publication routes.
type PagesHandler struct {
	pages   *service.PageService
	publish *service.PublishService
}

// NewPagesHandler creates a new PagesHandler.
func NewPagesHandler(pages *service.PageService, publish *service.PublishService) *PagesHandler {
	return &PagesHandler{pages: pages, publish: publish}
}

// hideDevURL clears the development URL unless the viewer is an administrator.
func hideDevURL(id auth.Identity, p *model.Page) *model.Page {
	if !id.IsAdministrator() {
		p.DevPublicURL = ""
	}
	return p
}

// List handles GET /api/pages.
func (h *PagesHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	pages, err := h.pages.List(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	for _, p := range pages {
		hideDevURL(id, p)
	}
	writeJSONSuccess(w, map[string]any{"pages": pages})
}

// Create handles POST /api/pages.
func (h *PagesHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var in service.PageInput
	if !decodeJSON(w, r, &in) {
		return
	}
	page, err := h.pages.Create(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, map[string]any{"page": hideDevURL(id, page)})
}

// Get handles GET /api/pages/{id}.
func (h *PagesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	page, err := h.pages.Get(r.Context(), id, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONSuccess(w, map[string]any{"page": hideDevURL(id, page)})
}

// Update handles PUT /api/pages/{id}.
func (h *PagesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var in service.PageInput
	if !decodeJSON(w, r, &in) {
		return
	}
	page, err := h.pages.Update(r.Context(), id, chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONSuccess(w, map[string]any{"page": hideDevURL(id, page)})
}

// Delete handles DELETE /api/pages/{id}.
func (h *PagesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if err := h.pages.Delete(r.Context(), id, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONSuccess(w, nil)
}

// Publish handles POST /api/pages/{id}/publish. An owner without a
// subdomain gets needsSubdomain in the failed envelope.
func (h *PagesHandler) Publish(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	res, err := h.publish.Publish(r.Context(), id, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	data := map[string]any{
		"publicUrl": res.PublicURL,
		"subdomain": res.Subdomain,
		"slug":      res.Slug,
	}
	if res.DevPublicURL != "" {
		data["devPublicUrl"] = res.DevPublicURL
	}
	writeJSONSuccess(w, data)
}

// Unpublish handles POST /api/pages/{id}/unpublish. The result is a bare
// boolean; failures were logged by the service.
func (h *PagesHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if !h.publish.Unpublish(r.Context(), id, chi.URLParam(r, "id")) {
		writeJSON(w, http.StatusOK, map[string]any{"success": false})
		return
	}
	writeJSONSuccess(w, nil)
}
