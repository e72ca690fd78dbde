// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/landed/internal/model"
	"github.com/olegiv/landed/internal/service"
)

// PublicHandler serves published pages on the site hosts. The host router
// has already rewritten the request to /_sites/{subdomain}/{slug}.
type PublicHandler struct {
	pages *service.PageService
}

// NewPublicHandler creates a new PublicHandler.
func NewPublicHandler(pages *service.PageService) *PublicHandler {
	return &PublicHandler{pages: pages}
}

// publicPage is what visitors see of a page. Owner and editing fields are
// left out.
type publicPage struct {
	Name        string            `json:"name"`
	Components  []model.Component `json:"components"`
	Theme       model.Theme       `json:"theme"`
	PublicURL   string            `json:"publicUrl"`
	PublishedAt *time.Time        `json:"publishedAt,omitempty"`
}

// Page handles GET /_sites/{subdomain}/*.
func (h *PublicHandler) Page(w http.ResponseWriter, r *http.Request) {
	subdomain := strings.ToLower(chi.URLParam(r, "subdomain"))
	slug := strings.Trim(chi.URLParam(r, "*"), "/")
	if subdomain == "" || slug == "" {
		writeJSONError(w, http.StatusNotFound, string(service.KindNotFound), "Page not found")
		return
	}

	page, err := h.pages.GetPublished(r.Context(), subdomain, slug)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONSuccess(w, map[string]any{"page": publicPage{
		Name:        page.Name,
		Components:  page.Components,
		Theme:       page.Theme,
		PublicURL:   page.PublicURL,
		PublishedAt: page.PublishedAt,
	}})
}
