// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/landed/internal/service"
)

// AppHandler serves the application host.
type AppHandler struct {
	accounts *service.AccountService
}

// NewAppHandler creates a new AppHandler.
func NewAppHandler(accounts *service.AccountService) *AppHandler {
	return &AppHandler{accounts: accounts}
}

// Dashboard handles GET /app/* with an overview of the signed-in account.
func (h *AppHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	summary, err := h.accounts.Summary(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONSuccess(w, map[string]any{"summary": summary})
}
