// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/landed/internal/service"
)

// EventsPerPage is the default number of events returned per request.
const EventsPerPage = 25

// EventsHandler serves the audit log to administrators.
type EventsHandler struct {
	events *service.EventService
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(events *service.EventService) *EventsHandler {
	return &EventsHandler{events: events}
}

// List handles GET /api/events?limit=&offset=.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	limit := queryInt64(r, "limit", EventsPerPage)
	offset := queryInt64(r, "offset", 0)

	page, err := h.events.List(r.Context(), id.IsAdministrator(), limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONSuccess(w, map[string]any{
		"events": page.Events,
		"total":  page.Total,
	})
}
