// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/olegiv/landed/internal/auth"
	"github.com/olegiv/landed/internal/middleware"
)

// requireIdentity returns the identity of the request or writes a 401.
// Routes are normally behind RequireAuth already.
func requireIdentity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, ok := middleware.GetIdentity(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthenticated", "Sign in to continue")
		return auth.Identity{}, false
	}
	return id, true
}

// queryInt64 parses a non-negative integer query parameter, returning def
// when it is missing or malformed.
func queryInt64(r *http.Request, name string, def int64) int64 {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
