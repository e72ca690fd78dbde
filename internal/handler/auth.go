// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/landed/internal/auth"
	"github.com/olegiv/landed/internal/middleware"
	"github.com/olegiv/landed/internal/model"
	"github.com/olegiv/landed/internal/service"
	"github.com/olegiv/landed/internal/session"
)

// AuthHandler issues and revokes credentials.
type AuthHandler struct {
	accounts        *service.AccountService
	tokens          *auth.TokenService
	sessionManager  *scs.SessionManager
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler. lp may be nil.
func NewAuthHandler(accounts *service.AccountService, tokens *auth.TokenService, sm *scs.SessionManager, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		accounts:        accounts,
		tokens:          tokens,
		sessionManager:  sm,
		loginProtection: lp,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login. On success the session is signed in
// and a bearer token is returned for API clients.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsLocked(email); locked {
			writeJSONError(w, http.StatusTooManyRequests, "locked",
				"Too many failed attempts. Try again in "+formatDuration(remaining))
			return
		}
	}

	id, err := h.accounts.Authenticate(r.Context(), email, req.Password)
	if err != nil {
		if service.KindOf(err) == service.KindUnauthenticated && h.loginProtection != nil {
			if locked, lockFor := h.loginProtection.RecordFailure(email); locked {
				writeJSONError(w, http.StatusTooManyRequests, "locked",
					"Too many failed attempts. Try again in "+formatDuration(lockFor))
				return
			}
		}
		writeServiceError(w, err)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccess(email)
	}

	if err := session.SignIn(r.Context(), h.sessionManager, id); err != nil {
		slog.Error("session renew failed", "error", err, "account_id", id.AccountID)
		writeJSONError(w, http.StatusInternalServerError, string(service.KindTransient),
			"Something went wrong, please try again")
		return
	}

	token, claims, err := h.tokens.Issue(id.AccountID, id.Role)
	if err != nil {
		slog.Error("token issue failed", "error", err, "account_id", id.AccountID)
		writeJSONError(w, http.StatusInternalServerError, string(service.KindTransient),
			"Something went wrong, please try again")
		return
	}

	slog.Info("account logged in", "account_id", id.AccountID, "category", model.EventCategoryAuth)
	writeJSONSuccess(w, map[string]any{
		"token":     token,
		"expiresAt": claims.ExpiresAt.Time,
		"identity":  id,
	})
}

// Logout handles POST /api/auth/logout. It destroys the session and revokes
// the bearer token the request carried, if any.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.GetIdentity(r)

	if raw := auth.BearerToken(r); raw != "" {
		claims, err := h.tokens.Validate(r.Context(), raw)
		if err == nil {
			if err := h.tokens.Revoke(r.Context(), claims); err != nil {
				slog.Error("token revoke failed", "error", err, "account_id", claims.Subject)
				writeJSONError(w, http.StatusInternalServerError, string(service.KindTransient),
					"Something went wrong, please try again")
				return
			}
		}
	}

	if err := session.SignOut(r.Context(), h.sessionManager); err != nil {
		slog.Error("session destroy error", "error", err)
	}

	if id.AccountID != "" {
		slog.Info("account logged out", "account_id", id.AccountID, "category", model.EventCategoryAuth)
	}
	writeJSONSuccess(w, nil)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	acc, err := h.accounts.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONSuccess(w, map[string]any{"account": acc})
}
