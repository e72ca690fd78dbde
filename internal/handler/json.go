// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides the HTTP handlers of the JSON API, the
// application host and the public site host.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/olegiv/landed/internal/service"
)

// maxBodyBytes bounds JSON request bodies. Pages with many components stay
// well below it.
const maxBodyBytes = 1 << 20

// writeJSON writes body with the given status.
func writeJSON(w http.ResponseWriter, statusCode int, body map[string]any) {
	writeRaw(w, statusCode, body)
}

// writeRaw writes v as JSON without the envelope.
func writeRaw(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError writes a failed envelope.
func writeJSONError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, map[string]any{
		"success": false,
		"error":   message,
		"code":    code,
	})
}

// writeJSONSuccess writes a 200 envelope with the extra fields of data.
func writeJSONSuccess(w http.ResponseWriter, data map[string]any) {
	writeJSONStatus(w, http.StatusOK, data)
}

// writeJSONStatus writes a successful envelope with a custom status.
func writeJSONStatus(w http.ResponseWriter, statusCode int, data map[string]any) {
	if data == nil {
		data = make(map[string]any)
	}
	data["success"] = true
	writeJSON(w, statusCode, data)
}

// statusForKind maps a service failure kind to an HTTP status.
func statusForKind(k service.Kind) int {
	switch k {
	case service.KindUnauthenticated:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindInvalidFormat, service.KindInvalidInput:
		return http.StatusBadRequest
	case service.KindAlreadyTaken, service.KindAlreadyExists,
		service.KindSubdomainInUse, service.KindSubdomainRequired:
		return http.StatusConflict
	case service.KindDNS:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError writes the envelope for a service error. Only the
// error's public message is sent; causes were logged by the service.
func writeServiceError(w http.ResponseWriter, err error) {
	var se *service.Error
	if !errors.As(err, &se) {
		writeJSONError(w, http.StatusInternalServerError, string(service.KindTransient),
			"Something went wrong, please try again")
		return
	}

	body := map[string]any{
		"success": false,
		"error":   se.Message,
		"code":    string(se.Kind),
	}
	switch se.Kind {
	case service.KindSubdomainRequired:
		body["needsSubdomain"] = true
	case service.KindDNS:
		body["dnsReason"] = string(se.DNS)
	}
	writeJSON(w, statusForKind(se.Kind), body)
}

// decodeJSON reads a JSON request body into dst. An empty body leaves dst
// untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSONError(w, http.StatusRequestEntityTooLarge, "too_large", "Request body too large")
		return false
	}
	writeJSONError(w, http.StatusBadRequest, "bad_request", "Invalid JSON body")
	return false
}
