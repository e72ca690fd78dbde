// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"errors"
	"fmt"

	"github.com/olegiv/landed/internal/dnscheck"
)

// Kind classifies a service failure.
type Kind string

// Failure kinds
const (
	KindUnauthenticated   Kind = "unauthenticated"
	KindForbidden         Kind = "forbidden"
	KindNotFound          Kind = "not_found"
	KindInvalidFormat     Kind = "invalid_format"
	KindInvalidInput      Kind = "invalid_input"
	KindAlreadyTaken      Kind = "already_taken"
	KindAlreadyExists     Kind = "already_exists"
	KindSubdomainRequired Kind = "subdomain_required"
	KindSubdomainInUse    Kind = "subdomain_in_use"
	KindDNS               Kind = "dns_error"
	KindTransient         Kind = "transient"
)

// Error is the only error type returned by services. Message is safe to show
// to the caller; Err is the internal cause and is only logged.
type Error struct {
	Kind    Kind
	DNS     dnscheck.Reason // set when Kind is KindDNS
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so the sentinels below work
// with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.DNS == "" || t.DNS == e.DNS
}

// Sentinels for errors.Is.
var (
	ErrUnauthenticated   = &Error{Kind: KindUnauthenticated}
	ErrForbidden         = &Error{Kind: KindForbidden}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrInvalidFormat     = &Error{Kind: KindInvalidFormat}
	ErrInvalidInput      = &Error{Kind: KindInvalidInput}
	ErrAlreadyTaken      = &Error{Kind: KindAlreadyTaken}
	ErrAlreadyExists     = &Error{Kind: KindAlreadyExists}
	ErrSubdomainRequired = &Error{Kind: KindSubdomainRequired}
	ErrSubdomainInUse    = &Error{Kind: KindSubdomainInUse}
	ErrDNS               = &Error{Kind: KindDNS}
	ErrTransient         = &Error{Kind: KindTransient}
)

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func unauthenticated() *Error {
	return newError(KindUnauthenticated, "Not authenticated")
}

func forbidden() *Error {
	return newError(KindForbidden, "Not allowed")
}

func notFound(what string) *Error {
	return newError(KindNotFound, what+" not found")
}

// transient wraps an internal failure. The cause is kept for logs only.
func transient(err error) *Error {
	return &Error{Kind: KindTransient, Message: "Something went wrong, please try again", Err: err}
}

func dnsError(err error) *Error {
	reason := dnscheck.ReasonOf(err)
	return &Error{Kind: KindDNS, DNS: reason, Message: dnsMessage(reason), Err: err}
}

func dnsMessage(r dnscheck.Reason) string {
	switch r {
	case dnscheck.ReasonNotPropagated:
		return "DNS records not found yet; changes can take a while to propagate"
	case dnscheck.ReasonTimeout:
		return "DNS lookup timed out, please try again"
	case dnscheck.ReasonAddressMismatch:
		return "Domain does not point to the platform address"
	case dnscheck.ReasonTokenMissing:
		return "Verification TXT record not found"
	default:
		return "Domain verification failed"
	}
}

// KindOf returns the kind of err, KindTransient for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransient
}
