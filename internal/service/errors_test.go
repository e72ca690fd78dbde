// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/olegiv/landed/internal/dnscheck"
)

func TestError_IsMatchesKind(t *testing.T) {
	err := newError(KindAlreadyTaken, "Subdomain is already taken")

	assert.ErrorIs(t, err, ErrAlreadyTaken)
	assert.NotErrorIs(t, err, ErrAlreadyExists)
	assert.ErrorIs(t, fmt.Errorf("wrapped: %w", err), ErrAlreadyTaken)
}

func TestError_DNSReason(t *testing.T) {
	err := dnsError(&dnscheck.Error{Reason: dnscheck.ReasonAddressMismatch, Name: "www.acme.com"})

	assert.ErrorIs(t, err, ErrDNS)
	assert.ErrorIs(t, err, &Error{Kind: KindDNS, DNS: dnscheck.ReasonAddressMismatch})
	assert.NotErrorIs(t, err, &Error{Kind: KindDNS, DNS: dnscheck.ReasonTokenMissing})
	assert.Equal(t, "Domain does not point to the platform address", err.Message)
}

func TestTransient_HidesCause(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := transient(cause)

	assert.ErrorIs(t, err, ErrTransient)
	assert.ErrorIs(t, err, cause)
	assert.NotContains(t, err.Message, "disk")
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(notFound("Page")))
	assert.Equal(t, KindForbidden, KindOf(fmt.Errorf("x: %w", forbidden())))
	assert.Equal(t, KindTransient, KindOf(errors.New("raw")))
}
