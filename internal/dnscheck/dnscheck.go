// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package dnscheck proves that a custom domain points at the platform and
// carries the owner's verification token.
package dnscheck

//go:generate mockgen -source=dnscheck.go -destination=mocks/resolver_mock.go -package=mocks Resolver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Resolver is the subset of *net.Resolver used for verification.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
	LookupTXT(ctx context.Context, name string) ([]string, error)
}

var _ Resolver = (*net.Resolver)(nil)

// Reason classifies a failed verification.
type Reason string

// Failure reasons
const (
	ReasonNotPropagated   Reason = "not_propagated"
	ReasonTimeout         Reason = "timeout"
	ReasonAddressMismatch Reason = "address_mismatch"
	ReasonTokenMissing    Reason = "token_missing"
	ReasonOther           Reason = "other"
)

// Error is a failed verification of Name.
type Error struct {
	Reason Reason
	Name   string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dns check %s: %s: %v", e.Name, e.Reason, e.Err)
	}
	return fmt.Sprintf("dns check %s: %s", e.Name, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ReasonOf returns the reason of a verification error, ReasonOther for
// anything that is not an *Error.
func ReasonOf(err error) Reason {
	var de *Error
	if errors.As(err, &de) {
		return de.Reason
	}
	return ReasonOther
}

// Classify maps a resolver error to a reason. Missing names and missing
// records both mean the owner's DNS changes have not propagated yet.
func Classify(err error) Reason {
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		switch {
		case dnsErr.IsNotFound:
			return ReasonNotPropagated
		case dnsErr.IsTimeout:
			return ReasonTimeout
		}
	}
	return ReasonOther
}

// Checker runs the address and token lookups for a domain.
type Checker struct {
	resolver Resolver
	timeout  time.Duration
}

// NewChecker creates a checker. A nil resolver uses net.DefaultResolver.
func NewChecker(resolver Resolver, timeout time.Duration) *Checker {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	return &Checker{resolver: resolver, timeout: timeout}
}

// Check resolves the address and TXT records of name concurrently under the
// checker's timeout. The address check is evaluated first: expectedIP must be
// among the addresses, then token must be among the TXT records. It returns
// nil or an *Error.
func (c *Checker) Check(ctx context.Context, name, expectedIP, token string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var (
		addrs, txts     []string
		addrErr, txtErr error
		g               errgroup.Group
	)
	// Each lookup reports its own error; a failure of one must not cancel the other.
	g.Go(func() error {
		addrs, addrErr = c.resolver.LookupHost(ctx, name)
		return nil
	})
	g.Go(func() error {
		txts, txtErr = c.resolver.LookupTXT(ctx, name)
		return nil
	})
	_ = g.Wait()

	if addrErr != nil {
		return &Error{Reason: Classify(addrErr), Name: name, Err: addrErr}
	}
	if !containsIP(addrs, expectedIP) {
		return &Error{Reason: ReasonAddressMismatch, Name: name}
	}

	if txtErr != nil {
		return &Error{Reason: Classify(txtErr), Name: name, Err: txtErr}
	}
	if !slices.ContainsFunc(txts, func(rec string) bool {
		return strings.TrimSpace(rec) == token
	}) {
		return &Error{Reason: ReasonTokenMissing, Name: name}
	}
	return nil
}

func containsIP(addrs []string, expected string) bool {
	want := net.ParseIP(expected)
	if want == nil {
		return false
	}
	return slices.ContainsFunc(addrs, func(a string) bool {
		return want.Equal(net.ParseIP(a))
	})
}
