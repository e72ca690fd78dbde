// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides general-purpose helpers for subdomain labels,
// page slugs and domain names, plus nullable column conversions.
package util

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	// MinSubdomainInputLen is the minimum trimmed length of a requested subdomain.
	MinSubdomainInputLen = 3
	// MaxLabelLen is the DNS limit for a single label.
	MaxLabelLen = 63
	// MaxDomainLen is the DNS limit for a full name.
	MaxDomainLen = 253
	// UntitledSlug replaces names that normalize to nothing.
	UntitledSlug = "untitled"
)

var (
	// whitespaceRuns matches runs of whitespace
	whitespaceRuns = regexp.MustCompile(`\s+`)
	// slugSeparators matches whitespace and path separators
	slugSeparators = regexp.MustCompile(`[\s/\\]+`)
	// labelRegex matches a lowercase DNS label
	labelRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)
)

// NormalizeSubdomain trims, lowercases and turns whitespace runs into single hyphens.
func NormalizeSubdomain(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return whitespaceRuns.ReplaceAllString(s, "-")
}

// IsValidSubdomain checks that s is a single lowercase DNS label.
func IsValidSubdomain(s string) bool {
	return len(s) <= MaxLabelLen && labelRegex.MatchString(s)
}

// BaseSlug derives the path slug of a page from its display name.
// The name is NFC-normalized and trimmed, separator runs become a hyphen and
// case is preserved. A result that is empty or only dots becomes "untitled",
// so a slug is never a "." or ".." path segment.
func BaseSlug(name string) string {
	s := strings.TrimSpace(norm.NFC.String(name))
	s = slugSeparators.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if strings.Trim(s, ".") == "" {
		return UntitledSlug
	}
	return s
}

// SuffixedSlug returns base with a numeric suffix, e.g. Launch-2.
func SuffixedSlug(base string, n int) string {
	return base + "-" + strconv.Itoa(n)
}

// NormalizeDomain trims, lowercases and drops a trailing root dot.
func NormalizeDomain(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.TrimSuffix(s, ".")
}

// IsValidDomainName checks that s is a multi-label DNS name: at least one dot,
// every label a valid DNS label, 253 bytes at most.
func IsValidDomainName(s string) bool {
	if s == "" || len(s) > MaxDomainLen || !strings.Contains(s, ".") {
		return false
	}
	for _, label := range strings.Split(s, ".") {
		if !IsValidSubdomain(label) {
			return false
		}
	}
	return true
}
