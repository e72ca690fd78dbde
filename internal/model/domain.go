// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Custom domain statuses
const (
	DomainStatusPending  = "pending"
	DomainStatusVerified = "verified"
)

// VerificationPrefix starts the TXT record value that proves domain ownership.
const VerificationPrefix = "landed-verification="

// CustomDomain is a user-owned domain awaiting or having passed DNS verification.
type CustomDomain struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId"`
	Name            string     `json:"name"`
	Status          string     `json:"status"`
	VerificationTxt string     `json:"verificationTxt"`
	AddedAt         time.Time  `json:"addedAt"`
	VerifiedAt      *time.Time `json:"verifiedAt,omitempty"`
}

// IsVerified returns true once DNS ownership has been proven.
func (d *CustomDomain) IsVerified() bool {
	return d.Status == DomainStatusVerified
}

// VerificationToken returns the TXT value an account must publish.
func VerificationToken(accountID string) string {
	return VerificationPrefix + accountID
}
