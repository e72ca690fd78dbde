// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the domain types shared across the application:
// accounts, pages with their components and theme, custom domains and events.
package model

import "time"

// Account roles
const (
	RoleStandard      = "standard"
	RoleAdministrator = "administrator"
)

// Account is a registered user. Subdomain is empty until one is claimed.
type Account struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Subdomain string    `json:"subdomain,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsAdministrator returns true if the account has the administrator role.
func (a *Account) IsAdministrator() bool {
	return a.Role == RoleAdministrator
}

// IsValidRole checks if role is one of the known account roles.
func IsValidRole(role string) bool {
	return role == RoleStandard || role == RoleAdministrator
}
