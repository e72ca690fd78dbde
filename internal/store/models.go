// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

type Account struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"password_hash"`
	Subdomain    sql.NullString `json:"subdomain"`
	Role         string         `json:"role"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type SubdomainClaim struct {
	Subdomain      string    `json:"subdomain"`
	OwnerAccountID string    `json:"owner_account_id"`
	ClaimedAt      time.Time `json:"claimed_at"`
}

type Page struct {
	ID            string         `json:"id"`
	UserID        string         `json:"user_id"`
	Name          string         `json:"name"`
	Components    string         `json:"components"`
	Theme         string         `json:"theme"`
	IsPublished   bool           `json:"is_published"`
	UserSubdomain sql.NullString `json:"user_subdomain"`
	PageSlug      sql.NullString `json:"page_slug"`
	PublicUrl     sql.NullString `json:"public_url"`
	DevPublicUrl  sql.NullString `json:"dev_public_url"`
	PublishedAt   sql.NullTime   `json:"published_at"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type CustomDomain struct {
	ID              string       `json:"id"`
	UserID          string       `json:"user_id"`
	Name            string       `json:"name"`
	Status          string       `json:"status"`
	VerificationTxt string       `json:"verification_txt"`
	AddedAt         time.Time    `json:"added_at"`
	VerifiedAt      sql.NullTime `json:"verified_at"`
}

type Event struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Metadata  string    `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}
