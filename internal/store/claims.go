// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const getSubdomainClaim = `SELECT subdomain, owner_account_id, claimed_at
FROM subdomain_claims WHERE subdomain = ?`

func (q *Queries) GetSubdomainClaim(ctx context.Context, subdomain string) (SubdomainClaim, error) {
	var i SubdomainClaim
	err := q.db.QueryRowContext(ctx, getSubdomainClaim, subdomain).Scan(
		&i.Subdomain,
		&i.OwnerAccountID,
		&i.ClaimedAt,
	)
	return i, err
}

const getClaimByOwner = `SELECT subdomain, owner_account_id, claimed_at
FROM subdomain_claims WHERE owner_account_id = ?
LIMIT 1`

func (q *Queries) GetClaimByOwner(ctx context.Context, ownerAccountID string) (SubdomainClaim, error) {
	var i SubdomainClaim
	err := q.db.QueryRowContext(ctx, getClaimByOwner, ownerAccountID).Scan(
		&i.Subdomain,
		&i.OwnerAccountID,
		&i.ClaimedAt,
	)
	return i, err
}

const createSubdomainClaim = `INSERT INTO subdomain_claims (subdomain, owner_account_id, claimed_at)
VALUES (?, ?, ?)`

type CreateSubdomainClaimParams struct {
	Subdomain      string
	OwnerAccountID string
	ClaimedAt      time.Time
}

func (q *Queries) CreateSubdomainClaim(ctx context.Context, arg CreateSubdomainClaimParams) error {
	_, err := q.db.ExecContext(ctx, createSubdomainClaim, arg.Subdomain, arg.OwnerAccountID, arg.ClaimedAt)
	return err
}

const deleteSubdomainClaim = `DELETE FROM subdomain_claims WHERE subdomain = ? AND owner_account_id = ?`

type DeleteSubdomainClaimParams struct {
	Subdomain      string
	OwnerAccountID string
}

func (q *Queries) DeleteSubdomainClaim(ctx context.Context, arg DeleteSubdomainClaimParams) error {
	_, err := q.db.ExecContext(ctx, deleteSubdomainClaim, arg.Subdomain, arg.OwnerAccountID)
	return err
}
