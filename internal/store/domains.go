// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const customDomainColumns = `id, user_id, name, status, verification_txt, added_at, verified_at`

func scanCustomDomain(row interface{ Scan(...any) error }) (CustomDomain, error) {
	var i CustomDomain
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Name,
		&i.Status,
		&i.VerificationTxt,
		&i.AddedAt,
		&i.VerifiedAt,
	)
	return i, err
}

const createCustomDomain = `INSERT INTO custom_domains (id, user_id, name, status, verification_txt, added_at)
VALUES (?, ?, ?, ?, ?, ?)`

type CreateCustomDomainParams struct {
	ID              string
	UserID          string
	Name            string
	Status          string
	VerificationTxt string
	AddedAt         time.Time
}

func (q *Queries) CreateCustomDomain(ctx context.Context, arg CreateCustomDomainParams) (CustomDomain, error) {
	if _, err := q.db.ExecContext(ctx, createCustomDomain,
		arg.ID,
		arg.UserID,
		arg.Name,
		arg.Status,
		arg.VerificationTxt,
		arg.AddedAt,
	); err != nil {
		return CustomDomain{}, err
	}
	return q.GetCustomDomain(ctx, arg.ID)
}

const getCustomDomain = `SELECT ` + customDomainColumns + ` FROM custom_domains WHERE id = ?`

func (q *Queries) GetCustomDomain(ctx context.Context, id string) (CustomDomain, error) {
	return scanCustomDomain(q.db.QueryRowContext(ctx, getCustomDomain, id))
}

const getCustomDomainByName = `SELECT ` + customDomainColumns + ` FROM custom_domains WHERE name = ? LIMIT 1`

func (q *Queries) GetCustomDomainByName(ctx context.Context, name string) (CustomDomain, error) {
	return scanCustomDomain(q.db.QueryRowContext(ctx, getCustomDomainByName, name))
}

const listCustomDomainsByUser = `SELECT ` + customDomainColumns + ` FROM custom_domains
WHERE user_id = ?
ORDER BY added_at ASC`

func (q *Queries) ListCustomDomainsByUser(ctx context.Context, userID string) ([]CustomDomain, error) {
	rows, err := q.db.QueryContext(ctx, listCustomDomainsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []CustomDomain
	for rows.Next() {
		i, err := scanCustomDomain(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const markCustomDomainVerified = `UPDATE custom_domains SET status = 'verified', verified_at = ?
WHERE id = ?`

type MarkCustomDomainVerifiedParams struct {
	VerifiedAt time.Time
	ID         string
}

func (q *Queries) MarkCustomDomainVerified(ctx context.Context, arg MarkCustomDomainVerifiedParams) error {
	_, err := q.db.ExecContext(ctx, markCustomDomainVerified, arg.VerifiedAt, arg.ID)
	return err
}

const deleteCustomDomain = `DELETE FROM custom_domains WHERE id = ?`

func (q *Queries) DeleteCustomDomain(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deleteCustomDomain, id)
	return err
}

const getVerifiedDomainSubdomain = `SELECT a.subdomain FROM custom_domains d
JOIN accounts a ON a.id = d.user_id
WHERE d.name = ? AND d.status = 'verified' AND a.subdomain IS NOT NULL
LIMIT 1`

// GetVerifiedDomainSubdomain returns the owner's subdomain for a verified
// custom domain, or sql.ErrNoRows.
func (q *Queries) GetVerifiedDomainSubdomain(ctx context.Context, name string) (string, error) {
	var subdomain string
	err := q.db.QueryRowContext(ctx, getVerifiedDomainSubdomain, name).Scan(&subdomain)
	return subdomain, err
}
