// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const accountColumns = `id, email, password_hash, subdomain, role, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (Account, error) {
	var i Account
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.PasswordHash,
		&i.Subdomain,
		&i.Role,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createAccount = `INSERT INTO accounts (id, email, password_hash, role, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)`

type CreateAccountParams struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) (Account, error) {
	if _, err := q.db.ExecContext(ctx, createAccount,
		arg.ID,
		arg.Email,
		arg.PasswordHash,
		arg.Role,
		arg.CreatedAt,
		arg.UpdatedAt,
	); err != nil {
		return Account{}, err
	}
	return q.GetAccount(ctx, arg.ID)
}

const getAccount = `SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`

func (q *Queries) GetAccount(ctx context.Context, id string) (Account, error) {
	return scanAccount(q.db.QueryRowContext(ctx, getAccount, id))
}

const getAccountByEmail = `SELECT ` + accountColumns + ` FROM accounts WHERE email = ?`

func (q *Queries) GetAccountByEmail(ctx context.Context, email string) (Account, error) {
	return scanAccount(q.db.QueryRowContext(ctx, getAccountByEmail, email))
}

const setAccountSubdomain = `UPDATE accounts SET subdomain = ?, updated_at = ? WHERE id = ?`

type SetAccountSubdomainParams struct {
	Subdomain sql.NullString
	UpdatedAt time.Time
	ID        string
}

func (q *Queries) SetAccountSubdomain(ctx context.Context, arg SetAccountSubdomainParams) error {
	_, err := q.db.ExecContext(ctx, setAccountSubdomain, arg.Subdomain, arg.UpdatedAt, arg.ID)
	return err
}

const countAccounts = `SELECT COUNT(*) FROM accounts`

func (q *Queries) CountAccounts(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countAccounts).Scan(&count)
	return count, err
}
