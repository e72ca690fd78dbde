// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const pageColumns = `id, user_id, name, components, theme, is_published, user_subdomain, page_slug,
public_url, dev_public_url, published_at, created_at, updated_at`

func scanPage(row interface{ Scan(...any) error }) (Page, error) {
	var i Page
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Name,
		&i.Components,
		&i.Theme,
		&i.IsPublished,
		&i.UserSubdomain,
		&i.PageSlug,
		&i.PublicUrl,
		&i.DevPublicUrl,
		&i.PublishedAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createPage = `INSERT INTO pages (id, user_id, name, components, theme, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

type CreatePageParams struct {
	ID         string
	UserID     string
	Name       string
	Components string
	Theme      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (q *Queries) CreatePage(ctx context.Context, arg CreatePageParams) (Page, error) {
	if _, err := q.db.ExecContext(ctx, createPage,
		arg.ID,
		arg.UserID,
		arg.Name,
		arg.Components,
		arg.Theme,
		arg.CreatedAt,
		arg.UpdatedAt,
	); err != nil {
		return Page{}, err
	}
	return q.GetPage(ctx, arg.ID)
}

const getPage = `SELECT ` + pageColumns + ` FROM pages WHERE id = ?`

func (q *Queries) GetPage(ctx context.Context, id string) (Page, error) {
	return scanPage(q.db.QueryRowContext(ctx, getPage, id))
}

const listPagesByUser = `SELECT ` + pageColumns + ` FROM pages
WHERE user_id = ?
ORDER BY updated_at DESC`

func (q *Queries) ListPagesByUser(ctx context.Context, userID string) ([]Page, error) {
	rows, err := q.db.QueryContext(ctx, listPagesByUser, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Page
	for rows.Next() {
		i, err := scanPage(rows)
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

const updatePageContent = `UPDATE pages SET name = ?, components = ?, theme = ?, updated_at = ?
WHERE id = ?`

type UpdatePageContentParams struct {
	Name       string
	Components string
	Theme      string
	UpdatedAt  time.Time
	ID         string
}

func (q *Queries) UpdatePageContent(ctx context.Context, arg UpdatePageContentParams) error {
	_, err := q.db.ExecContext(ctx, updatePageContent,
		arg.Name,
		arg.Components,
		arg.Theme,
		arg.UpdatedAt,
		arg.ID,
	)
	return err
}

const deletePage = `DELETE FROM pages WHERE id = ?`

func (q *Queries) DeletePage(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deletePage, id)
	return err
}

const publishPage = `UPDATE pages SET
    is_published = 1,
    user_subdomain = ?,
    page_slug = ?,
    public_url = ?,
    dev_public_url = ?,
    published_at = ?,
    updated_at = ?
WHERE id = ?`

type PublishPageParams struct {
	UserSubdomain string
	PageSlug      string
	PublicUrl     string
	DevPublicUrl  string
	PublishedAt   time.Time
	UpdatedAt     time.Time
	ID            string
}

// PublishPage writes every publication field in one statement.
func (q *Queries) PublishPage(ctx context.Context, arg PublishPageParams) error {
	_, err := q.db.ExecContext(ctx, publishPage,
		arg.UserSubdomain,
		arg.PageSlug,
		arg.PublicUrl,
		arg.DevPublicUrl,
		arg.PublishedAt,
		arg.UpdatedAt,
		arg.ID,
	)
	return err
}

const unpublishPage = `UPDATE pages SET is_published = 0, published_at = NULL, updated_at = ?
WHERE id = ?`

type UnpublishPageParams struct {
	UpdatedAt time.Time
	ID        string
}

// UnpublishPage clears the published flag but keeps subdomain, slug and URLs.
func (q *Queries) UnpublishPage(ctx context.Context, arg UnpublishPageParams) error {
	_, err := q.db.ExecContext(ctx, unpublishPage, arg.UpdatedAt, arg.ID)
	return err
}

const findPublishedSlug = `SELECT id FROM pages
WHERE user_id = ? AND page_slug = ? AND is_published = 1 AND id != ?
LIMIT 1`

type FindPublishedSlugParams struct {
	UserID    string
	PageSlug  string
	ExcludeID string
}

// FindPublishedSlug returns the id of another published page of the owner
// using the slug, or sql.ErrNoRows when the slug is free.
func (q *Queries) FindPublishedSlug(ctx context.Context, arg FindPublishedSlugParams) (string, error) {
	var id string
	err := q.db.QueryRowContext(ctx, findPublishedSlug, arg.UserID, arg.PageSlug, arg.ExcludeID).Scan(&id)
	return id, err
}

const getPublishedPage = `SELECT ` + pageColumns + ` FROM pages
WHERE user_subdomain = ? AND page_slug = ? AND is_published = 1
LIMIT 1`

type GetPublishedPageParams struct {
	UserSubdomain string
	PageSlug      string
}

func (q *Queries) GetPublishedPage(ctx context.Context, arg GetPublishedPageParams) (Page, error) {
	return scanPage(q.db.QueryRowContext(ctx, getPublishedPage, arg.UserSubdomain, arg.PageSlug))
}

const countPublishedUnderSubdomain = `SELECT COUNT(*) FROM pages
WHERE user_id = ? AND user_subdomain = ? AND is_published = 1`

type CountPublishedUnderSubdomainParams struct {
	UserID        string
	UserSubdomain sql.NullString
}

func (q *Queries) CountPublishedUnderSubdomain(ctx context.Context, arg CountPublishedUnderSubdomainParams) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countPublishedUnderSubdomain, arg.UserID, arg.UserSubdomain).Scan(&count)
	return count, err
}

const countPublishedPagesByUser = `SELECT COUNT(*) FROM pages WHERE user_id = ? AND is_published = 1`

func (q *Queries) CountPublishedPagesByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countPublishedPagesByUser, userID).Scan(&count)
	return count, err
}
