// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/landed/internal/auth"
	"github.com/olegiv/landed/internal/cache"
	"github.com/olegiv/landed/internal/metrics"
	"github.com/olegiv/landed/internal/model"
	"github.com/olegiv/landed/internal/store"
)

// PageInput is the editable content of a page. A nil Theme keeps the current
// theme, or the default one for new pages.
type PageInput struct {
	Name       string            `json:"name"`
	Components []model.Component `json:"components"`
	Theme      *model.Theme      `json:"theme,omitempty"`
}

// PageService is the page editor backend and the public page lookup.
type PageService struct {
	queries *store.Queries
	public  *cache.PublicPageCache
	policy  *bluemonday.Policy
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewPageService creates a page service. public and m may be nil.
func NewPageService(db *sql.DB, public *cache.PublicPageCache, logger *slog.Logger, m *metrics.Metrics) *PageService {
	return &PageService{
		queries: store.New(db),
		public:  public,
		policy:  model.TextPolicy(),
		logger:  logger,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// fail logs foreign errors and converts them to transient service errors.
func (s *PageService) fail(op, accountID, pageID string, err error) error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	s.logger.Error("page operation failed",
		"op", op,
		"account_id", accountID,
		"page_id", pageID,
		"error", err,
		"category", model.EventCategoryPage,
	)
	return transient(err)
}

// prepare validates and sanitizes input and returns the documents to store.
func (s *PageService) prepare(in PageInput, current *model.Theme) (name, components, theme string, err error) {
	if err := model.ValidatePageName(in.Name); err != nil {
		return "", "", "", &Error{Kind: KindInvalidInput, Message: err.Error()}
	}
	if in.Components == nil {
		in.Components = []model.Component{}
	}
	if err := model.ValidateComponents(in.Components); err != nil {
		return "", "", "", &Error{Kind: KindInvalidInput, Message: err.Error()}
	}
	model.SanitizeComponents(in.Components, s.policy)

	th := model.DefaultTheme()
	switch {
	case in.Theme != nil:
		th = in.Theme.WithDefaults()
	case current != nil:
		th = *current
	}
	if err := th.Validate(); err != nil {
		return "", "", "", &Error{Kind: KindInvalidInput, Message: err.Error()}
	}

	c, err := json.Marshal(in.Components)
	if err != nil {
		return "", "", "", &Error{Kind: KindInvalidInput, Message: err.Error()}
	}
	t, err := json.Marshal(th)
	if err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(in.Name), string(c), string(t), nil
}

// Create stores a new draft page owned by the requester.
func (s *PageService) Create(ctx context.Context, requester auth.Identity, in PageInput) (*model.Page, error) {
	if requester.AccountID == "" {
		return nil, unauthenticated()
	}
	name, components, theme, err := s.prepare(in, nil)
	if err != nil {
		return nil, s.fail("create_page", requester.AccountID, "", err)
	}

	now := s.now()
	row, err := s.queries.CreatePage(ctx, store.CreatePageParams{
		ID:         uuid.NewString(),
		UserID:     requester.AccountID,
		Name:       name,
		Components: components,
		Theme:      theme,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, s.fail("create_page", requester.AccountID, "", err)
	}
	page, err := pageFromStore(row)
	if err != nil {
		return nil, s.fail("create_page", requester.AccountID, row.ID, err)
	}
	return page, nil
}

// List returns the requester's pages, most recently updated first.
func (s *PageService) List(ctx context.Context, requester auth.Identity) ([]*model.Page, error) {
	if requester.AccountID == "" {
		return nil, unauthenticated()
	}
	rows, err := s.queries.ListPagesByUser(ctx, requester.AccountID)
	if err != nil {
		return nil, s.fail("list_pages", requester.AccountID, "", err)
	}
	pages := make([]*model.Page, 0, len(rows))
	for _, row := range rows {
		p, err := pageFromStore(row)
		if err != nil {
			return nil, s.fail("list_pages", requester.AccountID, row.ID, err)
		}
		pages = append(pages, p)
	}
	return pages, nil
}

func (s *PageService) owned(ctx context.Context, requester auth.Identity, pageID string) (store.Page, error) {
	if requester.AccountID == "" {
		return store.Page{}, unauthenticated()
	}
	row, err := s.queries.GetPage(ctx, pageID)
	if err != nil {
		if store.IsNotFound(err) {
			return store.Page{}, notFound("Page")
		}
		return store.Page{}, err
	}
	if row.UserID != requester.AccountID {
		return store.Page{}, forbidden()
	}
	return row, nil
}

// Get returns one of the requester's pages.
func (s *PageService) Get(ctx context.Context, requester auth.Identity, pageID string) (*model.Page, error) {
	row, err := s.owned(ctx, requester, pageID)
	if err != nil {
		return nil, s.fail("get_page", requester.AccountID, pageID, err)
	}
	page, err := pageFromStore(row)
	if err != nil {
		return nil, s.fail("get_page", requester.AccountID, pageID, err)
	}
	return page, nil
}

// Update replaces the content of a page. A published page stays published and
// its cached public copy is dropped.
func (s *PageService) Update(ctx context.Context, requester auth.Identity, pageID string, in PageInput) (*model.Page, error) {
	row, err := s.owned(ctx, requester, pageID)
	if err != nil {
		return nil, s.fail("update_page", requester.AccountID, pageID, err)
	}
	current, err := pageFromStore(row)
	if err != nil {
		return nil, s.fail("update_page", requester.AccountID, pageID, err)
	}

	name, components, theme, err := s.prepare(in, &current.Theme)
	if err != nil {
		return nil, s.fail("update_page", requester.AccountID, pageID, err)
	}
	if err := s.queries.UpdatePageContent(ctx, store.UpdatePageContentParams{
		Name:       name,
		Components: components,
		Theme:      theme,
		UpdatedAt:  s.now(),
		ID:         pageID,
	}); err != nil {
		return nil, s.fail("update_page", requester.AccountID, pageID, err)
	}
	s.invalidate(ctx, current)

	return s.Get(ctx, requester, pageID)
}

// Delete removes a page, published or not.
func (s *PageService) Delete(ctx context.Context, requester auth.Identity, pageID string) error {
	row, err := s.owned(ctx, requester, pageID)
	if err != nil {
		return s.fail("delete_page", requester.AccountID, pageID, err)
	}
	if err := s.queries.DeletePage(ctx, pageID); err != nil {
		return s.fail("delete_page", requester.AccountID, pageID, err)
	}
	if p, err := pageFromStore(row); err == nil {
		s.invalidate(ctx, p)
	}
	s.logger.Info("page deleted",
		"account_id", requester.AccountID,
		"page_id", pageID,
		"category", model.EventCategoryPage,
	)
	return nil
}

// GetPublished returns the page published at subdomain/slug. Lookups go
// through the public page cache when one is configured.
func (s *PageService) GetPublished(ctx context.Context, subdomain, slug string) (*model.Page, error) {
	load := func() (*model.Page, error) {
		row, err := s.queries.GetPublishedPage(ctx, store.GetPublishedPageParams{
			UserSubdomain: subdomain,
			PageSlug:      slug,
		})
		if err != nil {
			return nil, err
		}
		return pageFromStore(row)
	}

	var (
		page *model.Page
		err  error
	)
	if s.public != nil {
		page, err = s.public.Get(ctx, subdomain, slug, load)
	} else {
		page, err = load()
	}
	if err != nil {
		if store.IsNotFound(err) {
			s.metrics.PublicLookup("miss")
			return nil, notFound("Page")
		}
		s.metrics.PublicLookup("error")
		s.logger.Error("public page lookup failed",
			"op", "get_published",
			"subdomain", subdomain,
			"slug", slug,
			"error", err,
			"category", model.EventCategoryPage,
		)
		return nil, transient(err)
	}
	s.metrics.PublicLookup("hit")
	return page, nil
}

func (s *PageService) invalidate(ctx context.Context, p *model.Page) {
	if s.public == nil || !p.IsPublished {
		return
	}
	if err := s.public.Invalidate(ctx, p.UserSubdomain, p.PageSlug); err != nil {
		s.logger.Warn("page cache invalidation failed",
			"page_id", p.ID,
			"error", err,
			"category", model.EventCategoryCache,
		)
	}
}
