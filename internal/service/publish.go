// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/olegiv/landed/internal/auth"
	"github.com/olegiv/landed/internal/cache"
	"github.com/olegiv/landed/internal/metrics"
	"github.com/olegiv/landed/internal/model"
	"github.com/olegiv/landed/internal/store"
	"github.com/olegiv/landed/internal/util"
)

// URLBuilder builds the addresses of a published page.
type URLBuilder interface {
	PublicURL(subdomain, slug string) string
	DevPublicURL(subdomain, slug string) string
}

// PublishResult describes a successful publication.
type PublishResult struct {
	Subdomain    string
	Slug         string
	PublicURL    string
	DevPublicURL string // Only set for administrators
}

// PublishService moves pages between draft and published.
type PublishService struct {
	queries *store.Queries
	slugs   *SlugAllocator
	pages   *cache.PublicPageCache
	urls    URLBuilder
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewPublishService creates a publish service. pages and m may be nil.
func NewPublishService(db *sql.DB, urls URLBuilder, pages *cache.PublicPageCache, logger *slog.Logger, m *metrics.Metrics) *PublishService {
	queries := store.New(db)
	return &PublishService{
		queries: queries,
		slugs:   NewSlugAllocator(queries),
		pages:   pages,
		urls:    urls,
		logger:  logger,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// loadOwned loads a page and checks that requester owns it.
func (s *PublishService) loadOwned(ctx context.Context, requester auth.Identity, pageID string) (store.Page, error) {
	if requester.AccountID == "" {
		return store.Page{}, unauthenticated()
	}
	page, err := s.queries.GetPage(ctx, pageID)
	if err != nil {
		if store.IsNotFound(err) {
			return store.Page{}, notFound("Page")
		}
		return store.Page{}, err
	}
	if page.UserID != requester.AccountID {
		return store.Page{}, forbidden()
	}
	return page, nil
}

// effectiveSubdomain keeps the page's subdomain while the owner still holds
// it and otherwise falls back to the owner's current claim.
func (s *PublishService) effectiveSubdomain(ctx context.Context, page store.Page) (string, error) {
	if page.UserSubdomain.Valid && page.UserSubdomain.String != "" {
		claim, err := s.queries.GetSubdomainClaim(ctx, page.UserSubdomain.String)
		switch {
		case err == nil && claim.OwnerAccountID == page.UserID:
			return claim.Subdomain, nil
		case err != nil && !store.IsNotFound(err):
			return "", err
		}
	}

	claim, err := s.queries.GetClaimByOwner(ctx, page.UserID)
	if err != nil {
		if store.IsNotFound(err) {
			return "", nil
		}
		return "", err
	}
	return claim.Subdomain, nil
}

// Publish makes the page reachable at {subdomain}.{base}/{slug}. It fails
// with KindSubdomainRequired when the owner has not claimed a subdomain.
func (s *PublishService) Publish(ctx context.Context, requester auth.Identity, pageID string) (*PublishResult, error) {
	res, err := s.publish(ctx, requester, pageID)
	if err != nil {
		var se *Error
		if !errors.As(err, &se) {
			s.logger.Error("publish failed",
				"op", "publish",
				"account_id", requester.AccountID,
				"page_id", pageID,
				"error", err,
				"category", model.EventCategoryPage,
			)
			se = transient(err)
		}
		s.metrics.Publication("publish", string(se.Kind))
		return nil, se
	}
	s.metrics.Publication("publish", "ok")
	return res, nil
}

func (s *PublishService) publish(ctx context.Context, requester auth.Identity, pageID string) (*PublishResult, error) {
	page, err := s.loadOwned(ctx, requester, pageID)
	if err != nil {
		return nil, err
	}

	subdomain, err := s.effectiveSubdomain(ctx, page)
	if err != nil {
		return nil, err
	}
	if subdomain == "" {
		return nil, newError(KindSubdomainRequired, "Claim a subdomain before publishing")
	}

	slug, err := s.slugs.Allocate(ctx, page.UserID, page.ID, page.Name)
	if err != nil {
		return nil, err
	}

	now := s.now()
	res := &PublishResult{
		Subdomain:    subdomain,
		Slug:         slug,
		PublicURL:    s.urls.PublicURL(subdomain, slug),
		DevPublicURL: s.urls.DevPublicURL(subdomain, slug),
	}
	if err := s.queries.PublishPage(ctx, store.PublishPageParams{
		UserSubdomain: subdomain,
		PageSlug:      slug,
		PublicUrl:     res.PublicURL,
		DevPublicUrl:  res.DevPublicURL,
		PublishedAt:   now,
		UpdatedAt:     now,
		ID:            page.ID,
	}); err != nil {
		return nil, err
	}

	s.invalidate(ctx, util.StringFromNull(page.UserSubdomain), util.StringFromNull(page.PageSlug))
	s.invalidate(ctx, subdomain, slug)

	s.logger.Info("page published",
		"account_id", requester.AccountID,
		"page_id", page.ID,
		"subdomain", subdomain,
		"slug", slug,
		"category", model.EventCategoryPage,
	)

	if !requester.IsAdministrator() {
		res.DevPublicURL = ""
	}
	return res, nil
}

// Unpublish takes the page offline but keeps its subdomain, slug and URLs so
// a later publish can reuse them. It reports whether the page was unpublished;
// failures are logged.
func (s *PublishService) Unpublish(ctx context.Context, requester auth.Identity, pageID string) bool {
	page, err := s.loadOwned(ctx, requester, pageID)
	if err == nil {
		err = s.queries.UnpublishPage(ctx, store.UnpublishPageParams{
			UpdatedAt: s.now(),
			ID:        page.ID,
		})
	}
	if err != nil {
		level := slog.LevelWarn
		if KindOf(err) == KindTransient {
			level = slog.LevelError
		}
		s.logger.Log(ctx, level, "unpublish failed",
			"op", "unpublish",
			"account_id", requester.AccountID,
			"page_id", pageID,
			"error", err,
			"category", model.EventCategoryPage,
		)
		s.metrics.Publication("unpublish", string(KindOf(err)))
		return false
	}

	s.invalidate(ctx, util.StringFromNull(page.UserSubdomain), util.StringFromNull(page.PageSlug))
	s.metrics.Publication("unpublish", "ok")
	s.logger.Info("page unpublished",
		"account_id", requester.AccountID,
		"page_id", page.ID,
		"category", model.EventCategoryPage,
	)
	return true
}

func (s *PublishService) invalidate(ctx context.Context, subdomain, slug string) {
	if s.pages == nil {
		return
	}
	if err := s.pages.Invalidate(ctx, subdomain, slug); err != nil {
		s.logger.Warn("page cache invalidation failed",
			"subdomain", subdomain,
			"slug", slug,
			"error", err,
			"category", model.EventCategoryCache,
		)
	}
}
