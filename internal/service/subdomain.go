// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/olegiv/landed/internal/cache"
	"github.com/olegiv/landed/internal/metrics"
	"github.com/olegiv/landed/internal/model"
	"github.com/olegiv/landed/internal/store"
	"github.com/olegiv/landed/internal/util"
)

// ReservedSubdomains can never be claimed by an account.
var ReservedSubdomains = []string{"app", "www", "api", "admin"}

// SubdomainService assigns subdomains to accounts. The store transaction in
// Claim is the only serialization point between concurrent claims.
type SubdomainService struct {
	db       *sql.DB
	queries  *store.Queries
	hosts    *cache.HostCache
	pages    *cache.PublicPageCache
	logger   *slog.Logger
	metrics  *metrics.Metrics
	reserved []string
	now      func() time.Time
}

// NewSubdomainService creates a subdomain service. extraReserved extends
// ReservedSubdomains, e.g. with the configured application label. hosts and m
// may be nil.
func NewSubdomainService(db *sql.DB, hosts *cache.HostCache, pages *cache.PublicPageCache, logger *slog.Logger, m *metrics.Metrics, extraReserved ...string) *SubdomainService {
	reserved := slices.Clone(ReservedSubdomains)
	for _, r := range extraReserved {
		if r = util.NormalizeSubdomain(r); r != "" && !slices.Contains(reserved, r) {
			reserved = append(reserved, r)
		}
	}
	return &SubdomainService{
		db:       db,
		queries:  store.New(db),
		hosts:    hosts,
		pages:    pages,
		logger:   logger,
		metrics:  m,
		reserved: reserved,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Claim reserves desired for the account and returns the normalized name.
// Claiming the name the account already owns is a no-op. An account that owns
// a different name releases it in the same transaction, unless pages are
// still published under it.
func (s *SubdomainService) Claim(ctx context.Context, accountID, desired string) (string, error) {
	if accountID == "" {
		return "", unauthenticated()
	}
	if len(strings.TrimSpace(desired)) < util.MinSubdomainInputLen {
		s.metrics.Claim(string(KindInvalidFormat))
		return "", newError(KindInvalidFormat, "Subdomain must be at least 3 characters")
	}

	name := util.NormalizeSubdomain(desired)
	if !util.IsValidSubdomain(name) {
		s.metrics.Claim(string(KindInvalidFormat))
		return "", newError(KindInvalidFormat,
			"Subdomain may contain only lowercase letters, digits and inner hyphens, 63 characters at most")
	}
	if slices.Contains(s.reserved, name) {
		s.metrics.Claim(string(KindAlreadyTaken))
		return "", newError(KindAlreadyTaken, "Subdomain is already taken")
	}

	var released string
	err := store.RunInTx(ctx, s.db, func(q *store.Queries) error {
		if _, err := q.GetAccount(ctx, accountID); err != nil {
			if store.IsNotFound(err) {
				return unauthenticated()
			}
			return err
		}

		claim, err := q.GetSubdomainClaim(ctx, name)
		switch {
		case err == nil && claim.OwnerAccountID != accountID:
			return newError(KindAlreadyTaken, "Subdomain is already taken")
		case err == nil:
			// Already ours; keep the account record in line with the claim
			return q.SetAccountSubdomain(ctx, store.SetAccountSubdomainParams{
				Subdomain: util.NullStringFromValue(name),
				UpdatedAt: s.now(),
				ID:        accountID,
			})
		case !store.IsNotFound(err):
			return err
		}

		prev, err := q.GetClaimByOwner(ctx, accountID)
		switch {
		case err == nil:
			inUse, err := q.CountPublishedUnderSubdomain(ctx, store.CountPublishedUnderSubdomainParams{
				UserID:        accountID,
				UserSubdomain: util.NullStringFromValue(prev.Subdomain),
			})
			if err != nil {
				return err
			}
			if inUse > 0 {
				return newError(KindSubdomainInUse,
					"Unpublish the pages under your current subdomain before changing it")
			}
			if err := q.DeleteSubdomainClaim(ctx, store.DeleteSubdomainClaimParams{
				Subdomain:      prev.Subdomain,
				OwnerAccountID: accountID,
			}); err != nil {
				return err
			}
			released = prev.Subdomain
		case !store.IsNotFound(err):
			return err
		}

		if err := q.CreateSubdomainClaim(ctx, store.CreateSubdomainClaimParams{
			Subdomain:      name,
			OwnerAccountID: accountID,
			ClaimedAt:      s.now(),
		}); err != nil {
			if store.IsUniqueViolation(err) {
				return newError(KindAlreadyTaken, "Subdomain is already taken")
			}
			return err
		}

		return q.SetAccountSubdomain(ctx, store.SetAccountSubdomainParams{
			Subdomain: util.NullStringFromValue(name),
			UpdatedAt: s.now(),
			ID:        accountID,
		})
	})
	if err != nil {
		var se *Error
		if errors.As(err, &se) {
			s.metrics.Claim(string(se.Kind))
			return "", se
		}
		s.metrics.Claim(string(KindTransient))
		s.logger.Error("claim subdomain failed",
			"op", "claim",
			"account_id", accountID,
			"subdomain", name,
			"error", err,
			"category", model.EventCategorySubdomain,
		)
		return "", transient(err)
	}

	s.metrics.Claim("ok")
	if released != "" {
		s.invalidateDomains(ctx, accountID)
		s.invalidatePages(ctx, released)
		s.logger.Info("subdomain changed",
			"account_id", accountID,
			"from", released,
			"to", name,
			"category", model.EventCategorySubdomain,
		)
	} else {
		s.logger.Info("subdomain claimed",
			"account_id", accountID,
			"subdomain", name,
			"category", model.EventCategorySubdomain,
		)
	}
	return name, nil
}

// invalidatePages drops cached public pages served under a released name.
func (s *SubdomainService) invalidatePages(ctx context.Context, released string) {
	if s.pages == nil {
		return
	}
	if err := s.pages.InvalidateSubdomain(ctx, released); err != nil {
		s.logger.Warn("page cache invalidation failed",
			"subdomain", released, "error", err, "category", model.EventCategoryCache)
	}
}

// invalidateDomains drops cached host bindings of the account's custom
// domains, which resolve to the account's current subdomain.
func (s *SubdomainService) invalidateDomains(ctx context.Context, accountID string) {
	if s.hosts == nil {
		return
	}
	domains, err := s.queries.ListCustomDomainsByUser(ctx, accountID)
	if err != nil {
		s.logger.Warn("listing domains for cache invalidation failed",
			"account_id", accountID, "error", err, "category", model.EventCategoryCache)
		return
	}
	for _, d := range domains {
		_ = s.hosts.Invalidate(ctx, d.Name)
	}
}

// Get returns the subdomain of the account, "" when it has none.
func (s *SubdomainService) Get(ctx context.Context, accountID string) (string, error) {
	if accountID == "" {
		return "", unauthenticated()
	}
	claim, err := s.queries.GetClaimByOwner(ctx, accountID)
	if err != nil {
		if store.IsNotFound(err) {
			return "", nil
		}
		s.logger.Error("get subdomain failed", "op", "get_subdomain", "account_id", accountID, "error", err,
			"category", model.EventCategorySubdomain)
		return "", transient(err)
	}
	return claim.Subdomain, nil
}
