// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/landed/internal/cache"
	"github.com/olegiv/landed/internal/dnscheck"
	"github.com/olegiv/landed/internal/metrics"
	"github.com/olegiv/landed/internal/model"
	"github.com/olegiv/landed/internal/store"
	"github.com/olegiv/landed/internal/util"
)

// DomainConfig holds the platform settings used for verification.
type DomainConfig struct {
	// PlatformIP must be among the address records of a verified domain.
	PlatformIP string
	// BaseDomain and its subdomains can never be added as custom domains.
	BaseDomain string
}

// DomainService manages custom domains and proves their ownership through DNS.
type DomainService struct {
	queries *store.Queries
	checker *dnscheck.Checker
	hosts   *cache.HostCache
	cfg     DomainConfig
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewDomainService creates a domain service. hosts and m may be nil.
func NewDomainService(db *sql.DB, checker *dnscheck.Checker, hosts *cache.HostCache, cfg DomainConfig, logger *slog.Logger, m *metrics.Metrics) *DomainService {
	return &DomainService{
		queries: store.New(db),
		checker: checker,
		hosts:   hosts,
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *DomainService) fail(op, accountID, ref string, err error) error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	s.logger.Error("domain operation failed",
		"op", op,
		"account_id", accountID,
		"domain", ref,
		"error", err,
		"category", model.EventCategoryDomain,
	)
	return transient(err)
}

// Add registers a pending custom domain for the account. Names are unique
// across all accounts.
func (s *DomainService) Add(ctx context.Context, accountID, name string) (*model.CustomDomain, error) {
	if accountID == "" {
		return nil, unauthenticated()
	}
	name = util.NormalizeDomain(name)
	if !util.IsValidDomainName(name) {
		return nil, newError(KindInvalidFormat, "Enter a domain name such as www.example.com")
	}
	if base := s.cfg.BaseDomain; base != "" && (name == base || strings.HasSuffix(name, "."+base)) {
		return nil, newError(KindInvalidFormat, "Platform subdomains cannot be added as custom domains")
	}

	if _, err := s.queries.GetCustomDomainByName(ctx, name); err == nil {
		return nil, newError(KindAlreadyExists, "Domain has already been added")
	} else if !store.IsNotFound(err) {
		return nil, s.fail("add_domain", accountID, name, err)
	}

	row, err := s.queries.CreateCustomDomain(ctx, store.CreateCustomDomainParams{
		ID:              uuid.NewString(),
		UserID:          accountID,
		Name:            name,
		Status:          model.DomainStatusPending,
		VerificationTxt: model.VerificationToken(accountID),
		AddedAt:         s.now(),
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			return nil, newError(KindAlreadyExists, "Domain has already been added")
		}
		return nil, s.fail("add_domain", accountID, name, err)
	}

	s.logger.Info("custom domain added",
		"account_id", accountID,
		"domain", name,
		"category", model.EventCategoryDomain,
	)
	return domainFromStore(row), nil
}

func (s *DomainService) owned(ctx context.Context, accountID, domainID string) (store.CustomDomain, error) {
	if accountID == "" {
		return store.CustomDomain{}, unauthenticated()
	}
	row, err := s.queries.GetCustomDomain(ctx, domainID)
	if err != nil {
		if store.IsNotFound(err) {
			return store.CustomDomain{}, notFound("Domain")
		}
		return store.CustomDomain{}, err
	}
	if row.UserID != accountID {
		return store.CustomDomain{}, forbidden()
	}
	return row, nil
}

// Verify checks that the domain resolves to the platform address and carries
// the verification TXT record, then marks it verified. Verifying a verified
// domain succeeds without any lookup.
func (s *DomainService) Verify(ctx context.Context, accountID, domainID string) (*model.CustomDomain, error) {
	row, err := s.owned(ctx, accountID, domainID)
	if err != nil {
		return nil, s.fail("verify_domain", accountID, domainID, err)
	}
	if row.Status == model.DomainStatusVerified {
		return domainFromStore(row), nil
	}
	if s.cfg.PlatformIP == "" {
		return nil, &Error{Kind: KindDNS, DNS: dnscheck.ReasonOther, Message: "Custom domain verification is not configured"}
	}

	start := time.Now()
	err = s.checker.Check(ctx, row.Name, s.cfg.PlatformIP, row.VerificationTxt)
	s.metrics.ObserveDNSCheck(start)
	if err != nil {
		de := dnsError(err)
		s.metrics.Verification(string(de.DNS))
		s.logger.Info("custom domain verification failed",
			"account_id", accountID,
			"domain", row.Name,
			"reason", de.DNS,
			"error", err,
			"category", model.EventCategoryDomain,
		)
		return nil, de
	}

	now := s.now()
	if err := s.queries.MarkCustomDomainVerified(ctx, store.MarkCustomDomainVerifiedParams{
		VerifiedAt: now,
		ID:         row.ID,
	}); err != nil {
		s.metrics.Verification(string(KindTransient))
		return nil, s.fail("verify_domain", accountID, row.Name, err)
	}
	s.invalidateHost(ctx, row.Name)
	s.metrics.Verification("ok")

	s.logger.Info("custom domain verified",
		"account_id", accountID,
		"domain", row.Name,
		"category", model.EventCategoryDomain,
	)
	row.Status = model.DomainStatusVerified
	row.VerifiedAt = sql.NullTime{Time: now, Valid: true}
	return domainFromStore(row), nil
}

// Delete removes one of the account's domains.
func (s *DomainService) Delete(ctx context.Context, accountID, domainID string) error {
	row, err := s.owned(ctx, accountID, domainID)
	if err != nil {
		return s.fail("delete_domain", accountID, domainID, err)
	}
	if err := s.queries.DeleteCustomDomain(ctx, row.ID); err != nil {
		return s.fail("delete_domain", accountID, row.Name, err)
	}
	s.invalidateHost(ctx, row.Name)

	s.logger.Info("custom domain deleted",
		"account_id", accountID,
		"domain", row.Name,
		"category", model.EventCategoryDomain,
	)
	return nil
}

// List returns the account's domains.
func (s *DomainService) List(ctx context.Context, accountID string) ([]*model.CustomDomain, error) {
	if accountID == "" {
		return nil, unauthenticated()
	}
	rows, err := s.queries.ListCustomDomainsByUser(ctx, accountID)
	if err != nil {
		return nil, s.fail("list_domains", accountID, "", err)
	}
	domains := make([]*model.CustomDomain, 0, len(rows))
	for _, row := range rows {
		domains = append(domains, domainFromStore(row))
	}
	return domains, nil
}

// ResolveHost returns the subdomain a verified custom domain is bound to, ""
// for any other host.
func (s *DomainService) ResolveHost(ctx context.Context, host string) (string, error) {
	host = util.NormalizeDomain(host)
	load := func() (string, error) {
		sub, err := s.queries.GetVerifiedDomainSubdomain(ctx, host)
		if store.IsNotFound(err) {
			return "", nil
		}
		return sub, err
	}

	var (
		sub string
		err error
	)
	if s.hosts != nil {
		sub, err = s.hosts.Resolve(ctx, host, load)
	} else {
		sub, err = load()
	}
	if err != nil {
		return "", s.fail("resolve_host", "", host, err)
	}
	return sub, nil
}

func (s *DomainService) invalidateHost(ctx context.Context, name string) {
	if s.hosts == nil {
		return
	}
	if err := s.hosts.Invalidate(ctx, name); err != nil {
		s.logger.Warn("host cache invalidation failed",
			"domain", name,
			"error", err,
			"category", model.EventCategoryCache,
		)
	}
}
