// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/olegiv/landed/internal/auth"
	"github.com/olegiv/landed/internal/model"
	"github.com/olegiv/landed/internal/store"
)

// Summary is the dashboard overview of an account.
type Summary struct {
	Account        *model.Account `json:"account"`
	PageCount      int            `json:"pageCount"`
	PublishedCount int64          `json:"publishedCount"`
	DomainCount    int            `json:"domainCount"`
	VerifiedCount  int            `json:"verifiedCount"`
}

// AccountService authenticates accounts and reads their profile.
type AccountService struct {
	queries *store.Queries
	logger  *slog.Logger
}

// NewAccountService creates an account service.
func NewAccountService(db *sql.DB, logger *slog.Logger) *AccountService {
	return &AccountService{queries: store.New(db), logger: logger}
}

func (s *AccountService) fail(op, accountID string, err error) error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	s.logger.Error("account operation failed",
		"op", op,
		"account_id", accountID,
		"error", err,
		"category", model.EventCategoryAuth,
	)
	return transient(err)
}

// Authenticate checks an email and password. Unknown emails and wrong
// passwords fail the same way.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (auth.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return auth.Identity{}, newError(KindUnauthenticated, "Invalid email or password")
	}

	acc, err := s.queries.GetAccountByEmail(ctx, email)
	if err != nil {
		if store.IsNotFound(err) {
			// Spend the hashing time anyway so unknown emails are not faster
			_, _ = auth.CheckPassword(password, dummyHash)
			return auth.Identity{}, newError(KindUnauthenticated, "Invalid email or password")
		}
		return auth.Identity{}, s.fail("authenticate", "", err)
	}

	ok, err := auth.CheckPassword(password, acc.PasswordHash)
	if err != nil {
		return auth.Identity{}, s.fail("authenticate", acc.ID, err)
	}
	if !ok {
		s.logger.Warn("failed login",
			"account_id", acc.ID,
			"category", model.EventCategoryAuth,
		)
		return auth.Identity{}, newError(KindUnauthenticated, "Invalid email or password")
	}

	role := acc.Role
	if !model.IsValidRole(role) {
		role = model.RoleStandard
	}
	return auth.Identity{AccountID: acc.ID, Role: role}, nil
}

// dummyHash is compared against when the email is unknown.
var dummyHash, _ = auth.HashPassword("landed-unknown-account")

// Get returns the account of the identity.
func (s *AccountService) Get(ctx context.Context, id auth.Identity) (*model.Account, error) {
	if id.AccountID == "" {
		return nil, unauthenticated()
	}
	acc, err := s.queries.GetAccount(ctx, id.AccountID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, unauthenticated()
		}
		return nil, s.fail("get_account", id.AccountID, err)
	}
	return accountFromStore(acc), nil
}

// Summary returns the dashboard overview of the identity's account.
func (s *AccountService) Summary(ctx context.Context, id auth.Identity) (*Summary, error) {
	acc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	pages, err := s.queries.ListPagesByUser(ctx, acc.ID)
	if err != nil {
		return nil, s.fail("summary", acc.ID, err)
	}
	published, err := s.queries.CountPublishedPagesByUser(ctx, acc.ID)
	if err != nil {
		return nil, s.fail("summary", acc.ID, err)
	}
	domains, err := s.queries.ListCustomDomainsByUser(ctx, acc.ID)
	if err != nil {
		return nil, s.fail("summary", acc.ID, err)
	}

	sum := &Summary{
		Account:        acc,
		PageCount:      len(pages),
		PublishedCount: published,
		DomainCount:    len(domains),
	}
	for _, d := range domains {
		if d.Status == model.DomainStatusVerified {
			sum.VerifiedCount++
		}
	}
	return sum, nil
}
