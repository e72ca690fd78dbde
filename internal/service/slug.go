// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"

	"github.com/olegiv/landed/internal/store"
	"github.com/olegiv/landed/internal/util"
)

// SlugAllocator picks the path slug of a page under its owner's subdomain.
//
// Allocation is check-then-act: two pages of the same owner published at the
// same moment can both observe a free slug. Publishing is rare per owner, so
// the race is accepted.
type SlugAllocator struct {
	queries *store.Queries
}

// NewSlugAllocator creates a slug allocator.
func NewSlugAllocator(queries *store.Queries) *SlugAllocator {
	return &SlugAllocator{queries: queries}
}

// Allocate returns the slug derived from desiredName, suffixed -2, -3, ...
// while another published page of the owner uses it. pageID is never counted
// as a collision.
func (a *SlugAllocator) Allocate(ctx context.Context, ownerID, pageID, desiredName string) (string, error) {
	base := util.BaseSlug(desiredName)
	candidate := base
	for n := 2; ; n++ {
		_, err := a.queries.FindPublishedSlug(ctx, store.FindPublishedSlugParams{
			UserID:    ownerID,
			PageSlug:  candidate,
			ExcludeID: pageID,
		})
		if store.IsNotFound(err) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = util.SuffixedSlug(base, n)
	}
}
