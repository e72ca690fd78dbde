// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"encoding/json"
	"fmt"

	"github.com/olegiv/landed/internal/model"
	"github.com/olegiv/landed/internal/store"
	"github.com/olegiv/landed/internal/util"
)

func accountFromStore(a store.Account) *model.Account {
	return &model.Account{
		ID:        a.ID,
		Email:     a.Email,
		Subdomain: util.StringFromNull(a.Subdomain),
		Role:      a.Role,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// pageFromStore decodes the stored component and theme documents.
func pageFromStore(p store.Page) (*model.Page, error) {
	components := []model.Component{}
	if err := json.Unmarshal([]byte(p.Components), &components); err != nil {
		return nil, fmt.Errorf("decoding components of page %s: %w", p.ID, err)
	}
	theme := model.DefaultTheme()
	if err := json.Unmarshal([]byte(p.Theme), &theme); err != nil {
		return nil, fmt.Errorf("decoding theme of page %s: %w", p.ID, err)
	}

	return &model.Page{
		ID:            p.ID,
		UserID:        p.UserID,
		Name:          p.Name,
		Components:    components,
		Theme:         theme.WithDefaults(),
		IsPublished:   p.IsPublished,
		UserSubdomain: util.StringFromNull(p.UserSubdomain),
		PageSlug:      util.StringFromNull(p.PageSlug),
		PublicURL:     util.StringFromNull(p.PublicUrl),
		DevPublicURL:  util.StringFromNull(p.DevPublicUrl),
		PublishedAt:   util.TimePtrFromNull(p.PublishedAt),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}, nil
}

func domainFromStore(d store.CustomDomain) *model.CustomDomain {
	return &model.CustomDomain{
		ID:              d.ID,
		UserID:          d.UserID,
		Name:            d.Name,
		Status:          d.Status,
		VerificationTxt: d.VerificationTxt,
		AddedAt:         d.AddedAt,
		VerifiedAt:      util.TimePtrFromNull(d.VerifiedAt),
	}
}
