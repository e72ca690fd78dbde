// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Theme modes
const (
	ThemeModeLight = "light"
	ThemeModeDark  = "dark"
)

// MaxPageNameLen bounds the display name of a page.
const MaxPageNameLen = 200

// ErrInvalidTheme is returned for theme values that fail validation.
var ErrInvalidTheme = errors.New("invalid theme")

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Theme holds the visual settings of a page.
type Theme struct {
	PrimaryColor    string `json:"primaryColor"`
	SecondaryColor  string `json:"secondaryColor"`
	BackgroundColor string `json:"backgroundColor"`
	FontFamily      string `json:"fontFamily"`
	Mode            string `json:"mode"`
}

// DefaultTheme returns the theme given to new pages.
func DefaultTheme() Theme {
	return Theme{
		PrimaryColor:    "#2563eb",
		SecondaryColor:  "#1e293b",
		BackgroundColor: "#ffffff",
		FontFamily:      "Inter, sans-serif",
		Mode:            ThemeModeLight,
	}
}

// WithDefaults fills empty fields from DefaultTheme.
func (t Theme) WithDefaults() Theme {
	d := DefaultTheme()
	if t.PrimaryColor == "" {
		t.PrimaryColor = d.PrimaryColor
	}
	if t.SecondaryColor == "" {
		t.SecondaryColor = d.SecondaryColor
	}
	if t.BackgroundColor == "" {
		t.BackgroundColor = d.BackgroundColor
	}
	if t.FontFamily == "" {
		t.FontFamily = d.FontFamily
	}
	if t.Mode == "" {
		t.Mode = d.Mode
	}
	return t
}

// Validate checks colors, mode and font family.
func (t Theme) Validate() error {
	for name, c := range map[string]string{
		"primaryColor":    t.PrimaryColor,
		"secondaryColor":  t.SecondaryColor,
		"backgroundColor": t.BackgroundColor,
	} {
		if !hexColorRegex.MatchString(c) {
			return fmt.Errorf("%w: %s must be a #rgb or #rrggbb color, got %q", ErrInvalidTheme, name, c)
		}
	}
	if t.Mode != ThemeModeLight && t.Mode != ThemeModeDark {
		return fmt.Errorf("%w: mode must be %q or %q", ErrInvalidTheme, ThemeModeLight, ThemeModeDark)
	}
	if len(t.FontFamily) > 100 || strings.ContainsAny(t.FontFamily, ";{}<>\"") {
		return fmt.Errorf("%w: unsupported font family", ErrInvalidTheme)
	}
	return nil
}

// Page is a landing page and its publication state.
type Page struct {
	ID            string      `json:"id"`
	UserID        string      `json:"userId"`
	Name          string      `json:"name"`
	Components    []Component `json:"components"`
	Theme         Theme       `json:"theme"`
	IsPublished   bool        `json:"isPublished"`
	UserSubdomain string      `json:"userSubdomain,omitempty"`
	PageSlug      string      `json:"pageSlug,omitempty"`
	PublicURL     string      `json:"publicUrl,omitempty"`
	DevPublicURL  string      `json:"devPublicUrl,omitempty"`
	PublishedAt   *time.Time  `json:"publishedAt,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// IsDraft returns true if the page is not published.
func (p *Page) IsDraft() bool {
	return !p.IsPublished
}

// ValidatePageName checks the display name of a page.
func ValidatePageName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("name is required")
	}
	if len(name) > MaxPageNameLen {
		return fmt.Errorf("name must be at most %d bytes", MaxPageNameLen)
	}
	return nil
}
