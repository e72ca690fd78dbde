// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ComponentType tags the kind of a page section.
type ComponentType string

// Section kinds
const (
	ComponentHero         ComponentType = "hero"
	ComponentFeatures     ComponentType = "features"
	ComponentTestimonials ComponentType = "testimonials"
	ComponentFAQ          ComponentType = "faq"
	ComponentForm         ComponentType = "form"
	ComponentFooter       ComponentType = "footer"
)

// Limits on page content.
const (
	MaxComponents = 50
	MaxItems      = 50
	MaxTextLen    = 2000
)

var (
	// ErrUnknownComponentType is returned when a stored or submitted section
	// carries a type tag outside the fixed set.
	ErrUnknownComponentType = errors.New("unknown component type")
	// ErrInvalidComponent wraps every other section validation failure.
	ErrInvalidComponent = errors.New("invalid component")
)

// Props is the typed property record of one section kind.
type Props interface {
	Type() ComponentType
	Validate() error
	Sanitize(p *bluemonday.Policy)
}

var propsRegistry = map[ComponentType]func() Props{
	ComponentHero:         func() Props { return &HeroProps{} },
	ComponentFeatures:     func() Props { return &FeaturesProps{} },
	ComponentTestimonials: func() Props { return &TestimonialsProps{} },
	ComponentFAQ:          func() Props { return &FAQProps{} },
	ComponentForm:         func() Props { return &FormProps{} },
	ComponentFooter:       func() Props { return &FooterProps{} },
}

// ComponentTypes returns the supported section kinds.
func ComponentTypes() []ComponentType {
	return []ComponentType{
		ComponentHero,
		ComponentFeatures,
		ComponentTestimonials,
		ComponentFAQ,
		ComponentForm,
		ComponentFooter,
	}
}

// IsValidComponentType checks if t is a supported section kind.
func IsValidComponentType(t ComponentType) bool {
	_, ok := propsRegistry[t]
	return ok
}

// Component is one section of a page. Props is never nil for a decoded component.
type Component struct {
	ID    string
	Props Props
}

// Type returns the section kind selected by the props variant.
func (c Component) Type() ComponentType {
	if c.Props == nil {
		return ""
	}
	return c.Props.Type()
}

type componentJSON struct {
	ID    string          `json:"id"`
	Type  ComponentType   `json:"type"`
	Props json.RawMessage `json:"props,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (c Component) MarshalJSON() ([]byte, error) {
	if c.Props == nil {
		return nil, fmt.Errorf("%w: component %q has no props", ErrInvalidComponent, c.ID)
	}
	props, err := json.Marshal(c.Props)
	if err != nil {
		return nil, err
	}
	return json.Marshal(componentJSON{ID: c.ID, Type: c.Props.Type(), Props: props})
}

// UnmarshalJSON implements json.Unmarshaler. The type tag selects the props
// variant; unknown tags and unknown prop fields are rejected.
func (c *Component) UnmarshalJSON(data []byte) error {
	var raw componentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	newProps, ok := propsRegistry[raw.Type]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownComponentType, raw.Type)
	}
	props := newProps()

	if len(raw.Props) > 0 && !bytes.Equal(raw.Props, []byte("null")) {
		dec := json.NewDecoder(bytes.NewReader(raw.Props))
		dec.DisallowUnknownFields()
		if err := dec.Decode(props); err != nil {
			return fmt.Errorf("%w: %s props: %v", ErrInvalidComponent, raw.Type, err)
		}
	}

	c.ID = raw.ID
	c.Props = props
	return nil
}

// ValidateComponents checks ids, section limits and every props record.
func ValidateComponents(components []Component) error {
	if len(components) > MaxComponents {
		return fmt.Errorf("%w: at most %d sections allowed", ErrInvalidComponent, MaxComponents)
	}
	seen := make(map[string]struct{}, len(components))
	for i, c := range components {
		if strings.TrimSpace(c.ID) == "" {
			return fmt.Errorf("%w: section %d has no id", ErrInvalidComponent, i)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("%w: duplicate section id %q", ErrInvalidComponent, c.ID)
		}
		seen[c.ID] = struct{}{}
		if c.Props == nil {
			return fmt.Errorf("%w: section %q has no props", ErrInvalidComponent, c.ID)
		}
		if err := c.Props.Validate(); err != nil {
			return fmt.Errorf("%w: section %q: %v", ErrInvalidComponent, c.ID, err)
		}
	}
	return nil
}

// SanitizeComponents strips markup from every text field.
func SanitizeComponents(components []Component, p *bluemonday.Policy) {
	for _, c := range components {
		if c.Props != nil {
			c.Props.Sanitize(p)
		}
	}
}

// TextPolicy returns the policy applied to section text: no markup at all.
func TextPolicy() *bluemonday.Policy {
	return bluemonday.StrictPolicy()
}

// stripMarkup removes tags from s. The policy escapes what it keeps, so
// entities are decoded again: section text is stored as plain text.
func stripMarkup(pol *bluemonday.Policy, s string) string {
	return html.UnescapeString(pol.Sanitize(s))
}

// HeroProps is the page header.
type HeroProps struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	CTAText  string `json:"ctaText,omitempty"`
	CTAURL   string `json:"ctaUrl,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

func (p *HeroProps) Type() ComponentType { return ComponentHero }

func (p *HeroProps) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return errors.New("title is required")
	}
	if err := checkText(p.Title, p.Subtitle, p.CTAText); err != nil {
		return err
	}
	if (p.CTAText == "") != (p.CTAURL == "") {
		return errors.New("ctaText and ctaUrl must be set together")
	}
	return checkURLs(p.CTAURL, p.ImageURL)
}

func (p *HeroProps) Sanitize(pol *bluemonday.Policy) {
	p.Title = stripMarkup(pol, p.Title)
	p.Subtitle = stripMarkup(pol, p.Subtitle)
	p.CTAText = stripMarkup(pol, p.CTAText)
}

// FeatureItem is one entry of a features grid.
type FeatureItem struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

// FeaturesProps is a grid of product features.
type FeaturesProps struct {
	Title string        `json:"title,omitempty"`
	Items []FeatureItem `json:"items"`
}

func (p *FeaturesProps) Type() ComponentType { return ComponentFeatures }

func (p *FeaturesProps) Validate() error {
	if err := checkItems(len(p.Items)); err != nil {
		return err
	}
	if err := checkText(p.Title); err != nil {
		return err
	}
	for i, it := range p.Items {
		if strings.TrimSpace(it.Title) == "" {
			return fmt.Errorf("item %d: title is required", i)
		}
		if err := checkText(it.Title, it.Description, it.Icon); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}

func (p *FeaturesProps) Sanitize(pol *bluemonday.Policy) {
	p.Title = stripMarkup(pol, p.Title)
	for i := range p.Items {
		p.Items[i].Title = stripMarkup(pol, p.Items[i].Title)
		p.Items[i].Description = stripMarkup(pol, p.Items[i].Description)
		p.Items[i].Icon = stripMarkup(pol, p.Items[i].Icon)
	}
}

// Testimonial is one customer quote.
type Testimonial struct {
	Quote     string `json:"quote"`
	Author    string `json:"author"`
	Role      string `json:"role,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// TestimonialsProps is a list of customer quotes.
type TestimonialsProps struct {
	Title string        `json:"title,omitempty"`
	Items []Testimonial `json:"items"`
}

func (p *TestimonialsProps) Type() ComponentType { return ComponentTestimonials }

func (p *TestimonialsProps) Validate() error {
	if err := checkItems(len(p.Items)); err != nil {
		return err
	}
	if err := checkText(p.Title); err != nil {
		return err
	}
	for i, it := range p.Items {
		if strings.TrimSpace(it.Quote) == "" || strings.TrimSpace(it.Author) == "" {
			return fmt.Errorf("item %d: quote and author are required", i)
		}
		if err := checkText(it.Quote, it.Author, it.Role); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		if err := checkURLs(it.AvatarURL); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}

func (p *TestimonialsProps) Sanitize(pol *bluemonday.Policy) {
	p.Title = stripMarkup(pol, p.Title)
	for i := range p.Items {
		p.Items[i].Quote = stripMarkup(pol, p.Items[i].Quote)
		p.Items[i].Author = stripMarkup(pol, p.Items[i].Author)
		p.Items[i].Role = stripMarkup(pol, p.Items[i].Role)
	}
}

// FAQItem is one question and its answer.
type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// FAQProps is a list of frequently asked questions.
type FAQProps struct {
	Title string    `json:"title,omitempty"`
	Items []FAQItem `json:"items"`
}

func (p *FAQProps) Type() ComponentType { return ComponentFAQ }

func (p *FAQProps) Validate() error {
	if err := checkItems(len(p.Items)); err != nil {
		return err
	}
	if err := checkText(p.Title); err != nil {
		return err
	}
	for i, it := range p.Items {
		if strings.TrimSpace(it.Question) == "" || strings.TrimSpace(it.Answer) == "" {
			return fmt.Errorf("item %d: question and answer are required", i)
		}
		if err := checkText(it.Question, it.Answer); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}

func (p *FAQProps) Sanitize(pol *bluemonday.Policy) {
	p.Title = stripMarkup(pol, p.Title)
	for i := range p.Items {
		p.Items[i].Question = stripMarkup(pol, p.Items[i].Question)
		p.Items[i].Answer = stripMarkup(pol, p.Items[i].Answer)
	}
}

// FormField is one input of a form section.
type FormField struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Required bool     `json:"required,omitempty"`
	Options  []string `json:"options,omitempty"` // select only
}

// FormProps is a lead-capture form.
type FormProps struct {
	Title      string      `json:"title,omitempty"`
	SubmitText string      `json:"submitText,omitempty"`
	Fields     []FormField `json:"fields"`
}

func (p *FormProps) Type() ComponentType { return ComponentForm }

func (p *FormProps) Validate() error {
	if len(p.Fields) == 0 {
		return errors.New("at least one field is required")
	}
	if err := checkItems(len(p.Fields)); err != nil {
		return err
	}
	if err := checkText(p.Title, p.SubmitText); err != nil {
		return err
	}
	names := make(map[string]struct{}, len(p.Fields))
	for i, f := range p.Fields {
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("field %d: name is required", i)
		}
		if _, dup := names[f.Name]; dup {
			return fmt.Errorf("field %d: duplicate name %q", i, f.Name)
		}
		names[f.Name] = struct{}{}
		if !IsValidFieldType(f.Type) {
			return fmt.Errorf("field %q: unsupported type %q", f.Name, f.Type)
		}
		if f.Type == FieldTypeSelect && len(f.Options) == 0 {
			return fmt.Errorf("field %q: select needs options", f.Name)
		}
		if err := checkText(f.Label); err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
	}
	return nil
}

func (p *FormProps) Sanitize(pol *bluemonday.Policy) {
	p.Title = stripMarkup(pol, p.Title)
	p.SubmitText = stripMarkup(pol, p.SubmitText)
	for i := range p.Fields {
		p.Fields[i].Label = stripMarkup(pol, p.Fields[i].Label)
		for j := range p.Fields[i].Options {
			p.Fields[i].Options[j] = stripMarkup(pol, p.Fields[i].Options[j])
		}
	}
}

// FooterLink is one footer navigation entry.
type FooterLink struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// FooterProps is the page footer.
type FooterProps struct {
	Text  string       `json:"text,omitempty"`
	Links []FooterLink `json:"links,omitempty"`
}

func (p *FooterProps) Type() ComponentType { return ComponentFooter }

func (p *FooterProps) Validate() error {
	if err := checkItems(len(p.Links)); err != nil {
		return err
	}
	if err := checkText(p.Text); err != nil {
		return err
	}
	for i, l := range p.Links {
		if strings.TrimSpace(l.Label) == "" {
			return fmt.Errorf("link %d: label is required", i)
		}
		if err := checkURLs(l.URL); err != nil {
			return fmt.Errorf("link %d: %w", i, err)
		}
		if l.URL == "" {
			return fmt.Errorf("link %d: url is required", i)
		}
	}
	return nil
}

func (p *FooterProps) Sanitize(pol *bluemonday.Policy) {
	p.Text = stripMarkup(pol, p.Text)
	for i := range p.Links {
		p.Links[i].Label = stripMarkup(pol, p.Links[i].Label)
	}
}

func checkItems(n int) error {
	if n > MaxItems {
		return fmt.Errorf("at most %d items allowed", MaxItems)
	}
	return nil
}

func checkText(values ...string) error {
	for _, v := range values {
		if len(v) > MaxTextLen {
			return fmt.Errorf("text longer than %d bytes", MaxTextLen)
		}
	}
	return nil
}

// checkURLs accepts empty values, absolute http(s) and mailto URLs, and
// same-page anchors or root-relative paths.
func checkURLs(values ...string) error {
	for _, v := range values {
		if v == "" {
			continue
		}
		lower := strings.ToLower(v)
		switch {
		case strings.HasPrefix(lower, "https://"),
			strings.HasPrefix(lower, "http://"),
			strings.HasPrefix(lower, "mailto:"),
			strings.HasPrefix(v, "#"),
			strings.HasPrefix(v, "/") && !strings.HasPrefix(v, "//"):
		default:
			return fmt.Errorf("unsupported url %q", v)
		}
	}
	return nil
}
