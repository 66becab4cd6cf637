// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render turns a website description into a page of layout blocks
// and writes that page as standalone HTML.
//
// Render is a pure function of the description, the viewport and the
// options. Placeholder imagery is keyed by section id so that a page
// renders identically every time.
package render

import (
	"fmt"
	"net/url"
	"strings"

	"sitesmith/internal/site"
	"sitesmith/internal/slug"
)

// Default palette values used when the theme carries malformed colors.
const (
	DefaultPrimary   = "#4f46e5"
	DefaultSecondary = "#0f172a"
	DefaultFont      = "Inter"
)

// Options carries the inputs that are not part of the description.
type Options struct {
	Year int // copyright year printed in footers
}

// Render lays out every section of w in order. Unknown section types become
// placeholder blocks; nothing in the description can make it fail.
func Render(w *site.Website, vp Viewport, opts Options) Page {
	if vp != Tablet && vp != Mobile {
		vp = Desktop
	}
	if w == nil {
		w = &site.Website{}
	}

	page := Page{
		Title:       w.Name,
		Description: w.Description,
		Viewport:    vp,
		Width:       vp.Width(),
		Palette:     palette(w.Theme),
		Blocks:      make([]Block, 0, len(w.Sections)),
	}
	for _, s := range w.Sections {
		page.Blocks = append(page.Blocks, renderSection(w, s, vp, opts))
	}
	return page
}

func renderSection(w *site.Website, s site.Section, vp Viewport, opts Options) Block {
	switch s.Type {
	case site.SectionHero:
		return HeroBlock{
			ID:       s.ID,
			Title:    s.Title,
			Subtitle: s.Subtitle,
			CTA:      s.CTAText,
			ImageURL: s.ImageURL,
		}

	case site.SectionFeatures:
		b := FeaturesBlock{ID: s.ID, Title: s.Title, Subtitle: s.Subtitle, Columns: vp.columns(3, 3, 1)}
		for _, it := range s.Items {
			b.Cards = append(b.Cards, FeatureCard{
				Icon:        orDefault(it.Icon, "star"),
				Title:       it.Title,
				Description: it.Description,
			})
		}
		return b

	case site.SectionTestimonials:
		b := TestimonialsBlock{ID: s.ID, Title: s.Title, Subtitle: s.Subtitle, Columns: vp.columns(3, 2, 1)}
		for _, it := range s.Items {
			b.Quotes = append(b.Quotes, Quote{
				Text:   firstNonEmpty(it.Content, it.Description, "Amazing service, highly recommended!"),
				Author: it.Title,
				Role:   orDefault(it.Role, "Customer"),
				Avatar: "https://i.pravatar.cc/150?u=" + url.QueryEscape(it.Title),
				Stars:  5,
			})
		}
		return b

	case site.SectionAbout:
		return AboutBlock{
			ID:         s.ID,
			Title:      s.Title,
			Content:    s.Content,
			ImageURL:   orDefault(s.ImageURL, fmt.Sprintf("https://picsum.photos/seed/%s/800/800", url.PathEscape(s.ID))),
			ImageFirst: len(s.ID)%2 == 0,
			Split:      vp != Mobile,
			CTA:        "Explore More",
		}

	case site.SectionPricing:
		b := PricingBlock{ID: s.ID, Title: s.Title, Subtitle: s.Subtitle, Columns: vp.columns(2, 2, 1)}
		for i, it := range s.Items {
			t := Tier{
				Name:     it.Title,
				Price:    orDefault(it.Price, "$99"),
				Period:   "/mo",
				Features: it.Features,
				CTA:      "Get Started",
			}
			if len(t.Features) == 0 {
				t.Features = []string{"Unlimited access", "Custom integrations", "24/7 Support", "Advanced analytics"}
			}
			if i == 1 {
				t.Highlighted = true
				t.Badge = "Most Popular"
			}
			b.Tiers = append(b.Tiers, t)
		}
		return b

	case site.SectionGallery:
		b := GalleryBlock{ID: s.ID, Title: s.Title, Subtitle: s.Subtitle, Columns: vp.columns(4, 4, 2)}
		for n := 1; n <= 8; n++ {
			b.Images = append(b.Images, fmt.Sprintf("https://picsum.photos/seed/%s%d/600/600", url.PathEscape(s.ID), n))
		}
		return b

	case site.SectionContact:
		return ContactBlock{
			ID:       s.ID,
			Title:    orDefault(s.Title, "Get in Touch"),
			Subtitle: orDefault(s.Subtitle, "We would love to hear from you. Drop us a message!"),
			Split:    vp != Mobile,
			Rows: []ContactRow{
				{Icon: "envelope", Value: contactEmail(w.Name)},
				{Icon: "phone", Value: "+1 (555) 000-0000"},
				{Icon: "location-dot", Value: "123 Main Street, Springfield"},
			},
			Fields: []FormField{
				{Name: "name", Label: "Name", Type: "text", Placeholder: "John Doe"},
				{Name: "email", Label: "Email", Type: "email", Placeholder: "john@example.com"},
				{Name: "message", Label: "Message", Type: "textarea", Placeholder: "How can we help?"},
			},
			Submit: "Send Message",
		}

	case site.SectionFooter:
		return FooterBlock{
			ID:          s.ID,
			SiteName:    w.Name,
			Description: w.Description,
			Columns: []LinkColumn{
				{Heading: "Product", Links: []string{"Features", "Pricing", "Case Studies", "Reviews"}},
				{Heading: "Company", Links: []string{"About Us", "Contact", "Careers", "Legal"}},
			},
			Social:    []string{"twitter", "facebook", "instagram", "linkedin"},
			Legal:     []string{"Privacy", "Terms", "Cookies"},
			Copyright: fmt.Sprintf("© %d %s. All rights reserved.", opts.Year, w.Name),
		}

	default:
		return PlaceholderBlock{
			ID:    s.ID,
			Type:  string(s.Type),
			Label: fmt.Sprintf("Section: %s content placeholder", s.Type),
		}
	}
}

func palette(t site.Theme) Palette {
	p := Palette{
		Primary:   DefaultPrimary,
		Secondary: DefaultSecondary,
		Font:      cleanFont(t.FontFamily),
		Dark:      t.Mode == site.ModeDark,
	}
	if site.IsHexColor(t.PrimaryColor) {
		p.Primary = t.PrimaryColor
	}
	if site.IsHexColor(t.SecondaryColor) {
		p.Secondary = t.SecondaryColor
	}
	if p.Dark {
		p.Surface, p.Text, p.Muted = "#0f172a", "#f8fafc", "#94a3b8"
	} else {
		p.Surface, p.Text, p.Muted = "#ffffff", "#0f172a", "#64748b"
	}
	return p
}

// cleanFont keeps a font family name safe to place inside a CSS string.
func cleanFont(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == ' ', r == '-':
			b.WriteRune(r)
		}
	}
	if f := strings.TrimSpace(b.String()); f != "" {
		return f
	}
	return DefaultFont
}

func contactEmail(siteName string) string {
	s := slug.Generate(siteName)
	if s == "" {
		s = "website"
	}
	return "hello@" + s + ".example"
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
