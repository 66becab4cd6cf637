// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package site defines the website description exchanged with the
// generative backend: a named site with a theme and an ordered list of
// sections. Every other package reads or produces these values.
package site

import "fmt"

// SectionType identifies the layout a section is rendered with.
type SectionType string

const (
	SectionHero         SectionType = "HERO"
	SectionFeatures     SectionType = "FEATURES"
	SectionAbout        SectionType = "ABOUT"
	SectionPricing      SectionType = "PRICING"
	SectionTestimonials SectionType = "TESTIMONIALS"
	SectionGallery      SectionType = "GALLERY"
	SectionContact      SectionType = "CONTACT"
	SectionFooter       SectionType = "FOOTER"
)

// SectionTypes lists every recognized section type in schema order.
var SectionTypes = []SectionType{
	SectionHero,
	SectionFeatures,
	SectionAbout,
	SectionPricing,
	SectionTestimonials,
	SectionGallery,
	SectionContact,
	SectionFooter,
}

// Known reports whether t is one of the recognized section types.
func (t SectionType) Known() bool {
	for _, k := range SectionTypes {
		if k == t {
			return true
		}
	}
	return false
}

// Icon returns the FontAwesome icon name shown next to the section in the
// editor outline.
func (t SectionType) Icon() string {
	switch t {
	case SectionHero:
		return "panorama"
	case SectionFeatures:
		return "list-check"
	case SectionAbout:
		return "circle-info"
	case SectionPricing:
		return "tags"
	case SectionTestimonials:
		return "quote-left"
	case SectionGallery:
		return "images"
	case SectionContact:
		return "envelope-open-text"
	case SectionFooter:
		return "shoe-prints"
	default:
		return "layer-group"
	}
}

// ThemeMode is the light/dark surface preference of a site. Any other value
// renders as light.
type ThemeMode string

const (
	ModeLight ThemeMode = "light"
	ModeDark  ThemeMode = "dark"
)

// Theme holds the global visual identity of a site. Colors are expected to
// be hex strings but are stored as given; the renderer tolerates anything.
type Theme struct {
	PrimaryColor   string    `json:"primaryColor"`
	SecondaryColor string    `json:"secondaryColor"`
	FontFamily     string    `json:"fontFamily"`
	Mode           ThemeMode `json:"mode"`
}

// SectionItem is one entry of a list-like section: a feature card, a
// testimonial, or a pricing plan.
type SectionItem struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Content     string   `json:"content,omitempty"`
	Role        string   `json:"role,omitempty"`
	Icon        string   `json:"icon,omitempty"`
	Price       string   `json:"price,omitempty"`
	Features    []string `json:"features,omitempty"`
}

// Section is one visual block of the page. ID is stable across edits that
// keep the section and doubles as the render key.
type Section struct {
	ID       string        `json:"id"`
	Type     SectionType   `json:"type"`
	Title    string        `json:"title"`
	Subtitle string        `json:"subtitle,omitempty"`
	Content  string        `json:"content,omitempty"`
	CTAText  string        `json:"ctaText,omitempty"`
	ImageURL string        `json:"imageUrl,omitempty"`
	Items    []SectionItem `json:"items,omitempty"`
}

// Website is the root description of a generated site. Section order is
// the top-to-bottom page order.
type Website struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Theme       Theme     `json:"theme"`
	Sections    []Section `json:"sections"`
}

// Clone returns a deep copy of w so callers can derive a new description
// without touching the original.
func (w *Website) Clone() *Website {
	if w == nil {
		return nil
	}
	out := *w
	if w.Sections != nil {
		out.Sections = make([]Section, len(w.Sections))
		for i, s := range w.Sections {
			out.Sections[i] = s.clone()
		}
	}
	return &out
}

func (s Section) clone() Section {
	if s.Items == nil {
		return s
	}
	items := make([]SectionItem, len(s.Items))
	for i, it := range s.Items {
		if it.Features != nil {
			it.Features = append([]string(nil), it.Features...)
		}
		items[i] = it
	}
	s.Items = items
	return s
}

// IndexOf returns the position of the first section with the given id, or
// -1 if there is none.
func (w *Website) IndexOf(id string) int {
	for i, s := range w.Sections {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Section returns a pointer to the first section with the given id.
func (w *Website) Section(id string) (*Section, bool) {
	i := w.IndexOf(id)
	if i < 0 {
		return nil, false
	}
	return &w.Sections[i], true
}

// DuplicateIDs returns every section id that appears more than once, in
// first-seen order.
func (w *Website) DuplicateIDs() []string {
	seen := make(map[string]int, len(w.Sections))
	var dups []string
	for _, s := range w.Sections {
		seen[s.ID]++
		if seen[s.ID] == 2 {
			dups = append(dups, s.ID)
		}
	}
	return dups
}

// Validate checks the invariants an in-memory description must hold at all
// times: every section has an id and ids are unique.
func (w *Website) Validate() error {
	var problems []string
	for i, s := range w.Sections {
		if s.ID == "" {
			problems = append(problems, fmt.Sprintf("sections[%d].id is empty", i))
		}
	}
	for _, id := range w.DuplicateIDs() {
		problems = append(problems, fmt.Sprintf("section id %q is not unique", id))
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
