// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import "fmt"

// Viewport is the preview frame width the page is laid out for. It changes
// layout only, never content.
type Viewport string

const (
	Desktop Viewport = "desktop"
	Tablet  Viewport = "tablet"
	Mobile  Viewport = "mobile"
)

// ParseViewport converts a query value into a Viewport. Empty means desktop.
func ParseViewport(s string) (Viewport, error) {
	switch Viewport(s) {
	case "":
		return Desktop, nil
	case Desktop, Tablet, Mobile:
		return Viewport(s), nil
	}
	return "", fmt.Errorf("invalid viewport %q: must be desktop, tablet or mobile", s)
}

// Width is the CSS width of the page container.
func (v Viewport) Width() string {
	switch v {
	case Tablet:
		return "768px"
	case Mobile:
		return "375px"
	}
	return "100%"
}

// columns picks a grid column count for the viewport.
func (v Viewport) columns(desktop, tablet, mobile int) int {
	switch v {
	case Tablet:
		return tablet
	case Mobile:
		return mobile
	}
	return desktop
}

// Palette is the resolved color scheme of a page.
type Palette struct {
	Primary   string
	Secondary string
	Surface   string
	Text      string
	Muted     string
	Font      string
	Dark      bool
}

// Page is the rendered visual tree of a website.
type Page struct {
	Title       string
	Description string
	Viewport    Viewport
	Width       string
	Palette     Palette
	Blocks      []Block
}

// Block is one rendered section. The set of implementations is closed:
// HeroBlock, FeaturesBlock, TestimonialsBlock, AboutBlock, PricingBlock,
// GalleryBlock, ContactBlock, FooterBlock and PlaceholderBlock.
type Block interface {
	// Key is the id of the section the block was rendered from.
	Key() string
	// Kind names the layout, used to select the HTML template.
	Kind() string
	block()
}

type HeroBlock struct {
	ID       string
	Title    string
	Subtitle string
	CTA      string
	ImageURL string
}

type FeatureCard struct {
	Icon        string
	Title       string
	Description string
}

type FeaturesBlock struct {
	ID       string
	Title    string
	Subtitle string
	Columns  int
	Cards    []FeatureCard
}

type Quote struct {
	Text   string
	Author string
	Role   string
	Avatar string
	Stars  int
}

type TestimonialsBlock struct {
	ID       string
	Title    string
	Subtitle string
	Columns  int
	Quotes   []Quote
}

type AboutBlock struct {
	ID         string
	Title      string
	Content    string
	ImageURL   string
	ImageFirst bool // text panel is placed after the image
	Split      bool // side by side; stacked when false
	CTA        string
}

type Tier struct {
	Name        string
	Price       string
	Period      string
	Features    []string
	Highlighted bool
	Badge       string
	CTA         string
}

type PricingBlock struct {
	ID       string
	Title    string
	Subtitle string
	Columns  int
	Tiers    []Tier
}

type GalleryBlock struct {
	ID       string
	Title    string
	Subtitle string
	Columns  int
	Images   []string
}

type ContactRow struct {
	Icon  string
	Value string
}

type FormField struct {
	Name        string
	Label       string
	Type        string // text, email or textarea
	Placeholder string
}

type ContactBlock struct {
	ID       string
	Title    string
	Subtitle string
	Split    bool
	Rows     []ContactRow
	Fields   []FormField
	Submit   string
}

type LinkColumn struct {
	Heading string
	Links   []string
}

type FooterBlock struct {
	ID          string
	SiteName    string
	Description string
	Columns     []LinkColumn
	Social      []string
	Legal       []string
	Copyright   string
}

// PlaceholderBlock stands in for a section type the renderer does not know.
type PlaceholderBlock struct {
	ID    string
	Type  string
	Label string
}

func (b HeroBlock) Key() string         { return b.ID }
func (b FeaturesBlock) Key() string     { return b.ID }
func (b TestimonialsBlock) Key() string { return b.ID }
func (b AboutBlock) Key() string        { return b.ID }
func (b PricingBlock) Key() string      { return b.ID }
func (b GalleryBlock) Key() string      { return b.ID }
func (b ContactBlock) Key() string      { return b.ID }
func (b FooterBlock) Key() string       { return b.ID }
func (b PlaceholderBlock) Key() string  { return b.ID }

func (HeroBlock) Kind() string         { return "hero" }
func (FeaturesBlock) Kind() string     { return "features" }
func (TestimonialsBlock) Kind() string { return "testimonials" }
func (AboutBlock) Kind() string        { return "about" }
func (PricingBlock) Kind() string      { return "pricing" }
func (GalleryBlock) Kind() string      { return "gallery" }
func (ContactBlock) Kind() string      { return "contact" }
func (FooterBlock) Kind() string       { return "footer" }
func (PlaceholderBlock) Kind() string  { return "placeholder" }

func (HeroBlock) block()         {}
func (FeaturesBlock) block()     {}
func (TestimonialsBlock) block() {}
func (AboutBlock) block()        {}
func (PricingBlock) block()      {}
func (GalleryBlock) block()      {}
func (ContactBlock) block()      {}
func (FooterBlock) block()       {}
func (PlaceholderBlock) block()  {}
