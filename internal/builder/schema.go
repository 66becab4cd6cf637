// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package builder

import (
	"sitesmith/internal/ai"
	"sitesmith/internal/site"
)

// WebsiteSchema describes the website document the backend must return:
// name, description, theme and sections are required; the theme needs all
// four fields with mode light or dark; sections need id, type and title,
// and type is limited to the recognized section types.
func WebsiteSchema() *ai.Schema {
	str := func(desc string) *ai.Schema {
		return &ai.Schema{Type: ai.TypeString, Description: desc}
	}

	types := make([]string, len(site.SectionTypes))
	for i, t := range site.SectionTypes {
		types[i] = string(t)
	}

	item := &ai.Schema{
		Type: ai.TypeObject,
		Properties: []ai.Property{
			{Name: "title", Schema: str("")},
			{Name: "description", Schema: str("")},
			{Name: "content", Schema: str("Quote text for testimonials")},
			{Name: "role", Schema: str("Job title or role for testimonials")},
			{Name: "icon", Schema: str("FontAwesome icon name like 'rocket'")},
			{Name: "price", Schema: str("Price label for pricing plans, e.g. $29")},
			{Name: "features", Schema: &ai.Schema{Type: ai.TypeArray, Items: str("")}},
		},
	}

	section := &ai.Schema{
		Type: ai.TypeObject,
		Properties: []ai.Property{
			{Name: "id", Schema: str("Unique, stable section identifier")},
			{Name: "type", Schema: &ai.Schema{Type: ai.TypeString, Enum: types}},
			{Name: "title", Schema: str("")},
			{Name: "subtitle", Schema: str("")},
			{Name: "content", Schema: str("Body text, Markdown allowed")},
			{Name: "ctaText", Schema: str("Call to action button label")},
			{Name: "imageUrl", Schema: str("")},
			{Name: "items", Schema: &ai.Schema{Type: ai.TypeArray, Items: item}},
		},
		Required: []string{"id", "type", "title"},
	}

	theme := &ai.Schema{
		Type: ai.TypeObject,
		Properties: []ai.Property{
			{Name: "primaryColor", Schema: str("Hex color code")},
			{Name: "secondaryColor", Schema: str("Hex color code")},
			{Name: "fontFamily", Schema: str("")},
			{Name: "mode", Schema: &ai.Schema{Type: ai.TypeString, Enum: []string{string(site.ModeLight), string(site.ModeDark)}}},
		},
		Required: []string{"primaryColor", "secondaryColor", "fontFamily", "mode"},
	}

	return &ai.Schema{
		Type: ai.TypeObject,
		Properties: []ai.Property{
			{Name: "name", Schema: str("")},
			{Name: "description", Schema: str("")},
			{Name: "theme", Schema: theme},
			{Name: "sections", Schema: &ai.Schema{Type: ai.TypeArray, Items: section}},
		},
		Required: []string{"name", "description", "theme", "sections"},
	}
}
