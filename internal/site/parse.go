// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package site

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ValidationError lists every contract violation found in a description.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid website description: " + strings.Join(e.Problems, "; ")
}

// The wire types use pointers so that an absent field can be told apart
// from an empty one.
type wireTheme struct {
	PrimaryColor   *string `json:"primaryColor"`
	SecondaryColor *string `json:"secondaryColor"`
	FontFamily     *string `json:"fontFamily"`
	Mode           *string `json:"mode"`
}

type wireSection struct {
	ID       *string       `json:"id"`
	Type     *string       `json:"type"`
	Title    *string       `json:"title"`
	Subtitle string        `json:"subtitle"`
	Content  string        `json:"content"`
	CTAText  string        `json:"ctaText"`
	ImageURL string        `json:"imageUrl"`
	Items    []SectionItem `json:"items"`
}

type wireWebsite struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Theme       *wireTheme     `json:"theme"`
	Sections    *[]wireSection `json:"sections"`
}

// Parse decodes a JSON website description and checks it against the
// generation schema: top-level name, description, theme and sections must
// be present, the theme must carry all four fields, every section needs an
// id, a type and a title, and ids must be unique.
//
// Unknown section types are accepted; the renderer shows a placeholder for
// them. Malformed colors and modes other than light or dark are accepted as
// well, since the editor stores any theme value. Empty item and feature
// lists decode as nil so that Export and Parse round-trip.
func Parse(data []byte) (*Website, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, &ValidationError{Problems: []string{"empty document"}}
	}

	var raw wireWebsite
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode website: %w", err)
	}

	var problems []string
	missing := func(field string) {
		problems = append(problems, field+" is missing")
	}

	w := &Website{}
	if raw.Name == nil {
		missing("name")
	} else {
		w.Name = *raw.Name
	}
	if raw.Description == nil {
		missing("description")
	} else {
		w.Description = *raw.Description
	}

	if raw.Theme == nil {
		missing("theme")
	} else {
		t := raw.Theme
		if t.PrimaryColor == nil {
			missing("theme.primaryColor")
		} else {
			w.Theme.PrimaryColor = *t.PrimaryColor
		}
		if t.SecondaryColor == nil {
			missing("theme.secondaryColor")
		} else {
			w.Theme.SecondaryColor = *t.SecondaryColor
		}
		if t.FontFamily == nil {
			missing("theme.fontFamily")
		} else {
			w.Theme.FontFamily = *t.FontFamily
		}
		if t.Mode == nil {
			missing("theme.mode")
		} else {
			w.Theme.Mode = ThemeMode(*t.Mode)
		}
	}

	if raw.Sections == nil {
		missing("sections")
	} else {
		w.Sections = make([]Section, 0, len(*raw.Sections))
		for i, s := range *raw.Sections {
			prefix := fmt.Sprintf("sections[%d]", i)
			sec := Section{
				Subtitle: s.Subtitle,
				Content:  s.Content,
				CTAText:  s.CTAText,
				ImageURL: s.ImageURL,
				Items:    normalizeItems(s.Items),
			}
			if s.ID == nil || strings.TrimSpace(*s.ID) == "" {
				missing(prefix + ".id")
			} else {
				sec.ID = *s.ID
			}
			if s.Type == nil || *s.Type == "" {
				missing(prefix + ".type")
			} else {
				sec.Type = SectionType(*s.Type)
			}
			if s.Title == nil {
				missing(prefix + ".title")
			} else {
				sec.Title = *s.Title
			}
			w.Sections = append(w.Sections, sec)
		}
		for _, id := range w.DuplicateIDs() {
			if id != "" {
				problems = append(problems, fmt.Sprintf("section id %q is not unique", id))
			}
		}
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	return w, nil
}

func normalizeItems(items []SectionItem) []SectionItem {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		if len(items[i].Features) == 0 {
			items[i].Features = nil
		}
	}
	return items
}

// Export renders w as human-readable JSON with two-space indentation.
func Export(w *Website) ([]byte, error) {
	if w == nil {
		return nil, fmt.Errorf("export website: nil description")
	}
	if w.Sections == nil {
		cp := *w
		cp.Sections = []Section{}
		w = &cp
	}
	out, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export website: %w", err)
	}
	return out, nil
}

var hexColorRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// IsHexColor reports whether s is a #rgb or #rrggbb color.
func IsHexColor(s string) bool {
	return hexColorRe.MatchString(s)
}
