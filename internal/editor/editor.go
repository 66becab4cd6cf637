// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package editor implements the direct sidebar mutations of a website
// description. Every operation takes the current description and returns a
// new one; the input is never modified, so callers always hold an explicit
// before and after state.
package editor

import (
	"errors"
	"fmt"

	"sitesmith/internal/site"
)

// ErrUnknownThemeField is returned by SetThemeField for a key that does not
// name a theme field.
var ErrUnknownThemeField = errors.New("unknown theme field")

// Theme field keys, matching the JSON names of site.Theme.
const (
	FieldPrimaryColor   = "primaryColor"
	FieldSecondaryColor = "secondaryColor"
	FieldFontFamily     = "fontFamily"
	FieldMode           = "mode"
)

// Direction is the way MoveSection shifts a section.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection converts user input into a Direction.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Up, Down:
		return Direction(s), nil
	}
	return "", fmt.Errorf("invalid direction %q: must be up or down", s)
}

// SetThemeField replaces one theme field. Values are not validated; the
// renderer tolerates malformed colors and modes.
func SetThemeField(w *site.Website, key, value string) (*site.Website, error) {
	out := w.Clone()
	switch key {
	case FieldPrimaryColor:
		out.Theme.PrimaryColor = value
	case FieldSecondaryColor:
		out.Theme.SecondaryColor = value
	case FieldFontFamily:
		out.Theme.FontFamily = value
	case FieldMode:
		out.Theme.Mode = site.ThemeMode(value)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownThemeField, key)
	}
	return out, nil
}

// RemoveSection drops the first section with the given id. The result is an
// unchanged copy when no section matches.
func RemoveSection(w *site.Website, id string) *site.Website {
	out := w.Clone()
	i := out.IndexOf(id)
	if i < 0 {
		return out
	}
	out.Sections = append(out.Sections[:i], out.Sections[i+1:]...)
	return out
}

// MoveSection swaps the section at index with its neighbor in direction d.
// Out of range indexes and moves past either end leave the order unchanged.
func MoveSection(w *site.Website, index int, d Direction) *site.Website {
	out := w.Clone()
	var target int
	switch d {
	case Up:
		target = index - 1
	case Down:
		target = index + 1
	default:
		return out
	}
	n := len(out.Sections)
	if index < 0 || index >= n || target < 0 || target >= n {
		return out
	}
	out.Sections[index], out.Sections[target] = out.Sections[target], out.Sections[index]
	return out
}

// CanMove reports whether MoveSection(w, index, d) would change the order.
func CanMove(w *site.Website, index int, d Direction) bool {
	n := len(w.Sections)
	if index < 0 || index >= n {
		return false
	}
	switch d {
	case Up:
		return index > 0
	case Down:
		return index < n-1
	}
	return false
}
