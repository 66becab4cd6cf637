// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug derives URL-friendly identifiers from site names, used for
// published site paths and placeholder contact addresses.
package slug

import (
	"regexp"
	"strconv"
	"strings"
)

// MaxLen bounds the length of a generated slug.
const MaxLen = 60

var (
	// disallowed matches anything that isn't a letter, digit, whitespace or hyphen.
	disallowed = regexp.MustCompile(`[^a-z0-9\s-]`)
	// separators matches runs of whitespace and hyphens.
	separators = regexp.MustCompile(`[\s-]+`)
)

// Generate creates a URL-friendly slug from s.
// Example: "Crumb & Co. Bakery" → "crumb-co-bakery"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = disallowed.ReplaceAllString(result, "")
	result = separators.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")

	if len(result) > MaxLen {
		result = result[:MaxLen]
		if i := strings.LastIndex(result, "-"); i > MaxLen/2 {
			result = result[:i]
		}
		result = strings.Trim(result, "-")
	}
	return result
}

// Unique returns base, or base with the smallest numeric suffix ("-2",
// "-3", ...) for which taken reports false.
func Unique(base string, taken func(string) bool) string {
	if !taken(base) {
		return base
	}
	for n := 2; ; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if !taken(candidate) {
			return candidate
		}
	}
}
