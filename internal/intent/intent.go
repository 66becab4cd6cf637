// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package intent routes a free-text utterance to either a website edit or a
// plain chat reply.
//
// The classifier is a keyword heuristic: any trigger word appearing anywhere
// in the utterance (case-insensitive substring) selects Edit. It has known
// false positives ("what is your address?" contains "add") and false
// negatives ("swap the hero image"). Widen the trigger set through
// configuration rather than adding language understanding here.
package intent

import (
	"strings"
)

// Intent is the routing decision for one utterance.
type Intent int

const (
	Chat Intent = iota
	Edit
)

func (i Intent) String() string {
	if i == Edit {
		return "edit"
	}
	return "chat"
}

// DefaultTriggers is the trigger set used when none is configured.
var DefaultTriggers = []string{
	"change", "add", "update", "edit", "make", "set",
	"create", "remove", "delete", "style",
}

// Classifier matches utterances against a fixed set of trigger words.
type Classifier struct {
	triggers []string
}

// New returns a classifier for the given triggers. Empty entries are ignored
// and an empty set falls back to DefaultTriggers.
func New(triggers []string) *Classifier {
	var clean []string
	for _, t := range triggers {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			clean = append(clean, t)
		}
	}
	if len(clean) == 0 {
		clean = append(clean, DefaultTriggers...)
	}
	return &Classifier{triggers: clean}
}

// ParseTriggers splits a comma separated trigger list.
func ParseTriggers(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// Classify returns Edit when the utterance contains any trigger word.
func (c *Classifier) Classify(utterance string) Intent {
	lower := strings.ToLower(utterance)
	for _, t := range c.triggers {
		if strings.Contains(lower, t) {
			return Edit
		}
	}
	return Chat
}

// Triggers returns a copy of the active trigger set.
func (c *Classifier) Triggers() []string {
	return append([]string(nil), c.triggers...)
}
