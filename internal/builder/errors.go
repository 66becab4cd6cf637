// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package builder

import (
	"errors"
	"strings"

	"sitesmith/internal/site"
)

// User-facing messages. Raw backend errors never leave the process.
const (
	GenerationMessage = "could not generate website for this prompt"
	EditMessage       = "could not apply that change, please try rephrasing the instruction"
	ChatApology       = "I'm sorry, I encountered an error while processing that request. Could you try rephrasing?"
)

var (
	// ErrEmptyPrompt is the cause when a prompt or instruction is blank.
	ErrEmptyPrompt = errors.New("prompt is empty")

	// ErrFlagged is the cause when moderation rejects a prompt.
	ErrFlagged = errors.New("prompt flagged by moderation")
)

// GenerationError reports that a website could not be created from a
// prompt. No description is produced.
type GenerationError struct {
	Message string // safe to show to the user
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error { return e.Err }

// EditError reports that an edit instruction could not be applied. Prior is
// the description the edit started from; callers keep it as the current
// state.
type EditError struct {
	Message string
	Prior   *site.Website
	Err     error
}

func (e *EditError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *EditError) Unwrap() error { return e.Err }

// ChatError reports a failed chat reply. Callers show ChatApology instead.
type ChatError struct {
	Err error
}

func (e *ChatError) Error() string { return "chat failed: " + e.Err.Error() }

func (e *ChatError) Unwrap() error { return e.Err }

// UserMessage returns the text to show for err: the message of a builder
// error, or a generic fallback for anything else.
func UserMessage(err error) string {
	var gen *GenerationError
	var edit *EditError
	var chat *ChatError
	switch {
	case errors.As(err, &gen):
		return gen.Message
	case errors.As(err, &edit):
		return edit.Message
	case errors.As(err, &chat):
		return ChatApology
	}
	return "something went wrong, please try again"
}

func flaggedMessage(categories []string) string {
	if len(categories) == 0 {
		return "this request was flagged by content moderation"
	}
	return "this request was flagged by content moderation: " + strings.Join(categories, ", ")
}
