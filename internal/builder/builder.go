// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package builder is the client for the generative backend: it creates
// website descriptions from prompts, applies edit instructions, answers
// chat messages and produces section images.
//
// Generate and Edit are all-or-nothing. A response that fails schema
// validation yields a *GenerationError or *EditError and never a partial
// description. SectionImage never fails; it degrades to a placeholder URL.
package builder

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"sitesmith/internal/ai"
	"sitesmith/internal/imaging"
	"sitesmith/internal/metrics"
	"sitesmith/internal/site"
)

// Backend is the generative backend. *ai.Registry satisfies it.
type Backend interface {
	GenerateStructured(ctx context.Context, systemPrompt, userPrompt string, schema *ai.Schema) (string, error)
	Chat(ctx context.Context, systemPrompt string, history []ai.Message, message string) (string, error)
	GenerateImage(ctx context.Context, prompt string) ([]byte, string, error)
	CheckPrompt(ctx context.Context, prompt string) (*ai.ModerationResult, error)
}

// ImageStore persists generated images and returns their public URL.
type ImageStore interface {
	PutImage(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// Client talks to the generative backend on behalf of the editor.
type Client struct {
	backend Backend
	images  ImageStore
	schema  *ai.Schema
}

// New creates a client for the given backend.
func New(backend Backend) *Client {
	return &Client{backend: backend, schema: WebsiteSchema()}
}

// UseImageStore makes SectionImage upload generated images and return
// their URL instead of an inline data URI.
func (c *Client) UseImageStore(s ImageStore) {
	c.images = s
}

// Generate creates a website description from a free-text prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (*site.Website, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, &GenerationError{Message: GenerationMessage, Err: ErrEmptyPrompt}
	}
	if msg, flagged := c.screen(ctx, prompt); flagged {
		return nil, &GenerationError{Message: msg, Err: ErrFlagged}
	}

	start := time.Now()
	raw, err := c.backend.GenerateStructured(ctx, generateSystemPrompt, GeneratePrompt(prompt), c.schema)
	if err == nil {
		var w *site.Website
		w, err = site.Parse([]byte(raw))
		if err == nil {
			metrics.ObserveAI(metrics.OpGenerate, start, nil)
			warnUnknownTypes(w)
			return w, nil
		}
		err = fmt.Errorf("parse generated website: %w", err)
	}

	metrics.ObserveAI(metrics.OpGenerate, start, err)
	slog.Warn("website generation failed", "error", err)
	return nil, &GenerationError{Message: GenerationMessage, Err: err}
}

// Edit applies a free-text instruction to current and returns the complete
// updated description. On failure the returned *EditError carries a copy of
// current as Prior; current itself is never modified.
func (c *Client) Edit(ctx context.Context, current *site.Website, instruction string) (*site.Website, error) {
	instruction = strings.TrimSpace(instruction)
	fail := func(msg string, err error) error {
		return &EditError{Message: msg, Prior: current.Clone(), Err: err}
	}

	if current == nil {
		return nil, fail(EditMessage, fmt.Errorf("no website to edit"))
	}
	if instruction == "" {
		return nil, fail(EditMessage, ErrEmptyPrompt)
	}
	if msg, flagged := c.screen(ctx, instruction); flagged {
		return nil, fail(msg, ErrFlagged)
	}

	doc, err := json.Marshal(current)
	if err != nil {
		return nil, fail(EditMessage, fmt.Errorf("encode current website: %w", err))
	}

	start := time.Now()
	raw, err := c.backend.GenerateStructured(ctx, editSystemPrompt, EditPrompt(doc, instruction), c.schema)
	if err == nil {
		var w *site.Website
		w, err = site.Parse([]byte(raw))
		if err == nil {
			metrics.ObserveAI(metrics.OpEdit, start, nil)
			if dropped := droppedSections(current, w); len(dropped) > 0 {
				slog.Info("edit removed sections", "ids", dropped, "instruction", instruction)
			}
			warnUnknownTypes(w)
			return w, nil
		}
		err = fmt.Errorf("parse edited website: %w", err)
	}

	metrics.ObserveAI(metrics.OpEdit, start, err)
	slog.Warn("website edit failed", "error", err)
	return nil, fail(EditMessage, err)
}

// Chat answers a message given the prior conversation. Errors are returned
// as *ChatError; callers show ChatApology.
func (c *Client) Chat(ctx context.Context, history []ai.Message, message string) (string, error) {
	start := time.Now()
	reply, err := c.backend.Chat(ctx, chatSystemPrompt, history, message)
	if err == nil && strings.TrimSpace(reply) == "" {
		err = fmt.Errorf("empty reply")
	}
	metrics.ObserveAI(metrics.OpChat, start, err)
	if err != nil {
		slog.Warn("chat failed", "error", err)
		return "", &ChatError{Err: err}
	}
	return strings.TrimSpace(reply), nil
}

// SectionImage generates an image for a section and returns a URL for it.
// Images wider than imaging.MaxWidth are downscaled first. The URL is
// the uploaded object's URL when an image store is configured, otherwise a
// data URI. Any failure yields PlaceholderImage(seed), where seed is the
// section id or, when empty, a hash of the prompt.
func (c *Client) SectionImage(ctx context.Context, sectionID, prompt string) string {
	seed := sectionID
	if seed == "" {
		seed = strconv.FormatUint(xxhash.Sum64String(prompt), 16)
	}

	start := time.Now()
	data, contentType, err := c.backend.GenerateImage(ctx, ImagePrompt(prompt))
	if err == nil && len(data) == 0 {
		err = fmt.Errorf("empty image")
	}
	metrics.ObserveAI(metrics.OpImage, start, err)
	if err != nil {
		slog.Warn("image generation failed, using placeholder", "error", err, "section", sectionID)
		return PlaceholderImage(seed)
	}

	if small, smallType, err := imaging.Downscale(data, imaging.MaxWidth); err != nil {
		slog.Debug("image not downscaled", "error", err, "section", sectionID)
	} else if small != nil {
		data, contentType = small, smallType
	}

	if c.images != nil {
		key := "generated/" + uuid.New().String() + extensionFor(contentType)
		imageURL, err := c.images.PutImage(ctx, key, contentType, data)
		if err == nil {
			return imageURL
		}
		slog.Warn("image upload failed, inlining", "error", err, "key", key)
	}

	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// PlaceholderImage returns a stable stock photo URL for seed.
func PlaceholderImage(seed string) string {
	return "https://picsum.photos/seed/" + url.PathEscape(seed) + "/1200/800"
}

// screen runs moderation. A moderation outage does not block the request.
func (c *Client) screen(ctx context.Context, prompt string) (string, bool) {
	res, err := c.backend.CheckPrompt(ctx, prompt)
	if err != nil {
		slog.Warn("moderation unavailable, continuing", "error", err)
		return "", false
	}
	if res == nil || res.Safe {
		return "", false
	}
	slog.Info("prompt rejected by moderation", "categories", res.Categories)
	return flaggedMessage(res.Categories), true
}

func warnUnknownTypes(w *site.Website) {
	for _, s := range w.Sections {
		if !s.Type.Known() {
			slog.Warn("backend returned unknown section type", "type", s.Type, "section", s.ID)
		}
	}
}

// droppedSections lists ids present in before but missing from after.
func droppedSections(before, after *site.Website) []string {
	var out []string
	for _, s := range before.Sections {
		if after.IndexOf(s.ID) < 0 {
			out = append(out, s.ID)
		}
	}
	return out
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	}
	return ""
}
