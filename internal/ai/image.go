// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"fmt"
)

// ImageGenerator is an optional interface that AI providers can implement
// to support image generation. Claude and Mistral are text-only.
type ImageGenerator interface {
	// GenerateImage creates an image from a text prompt. Returns the raw
	// image bytes and the MIME content type (e.g., "image/png").
	GenerateImage(ctx context.Context, prompt string) ([]byte, string, error)
}

// GenerateImage calls the active provider's image generation if supported.
// When the active provider cannot draw, the first other registered provider
// that can is used.
func (r *Registry) GenerateImage(ctx context.Context, prompt string) ([]byte, string, error) {
	ig, err := r.imageGenerator()
	if err != nil {
		return nil, "", err
	}
	return ig.GenerateImage(ctx, prompt)
}

// SupportsImageGeneration reports whether any configured provider can
// generate images.
func (r *Registry) SupportsImageGeneration() bool {
	_, err := r.imageGenerator()
	return err == nil
}

func (r *Registry) imageGenerator() (ImageGenerator, error) {
	if p, err := r.Active(); err == nil {
		if ig, ok := p.(ImageGenerator); ok && canDraw(p) {
			return ig, nil
		}
	}
	for _, name := range r.Available() {
		r.mu.RLock()
		p := r.providers[name]
		r.mu.RUnlock()
		if ig, ok := p.(ImageGenerator); ok && canDraw(p) {
			return ig, nil
		}
	}
	return nil, fmt.Errorf("ai: no configured provider supports image generation")
}

// canDraw filters out SDK-backed providers that implement ImageGenerator
// but have no image model configured.
func canDraw(p Provider) bool {
	switch v := p.(type) {
	case *openAIProvider:
		return v.config.ModelImage != ""
	case *geminiProvider:
		return v.config.ModelImage != ""
	}
	return true
}
