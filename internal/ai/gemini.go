// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// geminiProvider implements Provider, StructuredGenerator, Chatter and
// ImageGenerator using the Google Gemini REST API
// (POST /v1beta/models/{model}:generateContent).
type geminiProvider struct {
	config      ProviderConfig
	client      *http.Client
	imageClient *http.Client
}

// newGemini creates a new Google Gemini provider.
func newGemini(cfg ProviderConfig) *geminiProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com"
	}
	return &geminiProvider{
		config:      cfg,
		client:      &http.Client{Timeout: 90 * time.Second},
		imageClient: &http.Client{Timeout: 120 * time.Second},
	}
}

func (p *geminiProvider) Name() string { return "gemini" }

// Generate sends a single-turn generateContent request using the default model.
func (p *geminiProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	body := geminiRequest{
		SystemInstruction: geminiSystem(systemPrompt),
		Contents:          []geminiContent{geminiText("user", userPrompt)},
	}
	return p.generateText(ctx, p.config.Model, body)
}

// GenerateStructured constrains the reply with responseSchema and the
// application/json MIME type.
func (p *geminiProvider) GenerateStructured(ctx context.Context, systemPrompt, userPrompt string, schema *Schema) (string, error) {
	body := geminiRequest{
		SystemInstruction: geminiSystem(systemPrompt),
		Contents:          []geminiContent{geminiText("user", userPrompt)},
		GenerationConfig: &geminiGenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   schema.geminiSchema(),
		},
	}
	return p.generateText(ctx, p.config.Model, body)
}

// Chat replays history as alternating user/model contents followed by the
// new message, using the chat model when one is configured.
func (p *geminiProvider) Chat(ctx context.Context, systemPrompt string, history []Message, message string) (string, error) {
	contents := make([]geminiContent, 0, len(history)+1)
	for _, m := range history {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		contents = append(contents, geminiText(role, m.Content))
	}
	contents = append(contents, geminiText("user", message))

	body := geminiRequest{
		SystemInstruction: geminiSystem(systemPrompt),
		Contents:          contents,
	}
	return p.generateText(ctx, p.config.chatModel(), body)
}

func (p *geminiProvider) generateText(ctx context.Context, model string, body geminiRequest) (string, error) {
	result, err := p.do(ctx, p.client, model, body)
	if err != nil {
		return "", err
	}

	if len(result.Candidates) == 0 {
		if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("gemini: prompt blocked (%s)", result.PromptFeedback.BlockReason)
		}
		return "", fmt.Errorf("gemini: no candidates returned")
	}

	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			return part.Text, nil
		}
	}

	return "", fmt.Errorf("gemini: no text in response")
}

// GenerateImage creates a 16:9 image using Gemini's native image output
// (responseModalities IMAGE). Uses ModelImage from config. Returns image
// bytes and the content type.
func (p *geminiProvider) GenerateImage(ctx context.Context, prompt string) ([]byte, string, error) {
	model := p.config.ModelImage
	if model == "" {
		return nil, "", fmt.Errorf("gemini: image generation requires GEMINI_MODEL_IMAGE to be set")
	}

	body := geminiRequest{
		Contents: []geminiContent{geminiText("user", prompt)},
		GenerationConfig: &geminiGenerationConfig{
			ResponseModalities: []string{"IMAGE", "TEXT"},
			ImageConfig:        &geminiImageConfig{AspectRatio: "16:9"},
		},
	}

	result, err := p.do(ctx, p.imageClient, model, body)
	if err != nil {
		return nil, "", fmt.Errorf("image: %w", err)
	}

	for _, c := range result.Candidates {
		for _, part := range c.Content.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return nil, "", fmt.Errorf("gemini image decode base64: %w", err)
			}
			contentType := part.InlineData.MimeType
			if contentType == "" {
				contentType = "image/png"
			}
			return data, contentType, nil
		}
	}

	return nil, "", fmt.Errorf("gemini image: no image data in response")
}

// do performs one generateContent call and decodes the response envelope.
func (p *geminiProvider) do(ctx context.Context, client *http.Client, model string, body geminiRequest) (*geminiResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("gemini marshal: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", p.config.BaseURL, model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("gemini request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", p.config.APIKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini http: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gemini read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result geminiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("gemini unmarshal: %w", err)
	}
	return &result, nil
}

func geminiSystem(prompt string) *geminiContent {
	if prompt == "" {
		return nil
	}
	return &geminiContent{Parts: []geminiPart{{Text: prompt}}}
}

func geminiText(role, text string) geminiContent {
	return geminiContent{Role: role, Parts: []geminiPart{{Text: text}}}
}

// --- Gemini API types ---

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiImageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseMimeType   string             `json:"responseMimeType,omitempty"`
	ResponseSchema     map[string]any     `json:"responseSchema,omitempty"`
	ResponseModalities []string           `json:"responseModalities,omitempty"`
	ImageConfig        *geminiImageConfig `json:"imageConfig,omitempty"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent          `json:"system_instruction,omitempty"`
	Contents          []geminiContent         `json:"contents"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

type geminiPromptFeedback struct {
	BlockReason string `json:"blockReason"`
}

type geminiResponse struct {
	Candidates     []geminiCandidate     `json:"candidates"`
	PromptFeedback *geminiPromptFeedback `json:"promptFeedback,omitempty"`
}
