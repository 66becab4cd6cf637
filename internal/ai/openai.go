// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// openAIProvider implements Provider, StructuredGenerator, Chatter and
// ImageGenerator on the official openai-go SDK. Mistral reuses it with a
// different base URL since its chat API is OpenAI-compatible.
type openAIProvider struct {
	name   string
	config ProviderConfig
	client openai.Client
}

// newOpenAI creates a new OpenAI provider.
func newOpenAI(cfg ProviderConfig) *openAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	return newOpenAICompatible("openai", cfg)
}

func newOpenAICompatible(name string, cfg ProviderConfig) *openAIProvider {
	base := cfg.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(base),
		option.WithHTTPClient(&http.Client{Timeout: 90 * time.Second}),
		option.WithMaxRetries(2),
	)
	return &openAIProvider{name: name, config: cfg, client: client}
}

func (p *openAIProvider) Name() string { return p.name }

// Generate sends a chat completion request and returns the assistant's
// response text.
func (p *openAIProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return p.complete(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.config.Model),
		Messages: openAIMessages(systemPrompt, nil, userPrompt),
	})
}

// GenerateStructured requests a json_schema response format.
func (p *openAIProvider) GenerateStructured(ctx context.Context, systemPrompt, userPrompt string, schema *Schema) (string, error) {
	return p.complete(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.config.Model),
		Messages: openAIMessages(systemPrompt, nil, userPrompt),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "website",
					Schema: schema.JSONSchema(),
				},
			},
		},
	})
}

// Chat sends history as prior user/assistant messages.
func (p *openAIProvider) Chat(ctx context.Context, systemPrompt string, history []Message, message string) (string, error) {
	return p.complete(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.config.chatModel()),
		Messages: openAIMessages(systemPrompt, history, message),
	})
}

func (p *openAIProvider) complete(ctx context.Context, params openai.ChatCompletionNewParams) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%s chat completion: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: no choices returned", p.name)
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateImage creates a landscape image with the configured image model
// and returns the decoded bytes.
func (p *openAIProvider) GenerateImage(ctx context.Context, prompt string) ([]byte, string, error) {
	if p.config.ModelImage == "" {
		return nil, "", fmt.Errorf("%s: image generation requires OPENAI_MODEL_IMAGE to be set", p.name)
	}

	params := openai.ImageGenerateParams{
		Prompt: prompt,
		Model:  openai.ImageModel(p.config.ModelImage),
		N:      openai.Int(1),
		Size:   openai.ImageGenerateParamsSize("1536x1024"),
	}
	if strings.HasPrefix(p.config.ModelImage, "dall-e") {
		params.Size = openai.ImageGenerateParamsSize("1792x1024")
		params.ResponseFormat = openai.ImageGenerateParamsResponseFormat("b64_json")
	}

	resp, err := p.client.Images.Generate(ctx, params)
	if err != nil {
		return nil, "", fmt.Errorf("%s image: %w", p.name, err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, "", fmt.Errorf("%s image: no image data in response", p.name)
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, "", fmt.Errorf("%s image decode base64: %w", p.name, err)
	}
	return data, http.DetectContentType(data), nil
}

func openAIMessages(systemPrompt string, history []Message, message string) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	if systemPrompt != "" {
		msgs = append(msgs, openai.SystemMessage(systemPrompt))
	}
	for _, m := range history {
		switch m.Role {
		case RoleAssistant:
			msgs = append(msgs, openai.ChatCompletionMessageParamOfAssistant(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}
	return append(msgs, openai.UserMessage(message))
}
