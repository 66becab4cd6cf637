// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

// newMistral creates a Mistral provider. Mistral's chat completions API is
// OpenAI-compatible, including json_schema response formats, so the OpenAI
// SDK client is reused with a different base URL. Image generation is not
// offered: ModelImage is cleared.
func newMistral(cfg ProviderConfig) *openAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.mistral.ai/v1"
	}
	cfg.ModelImage = ""
	return newOpenAICompatible("mistral", cfg)
}
