// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"encoding/json"
	"strings"
)

// SchemaType is a JSON schema primitive.
type SchemaType string

const (
	TypeObject SchemaType = "object"
	TypeArray  SchemaType = "array"
	TypeString SchemaType = "string"
)

// Property is a named field of an object schema. Properties keep their
// declaration order, which Gemini uses to order generated keys.
type Property struct {
	Name   string
	Schema *Schema
}

// Schema is a provider-neutral subset of JSON schema, enough to describe
// nested objects of strings, arrays and string enums.
type Schema struct {
	Type        SchemaType
	Description string
	Properties  []Property
	Required    []string
	Items       *Schema
	Enum        []string
}

// JSONSchema renders s as a standard JSON schema document, the format
// accepted by OpenAI-compatible response_format parameters.
func (s *Schema) JSONSchema() map[string]any {
	if s == nil {
		return nil
	}
	out := map[string]any{"type": string(s.Type)}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Enum) > 0 {
		out["enum"] = s.Enum
	}
	if s.Items != nil {
		out["items"] = s.Items.JSONSchema()
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for _, p := range s.Properties {
			props[p.Name] = p.Schema.JSONSchema()
		}
		out["properties"] = props
	}
	if len(s.Required) > 0 {
		out["required"] = s.Required
	}
	return out
}

// geminiSchema renders s in the OpenAPI dialect used by Gemini's
// generationConfig.responseSchema: upper-case type names and an explicit
// propertyOrdering.
func (s *Schema) geminiSchema() map[string]any {
	if s == nil {
		return nil
	}
	out := map[string]any{"type": strings.ToUpper(string(s.Type))}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Enum) > 0 {
		out["enum"] = s.Enum
	}
	if s.Items != nil {
		out["items"] = s.Items.geminiSchema()
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		order := make([]string, 0, len(s.Properties))
		for _, p := range s.Properties {
			props[p.Name] = p.Schema.geminiSchema()
			order = append(order, p.Name)
		}
		out["properties"] = props
		out["propertyOrdering"] = order
	}
	if len(s.Required) > 0 {
		out["required"] = s.Required
	}
	return out
}

// InlineSchema appends a JSON-only output instruction and the schema to a
// system prompt, for providers with no native structured output.
func InlineSchema(systemPrompt string, schema *Schema) string {
	doc, err := json.MarshalIndent(schema.JSONSchema(), "", "  ")
	if err != nil {
		return systemPrompt
	}
	var b strings.Builder
	b.WriteString(systemPrompt)
	if systemPrompt != "" {
		b.WriteString("\n\n")
	}
	b.WriteString("Respond with a single JSON document and nothing else. ")
	b.WriteString("Do not wrap it in Markdown. It must validate against this JSON schema:\n")
	b.Write(doc)
	return b.String()
}

// ExtractJSON strips surrounding whitespace and Markdown code fences
// (```json ... ```) from a model reply.
func ExtractJSON(response string) string {
	response = strings.TrimSpace(response)

	if strings.HasPrefix(response, "```") {
		if nl := strings.Index(response, "\n"); nl != -1 {
			response = response[nl+1:]
		} else {
			response = strings.TrimPrefix(response, "```")
		}
		if idx := strings.LastIndex(response, "```"); idx != -1 {
			response = response[:idx]
		}
	}

	return strings.TrimSpace(response)
}

// FlattenHistory renders prior turns and the new message as a single
// transcript prompt, for providers without multi-turn support.
func FlattenHistory(history []Message, message string) string {
	if len(history) == 0 {
		return message
	}
	var b strings.Builder
	b.WriteString("Conversation so far:\n")
	for _, m := range history {
		role := "User"
		if m.Role == RoleAssistant {
			role = "Assistant"
		}
		b.WriteString(role)
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	b.WriteString("\nUser: ")
	b.WriteString(message)
	return b.String()
}
