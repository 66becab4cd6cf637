// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package builder

import (
	"fmt"
)

const generateSystemPrompt = `You are a senior web designer and copywriter. You produce complete website descriptions as JSON.
Every section needs a short unique id in kebab-case (for example "hero", "about-us", "pricing").
Theme colors are hex codes such as #4f46e5. Use FontAwesome icon names such as "rocket" for item icons.`

const editSystemPrompt = `You are a senior web designer editing an existing website description.
Apply the requested change and return the complete website as JSON, not a diff.
Keep the id of every section you do not remove. New sections get new unique ids.`

const chatSystemPrompt = `You are an AI Web Design Assistant. You help users build and refine their websites. Keep responses helpful, concise, and focused on design and content best practices.`

// GeneratePrompt is the user prompt for creating a website.
func GeneratePrompt(prompt string) string {
	return fmt.Sprintf(`Create a comprehensive website JSON structure for: %s.
Ensure the sections are logically ordered (Hero, About, Features, etc.).
Make the content professional, engaging, and detailed.
Use placeholder image URLs from picsum.photos for any image needs.`, prompt)
}

// EditPrompt is the user prompt for applying an instruction to the current
// description, given as compact JSON.
func EditPrompt(current []byte, instruction string) string {
	return fmt.Sprintf(`Modify the following website based on this instruction: %q.

Current Website JSON:
%s

Return the FULL updated JSON matching the schema. Do not omit any existing sections unless requested.`, instruction, current)
}

// ImagePrompt is the prompt sent to the image model.
func ImagePrompt(prompt string) string {
	return "High quality web design image for: " + prompt
}
