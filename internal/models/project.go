// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"

	"sitesmith/internal/site"
)

// ProjectStatus tracks whether a saved project is publicly served.
type ProjectStatus string

const (
	ProjectStatusDraft     ProjectStatus = "draft"
	ProjectStatusPublished ProjectStatus = "published"
)

// Project is a saved website description. Drafts are only visible in the
// editor; published projects are served under /sites/{slug}.
type Project struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	Slug        string        `json:"slug"`
	Website     *site.Website `json:"website"`
	Status      ProjectStatus `json:"status"`
	PublishedAt *time.Time    `json:"published_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// IsPublished reports whether the project is publicly served.
func (p *Project) IsPublished() bool {
	return p.Status == ProjectStatusPublished
}

// ProjectRevision is an immutable snapshot of a project's description,
// recorded on every save.
type ProjectRevision struct {
	ID        uuid.UUID     `json:"id"`
	ProjectID uuid.UUID     `json:"project_id"`
	Website   *site.Website `json:"website"`
	Note      string        `json:"note"`
	CreatedAt time.Time     `json:"created_at"`
}
