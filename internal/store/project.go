// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"sitesmith/internal/models"
	"sitesmith/internal/site"
	"sitesmith/internal/slug"
)

// projectColumns lists all columns for projects SELECTs.
const projectColumns = `id, name, slug, website, status, published_at, created_at, updated_at`

// ErrEmptyWebsite is returned when saving a project without a description.
var ErrEmptyWebsite = errors.New("project has no website description")

// ProjectStore handles all project-related database operations.
type ProjectStore struct {
	db *sql.DB
}

// NewProjectStore creates a new ProjectStore with the given database connection.
func NewProjectStore(db *sql.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

// scanProject scans a single projects row, decoding the JSONB description.
func scanProject(scanner interface{ Scan(...any) error }) (*models.Project, error) {
	var (
		p   models.Project
		doc []byte
	)
	err := scanner.Scan(
		&p.ID, &p.Name, &p.Slug, &doc, &p.Status,
		&p.PublishedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.Website, err = decodeWebsite(doc); err != nil {
		return nil, fmt.Errorf("project %s: %w", p.ID, err)
	}
	return &p, nil
}

// Create saves w as a new draft project and records its first revision.
// The slug is derived from the site name and made unique.
func (s *ProjectStore) Create(w *site.Website) (*models.Project, error) {
	doc, err := encodeWebsite(w)
	if err != nil {
		return nil, err
	}

	base := slug.Generate(w.Name)
	if base == "" {
		base = "site"
	}
	var takenErr error
	projectSlug := slug.Unique(base, func(candidate string) bool {
		taken, err := s.SlugExists(candidate)
		if err != nil {
			takenErr = err
			return false
		}
		return taken
	})
	if takenErr != nil {
		return nil, takenErr
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	p, err := scanProject(tx.QueryRow(`
		INSERT INTO projects (name, slug, website)
		VALUES ($1, $2, $3)
		RETURNING `+projectColumns,
		w.Name, projectSlug, doc,
	))
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	if err := insertRevision(tx, p.ID, doc, "created"); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit project: %w", err)
	}
	return p, nil
}

// Update stores w as the project's current description and records a
// revision. The slug is kept so published URLs stay stable. Returns nil if
// the project does not exist.
func (s *ProjectStore) Update(id uuid.UUID, w *site.Website, note string) (*models.Project, error) {
	doc, err := encodeWebsite(w)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	p, err := scanProject(tx.QueryRow(`
		UPDATE projects SET name = $1, website = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING `+projectColumns,
		w.Name, doc, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}

	if err := insertRevision(tx, id, doc, note); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit project: %w", err)
	}
	return p, nil
}

// FindByID retrieves a project by its UUID. Returns nil if not found.
func (s *ProjectStore) FindByID(id uuid.UUID) (*models.Project, error) {
	p, err := scanProject(s.db.QueryRow(`
		SELECT `+projectColumns+` FROM projects WHERE id = $1
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find project by id: %w", err)
	}
	return p, nil
}

// FindPublishedBySlug retrieves a published project by slug. Drafts are
// never returned. Returns nil if not found.
func (s *ProjectStore) FindPublishedBySlug(projectSlug string) (*models.Project, error) {
	p, err := scanProject(s.db.QueryRow(`
		SELECT `+projectColumns+` FROM projects
		WHERE slug = $1 AND status = 'published'
	`, projectSlug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find project by slug: %w", err)
	}
	return p, nil
}

// List returns projects, most recently updated first.
func (s *ProjectStore) List(limit, offset int) ([]*models.Project, error) {
	rows, err := s.db.Query(`
		SELECT `+projectColumns+` FROM projects
		ORDER BY updated_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Publish marks a project as published. Returns nil if not found.
func (s *ProjectStore) Publish(id uuid.UUID) (*models.Project, error) {
	p, err := scanProject(s.db.QueryRow(`
		UPDATE projects SET status = 'published', published_at = NOW(), updated_at = NOW()
		WHERE id = $1
		RETURNING `+projectColumns,
		id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("publish project: %w", err)
	}
	return p, nil
}

// Unpublish returns a project to draft. Returns nil if not found.
func (s *ProjectStore) Unpublish(id uuid.UUID) (*models.Project, error) {
	p, err := scanProject(s.db.QueryRow(`
		UPDATE projects SET status = 'draft', published_at = NULL, updated_at = NOW()
		WHERE id = $1
		RETURNING `+projectColumns,
		id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unpublish project: %w", err)
	}
	return p, nil
}

// Delete removes a project and, by cascade, its revisions.
func (s *ProjectStore) Delete(id uuid.UUID) error {
	result, err := s.db.Exec(`DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("delete project: %s not found", id)
	}
	return nil
}

// SlugExists checks whether a project already uses the slug.
func (s *ProjectStore) SlugExists(projectSlug string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM projects WHERE slug = $1)`, projectSlug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return exists, nil
}

func insertRevision(tx *sql.Tx, projectID uuid.UUID, doc []byte, note string) error {
	_, err := tx.Exec(`
		INSERT INTO project_revisions (project_id, website, note)
		VALUES ($1, $2, $3)
	`, projectID, doc, note)
	if err != nil {
		return fmt.Errorf("create project revision: %w", err)
	}
	return nil
}

func encodeWebsite(w *site.Website) ([]byte, error) {
	if w == nil {
		return nil, ErrEmptyWebsite
	}
	doc, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("encode website: %w", err)
	}
	return doc, nil
}

// decodeWebsite reads a stored description. Stored documents were valid
// when saved, so only JSON decoding is checked here.
func decodeWebsite(doc []byte) (*site.Website, error) {
	var w site.Website
	if err := json.Unmarshal(doc, &w); err != nil {
		return nil, fmt.Errorf("decode website: %w", err)
	}
	return &w, nil
}
