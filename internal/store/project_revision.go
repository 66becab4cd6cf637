// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"sitesmith/internal/models"
)

// projectRevisionColumns lists all columns for project_revisions SELECTs.
const projectRevisionColumns = `id, project_id, website, note, created_at`

// ProjectRevisionStore provides read access to project revisions. Revisions
// are written by ProjectStore inside the same transaction as the project.
type ProjectRevisionStore struct {
	db *sql.DB
}

// NewProjectRevisionStore creates a new ProjectRevisionStore backed by the given database.
func NewProjectRevisionStore(db *sql.DB) *ProjectRevisionStore {
	return &ProjectRevisionStore{db: db}
}

func scanProjectRevision(scanner interface{ Scan(...any) error }) (*models.ProjectRevision, error) {
	var (
		r   models.ProjectRevision
		doc []byte
	)
	if err := scanner.Scan(&r.ID, &r.ProjectID, &doc, &r.Note, &r.CreatedAt); err != nil {
		return nil, err
	}
	w, err := decodeWebsite(doc)
	if err != nil {
		return nil, fmt.Errorf("revision %s: %w", r.ID, err)
	}
	r.Website = w
	return &r, nil
}

// ListByProjectID returns all revisions for a project, newest first.
func (s *ProjectRevisionStore) ListByProjectID(projectID uuid.UUID) ([]*models.ProjectRevision, error) {
	rows, err := s.db.Query(`
		SELECT `+projectRevisionColumns+`
		FROM project_revisions
		WHERE project_id = $1
		ORDER BY created_at DESC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list project revisions: %w", err)
	}
	defer rows.Close()

	var revisions []*models.ProjectRevision
	for rows.Next() {
		r, err := scanProjectRevision(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project revision: %w", err)
		}
		revisions = append(revisions, r)
	}
	return revisions, rows.Err()
}

// FindByID returns a single revision by its ID. Returns nil if not found.
func (s *ProjectRevisionStore) FindByID(id uuid.UUID) (*models.ProjectRevision, error) {
	r, err := scanProjectRevision(s.db.QueryRow(`
		SELECT `+projectRevisionColumns+`
		FROM project_revisions
		WHERE id = $1
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find project revision: %w", err)
	}
	return r, nil
}
