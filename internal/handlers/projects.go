// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"sitesmith/internal/models"
	"sitesmith/internal/render"
	"sitesmith/internal/session"
	"sitesmith/internal/site"
)

// ProjectStore persists saved websites. *store.ProjectStore satisfies it.
type ProjectStore interface {
	Create(w *site.Website) (*models.Project, error)
	Update(id uuid.UUID, w *site.Website, note string) (*models.Project, error)
	FindByID(id uuid.UUID) (*models.Project, error)
	FindPublishedBySlug(slug string) (*models.Project, error)
	List(limit, offset int) ([]*models.Project, error)
	Publish(id uuid.UUID) (*models.Project, error)
	Unpublish(id uuid.UUID) (*models.Project, error)
	Delete(id uuid.UUID) error
}

// RevisionStore reads project snapshots. *store.ProjectRevisionStore
// satisfies it.
type RevisionStore interface {
	ListByProjectID(projectID uuid.UUID) ([]*models.ProjectRevision, error)
	FindByID(id uuid.UUID) (*models.ProjectRevision, error)
}

// PageCache holds rendered published sites by slug. *cache.PageCache
// satisfies it.
type PageCache interface {
	Get(ctx context.Context, slug string) ([]byte, bool)
	Set(ctx context.Context, slug string, html []byte)
	Invalidate(ctx context.Context, slug string)
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Projects groups the Save Draft / Publish handlers and serves published
// sites. A published site always shows the latest saved revision.
type Projects struct {
	sessions  WorkspaceStore
	projects  ProjectStore
	revisions RevisionStore
	pages     PageCache
	html      *render.HTMLWriter
	now       func() time.Time
}

// NewProjects creates the project handler group.
func NewProjects(sessions WorkspaceStore, projects ProjectStore, revisions RevisionStore, pages PageCache, html *render.HTMLWriter) *Projects {
	return &Projects{
		sessions:  sessions,
		projects:  projects,
		revisions: revisions,
		pages:     pages,
		html:      html,
		now:       time.Now,
	}
}

// projectID parses the {id} URL parameter, answering 404 when malformed.
func projectID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeError(w, http.StatusNotFound, "project not found")
		return uuid.Nil, false
	}
	return id, true
}

// find loads a project, answering 404 or 500 when it cannot.
func (h *Projects) find(w http.ResponseWriter, r *http.Request) (*models.Project, bool) {
	id, ok := projectID(w, r, "id")
	if !ok {
		return nil, false
	}
	p, err := h.projects.FindByID(id)
	if err != nil {
		slog.Error("find project failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "could not load project")
		return nil, false
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "project not found")
		return nil, false
	}
	return p, true
}

// currentWebsite returns the caller's workspace description, answering
// 409 when there is none yet.
func (h *Projects) currentWebsite(w http.ResponseWriter, r *http.Request) (*site.Website, bool) {
	ws, ok := openWorkspace(w, r, h.sessions)
	if !ok {
		return nil, false
	}
	if ws.Website == nil {
		writeError(w, http.StatusConflict, "generate a website first")
		return nil, false
	}
	return ws.Website, true
}

// List returns saved projects, newest first. Supports ?limit= and ?offset=.
func (h *Projects) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultPageSize)
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset := max(queryInt(r, "offset", 0), 0)

	list, err := h.projects.List(limit, offset)
	if err != nil {
		slog.Error("list projects failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list projects")
		return
	}
	if list == nil {
		list = []*models.Project{}
	}
	writeJSON(w, http.StatusOK, list)
}

// Create saves the workspace description as a new draft project.
func (h *Projects) Create(w http.ResponseWriter, r *http.Request) {
	website, ok := h.currentWebsite(w, r)
	if !ok {
		return
	}
	p, err := h.projects.Create(website)
	if err != nil {
		slog.Error("create project failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not save project")
		return
	}
	slog.Info("project saved", "id", p.ID, "slug", p.Slug)
	writeJSON(w, http.StatusCreated, p)
}

// Show returns one project.
func (h *Projects) Show(w http.ResponseWriter, r *http.Request) {
	p, ok := h.find(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Update stores the workspace description as a new revision of a project.
func (h *Projects) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Note string `json:"note"`
	}
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	website, ok := h.currentWebsite(w, r)
	if !ok {
		return
	}

	note, ok := requireText(req.Note)
	if !ok {
		note = "saved"
	}
	p, err := h.projects.Update(id, website, note)
	if err != nil {
		slog.Error("update project failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "could not save project")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	h.pages.Invalidate(r.Context(), p.Slug)
	writeJSON(w, http.StatusOK, p)
}

// Delete removes a project and its revisions.
func (h *Projects) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := h.find(w, r)
	if !ok {
		return
	}
	if err := h.projects.Delete(p.ID); err != nil {
		slog.Error("delete project failed", "error", err, "id", p.ID)
		writeError(w, http.StatusInternalServerError, "could not delete project")
		return
	}
	h.pages.Invalidate(r.Context(), p.Slug)
	w.WriteHeader(http.StatusNoContent)
}

// Open loads a project's description into the caller's workspace.
func (h *Projects) Open(w http.ResponseWriter, r *http.Request) {
	p, ok := h.find(w, r)
	if !ok {
		return
	}
	h.loadIntoWorkspace(w, r, p.Website)
}

// Revisions lists a project's snapshots, newest first.
func (h *Projects) Revisions(w http.ResponseWriter, r *http.Request) {
	p, ok := h.find(w, r)
	if !ok {
		return
	}
	list, err := h.revisions.ListByProjectID(p.ID)
	if err != nil {
		slog.Error("list revisions failed", "error", err, "project", p.ID)
		writeError(w, http.StatusInternalServerError, "could not list revisions")
		return
	}
	if list == nil {
		list = []*models.ProjectRevision{}
	}
	writeJSON(w, http.StatusOK, list)
}

// RestoreRevision loads one snapshot of a project into the workspace.
func (h *Projects) RestoreRevision(w http.ResponseWriter, r *http.Request) {
	p, ok := h.find(w, r)
	if !ok {
		return
	}
	revID, ok := projectID(w, r, "revisionID")
	if !ok {
		return
	}
	rev, err := h.revisions.FindByID(revID)
	if err != nil {
		slog.Error("find revision failed", "error", err, "id", revID)
		writeError(w, http.StatusInternalServerError, "could not load revision")
		return
	}
	if rev == nil || rev.ProjectID != p.ID {
		writeError(w, http.StatusNotFound, "revision not found")
		return
	}
	h.loadIntoWorkspace(w, r, rev.Website)
}

// loadIntoWorkspace replaces the workspace description with a stored one.
// It holds the edit lock like any other structural change, so it cannot
// interleave with a generation or edit.
func (h *Projects) loadIntoWorkspace(w http.ResponseWriter, r *http.Request, website *site.Website) {
	if website == nil {
		slog.Error("stored project has no description")
		writeError(w, http.StatusInternalServerError, "website description is invalid")
		return
	}

	ws, release, ok := lockWorkspace(w, r, h.sessions)
	if !ok {
		return
	}
	defer release()

	saved, err := h.sessions.Update(r.Context(), ws.ID, func(ws *session.Workspace) error {
		if err := website.Validate(); err != nil {
			return err
		}
		ws.Website = website.Clone()
		return nil
	})
	if err != nil {
		writeStoreError(w, err, ws.ID)
		return
	}
	writeJSON(w, http.StatusOK, newWorkspaceResponse(saved))
}

// Publish marks a project published and primes the page cache with its
// desktop rendering.
func (h *Projects) Publish(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.projects.Publish(id)
	if err != nil {
		slog.Error("publish project failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "could not publish project")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}

	page, err := h.renderSite(p)
	if err != nil {
		slog.Error("render published site failed", "error", err, "slug", p.Slug)
	} else {
		h.pages.Set(r.Context(), p.Slug, page)
	}
	slog.Info("project published", "id", p.ID, "slug", p.Slug)
	writeJSON(w, http.StatusOK, p)
}

// Unpublish takes a project offline.
func (h *Projects) Unpublish(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.projects.Unpublish(id)
	if err != nil {
		slog.Error("unpublish project failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "could not unpublish project")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	h.pages.Invalidate(r.Context(), p.Slug)
	writeJSON(w, http.StatusOK, p)
}

// Site serves a published website by slug, from the page cache when
// possible.
func (h *Projects) Site(w http.ResponseWriter, r *http.Request) {
	siteSlug := chi.URLParam(r, "slug")
	if cached, ok := h.pages.Get(r.Context(), siteSlug); ok {
		writeHTML(w, cached)
		return
	}

	p, err := h.projects.FindPublishedBySlug(siteSlug)
	if err != nil {
		slog.Error("find published site failed", "error", err, "slug", siteSlug)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if p == nil {
		http.NotFound(w, r)
		return
	}

	page, err := h.renderSite(p)
	if err != nil {
		slog.Error("render published site failed", "error", err, "slug", siteSlug)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.pages.Set(r.Context(), siteSlug, page)
	writeHTML(w, page)
}

func (h *Projects) renderSite(p *models.Project) ([]byte, error) {
	return h.html.Bytes(render.Render(p.Website, render.Desktop, render.Options{Year: h.now().Year()}))
}

func writeHTML(w http.ResponseWriter, page []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
