// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared fakes and the test router. Handlers are
// exercised through chi so URL parameters resolve as in production.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"sitesmith/internal/ai"
	"sitesmith/internal/assistant"
	"sitesmith/internal/cache"
	"sitesmith/internal/intent"
	"sitesmith/internal/models"
	"sitesmith/internal/render"
	"sitesmith/internal/session"
	"sitesmith/internal/site"
)

const fixtureSite = `{"name":"Bean There","description":"Coffee shop",
"theme":{"primaryColor":"#6b4f3a","secondaryColor":"#1c1917","fontFamily":"Lora","mode":"light"},
"sections":[
 {"id":"hero","type":"HERO","title":"Great coffee","subtitle":"Since 1999"},
 {"id":"about","type":"ABOUT","title":"Our story","content":"Roasted **daily**."},
 {"id":"footer","type":"FOOTER","title":"Footer"}]}`

func fixture(t *testing.T) *site.Website {
	t.Helper()
	w, err := site.Parse([]byte(fixtureSite))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return w
}

// ---------- workspace store ----------

type fakeSessions struct {
	mu        sync.Mutex
	ws        *session.Workspace
	locks     map[string]string
	updates   int
	openErr   error
	updateErr error

	// afterOpen runs once Open has copied the workspace, outside the lock.
	afterOpen func()
}

func newFakeSessions(website *site.Website) *fakeSessions {
	return &fakeSessions{
		ws:    &session.Workspace{ID: "ws-1", Website: website, UpdatedAt: time.Now()},
		locks: map[string]string{},
	}
}

func (f *fakeSessions) Open(ctx context.Context, w http.ResponseWriter, r *http.Request) (*session.Workspace, error) {
	f.mu.Lock()
	if f.openErr != nil {
		f.mu.Unlock()
		return nil, f.openErr
	}
	cp := f.copyLocked()
	hook := f.afterOpen
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return cp, nil
}

func (f *fakeSessions) Get(ctx context.Context, id string) (*session.Workspace, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id != f.ws.ID {
		return nil, session.ErrNotFound
	}
	return f.copyLocked(), nil
}

func (f *fakeSessions) Update(ctx context.Context, id string, fn func(ws *session.Workspace) error) (*session.Workspace, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if id != f.ws.ID {
		return nil, session.ErrNotFound
	}
	cp := f.copyLocked()
	if err := fn(cp); err != nil {
		return nil, err
	}
	f.updates++
	f.ws = cp
	return f.copyLocked(), nil
}

func (f *fakeSessions) copyLocked() *session.Workspace {
	cp := *f.ws
	cp.Website = f.ws.Website.Clone()
	cp.Transcript = append([]ai.Message(nil), f.ws.Transcript...)
	return &cp
}

func (f *fakeSessions) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ws = &session.Workspace{ID: "ws-2"}
	return nil
}

func (f *fakeSessions) AcquireEditLock(ctx context.Context, id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, held := f.locks[id]; held {
		return "", session.ErrEditInFlight
	}
	token := uuid.NewString()
	f.locks[id] = token
	return token, nil
}

func (f *fakeSessions) ReleaseEditLock(ctx context.Context, id, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.locks[id] == token {
		delete(f.locks, id)
	}
	return nil
}

func (f *fakeSessions) current() *session.Workspace {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ws
}

func (f *fakeSessions) locked(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, held := f.locks[id]
	return held
}

// ---------- builder ----------

// fakeBuilder serves both the handlers and the assistant.
type fakeBuilder struct {
	// editFn, when set, replaces the canned edited/editErr result.
	editFn func(current *site.Website, instruction string) (*site.Website, error)

	generated *site.Website
	genErr    error
	edited    *site.Website
	editErr   error
	chatReply string
	chatErr   error
	imageURL  string
	onImage   func()

	lastPrompt      string
	lastInstruction string
	lastImageID     string
	lastImagePrompt string
}

func (f *fakeBuilder) Generate(ctx context.Context, prompt string) (*site.Website, error) {
	f.lastPrompt = prompt
	return f.generated, f.genErr
}

func (f *fakeBuilder) Edit(ctx context.Context, current *site.Website, instruction string) (*site.Website, error) {
	f.lastInstruction = instruction
	if f.editFn != nil {
		return f.editFn(current, instruction)
	}
	return f.edited, f.editErr
}

func (f *fakeBuilder) Chat(ctx context.Context, history []ai.Message, message string) (string, error) {
	return f.chatReply, f.chatErr
}

func (f *fakeBuilder) SectionImage(ctx context.Context, sectionID, prompt string) string {
	f.lastImageID = sectionID
	f.lastImagePrompt = prompt
	if f.onImage != nil {
		f.onImage()
	}
	return f.imageURL
}

// ---------- object store ----------

type fakeObjects struct {
	prefix  string
	deleted []string
}

func (f *fakeObjects) ExtractKey(rawURL string) (string, bool) {
	key, ok := strings.CutPrefix(rawURL, f.prefix)
	return key, ok && key != ""
}

func (f *fakeObjects) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

// ---------- projects ----------

type fakeProjects struct {
	mu       sync.Mutex
	projects map[uuid.UUID]*models.Project
	revs     []*models.ProjectRevision
	err      error
}

func newFakeProjects() *fakeProjects {
	return &fakeProjects{projects: map[uuid.UUID]*models.Project{}}
}

func (f *fakeProjects) add(w *site.Website, slug string, status models.ProjectStatus) *models.Project {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := &models.Project{ID: uuid.New(), Name: w.Name, Slug: slug, Website: w, Status: status}
	f.projects[p.ID] = p
	f.revs = append(f.revs, &models.ProjectRevision{ID: uuid.New(), ProjectID: p.ID, Website: w, Note: "created"})
	return p
}

func (f *fakeProjects) Create(w *site.Website) (*models.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.add(w, "bean-there", models.ProjectStatusDraft), nil
}

func (f *fakeProjects) Update(id uuid.UUID, w *site.Website, note string) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok {
		return nil, f.err
	}
	p.Website = w
	f.revs = append(f.revs, &models.ProjectRevision{ID: uuid.New(), ProjectID: id, Website: w, Note: note})
	return p, nil
}

func (f *fakeProjects) FindByID(id uuid.UUID) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.projects[id], f.err
}

func (f *fakeProjects) FindPublishedBySlug(slug string) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.projects {
		if p.Slug == slug && p.IsPublished() {
			return p, nil
		}
	}
	return nil, f.err
}

func (f *fakeProjects) List(limit, offset int) ([]*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Project
	for _, p := range f.projects {
		out = append(out, p)
	}
	return out, f.err
}

func (f *fakeProjects) setStatus(id uuid.UUID, s models.ProjectStatus) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok {
		return nil, f.err
	}
	p.Status = s
	return p, nil
}

func (f *fakeProjects) Publish(id uuid.UUID) (*models.Project, error) {
	return f.setStatus(id, models.ProjectStatusPublished)
}

func (f *fakeProjects) Unpublish(id uuid.UUID) (*models.Project, error) {
	return f.setStatus(id, models.ProjectStatusDraft)
}

func (f *fakeProjects) Delete(id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.projects, id)
	return f.err
}

func (f *fakeProjects) ListByProjectID(projectID uuid.UUID) ([]*models.ProjectRevision, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.ProjectRevision
	for i := len(f.revs) - 1; i >= 0; i-- {
		if f.revs[i].ProjectID == projectID {
			out = append(out, f.revs[i])
		}
	}
	return out, nil
}

func (f *fakeProjects) revision(id uuid.UUID) *models.ProjectRevision {
	for _, r := range f.revs {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// fakeRevisions adapts fakeProjects to RevisionStore; FindByID clashes
// with the project lookup.
type fakeRevisions struct{ p *fakeProjects }

func (f fakeRevisions) ListByProjectID(projectID uuid.UUID) ([]*models.ProjectRevision, error) {
	return f.p.ListByProjectID(projectID)
}

func (f fakeRevisions) FindByID(id uuid.UUID) (*models.ProjectRevision, error) {
	f.p.mu.Lock()
	defer f.p.mu.Unlock()
	return f.p.revision(id), nil
}

type fakePages struct {
	mu    sync.Mutex
	pages map[string][]byte
	gets  int
}

func newFakePages() *fakePages { return &fakePages{pages: map[string][]byte{}} }

func (f *fakePages) Get(ctx context.Context, slug string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	p, ok := f.pages[slug]
	return p, ok
}

func (f *fakePages) Set(ctx context.Context, slug string, html []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[slug] = html
}

func (f *fakePages) Invalidate(ctx context.Context, slug string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.pages, slug)
}

func (f *fakePages) has(slug string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.pages[slug]
	return ok
}

// ---------- providers ----------

type fakeRegistry struct {
	active    string
	available []string
}

func (f *fakeRegistry) Available() []string { return f.available }
func (f *fakeRegistry) ActiveName() string  { return f.active }
func (f *fakeRegistry) SetActive(name string) error {
	for _, a := range f.available {
		if a == name {
			f.active = name
			return nil
		}
	}
	return errors.New("ai: provider " + name + " is not available (no API key?)")
}

// ---------- harness ----------

type harness struct {
	t         *testing.T
	sessions  *fakeSessions
	builder   *fakeBuilder
	projects  *fakeProjects
	pages     *fakePages
	registry  *fakeRegistry
	workspace *Workspace
	router    chi.Router
}

func newHarness(t *testing.T, website *site.Website) *harness {
	t.Helper()

	html, err := render.NewHTML()
	if err != nil {
		t.Fatalf("NewHTML: %v", err)
	}
	h := &harness{
		t:        t,
		sessions: newFakeSessions(website),
		builder:  &fakeBuilder{},
		projects: newFakeProjects(),
		pages:    newFakePages(),
		registry: &fakeRegistry{active: "gemini", available: []string{"claude", "gemini"}},
	}
	fixed := func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }

	h.workspace = NewWorkspace(h.sessions, h.builder,
		assistant.New(intent.New(nil), h.builder),
		cache.NewPreviewCache(nil, 0), html)
	h.workspace.now = fixed

	projects := NewProjects(h.sessions, h.projects, fakeRevisions{h.projects}, h.pages, html)
	projects.now = fixed
	providers := NewProviders(h.registry, true)

	r := chi.NewRouter()
	r.Get("/preview", h.workspace.Preview)
	r.Get("/sites/{slug}", projects.Site)
	r.Route("/api", func(r chi.Router) {
		r.Route("/workspace", func(r chi.Router) {
			r.Get("/", h.workspace.Get)
			r.Delete("/", h.workspace.Reset)
			r.Get("/export", h.workspace.Export)
			r.Get("/outline", h.workspace.Outline)
			r.Post("/generate", h.workspace.Generate)
			r.Post("/edit", h.workspace.Edit)
			r.Post("/chat", h.workspace.Chat)
			r.Patch("/theme", h.workspace.SetTheme)
			r.Delete("/sections/{id}", h.workspace.RemoveSection)
			r.Post("/sections/{index}/move", h.workspace.MoveSection)
			r.Post("/sections/{id}/image", h.workspace.SectionImage)
		})
		r.Get("/ai/providers", providers.List)
		r.Post("/ai/providers", providers.Switch)
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", projects.List)
			r.Post("/", projects.Create)
			r.Get("/{id}", projects.Show)
			r.Put("/{id}", projects.Update)
			r.Delete("/{id}", projects.Delete)
			r.Post("/{id}/open", projects.Open)
			r.Get("/{id}/revisions", projects.Revisions)
			r.Post("/{id}/revisions/{revisionID}/restore", projects.RestoreRevision)
			r.Post("/{id}/publish", projects.Publish)
			r.Post("/{id}/unpublish", projects.Unpublish)
		})
	})
	h.router = r
	return h
}

// do sends a request through the router. body may be empty.
func (h *harness) do(method, path, body string) *httptest.ResponseRecorder {
	h.t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.router.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[map[string]string](t, rr)["error"]
}
