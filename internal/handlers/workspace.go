// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"sitesmith/internal/ai"
	"sitesmith/internal/assistant"
	"sitesmith/internal/builder"
	"sitesmith/internal/cache"
	"sitesmith/internal/editor"
	"sitesmith/internal/intent"
	"sitesmith/internal/render"
	"sitesmith/internal/session"
	"sitesmith/internal/site"
	"sitesmith/internal/slug"
)

// busyReply is the assistant message when an edit is already running.
const busyReply = "I'm still applying your previous change. Give me a moment and try again!"

var (
	errNoWebsite   = errors.New("generate a website first")
	errSectionGone = errors.New("section not found")
)

// WorkspaceStore persists workspaces. *session.Store satisfies it.
type WorkspaceStore interface {
	Open(ctx context.Context, w http.ResponseWriter, r *http.Request) (*session.Workspace, error)
	Get(ctx context.Context, id string) (*session.Workspace, error)
	Update(ctx context.Context, id string, fn func(ws *session.Workspace) error) (*session.Workspace, error)
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
	AcquireEditLock(ctx context.Context, id string) (string, error)
	ReleaseEditLock(ctx context.Context, id, token string) error
}

// SiteBuilder produces website descriptions and images. *builder.Client
// satisfies it.
type SiteBuilder interface {
	Generate(ctx context.Context, prompt string) (*site.Website, error)
	Edit(ctx context.Context, current *site.Website, instruction string) (*site.Website, error)
	SectionImage(ctx context.Context, sectionID, prompt string) string
}

// ObjectStore removes uploaded images. *storage.Client satisfies it.
type ObjectStore interface {
	ExtractKey(rawURL string) (string, bool)
	Delete(ctx context.Context, key string) error
}

// Workspace groups the editor API handlers. Every handler computes a new
// description from explicit inputs and writes it back through
// WorkspaceStore.Update. Structural edits read the workspace only after
// taking its edit lock.
type Workspace struct {
	sessions  WorkspaceStore
	builder   SiteBuilder
	assistant *assistant.Assistant
	previews  *cache.PreviewCache
	html      *render.HTMLWriter
	objects   ObjectStore
	now       func() time.Time
}

// NewWorkspace creates the workspace handler group.
func NewWorkspace(sessions WorkspaceStore, b SiteBuilder, a *assistant.Assistant, previews *cache.PreviewCache, html *render.HTMLWriter) *Workspace {
	return &Workspace{
		sessions:  sessions,
		builder:   b,
		assistant: a,
		previews:  previews,
		html:      html,
		now:       time.Now,
	}
}

// UseObjectStore lets SectionImage delete uploads that no section ends up
// referencing.
func (h *Workspace) UseObjectStore(s ObjectStore) {
	h.objects = s
}

// workspaceResponse is the JSON view of a workspace.
type workspaceResponse struct {
	ID         string        `json:"id"`
	Website    *site.Website `json:"website"`
	Transcript []ai.Message  `json:"transcript"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

func newWorkspaceResponse(ws *session.Workspace) workspaceResponse {
	return workspaceResponse{
		ID:         ws.ID,
		Website:    ws.Website,
		Transcript: withGreeting(ws.Transcript, assistant.Greeting),
		UpdatedAt:  ws.UpdatedAt,
	}
}

// openWorkspace loads the caller's workspace or answers 503.
func openWorkspace(w http.ResponseWriter, r *http.Request, sessions WorkspaceStore) (*session.Workspace, bool) {
	ws, err := sessions.Open(r.Context(), w, r)
	if err != nil {
		slog.Error("open workspace failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "workspace storage is unavailable")
		return nil, false
	}
	return ws, true
}

// editLock takes the structural edit lock. The returned release func must
// be called when err is nil.
func editLock(ctx context.Context, sessions WorkspaceStore, id string) (release func(), err error) {
	token, err := sessions.AcquireEditLock(ctx, id)
	if err != nil {
		return nil, err
	}
	return func() {
		// The request context may already be cancelled.
		if err := sessions.ReleaseEditLock(context.WithoutCancel(ctx), id, token); err != nil {
			slog.Warn("release edit lock failed", "error", err, "workspace", id)
		}
	}, nil
}

// lockWorkspace opens the caller's workspace, takes its edit lock and
// reloads it, so the returned copy includes every write that finished
// before the lock was granted. It answers 409 while another edit holds the
// lock. release must be called when ok is true.
func lockWorkspace(w http.ResponseWriter, r *http.Request, sessions WorkspaceStore) (ws *session.Workspace, release func(), ok bool) {
	opened, ok := openWorkspace(w, r, sessions)
	if !ok {
		return nil, nil, false
	}

	release, err := editLock(r.Context(), sessions, opened.ID)
	if errors.Is(err, session.ErrEditInFlight) {
		writeError(w, http.StatusConflict, err.Error())
		return nil, nil, false
	}
	if err != nil {
		slog.Error("acquire edit lock failed", "error", err, "workspace", opened.ID)
		writeError(w, http.StatusServiceUnavailable, "workspace storage is unavailable")
		return nil, nil, false
	}

	ws, err = sessions.Get(r.Context(), opened.ID)
	if err != nil {
		release()
		writeStoreError(w, err, opened.ID)
		return nil, nil, false
	}
	return ws, release, true
}

// writeStoreError answers a failed workspace read or update.
func writeStoreError(w http.ResponseWriter, err error, id string) {
	var invalid *site.ValidationError
	switch {
	case errors.Is(err, errNoWebsite):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, errSectionGone):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, editor.ErrUnknownThemeField):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, "workspace expired, reload the page")
	case errors.Is(err, session.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &invalid):
		slog.Error("refusing to store invalid website", "error", err, "workspace", id)
		writeError(w, http.StatusInternalServerError, "website description is invalid")
	default:
		slog.Error("save workspace failed", "error", err, "workspace", id)
		writeError(w, http.StatusServiceUnavailable, "workspace storage is unavailable")
	}
}

// update applies fn to the latest stored workspace and writes the result
// as the response.
func (h *Workspace) update(w http.ResponseWriter, r *http.Request, id string, fn func(ws *session.Workspace) error) {
	ws, err := h.sessions.Update(r.Context(), id, fn)
	if err != nil {
		writeStoreError(w, err, id)
		return
	}
	writeJSON(w, http.StatusOK, newWorkspaceResponse(ws))
}

// mutate applies a local editor mutation to the current description. It
// does not take the edit lock; a structural edit that finishes later
// replaces the result.
func (h *Workspace) mutate(w http.ResponseWriter, r *http.Request, fn func(*site.Website) (*site.Website, error)) {
	ws, ok := openWorkspace(w, r, h.sessions)
	if !ok {
		return
	}
	h.update(w, r, ws.ID, func(ws *session.Workspace) error {
		if ws.Website == nil {
			return errNoWebsite
		}
		next, err := fn(ws.Website)
		if err != nil {
			return err
		}
		if err := next.Validate(); err != nil {
			return err
		}
		ws.Website = next
		return nil
	})
}

// Get returns the current description and transcript.
func (h *Workspace) Get(w http.ResponseWriter, r *http.Request) {
	ws, ok := openWorkspace(w, r, h.sessions)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newWorkspaceResponse(ws))
}

// Reset discards the workspace and its cookie.
func (h *Workspace) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Error("destroy workspace failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "workspace storage is unavailable")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Generate replaces the description with one built from a prompt.
func (h *Workspace) Generate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	prompt, ok := requireText(req.Prompt)
	if !ok {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	ws, release, ok := lockWorkspace(w, r, h.sessions)
	if !ok {
		return
	}
	defer release()

	website, err := h.builder.Generate(r.Context(), prompt)
	if err != nil {
		writeError(w, builderStatus(err), builder.UserMessage(err))
		return
	}

	h.update(w, r, ws.ID, func(ws *session.Workspace) error {
		ws.Website = website
		ws.Transcript = nil
		ws.Append(ai.Message{Role: ai.RoleAssistant, Content: assistant.Greeting})
		return nil
	})
}

// Edit applies an instruction to the current description. On failure the
// description is left as it was.
func (h *Workspace) Edit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Instruction string `json:"instruction"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	instruction, ok := requireText(req.Instruction)
	if !ok {
		writeError(w, http.StatusBadRequest, "instruction is required")
		return
	}

	ws, release, ok := lockWorkspace(w, r, h.sessions)
	if !ok {
		return
	}
	defer release()
	if ws.Website == nil {
		writeStoreError(w, errNoWebsite, ws.ID)
		return
	}

	website, err := h.builder.Edit(r.Context(), ws.Website, instruction)
	if err != nil {
		writeError(w, builderStatus(err), builder.UserMessage(err))
		return
	}

	h.update(w, r, ws.ID, func(ws *session.Workspace) error {
		ws.Website = website
		return nil
	})
}

// chatResponse is the result of one assistant turn.
type chatResponse struct {
	Reply   string        `json:"reply"`
	Intent  string        `json:"intent"`
	Action  bool          `json:"action"`
	Website *site.Website `json:"website"`
}

// Chat runs one assistant turn. It always answers 200 with an assistant
// message. Edit intents take the edit lock and read the workspace after
// taking it; chat intents run without it. The transcript is appended to the
// latest stored workspace either way.
func (h *Workspace) Chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	message, ok := requireText(req.Message)
	if !ok {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	ws, ok := openWorkspace(w, r, h.sessions)
	if !ok {
		return
	}

	if h.assistant.Classify(message) == intent.Edit {
		release, err := editLock(r.Context(), h.sessions, ws.ID)
		if err != nil {
			if !errors.Is(err, session.ErrEditInFlight) {
				slog.Error("acquire edit lock failed", "error", err, "workspace", ws.ID)
			}
			writeJSON(w, http.StatusOK, chatResponse{
				Reply:   busyReply,
				Intent:  intent.Edit.String(),
				Website: ws.Website,
			})
			return
		}
		defer release()

		fresh, err := h.sessions.Get(r.Context(), ws.ID)
		if err != nil {
			writeStoreError(w, err, ws.ID)
			return
		}
		ws = fresh
	}

	turn := h.assistant.Handle(r.Context(), ws.Website, ws.Transcript, message)
	if turn.Err != nil {
		slog.Warn("assistant turn failed", "error", turn.Err, "workspace", ws.ID, "intent", turn.Intent)
	}

	website := ws.Website
	if turn.Changed {
		website = turn.Website
	}
	saved, err := h.sessions.Update(r.Context(), ws.ID, func(ws *session.Workspace) error {
		if turn.Changed {
			ws.Website = turn.Website
		}
		ws.Append(assistant.Record(nil, message, turn)...)
		return nil
	})
	if err != nil {
		slog.Error("save workspace failed", "error", err, "workspace", ws.ID)
	} else {
		website = saved.Website
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Reply:   turn.Reply,
		Intent:  turn.Intent.String(),
		Action:  turn.Changed,
		Website: website,
	})
}

// Export downloads the current description as pretty-printed JSON.
func (h *Workspace) Export(w http.ResponseWriter, r *http.Request) {
	ws, ok := openWorkspace(w, r, h.sessions)
	if !ok {
		return
	}
	if ws.Website == nil {
		writeStoreError(w, errNoWebsite, ws.ID)
		return
	}
	doc, err := site.Export(ws.Website)
	if err != nil {
		slog.Error("export website failed", "error", err, "workspace", ws.ID)
		writeError(w, http.StatusInternalServerError, "could not export website")
		return
	}

	name := slug.Generate(ws.Website.Name)
	if name == "" {
		name = "website"
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".json"))
	w.Write(doc)
}

// outlineEntry is one row of the sidebar outline.
type outlineEntry struct {
	Index       int    `json:"index"`
	ID          string `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Icon        string `json:"icon"`
	CanMoveUp   bool   `json:"canMoveUp"`
	CanMoveDown bool   `json:"canMoveDown"`
}

// Outline lists the sections in page order for the sidebar.
func (h *Workspace) Outline(w http.ResponseWriter, r *http.Request) {
	ws, ok := openWorkspace(w, r, h.sessions)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, outline(ws.Website))
}

func outline(website *site.Website) []outlineEntry {
	out := []outlineEntry{}
	if website == nil {
		return out
	}
	for i, s := range website.Sections {
		out = append(out, outlineEntry{
			Index:       i,
			ID:          s.ID,
			Type:        string(s.Type),
			Title:       s.Title,
			Icon:        s.Type.Icon(),
			CanMoveUp:   editor.CanMove(website, i, editor.Up),
			CanMoveDown: editor.CanMove(website, i, editor.Down),
		})
	}
	return out
}

// SetTheme replaces one theme field.
func (h *Workspace) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.mutate(w, r, func(website *site.Website) (*site.Website, error) {
		return editor.SetThemeField(website, req.Key, req.Value)
	})
}

// RemoveSection deletes the section named in the URL. Unknown ids are a
// no-op.
func (h *Workspace) RemoveSection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.mutate(w, r, func(website *site.Website) (*site.Website, error) {
		return editor.RemoveSection(website, id), nil
	})
}

// MoveSection swaps the section at the URL index with its neighbour.
func (h *Workspace) MoveSection(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "section index must be an integer")
		return
	}
	var req struct {
		Direction string `json:"direction"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	dir, err := editor.ParseDirection(req.Direction)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.mutate(w, r, func(website *site.Website) (*site.Website, error) {
		return editor.MoveSection(website, index, dir), nil
	})
}

// SectionImage generates an image for a section and stores its URL in the
// section's imageUrl. It never fails on the image itself; the worst case is
// a placeholder URL. If the section was removed while the image was being
// generated, the upload is deleted and the request answers 404.
func (h *Workspace) SectionImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ws, release, ok := lockWorkspace(w, r, h.sessions)
	if !ok {
		return
	}
	defer release()
	if ws.Website == nil {
		writeStoreError(w, errNoWebsite, ws.ID)
		return
	}
	current, found := ws.Website.Section(id)
	if !found {
		writeStoreError(w, errSectionGone, ws.ID)
		return
	}
	prompt, ok := requireText(req.Prompt)
	if !ok {
		prompt = current.Title
	}

	imageURL := h.builder.SectionImage(r.Context(), id, prompt)

	saved, err := h.sessions.Update(r.Context(), ws.ID, func(ws *session.Workspace) error {
		if ws.Website == nil {
			return errNoWebsite
		}
		next := ws.Website.Clone()
		s, found := next.Section(id)
		if !found {
			return errSectionGone
		}
		s.ImageURL = imageURL
		ws.Website = next
		return nil
	})
	if err != nil {
		h.discardImage(r.Context(), imageURL)
		writeStoreError(w, err, ws.ID)
		return
	}
	writeJSON(w, http.StatusOK, newWorkspaceResponse(saved))
}

// discardImage deletes an uploaded image that no workspace references.
// Placeholders and data URIs are ignored.
func (h *Workspace) discardImage(ctx context.Context, imageURL string) {
	if h.objects == nil {
		return
	}
	key, ok := h.objects.ExtractKey(imageURL)
	if !ok {
		return
	}
	if err := h.objects.Delete(context.WithoutCancel(ctx), key); err != nil {
		slog.Warn("delete orphaned image failed", "error", err, "key", key)
		return
	}
	slog.Info("orphaned image deleted", "key", key)
}

// Preview renders the current description as HTML for the requested
// viewport. Identical descriptions share one cached render.
func (h *Workspace) Preview(w http.ResponseWriter, r *http.Request) {
	vp, err := render.ParseViewport(r.URL.Query().Get("viewport"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ws, err := h.sessions.Open(r.Context(), w, r)
	if err != nil {
		slog.Error("open workspace failed", "error", err)
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}

	year := h.now().Year()
	key, err := cache.PreviewKey(ws.Website, fmt.Sprintf("%s:%d", vp, year))
	if err != nil {
		slog.Error("preview key failed", "error", err, "workspace", ws.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	page, err := h.previews.GetOrRender(r.Context(), key, func() ([]byte, error) {
		return h.html.Bytes(render.Render(ws.Website, vp, render.Options{Year: year}))
	})
	if err != nil {
		slog.Error("render preview failed", "error", err, "workspace", ws.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(page)
}

// builderStatus maps a builder failure to an HTTP status.
func builderStatus(err error) int {
	if errors.Is(err, builder.ErrFlagged) || errors.Is(err, builder.ErrEmptyPrompt) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadGateway
}
