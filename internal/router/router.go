// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for
// sitesmith. Routes that call the generative backend sit behind the
// per-client rate limiter; rendered pages carry the page CSP.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"sitesmith/internal/handlers"
	"sitesmith/internal/metrics"
	"sitesmith/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(ws *handlers.Workspace, projects *handlers.Projects, providers *handlers.Providers, aiLimiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", healthHandler)
	r.Handle("/metrics", metrics.Handler())

	// Rendered websites.
	r.Group(func(r chi.Router) {
		r.Use(middleware.PageHeaders)
		r.Get("/preview", ws.Preview)
		r.Get("/sites/{slug}", projects.Site)
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/workspace", func(r chi.Router) {
			r.Get("/", ws.Get)
			r.Delete("/", ws.Reset)
			r.Get("/export", ws.Export)
			r.Get("/outline", ws.Outline)

			// Editor mutations, no backend calls.
			r.Patch("/theme", ws.SetTheme)
			r.Delete("/sections/{id}", ws.RemoveSection)
			r.Post("/sections/{index}/move", ws.MoveSection)

			// Generative routes.
			r.Group(func(r chi.Router) {
				r.Use(aiLimiter.Middleware)
				r.Post("/generate", ws.Generate)
				r.Post("/edit", ws.Edit)
				r.Post("/chat", ws.Chat)
				r.Post("/sections/{id}/image", ws.SectionImage)
			})
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

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
