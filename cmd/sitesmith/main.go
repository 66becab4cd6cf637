// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the sitesmith server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sitesmith/internal/ai"
	"sitesmith/internal/assistant"
	"sitesmith/internal/builder"
	"sitesmith/internal/cache"
	"sitesmith/internal/config"
	"sitesmith/internal/database"
	"sitesmith/internal/handlers"
	"sitesmith/internal/intent"
	"sitesmith/internal/middleware"
	"sitesmith/internal/render"
	"sitesmith/internal/router"
	"sitesmith/internal/session"
	"sitesmith/internal/storage"
	"sitesmith/internal/store"
)

// Generative routes allowed per client IP and window.
const (
	aiRateLimit  = 20
	aiRateWindow = time.Minute
)

func main() {
	// Load configuration from environment variables (and .env if present).
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(cfg))
	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed the demo project (no-op if projects already exist).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (workspaces, edit locks, page and preview caches).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyAddr(), cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// In non-development environments, mark workspace cookies as Secure.
	sessionStore := session.NewStore(valkeyClient, !cfg.IsDev())
	sessionStore.SetTTL(cfg.SessionTTL, cfg.EditLockTTL)

	html, err := render.NewHTML()
	if err != nil {
		slog.Error("failed to initialize page renderer", "error", err)
		os.Exit(1)
	}

	// Initialize the AI provider registry with all configured providers.
	aiRegistry := ai.NewRegistry(cfg.AIProvider, map[string]ai.ProviderConfig{
		"gemini":  providerConfig(cfg.Gemini),
		"openai":  providerConfig(cfg.OpenAI),
		"claude":  providerConfig(cfg.Claude),
		"mistral": providerConfig(cfg.Mistral),
	})
	slog.Info("ai providers initialized",
		"active", aiRegistry.ActiveName(),
		"available", aiRegistry.Available(),
		"images", aiRegistry.SupportsImageGeneration(),
	)
	if !aiRegistry.HasProvider(aiRegistry.ActiveName()) {
		slog.Warn("active ai provider has no API key, generation will fail until one is configured",
			"provider", aiRegistry.ActiveName())
	}

	siteBuilder := builder.New(aiRegistry)

	// Connect to S3-compatible object storage (optional; images are inlined
	// as data URIs without it).
	var storageClient *storage.Client
	if cfg.S3Enabled() {
		storageClient, err = storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3BucketPublic, cfg.S3PublicURL,
		)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		if storageClient != nil {
			siteBuilder.UseImageStore(storageClient)
			slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3BucketPublic)
		}
	} else {
		slog.Warn("s3 storage not configured, generated images are inlined")
	}

	bot := assistant.New(intent.New(intent.ParseTriggers(cfg.IntentTriggers)), siteBuilder)

	// Create handler groups with their dependencies.
	workspaceHandlers := handlers.NewWorkspace(sessionStore, siteBuilder, bot,
		cache.NewPreviewCache(valkeyClient, cfg.PreviewCacheTTL), html)
	if storageClient != nil {
		workspaceHandlers.UseObjectStore(storageClient)
	}

	// Published pages cached by a previous build may use old templates.
	pageCache := cache.NewPageCache(valkeyClient, cache.DefaultPageTTL)
	pageCache.InvalidateAll(context.Background())

	projectHandlers := handlers.NewProjects(sessionStore,
		store.NewProjectStore(db), store.NewProjectRevisionStore(db),
		pageCache, html)
	providerHandlers := handlers.NewProviders(aiRegistry, cfg.AllowProviderSwitch)

	aiLimiter := middleware.NewRateLimiter(aiRateLimit, aiRateWindow)
	defer aiLimiter.Stop()

	r := router.New(workspaceHandlers, projectHandlers, providerHandlers, aiLimiter)

	// WriteTimeout must accommodate generation and image endpoints that
	// wait on the model (up to a minute for a full website).
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// newLogger outputs text in development and JSON elsewhere, at LOG_LEVEL.
func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsDev() {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func providerConfig(p config.Provider) ai.ProviderConfig {
	return ai.ProviderConfig{
		APIKey:     p.APIKey,
		Model:      p.Model,
		ModelChat:  p.ModelChat,
		ModelImage: p.ModelImage,
		BaseURL:    p.BaseURL,
	}
}
