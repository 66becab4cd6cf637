// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables. A .env file in the working directory is read first when present;
// values already set in the environment take precedence over it.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Provider holds the settings of one AI provider.
type Provider struct {
	APIKey     string
	Model      string
	ModelChat  string // empty means Model
	ModelImage string // empty disables image generation
	BaseURL    string
}

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host     string
	Port     string
	Env      string // "development", "production", "testing"
	LogLevel string

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// AI provider settings
	AIProvider string // "gemini", "openai", "claude", "mistral"
	Gemini     Provider
	OpenAI     Provider
	Claude     Provider
	Mistral    Provider

	// AllowProviderSwitch enables POST /api/ai/providers, which changes the
	// active provider for every workspace. On by default only in development.
	AllowProviderSwitch bool

	// IntentTriggers is the raw comma separated trigger list; empty means
	// the built-in set.
	IntentTriggers string

	// S3-compatible storage for generated images. Optional.
	S3Endpoint     string
	S3Region       string
	S3AccessKey    string
	S3SecretKey    string
	S3BucketPublic string
	S3PublicURL    string

	EditLockTTL     time.Duration
	SessionTTL      time.Duration
	PreviewCacheTTL time.Duration
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode or a duration is malformed.
func Load() (*Config, error) {
	// Missing .env is the normal case outside development.
	_ = godotenv.Load()

	cfg := &Config{
		Host:     envOrDefault("APP_HOST", "0.0.0.0"),
		Port:     envOrDefault("APP_PORT", "8080"),
		Env:      envOrDefault("APP_ENV", "development"),
		LogLevel: envOrDefault("LOG_LEVEL", "info"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "sitesmith"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "sitesmith"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		AIProvider: envOrDefault("AI_PROVIDER", "gemini"),
		Gemini: Provider{
			APIKey:     os.Getenv("GEMINI_API_KEY"),
			Model:      envOrDefault("GEMINI_MODEL", "gemini-3-pro-preview"),
			ModelChat:  envOrDefault("GEMINI_MODEL_CHAT", "gemini-3-flash-preview"),
			ModelImage: envOrDefault("GEMINI_MODEL_IMAGE", "gemini-2.5-flash-image"),
			BaseURL:    envOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		},
		OpenAI: Provider{
			APIKey:     os.Getenv("OPENAI_API_KEY"),
			Model:      envOrDefault("OPENAI_MODEL", "gpt-4o"),
			ModelImage: envOrDefault("OPENAI_MODEL_IMAGE", "gpt-image-1"),
			BaseURL:    envOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		},
		Claude: Provider{
			APIKey:  os.Getenv("CLAUDE_API_KEY"),
			Model:   envOrDefault("CLAUDE_MODEL", "claude-sonnet-4-6"),
			BaseURL: envOrDefault("CLAUDE_BASE_URL", "https://api.anthropic.com"),
		},
		Mistral: Provider{
			APIKey:  os.Getenv("MISTRAL_API_KEY"),
			Model:   envOrDefault("MISTRAL_MODEL", "mistral-large-latest"),
			BaseURL: envOrDefault("MISTRAL_BASE_URL", "https://api.mistral.ai/v1"),
		},

		IntentTriggers: os.Getenv("INTENT_TRIGGERS"),

		S3Endpoint:     os.Getenv("S3_ENDPOINT"),
		S3Region:       envOrDefault("S3_REGION", "fsn1"),
		S3AccessKey:    os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:    os.Getenv("S3_SECRET_KEY"),
		S3BucketPublic: envOrDefault("S3_BUCKET_PUBLIC", "sitesmith-public"),
		S3PublicURL:    os.Getenv("S3_PUBLIC_URL"),
	}

	var err error
	if cfg.AllowProviderSwitch, err = boolOrDefault("AI_PROVIDER_SWITCH", cfg.IsDev()); err != nil {
		return nil, err
	}
	if cfg.EditLockTTL, err = durationOrDefault("EDIT_LOCK_TTL", 2*time.Minute); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = durationOrDefault("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.PreviewCacheTTL, err = durationOrDefault("PREVIEW_CACHE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// ValkeyAddr returns the Valkey address (host:port).
func (c *Config) ValkeyAddr() string {
	return fmt.Sprintf("%s:%s", c.ValkeyHost, c.ValkeyPort)
}

// S3Enabled reports whether generated images should be uploaded.
func (c *Config) S3Enabled() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func boolOrDefault(key string, fallback bool) (bool, error) {
	v := envOrDefault(key, "")
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func durationOrDefault(key string, fallback time.Duration) (time.Duration, error) {
	v := envOrDefault(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, v)
	}
	return d, nil
}
