// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"sitesmith/internal/metrics"
	"sitesmith/internal/site"
)

const (
	previewKeyPrefix = "preview:"

	// DefaultPreviewTTL is how long a rendered preview stays cached.
	DefaultPreviewTTL = 10 * time.Minute
)

// PreviewCache caches preview HTML under a hash of the description and the
// render inputs. Any change to the description yields a new key, so entries
// never need invalidation. Concurrent misses for the same key render once.
type PreviewCache struct {
	client *redis.Client // nil disables the Valkey layer
	ttl    time.Duration
	group  singleflight.Group
}

// NewPreviewCache creates a preview cache. A nil client keeps only the
// request de-duplication.
func NewPreviewCache(client *redis.Client, ttl time.Duration) *PreviewCache {
	if ttl == 0 {
		ttl = DefaultPreviewTTL
	}
	return &PreviewCache{client: client, ttl: ttl}
}

// PreviewKey derives the cache key of a render of w with the given variant
// (viewport, year and similar render inputs).
func PreviewKey(w *site.Website, variant string) (string, error) {
	doc, err := json.Marshal(w)
	if err != nil {
		return "", fmt.Errorf("preview key: %w", err)
	}
	d := xxhash.New()
	d.Write(doc)
	d.WriteString("\x00")
	d.WriteString(variant)
	return previewKeyPrefix + strconv.FormatUint(d.Sum64(), 16), nil
}

// GetOrRender returns the cached preview for key, calling render on a miss
// and storing its output. Cache errors fall through to render.
func (pc *PreviewCache) GetOrRender(ctx context.Context, key string, render func() ([]byte, error)) ([]byte, error) {
	if html, ok := pc.get(ctx, key); ok {
		metrics.CacheResult(true)
		return html, nil
	}
	metrics.CacheResult(false)

	v, err, _ := pc.group.Do(key, func() (any, error) {
		// Another request may have filled the entry while we waited.
		if html, ok := pc.get(ctx, key); ok {
			return html, nil
		}
		html, err := render()
		if err != nil {
			return nil, err
		}
		pc.set(ctx, key, html)
		return html, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (pc *PreviewCache) get(ctx context.Context, key string) ([]byte, bool) {
	if pc.client == nil {
		return nil, false
	}
	val, err := pc.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("preview cache get error", "key", key, "error", err)
		return nil, false
	}
	return val, true
}

func (pc *PreviewCache) set(ctx context.Context, key string, html []byte) {
	if pc.client == nil {
		return
	}
	if err := pc.client.Set(ctx, key, html, pc.ttl).Err(); err != nil {
		slog.Warn("preview cache set error", "key", key, "error", err)
	}
}
