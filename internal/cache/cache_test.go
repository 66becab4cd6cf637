// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"sitesmith/internal/site"
)

// testValkeyClient returns a Redis client for tests.
// Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     valkeyAddr(),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{pageKeyPrefix + "*", previewKeyPrefix + "*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

func valkeyAddr() string {
	return envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func testWebsite() *site.Website {
	return &site.Website{
		Name: "Bean There",
		Theme: site.Theme{PrimaryColor: "#6b4f3a", SecondaryColor: "#111", FontFamily: "Lora", Mode: site.ModeLight},
		Sections: []site.Section{
			{ID: "hero", Type: site.SectionHero, Title: "Great coffee"},
		},
	}
}

func TestConnectValkey(t *testing.T) {
	client, err := ConnectValkey(valkeyAddr(), os.Getenv("VALKEY_PASSWORD"))
	if err != nil {
		t.Skipf("skipping: Valkey not available: %v", err)
	}
	defer client.Close()

	pong, err := client.Ping(context.Background()).Result()
	if err != nil || pong != "PONG" {
		t.Errorf("Ping = %q, %v", pong, err)
	}
}

func TestConnectValkeyUnreachable(t *testing.T) {
	if _, err := ConnectValkey("127.0.0.1:1", ""); err == nil {
		t.Error("expected error for unreachable address")
	}
}

func TestPageCacheSetAndGet(t *testing.T) {
	pc := NewPageCache(testValkeyClient(t), time.Minute)
	ctx := context.Background()

	if data, ok := pc.Get(ctx, "bean-there"); ok || data != nil {
		t.Error("expected cache miss")
	}

	html := []byte("<html><body>Bean There</body></html>")
	pc.Set(ctx, "bean-there", html)

	data, ok := pc.Get(ctx, "bean-there")
	if !ok || string(data) != string(html) {
		t.Errorf("Get = %q, %v", data, ok)
	}
}

func TestPageCacheInvalidate(t *testing.T) {
	pc := NewPageCache(testValkeyClient(t), time.Minute)
	ctx := context.Background()

	pc.Set(ctx, "a", []byte("a"))
	pc.Set(ctx, "b", []byte("b"))
	pc.Invalidate(ctx, "a")

	if _, ok := pc.Get(ctx, "a"); ok {
		t.Error("expected miss after Invalidate")
	}
	if _, ok := pc.Get(ctx, "b"); !ok {
		t.Error("Invalidate removed an unrelated page")
	}

	pc.InvalidateAll(ctx)
	if _, ok := pc.Get(ctx, "b"); ok {
		t.Error("expected miss after InvalidateAll")
	}
}

func TestNewPageCacheDefaultTTL(t *testing.T) {
	if pc := NewPageCache(nil, 0); pc.ttl != DefaultPageTTL {
		t.Errorf("ttl = %v, want %v", pc.ttl, DefaultPageTTL)
	}
	if pc := NewPreviewCache(nil, 0); pc.ttl != DefaultPreviewTTL {
		t.Errorf("ttl = %v, want %v", pc.ttl, DefaultPreviewTTL)
	}
}

func TestPreviewKey(t *testing.T) {
	w := testWebsite()

	a, err := PreviewKey(w, "desktop")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := PreviewKey(w.Clone(), "desktop")
	if a != b {
		t.Errorf("equal descriptions produced different keys: %q vs %q", a, b)
	}

	mobile, _ := PreviewKey(w, "mobile")
	if mobile == a {
		t.Error("variant not part of the key")
	}

	changed := w.Clone()
	changed.Sections[0].Title = "Better coffee"
	c, _ := PreviewKey(changed, "desktop")
	if c == a {
		t.Error("description change not reflected in key")
	}
}

func TestPreviewWithoutValkeyDeduplicates(t *testing.T) {
	pc := NewPreviewCache(nil, time.Minute)

	var calls atomic.Int32
	release := make(chan struct{})
	render := func() ([]byte, error) {
		calls.Add(1)
		<-release
		return []byte("<html>preview</html>"), nil
	}

	var wg sync.WaitGroup
	results := make([]string, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := pc.GetOrRender(context.Background(), "preview:k", render)
			if err != nil {
				t.Errorf("GetOrRender: %v", err)
			}
			results[i] = string(out)
		}(i)
	}

	// Give the goroutines time to join the same flight before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("render called %d times, want 1", n)
	}
	for _, r := range results {
		if r != "<html>preview</html>" {
			t.Errorf("result = %q", r)
		}
	}
}

func TestPreviewRenderError(t *testing.T) {
	pc := NewPreviewCache(nil, time.Minute)
	boom := errors.New("template failed")

	_, err := pc.GetOrRender(context.Background(), "preview:x", func() ([]byte, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}

func TestPreviewCacheStoresInValkey(t *testing.T) {
	pc := NewPreviewCache(testValkeyClient(t), time.Minute)
	ctx := context.Background()
	key, _ := PreviewKey(testWebsite(), "desktop")

	calls := 0
	render := func() ([]byte, error) {
		calls++
		return []byte("<html>one</html>"), nil
	}

	for i := 0; i < 3; i++ {
		out, err := pc.GetOrRender(ctx, key, render)
		if err != nil || string(out) != "<html>one</html>" {
			t.Fatalf("GetOrRender = %q, %v", out, err)
		}
	}
	if calls != 1 {
		t.Errorf("render called %d times, want 1", calls)
	}
}
