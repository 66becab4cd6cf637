// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHandlerExposesCollectors(t *testing.T) {
	ObserveAI(OpGenerate, time.Now(), nil)
	ObserveAI(OpEdit, time.Now(), errors.New("boom"))
	ObserveHTTP("GET", 200)
	CacheResult(true)
	CacheResult(false)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	for _, want := range []string{
		`sitesmith_ai_requests_total{operation="generate",status="ok"}`,
		`sitesmith_ai_requests_total{operation="edit",status="error"}`,
		`sitesmith_ai_request_duration_seconds_bucket{operation="generate"`,
		`sitesmith_http_requests_total{method="GET",status="200"}`,
		`sitesmith_preview_cache_total{result="hit"}`,
		`sitesmith_preview_cache_total{result="miss"}`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}
