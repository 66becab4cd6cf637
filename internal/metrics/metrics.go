// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sitesmith"

// AI operation labels.
const (
	OpGenerate = "generate"
	OpEdit     = "edit"
	OpChat     = "chat"
	OpImage    = "image"
)

var (
	AIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ai",
			Name:      "requests_total",
			Help:      "Total number of generative backend calls",
		},
		[]string{"operation", "status"},
	)

	AIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ai",
			Name:      "request_duration_seconds",
			Help:      "Generative backend call duration in seconds",
			Buckets:   []float64{.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
		[]string{"operation"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "status"},
	)

	PreviewCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "preview",
			Name:      "cache_total",
			Help:      "Preview cache lookups by result",
		},
		[]string{"result"},
	)
)

// ObserveAI records one backend call. status is "ok" when err is nil,
// "error" otherwise.
func ObserveAI(operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	AIRequestsTotal.WithLabelValues(operation, status).Inc()
	AIRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ObserveHTTP counts one served request.
func ObserveHTTP(method string, status int) {
	HTTPRequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// CacheResult counts a preview cache hit or miss.
func CacheResult(hit bool) {
	if hit {
		PreviewCacheTotal.WithLabelValues("hit").Inc()
		return
	}
	PreviewCacheTotal.WithLabelValues("miss").Inc()
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
