// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import "net/http"

// PageCSP is the Content-Security-Policy of rendered sites. Pages load
// Tailwind and Font Awesome from CDNs and images from anywhere over HTTPS or
// inline data URIs; no other script source is allowed.
const PageCSP = "default-src 'none'; " +
	"script-src https://cdn.tailwindcss.com; " +
	"style-src 'unsafe-inline' https://cdnjs.cloudflare.com; " +
	"font-src https://cdnjs.cloudflare.com; " +
	"img-src https: data:; " +
	"form-action 'none'; base-uri 'none'"

// SecureHeaders adds security-related HTTP headers to every response.
func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()

		h.Set("X-Content-Type-Options", "nosniff")
		// The editor shows previews in a same-origin iframe.
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("X-XSS-Protection", "0")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy", "interest-cohort=()")

		next.ServeHTTP(w, r)
	})
}

// PageHeaders applies PageCSP to handlers that serve rendered sites.
func PageHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", PageCSP)
		next.ServeHTTP(w, r)
	})
}
