// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/launchpad/internal/logging"
)

// RateLimitConfig is a per-IP budget for one group of endpoints.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// Endpoint budgets.
var (
	// RateLimitAuth covers sign-up, sign-in and the admin gate.
	RateLimitAuth = RateLimitConfig{Requests: 5, Window: time.Minute}

	// RateLimitContact covers the public contact form.
	RateLimitContact = RateLimitConfig{Requests: 10, Window: time.Minute}

	// RateLimitAPI is the default for everything else under /api.
	RateLimitAPI = RateLimitConfig{Requests: 100, Window: time.Minute}

	// RateLimitWebhook covers signed payment processor callbacks, which
	// arrive in bursts from a few shared addresses.
	RateLimitWebhook = RateLimitConfig{Requests: 1000, Window: time.Minute}
)

// ChiMiddlewareConfig configures CORS and rate limiting.
type ChiMiddlewareConfig struct {
	CORSAllowedOrigins []string
	RateLimitDisabled  bool
}

// ChiMiddleware builds chi-compatible middleware.
type ChiMiddleware struct {
	config ChiMiddlewareConfig
	cors   func(http.Handler) http.Handler
}

// NewChiMiddleware returns middleware factories for cfg. Credentials are
// allowed because both auth mechanisms are cookie based, so a wildcard origin
// is never reflected.
func NewChiMiddleware(cfg ChiMiddlewareConfig) *ChiMiddleware {
	origins := make([]string, 0, len(cfg.CORSAllowedOrigins))
	for _, o := range cfg.CORSAllowedOrigins {
		if o != "*" {
			origins = append(origins, o)
		}
	}
	return &ChiMiddleware{
		config: cfg,
		cors: cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
			AllowCredentials: true,
			MaxAge:           86400,
		}),
	}
}

// CORS returns the go-chi/cors handler.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimitCustom limits by client IP. chi's RealIP runs first, so
// X-Forwarded-For from the proxy is honored.
func (m *ChiMiddleware) RateLimitCustom(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if m.config.RateLimitDisabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(cfg.Requests, cfg.Window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			logging.Ctx(r.Context()).Warn().Str("path", r.URL.Path).Msg("Rate limit exceeded")
			NewResponseWriter(w, r).TooManyRequests("Too many requests, please try again later", cfg.Window)
		}),
	)
}

// RateLimitAuth returns the sign-in limiter.
func (m *ChiMiddleware) RateLimitAuth() func(http.Handler) http.Handler {
	return m.RateLimitCustom(RateLimitAuth)
}

// RateLimitContact returns the contact form limiter.
func (m *ChiMiddleware) RateLimitContact() func(http.Handler) http.Handler {
	return m.RateLimitCustom(RateLimitContact)
}

// RateLimitWebhook returns the payment webhook limiter. It is separate from
// the general budget so browsing traffic cannot starve processor retries.
func (m *ChiMiddleware) RateLimitWebhook() func(http.Handler) http.Handler {
	return m.RateLimitCustom(RateLimitWebhook)
}

// RateLimit returns the general API limiter.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	return m.RateLimitCustom(RateLimitAPI)
}

// APISecurityHeaders sets the headers every API response carries. HSTS is
// only sent over TLS or behind a TLS-terminating proxy.
func APISecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Cache-Control", "no-store")
			if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// MaxBodyBytes caps request bodies. Larger bodies fail decoding with 400.
func MaxBodyBytes(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if n <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}

// routePattern labels metrics with chi's matched pattern.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}
