// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/middleware"
)

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	h := router.handler
	cm := router.chiMiddleware
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cm.CORS()) // global so OPTIONS preflight is answered everywhere

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	// ========================
	// JSON API
	// ========================
	r.Route("/api", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(router.admin.Identify)
		r.Use(router.sessions.Authenticate)
		r.Use(router.authz.Authorize)

		// Hijacked connection: no body limit, metrics or rate limit.
		r.With(router.admin.RequireAdminAPI).Get("/events/ws", h.Events)

		r.Group(func(r chi.Router) {
			r.Use(MaxBodyBytes(router.server.MaxBodyBytes))
			r.Use(middleware.PrometheusMetrics(routePattern))

			r.With(cm.RateLimitWebhook()).Post("/webhooks", h.Webhook)

			r.Group(func(r chi.Router) {
				r.Use(cm.RateLimit())
				router.publicRoutes(r)
			})
		})
	})

	// ========================
	// Observability
	// ========================
	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	// ========================
	// Admin Pages
	// ========================
	r.Get(router.admin.LoginPath(), router.serveLogin)
	r.Group(func(r chi.Router) {
		r.Use(router.admin.RequireAdminPage)
		r.Get("/dashboard", router.serveDashboard)
		r.Get("/dashboard/*", router.serveDashboard)
	})

	// ========================
	// Uploaded Images
	// ========================
	if router.upload.Backend != config.UploadS3 && router.upload.PublicDir != "" {
		prefix := router.upload.URLPrefix
		if prefix == "" {
			prefix = "/uploads"
		}
		fs := http.StripPrefix(prefix, http.FileServer(http.Dir(router.upload.PublicDir)))
		r.Get(prefix+"/*", fs.ServeHTTP)
	}

	return r
}

// publicRoutes registers the API endpoints that share the general budget.
func (router *Router) publicRoutes(r chi.Router) {
	h := router.handler
	cm := router.chiMiddleware

	r.Route("/auth", func(r chi.Router) {
		r.Use(cm.RateLimitAuth())
		r.Post("/signup", h.SignUp)
		r.Post("/signin", h.SignIn)
		r.Post("/signout", h.SignOut)
		r.Get("/session", h.Session)
		r.Get("/oidc/login", h.OIDCLogin)
		r.Get("/oidc/callback", h.OIDCCallback)
	})

	r.With(cm.RateLimitAuth()).Post("/admin-auth", h.AdminSignIn)
	r.Delete("/admin-auth", h.AdminSignOut)

	r.With(cm.RateLimitContact()).Post("/contact", h.CreateContact)
	r.Get("/contact", h.ListContacts)
	r.Patch("/contact", h.UpdateContactStatus)

	r.Get("/posts", h.ListPosts)
	r.Post("/posts", h.CreatePost)
	r.Get("/posts/{id}", h.GetPost)
	r.Patch("/posts/{id}", h.UpdatePost)

	r.Post("/checkout", h.Checkout)

	// Admin
	r.Get("/users", h.ListUsers)
	r.Get("/payments", h.Payments)
	r.Get("/stats", h.Stats)
	r.Get("/outbox", h.ListOutbox)
}
