// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package api

import (
	"html/template"
	"net/http"

	"github.com/tomtom215/launchpad/internal/auth"
	"github.com/tomtom215/launchpad/internal/authz"
	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/logging"
)

// Router sets up HTTP routes using Chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	authz         *authz.Middleware
	admin         *auth.AdminGate
	sessions      *auth.SessionIssuer
	server        config.ServerConfig
	upload        config.UploadConfig
	loginTemplate *template.Template
}

// NewRouter builds a Router over handler. enforcer decides access for every
// /api route; both cookie authenticators report denials through WriteAppError.
func NewRouter(cfg *config.Config, handler *Handler, enforcer *authz.Enforcer) *Router {
	handler.admin.SetDenyFunc(WriteAppError)
	handler.sessions.SetDenyFunc(WriteAppError)

	tmpl, err := template.New("login").Parse(loginPageHTML)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to parse login page template")
	}

	return &Router{
		handler: handler,
		chiMiddleware: NewChiMiddleware(ChiMiddlewareConfig{
			CORSAllowedOrigins: cfg.Security.CORSOrigins,
			RateLimitDisabled:  cfg.Security.RateLimitDisabled,
		}),
		authz:         authz.NewMiddleware(enforcer, WriteAppError),
		admin:         handler.admin,
		sessions:      handler.sessions,
		server:        cfg.Server,
		upload:        cfg.Upload,
		loginTemplate: tmpl,
	}
}

// Handler returns the configured http.Handler.
func (router *Router) Handler() http.Handler {
	return router.SetupChi()
}
