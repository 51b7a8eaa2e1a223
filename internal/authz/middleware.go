// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package authz

import (
	"net/http"

	"github.com/tomtom215/launchpad/internal/apperr"
	"github.com/tomtom215/launchpad/internal/auth"
	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/metrics"
	"github.com/tomtom215/launchpad/internal/models"
)

// RoleFromRequest resolves the caller's role from claims placed in the
// context by auth.AdminGate.Identify and auth.SessionIssuer.Authenticate.
func RoleFromRequest(r *http.Request) string {
	if _, ok := auth.AdminFromContext(r.Context()); ok {
		return RoleAdmin
	}
	if claims, ok := auth.SessionFromContext(r.Context()); ok {
		if claims.Role == models.RoleAdmin {
			return RoleAdmin
		}
		return RoleUser
	}
	return RoleAnonymous
}

// Middleware enforces the policy on every request it wraps.
type Middleware struct {
	enforcer *Enforcer
	deny     auth.DenyFunc
}

// NewMiddleware returns a middleware using deny to write rejections. The
// error passed to deny wraps apperr.ErrAuth or apperr.ErrForbidden.
func NewMiddleware(enforcer *Enforcer, deny auth.DenyFunc) *Middleware {
	return &Middleware{enforcer: enforcer, deny: deny}
}

// Authorize checks (role, path, method) before calling next.
func (m *Middleware) Authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		role := RoleFromRequest(r)
		allowed, err := m.enforcer.Enforce(role, r.URL.Path, r.Method)
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("Authorization error")
			m.deny(w, r, err)
			return
		}
		if !allowed {
			metrics.AuthzDecisions.WithLabelValues(role, "deny").Inc()
			if role == RoleAnonymous {
				m.deny(w, r, auth.ErrNoSession)
			} else {
				m.deny(w, r, apperr.ErrForbidden)
			}
			return
		}

		metrics.AuthzDecisions.WithLabelValues(role, "allow").Inc()
		next.ServeHTTP(w, r)
	})
}
