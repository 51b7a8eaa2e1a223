// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tomtom215/launchpad/internal/apperr"
	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/models"
)

// AdminCookieName is the admin gate cookie.
const AdminCookieName = "admin-auth"

// CallbackParam carries the originally requested URL to the login page.
const CallbackParam = "callbackUrl"

// AdminGate authenticates the single configured admin.
type AdminGate struct {
	email     string
	password  string
	tokens    *TokenManager
	loginPath string
	secure    bool
	deny      DenyFunc
}

// NewAdminGate builds the gate from security config. A gate without
// configured credentials rejects every sign-in.
func NewAdminGate(cfg *config.SecurityConfig) (*AdminGate, error) {
	tokens, err := NewTokenManager(cfg.AdminSigningKey(), cfg.AdminTTL, AudienceAdmin)
	if err != nil {
		return nil, err
	}
	loginPath := cfg.AdminLoginPath
	if loginPath == "" {
		loginPath = "/admin/login"
	}
	return &AdminGate{
		email:     models.NormalizeEmail(cfg.AdminEmail),
		password:  cfg.AdminPassword,
		tokens:    tokens,
		loginPath: loginPath,
		secure:    cfg.CookieSecure,
		deny:      writeUnauthorized,
	}, nil
}

// SetDenyFunc replaces the default 401 writer used by RequireAdminAPI.
func (g *AdminGate) SetDenyFunc(fn DenyFunc) {
	if fn != nil {
		g.deny = fn
	}
}

// LoginPath returns where RequireAdminPage redirects.
func (g *AdminGate) LoginPath() string { return g.loginPath }

// Configured reports whether admin credentials are set.
func (g *AdminGate) Configured() bool { return g.email != "" && g.password != "" }

// CheckCredentials compares both values in constant time.
func (g *AdminGate) CheckCredentials(email, password string) bool {
	if !g.Configured() {
		return false
	}
	emailOK := subtle.ConstantTimeCompare([]byte(models.NormalizeEmail(email)), []byte(g.email))
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(g.password))
	return emailOK&passOK == 1
}

// SignIn sets the admin cookie when the credentials match.
func (g *AdminGate) SignIn(w http.ResponseWriter, email, password string) (*Claims, error) {
	if !g.CheckCredentials(email, password) {
		return nil, ErrInvalidCredentials
	}
	token, exp, err := g.tokens.Issue(g.email, g.email, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     AdminCookieName,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		MaxAge:   int(g.tokens.TTL().Seconds()),
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return g.tokens.Validate(token)
}

// SignOut expires the admin cookie.
func (g *AdminGate) SignOut(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AdminCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// FromRequest validates the admin cookie on r.
func (g *AdminGate) FromRequest(r *http.Request) (*Claims, error) {
	c, err := r.Cookie(AdminCookieName)
	if err != nil || c.Value == "" {
		return nil, ErrNoSession
	}
	claims, err := g.tokens.Validate(c.Value)
	if err != nil {
		return nil, err
	}
	if claims.Role != models.RoleAdmin {
		return nil, apperr.ErrForbidden
	}
	return claims, nil
}

// RequireAdminPage redirects unauthenticated browsers to the login page,
// preserving the requested path and query in callbackUrl.
func (g *AdminGate) RequireAdminPage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := g.FromRequest(r)
		if err != nil {
			http.Redirect(w, r, g.LoginRedirectURL(r), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(withAdmin(r.Context(), claims)))
	})
}

// RequireAdminAPI answers unauthenticated requests with 401.
func (g *AdminGate) RequireAdminAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := g.FromRequest(r)
		if err != nil {
			g.deny(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withAdmin(r.Context(), claims)))
	})
}

// Identify attaches admin claims when the cookie is valid and never rejects.
// The authorization layer uses it to resolve the caller's role.
func (g *AdminGate) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, err := g.FromRequest(r); err == nil {
			r = r.WithContext(withAdmin(r.Context(), claims))
		}
		next.ServeHTTP(w, r)
	})
}

// LoginRedirectURL builds "<login>?callbackUrl=<path+query>".
func (g *AdminGate) LoginRedirectURL(r *http.Request) string {
	return g.loginPath + "?" + url.Values{CallbackParam: {r.URL.RequestURI()}}.Encode()
}

// SafeCallback returns target when it is a same-site absolute path, else
// fallback. Used by the login page to avoid open redirects.
func SafeCallback(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, "\\") {
		return fallback
	}
	return target
}

func withAdmin(ctx context.Context, claims *Claims) context.Context {
	ctx = context.WithValue(ctx, adminClaimsKey, claims)
	return logging.ContextWithActor(ctx, "admin:"+claims.Subject)
}

// AdminFromContext returns the admin claims attached by the gate.
func AdminFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(adminClaimsKey).(*Claims)
	return claims, ok
}
