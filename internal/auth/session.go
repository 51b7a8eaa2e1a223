// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/models"
)

type contextKey string

const (
	sessionClaimsKey contextKey = "session_claims"
	adminClaimsKey   contextKey = "admin_claims"
)

// DenyFunc writes the response for a request that failed authentication.
type DenyFunc func(w http.ResponseWriter, r *http.Request, err error)

// SessionIssuer issues and checks the user session cookie.
type SessionIssuer struct {
	tokens *TokenManager
	cookie string
	secure bool
	deny   DenyFunc
}

// NewSessionIssuer builds an issuer from security config.
func NewSessionIssuer(cfg *config.SecurityConfig) (*SessionIssuer, error) {
	tokens, err := NewTokenManager(cfg.JWTSecret, cfg.SessionTTL, AudienceSession)
	if err != nil {
		return nil, err
	}
	return &SessionIssuer{
		tokens: tokens,
		cookie: cfg.SessionCookie,
		secure: cfg.CookieSecure,
		deny:   writeUnauthorized,
	}, nil
}

// SetDenyFunc replaces the default 401 writer used by RequireSession.
func (s *SessionIssuer) SetDenyFunc(fn DenyFunc) {
	if fn != nil {
		s.deny = fn
	}
}

// CookieName returns the session cookie name.
func (s *SessionIssuer) CookieName() string { return s.cookie }

// Issue signs a token for user and sets it as an HTTP-only cookie.
func (s *SessionIssuer) Issue(w http.ResponseWriter, user *models.User) (*Claims, error) {
	token, exp, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		MaxAge:   int(s.tokens.TTL().Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return s.tokens.Validate(token)
}

// Clear expires the session cookie. The token itself stays valid until exp.
func (s *SessionIssuer) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// FromRequest validates the session cookie on r.
func (s *SessionIssuer) FromRequest(r *http.Request) (*Claims, error) {
	c, err := r.Cookie(s.cookie)
	if err != nil {
		return nil, ErrNoSession
	}
	return s.tokens.Validate(c.Value)
}

// Authenticate attaches session claims to the context when the cookie is
// valid. Requests without a session pass through untouched.
func (s *SessionIssuer) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.FromRequest(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), sessionClaimsKey, claims)
		ctx = logging.ContextWithActor(ctx, claims.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireSession rejects requests that Authenticate did not mark.
func (s *SessionIssuer) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := SessionFromContext(r.Context()); !ok {
			s.deny(w, r, ErrNoSession)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionFromContext returns the claims set by Authenticate.
func SessionFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(sessionClaimsKey).(*Claims)
	return claims, ok
}

// ContextWithSession is used by tests and by handlers that sign a user in
// within the same request.
func ContextWithSession(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, sessionClaimsKey, claims)
}

func writeUnauthorized(w http.ResponseWriter, _ *http.Request, _ error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	resp := map[string]interface{}{
		"success": false,
		"error": map[string]string{
			"code":    "UNAUTHORIZED",
			"message": "Authentication required",
		},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error().Err(err).Msg("Error encoding unauthorized response")
	}
}
