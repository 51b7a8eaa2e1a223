// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/launchpad/internal/apperr"
	"github.com/tomtom215/launchpad/internal/auth"
	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/metrics"
	"github.com/tomtom215/launchpad/internal/models"
)

// SessionResponse describes the signed-in user.
type SessionResponse struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AdminAuthResponse is returned by a successful admin sign-in.
type AdminAuthResponse struct {
	Authenticated bool      `json:"authenticated"`
	Email         string    `json:"email"`
	Redirect      string    `json:"redirect"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// SignUp godoc
// @Summary      Register an account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      SignUpRequest  true  "New account"
// @Success      201   {object}  APIResponse{data=models.User}
// @Failure      400   {object}  APIResponse
// @Router       /auth/signup [post]
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req SignUpRequest
	if err := decodeAndValidate(r, &req); err != nil {
		rw.AppError(err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		rw.AppError(err)
		return
	}
	user := &models.User{
		Email:        models.NormalizeEmail(req.Email),
		Name:         req.Name,
		PasswordHash: &hash,
		Role:         models.RoleUser,
	}
	if err := h.store.Users().Create(r.Context(), user); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			rw.BadRequest("An account with this email already exists")
			return
		}
		rw.AppError(err)
		return
	}

	logging.Ctx(r.Context()).Info().Str("user_id", user.ID).Msg("User registered")
	rw.Created(user)
}

// SignIn godoc
// @Summary      Sign in with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      SignInRequest  true  "Credentials"
// @Success      200   {object}  APIResponse{data=models.User}
// @Failure      401   {object}  APIResponse
// @Failure      429   {object}  APIResponse
// @Router       /auth/signin [post]
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req SignInRequest
	if err := decodeAndValidate(r, &req); err != nil {
		rw.AppError(err)
		return
	}
	ctx := r.Context()

	if locked, remaining, _ := h.lockout.CheckLocked(ctx, req.Email); locked {
		logging.Security("signin_locked", req.Email, r.RemoteAddr, "account locked")
		rw.TooManyRequests("Too many failed attempts, try again later", remaining)
		return
	}

	user, err := h.verifier.Verify(ctx, req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			rw.AppError(err)
			return
		}
		metrics.RecordAuthAttempt("credentials", false)
		if locked, d, _ := h.lockout.RecordFailure(ctx, req.Email); locked {
			rw.TooManyRequests("Too many failed attempts, try again later", d)
			return
		}
		rw.Unauthorized("Invalid email or password")
		return
	}

	if err := h.lockout.RecordSuccess(ctx, req.Email); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to clear lockout state")
	}
	if _, err := h.sessions.Issue(w, user); err != nil {
		rw.AppError(err)
		return
	}
	metrics.RecordAuthAttempt("credentials", true)
	rw.Success(user)
}

// SignOut godoc
// @Summary      Clear the session cookie
// @Description  The token itself stays valid until it expires.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  APIResponse
// @Router       /auth/signout [post]
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	NewResponseWriter(w, r).Success(map[string]bool{"signedOut": true})
}

// Session godoc
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  APIResponse{data=SessionResponse}
// @Failure      401  {object}  APIResponse
// @Router       /auth/session [get]
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	claims, ok := auth.SessionFromContext(r.Context())
	if !ok {
		rw.Unauthorized("Not signed in")
		return
	}
	resp := SessionResponse{UserID: claims.Subject, Email: claims.Email, Role: claims.Role}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time
	}
	rw.Success(resp)
}

// OIDCLogin godoc
// @Summary      Start federated sign-in
// @Tags         auth
// @Param        callbackUrl  query  string  false  "Same-site path to return to"
// @Success      302
// @Failure      404  {object}  APIResponse
// @Router       /auth/oidc/login [get]
func (h *Handler) OIDCLogin(w http.ResponseWriter, r *http.Request) {
	if h.oidc == nil {
		NewResponseWriter(w, r).NotFound("Federated sign-in is not configured")
		return
	}
	target := auth.SafeCallback(r.URL.Query().Get(auth.CallbackParam), "/")
	authURL, err := h.oidc.AuthURL(target)
	if err != nil {
		NewResponseWriter(w, r).AppError(err)
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

// OIDCCallback godoc
// @Summary      Complete federated sign-in
// @Tags         auth
// @Param        code   query  string  true  "Authorization code"
// @Param        state  query  string  true  "State from OIDCLogin"
// @Success      302
// @Failure      401  {object}  APIResponse
// @Router       /auth/oidc/callback [get]
func (h *Handler) OIDCCallback(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.oidc == nil {
		rw.NotFound("Federated sign-in is not configured")
		return
	}
	q := r.URL.Query()
	if errParam := q.Get("error"); errParam != "" {
		logging.Ctx(r.Context()).Warn().Str("error", logging.SanitizeLogValue(errParam)).Msg("Identity provider returned an error")
		metrics.RecordAuthAttempt("oidc", false)
		rw.Unauthorized("Sign-in was cancelled or denied")
		return
	}
	code, state := q.Get("code"), q.Get("state")
	if code == "" || state == "" {
		rw.Error(http.StatusBadRequest, ErrCodeValidation, "code and state are required")
		return
	}

	identity, redirect, err := h.oidc.Exchange(r.Context(), code, state)
	if err != nil {
		metrics.RecordAuthAttempt("oidc", false)
		rw.AppError(err)
		return
	}
	user, err := auth.FederatedSignIn(r.Context(), h.store.Users(), *identity)
	if err != nil {
		metrics.RecordAuthAttempt("oidc", false)
		rw.AppError(err)
		return
	}
	if _, err := h.sessions.Issue(w, user); err != nil {
		rw.AppError(err)
		return
	}
	metrics.RecordAuthAttempt("oidc", true)
	http.Redirect(w, r, auth.SafeCallback(redirect, "/"), http.StatusFound)
}

// AdminSignIn godoc
// @Summary      Admin gate sign-in
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      SignInRequest  true  "Admin credentials"
// @Success      200   {object}  APIResponse{data=AdminAuthResponse}
// @Failure      401   {object}  APIResponse
// @Failure      429   {object}  APIResponse
// @Router       /admin-auth [post]
func (h *Handler) AdminSignIn(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req SignInRequest
	if err := decodeAndValidate(r, &req); err != nil {
		rw.AppError(err)
		return
	}
	ctx := r.Context()
	subject := "admin:" + req.Email

	if locked, remaining, _ := h.lockout.CheckLocked(ctx, subject); locked {
		logging.Security("admin_signin_locked", req.Email, r.RemoteAddr, "admin gate locked")
		rw.TooManyRequests("Too many failed attempts, try again later", remaining)
		return
	}

	claims, err := h.admin.SignIn(w, req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			rw.AppError(err)
			return
		}
		metrics.RecordAuthAttempt("admin", false)
		logging.Security("admin_signin_failed", req.Email, r.RemoteAddr, "invalid credentials")
		if locked, d, _ := h.lockout.RecordFailure(ctx, subject); locked {
			rw.TooManyRequests("Too many failed attempts, try again later", d)
			return
		}
		rw.Unauthorized("Invalid credentials")
		return
	}

	_ = h.lockout.RecordSuccess(ctx, subject)
	metrics.RecordAuthAttempt("admin", true)
	logging.Ctx(ctx).Info().Str("admin", logging.SanitizeEmail(claims.Subject)).Msg("Admin signed in")

	resp := AdminAuthResponse{
		Authenticated: true,
		Email:         claims.Subject,
		Redirect:      auth.SafeCallback(req.CallbackURL, "/dashboard"),
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time
	}
	rw.Success(resp)
}

// AdminSignOut godoc
// @Summary      Admin gate sign-out
// @Tags         admin
// @Produce      json
// @Success      200  {object}  APIResponse
// @Router       /admin-auth [delete]
func (h *Handler) AdminSignOut(w http.ResponseWriter, r *http.Request) {
	h.admin.SignOut(w)
	NewResponseWriter(w, r).Success(map[string]bool{"authenticated": false})
}
