// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/tomtom215/launchpad/internal/auth"
	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/testinfra"
)

func newOIDCTestEnv(t *testing.T) (*testEnv, *testinfra.MockIdP) {
	t.Helper()
	idp, err := testinfra.NewMockIdP("launchpad", "launchpad-secret")
	if err != nil {
		t.Fatalf("mock idp: %v", err)
	}
	t.Cleanup(idp.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	provider, err := auth.NewOIDCProvider(ctx, config.OIDCConfig{
		Enabled:      true,
		IssuerURL:    idp.Issuer,
		ClientID:     "launchpad",
		ClientSecret: "launchpad-secret",
		RedirectURL:  "http://localhost:3857/api/auth/oidc/callback",
	})
	if err != nil {
		t.Fatalf("oidc provider: %v", err)
	}
	env := newTestEnv(t, func(d *Deps) { d.OIDC = provider })
	return env, idp
}

// federatedLogin drives login, the provider's authorize step and the
// callback, returning the callback response.
func federatedLogin(t *testing.T, env *testEnv, idp *testinfra.MockIdP, callbackURL string) *httptest.ResponseRecorder {
	t.Helper()
	login := env.do(t, http.MethodGet, "/api/auth/oidc/login?"+url.Values{auth.CallbackParam: {callbackURL}}.Encode(), nil)
	if login.Code != http.StatusFound {
		t.Fatalf("login status = %d, body %s", login.Code, login.Body.String())
	}
	back, err := idp.Authorize(login.Header().Get("Location"))
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if back.Path != "/api/auth/oidc/callback" {
		t.Fatalf("provider redirected to %s", back)
	}
	return env.do(t, http.MethodGet, back.RequestURI(), nil)
}

func sessionCookie(env *testEnv, rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == env.cfg.Security.SessionCookie && c.Value != "" {
			return c
		}
	}
	return nil
}

func TestOIDCLogin_NotConfigured(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	for _, path := range []string{"/api/auth/oidc/login", "/api/auth/oidc/callback?code=a&state=b"} {
		if rec := env.do(t, http.MethodGet, path, nil); rec.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", path, rec.Code)
		}
	}
}

func TestOIDCCallback_SignsInAndRedirects(t *testing.T) {
	t.Parallel()
	env, idp := newOIDCTestEnv(t)

	rec := federatedLogin(t, env, idp, "/dashboard/posts")
	if rec.Code != http.StatusFound {
		t.Fatalf("callback status = %d, body %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard/posts" {
		t.Errorf("Location = %q, want /dashboard/posts", loc)
	}
	cookie := sessionCookie(env, rec)
	if cookie == nil {
		t.Fatal("callback did not set a session cookie")
	}

	session := env.do(t, http.MethodGet, "/api/auth/session", nil, cookie)
	var resp SessionResponse
	decodeData(t, session, &resp)
	if resp.Email != "federated@example.com" {
		t.Errorf("session email = %q", resp.Email)
	}

	user, err := env.store.Users().FindByEmail(context.Background(), "federated@example.com")
	if err != nil {
		t.Fatalf("federated user not stored: %v", err)
	}
	if user.EmailVerified == nil {
		t.Error("federated user should be stored with a verified timestamp")
	}
}

func TestOIDCLogin_UnsafeCallbackFallsBackToRoot(t *testing.T) {
	t.Parallel()
	env, idp := newOIDCTestEnv(t)

	for _, target := range []string{"https://evil.com", "//evil.com/x", `/\evil.com`} {
		rec := federatedLogin(t, env, idp, target)
		if rec.Code != http.StatusFound {
			t.Fatalf("%s: callback status = %d", target, rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "/" {
			t.Errorf("%s: Location = %q, want /", target, loc)
		}
	}
}

func TestOIDCCallback_Failures(t *testing.T) {
	t.Parallel()
	env, idp := newOIDCTestEnv(t)

	denied := env.do(t, http.MethodGet, "/api/auth/oidc/callback?error=access_denied&state=x", nil)
	if denied.Code != http.StatusUnauthorized {
		t.Errorf("provider error: status = %d, want 401", denied.Code)
	}

	missing := env.do(t, http.MethodGet, "/api/auth/oidc/callback?code=abc", nil)
	if missing.Code != http.StatusBadRequest {
		t.Errorf("missing state: status = %d, want 400", missing.Code)
	}

	forged := env.do(t, http.MethodGet, "/api/auth/oidc/callback?code=abc&state=forged", nil)
	if forged.Code != http.StatusUnauthorized || sessionCookie(env, forged) != nil {
		t.Errorf("unknown state: status = %d, want 401 without a session", forged.Code)
	}

	idp.SetUser(testinfra.IdPUser{Subject: "mallory", Email: testAdminEmail, Name: "Mallory"})
	unverified := federatedLogin(t, env, idp, "/")
	if unverified.Code != http.StatusUnauthorized || sessionCookie(env, unverified) != nil {
		t.Errorf("unverified email: status = %d, want 401 without a session", unverified.Code)
	}
	if unverified.Header().Get("Location") != "" {
		t.Errorf("unverified email must not redirect, Location = %q", unverified.Header().Get("Location"))
	}
}
