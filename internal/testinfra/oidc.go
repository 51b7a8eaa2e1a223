// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package testinfra

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
)

// IdPUser is the account the mock identity provider signs in.
type IdPUser struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string

	// UserinfoOnly keeps email and profile out of the ID token so relying
	// parties have to call the userinfo endpoint.
	UserinfoOnly bool
}

// MockIdP is an in-process OpenID Connect provider for the authorization code
// flow with PKCE. It serves discovery, JWKS, authorize, token and userinfo.
type MockIdP struct {
	Server *httptest.Server

	Issuer       string
	ClientID     string
	ClientSecret string

	key   *rsa.PrivateKey
	keyID string

	mu            sync.Mutex
	user          IdPUser
	codes         map[string]*issuedCode
	accessTokens  map[string]IdPUser
	tokenRequests int
}

type issuedCode struct {
	redirectURI string
	challenge   string
	user        IdPUser
	expiresAt   time.Time
}

// NewMockIdP starts a provider for one confidential client. Close it when done.
func NewMockIdP(clientID, clientSecret string) (*MockIdP, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("generate RSA key: %w", err)
	}

	m := &MockIdP{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		key:          key,
		keyID:        randomString(8),
		codes:        make(map[string]*issuedCode),
		accessTokens: make(map[string]IdPUser),
		user: IdPUser{
			Subject:       "idp-user-1",
			Email:         "federated@example.com",
			EmailVerified: true,
			Name:          "Federated User",
			Picture:       "https://idp.example.com/avatar.png",
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", m.handleDiscovery)
	mux.HandleFunc("/jwks", m.handleJWKS)
	mux.HandleFunc("/authorize", m.handleAuthorize)
	mux.HandleFunc("/token", m.handleToken)
	mux.HandleFunc("/userinfo", m.handleUserinfo)

	m.Server = httptest.NewServer(mux)
	m.Issuer = m.Server.URL
	return m, nil
}

// Close shuts down the server.
func (m *MockIdP) Close() {
	if m.Server != nil {
		m.Server.Close()
	}
}

// SetUser changes the account signed in by subsequent authorizations.
func (m *MockIdP) SetUser(u IdPUser) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = u
}

// TokenRequests reports how many requests reached the token endpoint.
func (m *MockIdP) TokenRequests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokenRequests
}

// Authorize plays the browser: it validates an authorization URL built by a
// relying party and returns the redirect back to it, carrying code and state.
func (m *MockIdP) Authorize(authURL string) (*url.URL, error) {
	u, err := url.Parse(authURL)
	if err != nil {
		return nil, fmt.Errorf("parse auth url: %w", err)
	}
	if u.Scheme+"://"+u.Host != m.Issuer || u.Path != "/authorize" {
		return nil, fmt.Errorf("auth url %q does not target %s/authorize", authURL, m.Issuer)
	}
	return m.authorize(u.Query())
}

func (m *MockIdP) authorize(q url.Values) (*url.URL, error) {
	if q.Get("client_id") != m.ClientID {
		return nil, errors.New("unknown client_id")
	}
	if q.Get("response_type") != "code" {
		return nil, fmt.Errorf("unsupported response_type %q", q.Get("response_type"))
	}
	if q.Get("code_challenge") == "" || q.Get("code_challenge_method") != "S256" {
		return nil, errors.New("S256 code challenge required")
	}
	if !strings.Contains(" "+q.Get("scope")+" ", " openid ") {
		return nil, errors.New("openid scope required")
	}
	redirect, err := url.Parse(q.Get("redirect_uri"))
	if err != nil || redirect.Scheme == "" || redirect.Host == "" {
		return nil, errors.New("invalid redirect_uri")
	}

	code := randomString(24)
	m.mu.Lock()
	m.codes[code] = &issuedCode{
		redirectURI: q.Get("redirect_uri"),
		challenge:   q.Get("code_challenge"),
		user:        m.user,
		expiresAt:   time.Now().Add(5 * time.Minute),
	}
	m.mu.Unlock()

	params := redirect.Query()
	params.Set("code", code)
	params.Set("state", q.Get("state"))
	redirect.RawQuery = params.Encode()
	return redirect, nil
}

func (m *MockIdP) handleDiscovery(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"issuer":                                m.Issuer,
		"authorization_endpoint":                m.Issuer + "/authorize",
		"token_endpoint":                        m.Issuer + "/token",
		"userinfo_endpoint":                     m.Issuer + "/userinfo",
		"jwks_uri":                              m.Issuer + "/jwks",
		"response_types_supported":              []string{"code"},
		"subject_types_supported":               []string{"public"},
		"id_token_signing_alg_values_supported": []string{"RS256"},
		"scopes_supported":                      []string{"openid", "profile", "email"},
		"token_endpoint_auth_methods_supported": []string{"client_secret_basic", "client_secret_post"},
		"code_challenge_methods_supported":      []string{"S256"},
		"claims_supported": []string{
			"sub", "iss", "aud", "exp", "iat",
			"name", "email", "email_verified", "picture",
		},
	})
}

func (m *MockIdP) handleJWKS(w http.ResponseWriter, _ *http.Request) {
	pub := m.key.PublicKey
	writeJSON(w, http.StatusOK, map[string]any{
		"keys": []map[string]any{{
			"kty": "RSA",
			"kid": m.keyID,
			"use": "sig",
			"alg": "RS256",
			"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}},
	})
}

func (m *MockIdP) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	redirect, err := m.authorize(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, redirect.String(), http.StatusFound)
}

func (m *MockIdP) handleToken(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.tokenRequests++
	m.mu.Unlock()

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		tokenError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	clientID, clientSecret, ok := r.BasicAuth()
	if ok {
		clientID, _ = url.QueryUnescape(clientID)
		clientSecret, _ = url.QueryUnescape(clientSecret)
	} else {
		clientID, clientSecret = r.PostForm.Get("client_id"), r.PostForm.Get("client_secret")
	}
	if clientID != m.ClientID || clientSecret != m.ClientSecret {
		tokenError(w, http.StatusUnauthorized, "invalid_client")
		return
	}
	if r.PostForm.Get("grant_type") != "authorization_code" {
		tokenError(w, http.StatusBadRequest, "unsupported_grant_type")
		return
	}

	code := r.PostForm.Get("code")
	m.mu.Lock()
	issued, found := m.codes[code]
	delete(m.codes, code)
	m.mu.Unlock()

	switch {
	case !found, time.Now().After(issued.expiresAt):
		tokenError(w, http.StatusBadRequest, "invalid_grant")
		return
	case r.PostForm.Get("redirect_uri") != issued.redirectURI:
		tokenError(w, http.StatusBadRequest, "invalid_grant")
		return
	case s256(r.PostForm.Get("code_verifier")) != issued.challenge:
		tokenError(w, http.StatusBadRequest, "invalid_grant")
		return
	}

	idToken, err := m.signIDToken(issued.user)
	if err != nil {
		tokenError(w, http.StatusInternalServerError, "server_error")
		return
	}
	accessToken := randomString(32)
	m.mu.Lock()
	m.accessTokens[accessToken] = issued.user
	m.mu.Unlock()

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": accessToken,
		"token_type":   "Bearer",
		"expires_in":   3600,
		"id_token":     idToken,
	})
}

func (m *MockIdP) handleUserinfo(w http.ResponseWriter, r *http.Request) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	m.mu.Lock()
	user, found := m.accessTokens[token]
	m.mu.Unlock()
	if !ok || !found {
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sub":            user.Subject,
		"email":          user.Email,
		"email_verified": user.EmailVerified,
		"name":           user.Name,
		"picture":        user.Picture,
	})
}

// signIDToken issues an RS256 ID token. No nonce is included because the
// authorize request carries none.
func (m *MockIdP) signIDToken(u IdPUser) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": m.Issuer,
		"sub": u.Subject,
		"aud": m.ClientID,
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}
	if !u.UserinfoOnly {
		claims["email"] = u.Email
		claims["email_verified"] = u.EmailVerified
		claims["name"] = u.Name
		claims["picture"] = u.Picture
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = m.keyID
	return token.SignedString(m.key)
}

func s256(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func tokenError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func randomString(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
