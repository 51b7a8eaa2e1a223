// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/zitadel/oidc/v3/pkg/client/rp"
	"github.com/zitadel/oidc/v3/pkg/oidc"

	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/logging"
)

// DefaultStateTTL bounds how long a user may sit on the provider's login page.
const DefaultStateTTL = 10 * time.Minute

// OIDCProvider runs the authorization code flow with PKCE against one issuer.
type OIDCProvider struct {
	rp     rp.RelyingParty
	states *StateStore
}

// NewOIDCProvider performs discovery against cfg.IssuerURL.
func NewOIDCProvider(ctx context.Context, cfg config.OIDCConfig) (*OIDCProvider, error) {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, oidc.ScopeProfile, oidc.ScopeEmail}
	}

	relyingParty, err := rp.NewRelyingPartyOIDC(ctx,
		cfg.IssuerURL,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.RedirectURL,
		scopes,
		rp.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}),
	)
	if err != nil {
		return nil, fmt.Errorf("create relying party: %w", err)
	}

	return &OIDCProvider{
		rp:     relyingParty,
		states: NewStateStore(DefaultStateTTL),
	}, nil
}

// AuthURL stores a fresh state and PKCE verifier and returns the provider's
// authorization URL.
func (p *OIDCProvider) AuthURL(postLoginRedirect string) (string, error) {
	state, err := randomToken(32)
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	verifier, err := randomToken(32)
	if err != nil {
		return "", fmt.Errorf("generate code verifier: %w", err)
	}
	p.states.Put(state, PendingLogin{
		CodeVerifier: verifier,
		Redirect:     postLoginRedirect,
	})

	return rp.AuthURL(state, p.rp, rp.WithCodeChallenge(oidc.NewSHACodeChallenge(verifier))), nil
}

// Exchange consumes state, redeems code and returns the verified identity
// together with the redirect recorded by AuthURL.
func (p *OIDCProvider) Exchange(ctx context.Context, code, state string) (*Identity, string, error) {
	pending, ok := p.states.Take(state)
	if !ok {
		return nil, "", ErrOIDCState
	}

	tokens, err := rp.CodeExchange[*oidc.IDTokenClaims](ctx, code, p.rp, rp.WithCodeVerifier(pending.CodeVerifier))
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("OIDC token exchange failed")
		return nil, "", fmt.Errorf("%w: token exchange: %v", ErrInvalidCredentials, err)
	}
	if tokens.IDTokenClaims == nil {
		return nil, "", fmt.Errorf("%w: provider returned no id token", ErrInvalidCredentials)
	}

	claims := tokens.IDTokenClaims
	identity := &Identity{
		Provider:      p.rp.Issuer(),
		Subject:       claims.Subject,
		Email:         claims.Email,
		EmailVerified: bool(claims.EmailVerified),
		Name:          claims.Name,
		Picture:       claims.Picture,
	}
	if identity.Email == "" {
		info, err := rp.Userinfo[*oidc.UserInfo](ctx, tokens.AccessToken, tokens.TokenType, claims.Subject, p.rp)
		if err == nil {
			identity.Email = info.Email
			identity.EmailVerified = bool(info.EmailVerified)
			if identity.Name == "" {
				identity.Name = info.Name
			}
		}
	}
	return identity, pending.Redirect, nil
}

// PendingLogin is what AuthURL remembers per state.
type PendingLogin struct {
	CodeVerifier string
	Redirect     string
	expiresAt    time.Time
}

// StateStore holds single-use OIDC states in memory.
type StateStore struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.Mutex
	pending map[string]PendingLogin
}

// NewStateStore returns a store whose entries expire after ttl.
func NewStateStore(ttl time.Duration) *StateStore {
	return &StateStore{
		ttl:     ttl,
		now:     time.Now,
		pending: make(map[string]PendingLogin),
	}
}

// Put records login under state and prunes expired entries.
func (s *StateStore) Put(state string, login PendingLogin) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, v := range s.pending {
		if now.After(v.expiresAt) {
			delete(s.pending, k)
		}
	}
	login.expiresAt = now.Add(s.ttl)
	s.pending[state] = login
}

// Take removes and returns the login for state. Expired states are rejected.
func (s *StateStore) Take(state string) (PendingLogin, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	login, ok := s.pending[state]
	if !ok {
		return PendingLogin{}, false
	}
	delete(s.pending, state)
	if s.now().After(login.expiresAt) {
		return PendingLogin{}, false
	}
	return login, true
}

// Len returns the number of outstanding states.
func (s *StateStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
