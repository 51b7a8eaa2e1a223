// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/launchpad/internal/apperr"
	"github.com/tomtom215/launchpad/internal/models"
	"github.com/tomtom215/launchpad/internal/store"
)

// CredentialVerifier checks email/password pairs against the user store.
type CredentialVerifier struct {
	users store.Users
}

// NewCredentialVerifier returns a verifier over users.
func NewCredentialVerifier(users store.Users) *CredentialVerifier {
	return &CredentialVerifier{users: users}
}

// Verify returns the user when password matches. Unknown emails, OAuth-only
// accounts and wrong passwords all yield ErrInvalidCredentials. Store failures
// other than not-found are returned as-is.
func (v *CredentialVerifier) Verify(ctx context.Context, email, password string) (*models.User, error) {
	user, err := v.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			burnComparison(password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.HasPassword() {
		burnComparison(password)
		return nil, ErrInvalidCredentials
	}
	if !comparePassword(*user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Identity is the profile an external provider vouches for.
type Identity struct {
	Provider string
	Subject  string
	Email    string
	// EmailVerified is the provider's email_verified claim.
	EmailVerified bool
	Name          string
	Picture       string
}

// FederatedSignIn returns the local user for identity, creating one with a
// verified email and no password on first sign-in. Accounts are matched by
// email, so an identity whose email the provider has not verified is refused.
func FederatedSignIn(ctx context.Context, users store.Users, identity Identity) (*models.User, error) {
	if identity.Email == "" {
		return nil, apperr.Validation("identity provider returned no email")
	}
	if !identity.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	user, err := users.FindByEmail(ctx, identity.Email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	verified := time.Now().UTC()
	user = &models.User{
		Email:         identity.Email,
		Name:          identity.Name,
		Image:         identity.Picture,
		EmailVerified: &verified,
		Role:          models.RoleUser,
	}
	if err := users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent first sign-in.
		if errors.Is(err, apperr.ErrConflict) {
			return users.FindByEmail(ctx, identity.Email)
		}
		return nil, err
	}
	return user, nil
}
