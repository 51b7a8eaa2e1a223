// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package auth

import (
	"errors"
	"fmt"

	"github.com/tomtom215/launchpad/internal/apperr"
)

var (
	// ErrInvalidCredentials is returned for an unknown email, an account
	// without a password, and a wrong password alike.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", apperr.ErrAuth)

	// ErrNoSession means the request carried no usable session or admin token.
	ErrNoSession = fmt.Errorf("%w: not signed in", apperr.ErrAuth)

	// ErrInvalidToken covers bad signatures, wrong audience and expiry.
	ErrInvalidToken = fmt.Errorf("%w: invalid token", apperr.ErrAuth)

	// ErrOIDCState is returned when a callback's state is unknown or expired.
	ErrOIDCState = fmt.Errorf("%w: invalid or expired oidc state", apperr.ErrAuth)

	// ErrEmailNotVerified is returned for a federated identity whose email the
	// provider does not vouch for.
	ErrEmailNotVerified = fmt.Errorf("%w: email not verified by identity provider", apperr.ErrAuth)

	// ErrLockoutNotFound is returned by LockoutStore for unknown subjects.
	ErrLockoutNotFound = errors.New("lockout entry not found")
)
