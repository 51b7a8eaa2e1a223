// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

// Package auth implements the two authentication mechanisms the site uses.
//
// # User sessions
//
// Registered users sign in with email and password (CredentialVerifier) or
// through an external OpenID Connect provider (OIDCProvider followed by
// FederatedSignIn). Either way SessionIssuer mints a stateless HS256 JWT and
// stores it in the "session-token" cookie. SessionIssuer.Authenticate
// re-validates the token on every request and places the claims in the request
// context. Tokens are not revocable: sign-out clears the cookie, and a copied
// token remains valid until it expires.
//
// # Admin gate
//
// The admin dashboard is guarded separately by AdminGate. A single admin
// email/password pair comes from configuration and is compared in constant
// time. A successful sign-in sets the "admin-auth" cookie to a signed token
// with audience "admin" whose subject is the admin email, so handlers can log
// which admin acted. RequireAdminPage redirects browsers to the login page
// with a callbackUrl; RequireAdminAPI answers JSON clients with 401.
//
// # Lockout
//
// LockoutManager counts failed sign-ins per subject (an email address) inside
// a sliding window and locks the subject for a configured duration once the
// limit is hit. Subsequent lockouts double the duration up to 24 hours.
package auth
