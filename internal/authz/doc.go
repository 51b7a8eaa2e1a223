// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

// Package authz decides which role may call which API route, using a Casbin
// RBAC model over (role, path, method).
//
// Roles are resolved per request by the middleware:
//
//   - admin: a valid admin-auth cookie
//   - user: a valid session cookie
//   - anonymous: everything else
//
// Roles inherit (admin > user > anonymous). The default model and policy are
// embedded; SECURITY_AUTHZ_POLICY_PATH points at a replacement policy CSV.
//
// Denials are 401 for anonymous callers, so clients know to sign in, and 403
// for authenticated callers who lack the role.
package authz
