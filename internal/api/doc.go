// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

/*
Package api provides the HTTP layer for Launchpad.

It serves the public marketing-site endpoints (sign-up, contact form, posts,
checkout), the payment processor webhook and the admin dashboard API, plus the
gated dashboard pages themselves.

Key Components:

  - Router: chi routes and middleware stack
  - Handler: request handlers, split by resource across handlers_*.go
  - Response formatting: the {success, data | error, metadata} envelope
  - Error mapping: apperr sentinels to HTTP status and error code
  - Rate limiting: per-IP budgets via go-chi/httprate
  - CORS: go-chi/cors with credentials, never a wildcard origin

Route Groups:

1. Public (/api/auth/*, POST /api/contact, GET /api/posts, /api/checkout)
2. Webhook (POST /api/webhooks): signature verified, answers {"received": true}
3. Admin (/api/users, /api/payments, /api/stats, /api/outbox, GET and PATCH
/api/contact, POST and PATCH /api/posts): casbin policy, admin role required
4. Live events (/api/events/ws): WebSocket behind the admin gate cookie
5. Pages: /admin/login (public) and /dashboard/* (admin gate redirect)
6. Observability: /health, /metrics, /swagger/*

Access control runs in three steps on every /api request. AdminGate.Identify
and SessionIssuer.Authenticate attach claims without rejecting, then the
authz middleware resolves a role and enforces the policy. Anonymous denials
are 401 and authenticated denials are 403.

Usage Example:

	h := api.NewHandler(api.Deps{
	    Config:   cfg,
	    Store:    st,
	    Sessions: sessions,
	    Admin:    gate,
	    Verifier: auth.NewCredentialVerifier(st.Users()),
	    Lockout:  lockout,
	    Payments: payments.NewClient(cfg.Payments, cfg.Server.BaseURL),
	    Webhooks: payments.NewWebhookVerifier(cfg.Payments.WebhookSecret, cfg.Payments.WebhookTolerance),
	    Outbox:   queue,
	    Uploader: uploader,
	    Hub:      hub,
	})
	router := api.NewRouter(cfg, h, enforcer)
	srv := &http.Server{Addr: cfg.Server.Addr(), Handler: router.Handler()}

See handlers_*.go for per-endpoint swagger annotations.
*/
package api
