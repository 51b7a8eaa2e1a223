// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

/*
Package main is the entry point for the Launchpad server.

Launchpad is the backend of a marketing site and its admin dashboard: account
sign-up and sign-in, a contact form, blog posts, hosted checkout, the payment
processor webhook, and the dashboard API that reads users, messages, payments
and stats.

# Application Architecture

The server runs as a Suture v4 supervisor tree:

	RootSupervisor ("launchpad")
	├── DataSupervisor ("data-layer")
	│   ├── store (mongo pool or embedded badger, closed on shutdown)
	│   └── outbox-db (badger, closed on shutdown)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocket Hub (dashboard live events)
	│   ├── Outbox Dispatcher (only when EMAIL_ENABLED=true)
	│   └── Outbox Janitor (cron: purge, requeue stale, lockout cleanup)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi router)

Component initialization order:

 1. Configuration: Koanf v2 (.env, config.yaml, environment)
 2. Logging: zerolog with JSON/console output
 3. Store: MongoDB (lazy pool) or badger
 4. Outbox: badger-backed notification queue
 5. Auth: session issuer, admin gate, lockout, optional OIDC
 6. Authorization: casbin policy
 7. Payments client, webhook verifier, upload backend
 8. HTTP Server: chi router and middleware stack

# Configuration

Core environment variables:

	# Server
	PORT=3857
	APP_URL=https://example.com
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console

	# Store
	DATABASE_DRIVER=mongo        # mongo or badger
	MONGODB_URI=mongodb://localhost:27017
	MONGODB_DATABASE=launchpad

	# Auth
	JWT_SECRET=<32+ chars>
	ADMIN_EMAIL=admin@example.com
	ADMIN_PASSWORD=<password>

	# Payments
	STRIPE_SECRET_KEY=sk_...
	STRIPE_WEBHOOK_SECRET=whsec_...

	# Email
	EMAIL_ENABLED=true
	SMTP_HOST=smtp.example.com SMTP_USERNAME=... SMTP_PASSWORD=...

Without STRIPE_SECRET_KEY the payments and stats endpoints serve placeholder
data marked fallback=true. Without EMAIL_ENABLED notifications are queued
in the outbox and never sent.

# Signal Handling

SIGINT and SIGTERM cancel the root context:

 1. The HTTP server stops accepting connections and drains in-flight requests
 2. WebSocket clients are disconnected
 3. The dispatcher and janitor stop between jobs
 4. The store and outbox database are closed
 5. Services that failed to stop in time are reported

# API Documentation

Swagger documentation is served at /swagger/index.html.

# See Also

  - internal/config: Configuration management
  - internal/supervisor: Process supervision
  - internal/api: HTTP handlers and routing
  - internal/outbox: Durable notification delivery
*/
package main
