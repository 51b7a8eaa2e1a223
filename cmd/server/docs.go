// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

// Package main provides the Launchpad HTTP server
//
// @title Launchpad API
// @version 1.0
// @description Backend for the marketing site and its admin dashboard.
// @description
// @description ## Authentication
// @description
// @description Site users sign in at `/api/auth/signin` and receive an HTTP-only
// @description session cookie. The admin dashboard uses a separate `admin-auth`
// @description cookie issued by `/api/admin-auth`.
// @description
// @description ## Rate Limiting
// @description
// @description Sign-in endpoints allow 5 requests per minute per IP, the contact form 10,
// @description everything else 100.
// @description
// @description ## Error Responses
// @description
// @description All error responses follow this format:
// @description ```json
// @description {
// @description   "success": false,
// @description   "error": {
// @description     "code": "VALIDATION_ERROR",
// @description     "message": "Human-readable error message",
// @description     "details": {}
// @description   },
// @description   "metadata": {
// @description     "timestamp": "2026-01-01T12:34:56Z"
// @description   }
// @description }
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/launchpad/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:3857
// @BasePath /api
// @schemes http https
//
// @securityDefinitions.apikey SessionCookie
// @in cookie
// @name session-token
//
// @securityDefinitions.apikey AdminCookie
// @in cookie
// @name admin-auth
//
// @tag.name auth
// @tag.description Site account sign-up, sign-in and sessions
//
// @tag.name contact
// @tag.description Contact form and admin inbox
//
// @tag.name posts
// @tag.description Blog posts
//
// @tag.name payments
// @tag.description Checkout, payment history, stats and the processor webhook
//
// @tag.name admin
// @tag.description Admin gate, users, outbox and live events
package main
