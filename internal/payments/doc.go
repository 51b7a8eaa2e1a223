// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

/*
Package payments talks to a Stripe-compatible payment processor.

The Client creates hosted checkout sessions and reads charges and the account
balance for the admin dashboard. Every call runs through a circuit breaker
(sony/gobreaker) with a per-request timeout, so a slow or failing processor
trips quickly instead of tying up request goroutines.

Responses are parsed with tidwall/gjson; only the handful of fields the
dashboard shows are extracted.

# Webhooks

WebhookVerifier checks the Stripe-Signature header (HMAC-SHA256 over
"<timestamp>.<body>") and the timestamp tolerance before an event is parsed.
An event that fails verification must not cause any side effect.

# Fallback Data

FallbackPayments and FallbackStats return fixed placeholder data. The API
layer serves them, marked fallback=true, when the processor is unavailable.
*/
package payments
