// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

/*
Package outbox persists outgoing email and delivers it in the background.

Request handlers never send mail directly. They enqueue a models.OutboxJob
whose ID is an idempotency key (for example "payment:<event id>"), so a
processor re-delivering the same webhook produces at most one email.

Components:

  - BadgerStore: job persistence in the embedded badger database
  - Dispatcher: suture service that polls due jobs, rate limits sends
    (golang.org/x/time/rate) and retries transient failures with
    exponential backoff
  - EmailChannel: SMTP Sender
  - Janitor: cron-driven cleanup (robfig/cron) that purges finished jobs
    and requeues jobs stuck in "sending" after a crash

Job lifecycle:

	pending --claim--> sending --ok--> sent
	                      |--transient, attempts left--> pending (next_attempt = now + backoff)
	                      `--permanent or exhausted--> failed
*/
package outbox
