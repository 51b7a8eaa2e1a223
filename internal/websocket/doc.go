// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

/*
Package websocket pushes live events to connected admin dashboards.

It uses gorilla/websocket with a hub-client architecture: the Hub owns the
set of clients and fans each broadcast out to their send queues; every
Client runs a read pump (ping handling, disconnect detection) and a write
pump (JSON frames and keepalive pings).

Message types:

  - contact.created: a visitor submitted the contact form
  - post.created: an admin published or drafted a post
  - payment.completed: a paid checkout webhook was accepted
  - outbox.updated: an outbox email changed delivery state
  - ping / pong: client keepalive

The hub runs under suture via RunWithContext and closes every client on
shutdown. Broadcasts never block the caller; when the queue is full the
event is dropped and logged.

Only admins reach the upgrade endpoint (/api/events/ws); Handler also
checks the Origin header against the CORS allow-list.
*/
package websocket
