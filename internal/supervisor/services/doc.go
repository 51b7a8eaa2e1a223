// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

/*
Package services provides suture.Service wrappers for Launchpad components
whose lifecycle does not already match suture's Serve(ctx) pattern.

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Converts ListenAndServe to Serve
  - Configurable shutdown timeout for draining connections

Resource closer (CloserService):
  - Holds a resource (database pool, badger outbox) until shutdown
  - Calls Close with a bounded context when the tree stops

Components that already expose Serve(ctx) error and String() are added to the
tree directly: websocket.Hub, outbox.Dispatcher and outbox.Janitor.

# Example

	server := &http.Server{Addr: cfg.Server.Addr(), Handler: router}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	tree.AddDataService(services.NewCloserService("database-pool", pool, 5*time.Second))
*/
package services
