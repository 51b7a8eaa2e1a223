// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

/*
Package supervisor runs Launchpad's long-lived services under a suture v4
tree with automatic restart and graceful shutdown.

# Tree

	RootSupervisor ("launchpad")
	├── DataSupervisor ("data-layer")
	│   ├── CloserService "database-pool"
	│   └── CloserService "outbox-store"
	├── MessagingSupervisor ("messaging-layer")
	│   ├── websocket.Hub
	│   ├── outbox.Dispatcher (when email is enabled)
	│   └── outbox.Janitor
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Each layer counts failures independently, so a dispatcher stuck in a crash
loop backs off on its own while the API keeps serving.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddMessagingService(hub)
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return tree.Run(ctx)

Supervisor events (restarts, backoff, timeouts) are logged through
sutureslog into the zerolog-backed slog logger.
*/
package supervisor
