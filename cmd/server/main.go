// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/tomtom215/launchpad/docs" // swagger docs
	"github.com/tomtom215/launchpad/internal/api"
	"github.com/tomtom215/launchpad/internal/auth"
	"github.com/tomtom215/launchpad/internal/authz"
	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/database"
	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/outbox"
	"github.com/tomtom215/launchpad/internal/payments"
	"github.com/tomtom215/launchpad/internal/store"
	"github.com/tomtom215/launchpad/internal/store/badgerstore"
	"github.com/tomtom215/launchpad/internal/store/mongostore"
	"github.com/tomtom215/launchpad/internal/supervisor"
	"github.com/tomtom215/launchpad/internal/supervisor/services"
	"github.com/tomtom215/launchpad/internal/upload"
	ws "github.com/tomtom215/launchpad/internal/websocket"
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("database_driver", cfg.Database.Driver).
		Str("base_url", cfg.Server.BaseURL).
		Bool("payments", cfg.Payments.Enabled).
		Bool("email", cfg.Email.Enabled).
		Bool("oidc", cfg.Security.OIDC.Enabled).
		Msg("Starting Launchpad with supervisor tree")
	logging.Debug().Str("config", cfg.String()).Msg("Effective configuration")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout + 5*time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// ========================
	// Data layer
	// ========================
	st, err := openStore(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open store")
	}
	tree.AddDataService(services.NewCloserService("store", st, 10*time.Second))

	outboxDB, err := database.OpenBadger(cfg.Outbox.Path)
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Outbox.Path).Msg("Failed to open outbox")
	}
	tree.AddDataService(services.NewCloserService("outbox-db", services.CloseFunc(outboxDB.Close), 10*time.Second))
	queue := outbox.NewBadgerStore(outboxDB)

	// ========================
	// Messaging layer
	// ========================
	hub := ws.NewHub()
	tree.AddMessagingService(hub)

	if cfg.Email.Enabled {
		dispatcher := outbox.NewDispatcher(queue, outbox.NewEmailChannel(cfg.Email), cfg.Outbox)
		dispatcher.OnUpdate(hub.BroadcastOutboxUpdated)
		tree.AddMessagingService(dispatcher)
		logging.Info().Str("smtp_host", cfg.Email.SMTPHost).Msg("Outbox dispatcher enabled")
	} else {
		logging.Warn().Msg("Email disabled: notifications are queued but not delivered")
	}

	lockout := auth.NewLockoutManager(cfg.Security.Lockout, nil)
	lockout.SetOnLockout(func(e auth.LockoutEntry) {
		logging.Security("account_locked", e.Subject, "", "too many failed sign-in attempts")
	})
	janitor := outbox.NewJanitor(queue, cfg.Outbox)
	janitor.Also(func(ctx context.Context) {
		if n, err := lockout.Cleanup(ctx); err != nil {
			logging.Warn().Err(err).Msg("Lockout cleanup failed")
		} else if n > 0 {
			logging.Debug().Int("removed", n).Msg("Expired lockout entries removed")
		}
	})
	tree.AddMessagingService(janitor)

	// ========================
	// API layer
	// ========================
	sessions, err := auth.NewSessionIssuer(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize session issuer")
	}
	gate, err := auth.NewAdminGate(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize admin gate")
	}
	if !gate.Configured() {
		logging.Warn().Msg("ADMIN_EMAIL/ADMIN_PASSWORD not set: the admin dashboard is unreachable")
	}

	var oidc *auth.OIDCProvider
	if cfg.Security.OIDC.Enabled {
		discoverCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		oidc, err = auth.NewOIDCProvider(discoverCtx, cfg.Security.OIDC)
		cancel()
		if err != nil {
			logging.Error().Err(err).Msg("OIDC discovery failed, federated sign-in disabled")
			oidc = nil
		}
	}

	enforcer, err := authz.NewEnforcer(cfg.Security.AuthzPolicyPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authorization")
	}
	defer enforcer.Close()

	uploader, err := upload.NewFromConfig(ctx, cfg.Upload)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize upload backend")
	}

	paymentClient := payments.NewClient(cfg.Payments, cfg.Server.BaseURL)
	if !paymentClient.Configured() {
		logging.Warn().Msg("STRIPE_SECRET_KEY not set: payments and stats serve placeholder data")
	}

	handler := api.NewHandler(api.Deps{
		Config:   cfg,
		Store:    st,
		Sessions: sessions,
		Admin:    gate,
		Verifier: auth.NewCredentialVerifier(st.Users()),
		Lockout:  lockout,
		OIDC:     oidc,
		Payments: paymentClient,
		Webhooks: payments.NewWebhookVerifier(cfg.Payments.WebhookSecret, cfg.Payments.WebhookTolerance),
		Outbox:   queue,
		Uploader: uploader,
		Hub:      hub,
	})
	router := api.NewRouter(cfg, handler, enforcer)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.Handler(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	if err := tree.Run(ctx); err != nil {
		logging.Error().Err(err).Msg("Supervisor tree stopped with error")
		os.Exit(1)
	}
	logging.Info().Msg("Launchpad stopped")
}

// openStore selects the document store by driver. The mongo pool connects
// lazily, so an unreachable database does not prevent startup.
func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Database.Driver {
	case config.DriverBadger:
		db, err := database.OpenBadger(cfg.Database.BadgerPath)
		if err != nil {
			return nil, err
		}
		logging.Info().Str("path", cfg.Database.BadgerPath).Msg("Using embedded badger store")
		return badgerstore.New(db, true), nil
	default:
		pool := database.NewPool(cfg.Database)
		logging.Info().Str("database", cfg.Database.Name).Msg("Using mongo store")
		return mongostore.New(pool), nil
	}
}
