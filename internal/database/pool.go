// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

// Package database owns the process-wide MongoDB client.
//
// A Pool connects lazily: the first Ensure call dials and pings the server,
// later calls return the same *mongo.Client. A failed attempt caches nothing,
// so the next caller tries again. The pool is constructed once in main,
// injected into the stores, and closed by the supervisor on shutdown.
package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/tomtom215/launchpad/internal/apperr"
	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/metrics"
)

// Collection names.
const (
	UsersCollection    = "users"
	PostsCollection    = "posts"
	ContactsCollection = "contacts"
)

// Dialer opens and verifies a client. Tests replace it to avoid a server.
type Dialer func(ctx context.Context, cfg config.DatabaseConfig) (*mongo.Client, error)

// Pool lazily connects to MongoDB and caches the client.
type Pool struct {
	cfg    config.DatabaseConfig
	dial   Dialer
	client atomic.Pointer[mongo.Client]
	mu     sync.Mutex

	// bootstrap creates indexes. It is retried on later Ensure calls, at most
	// once per retryEvery, until it succeeds.
	bootstrap     func(ctx context.Context, db *mongo.Database) error
	indexed       atomic.Bool
	retryEvery    time.Duration
	lastBootstrap time.Time
}

// Index bootstrap timing.
const (
	bootstrapTimeout      = 15 * time.Second
	DefaultBootstrapRetry = 30 * time.Second
)

// Option configures a Pool.
type Option func(*Pool)

// WithDialer overrides how the client is opened.
func WithDialer(d Dialer) Option {
	return func(p *Pool) { p.dial = d }
}

// WithoutIndexes skips index creation on first connect.
func WithoutIndexes() Option {
	return func(p *Pool) { p.bootstrap = nil }
}

// WithBootstrap replaces index creation.
func WithBootstrap(fn func(ctx context.Context, db *mongo.Database) error) Option {
	return func(p *Pool) { p.bootstrap = fn }
}

// WithBootstrapRetry sets the minimum gap between index creation attempts.
func WithBootstrapRetry(d time.Duration) Option {
	return func(p *Pool) { p.retryEvery = d }
}

// NewPool returns an unconnected pool. Nothing is dialed until Ensure.
func NewPool(cfg config.DatabaseConfig, opts ...Option) *Pool {
	p := &Pool{
		cfg:       cfg,
		dial:       dialMongo,
		bootstrap:  EnsureIndexes,
		retryEvery: DefaultBootstrapRetry,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ensure returns the cached client, connecting on first use.
//
// It returns an error wrapping apperr.ErrConfiguration when no connection
// string is configured, and apperr.ErrConnectivity when the server cannot be
// reached or rejects the credentials. Index creation failures do not fail
// Ensure; they are retried by later calls and reported by IndexesReady.
func (p *Pool) Ensure(ctx context.Context) (*mongo.Client, error) {
	if c := p.client.Load(); c != nil && p.IndexesReady() {
		return c, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	client := p.client.Load()
	if client == nil {
		if strings.TrimSpace(p.cfg.URI) == "" {
			metrics.DBConnectAttempts.WithLabelValues("config_error").Inc()
			logging.Error().Msg("MONGODB_URI is not set; database features are unavailable")
			return nil, apperr.Configuration("MONGODB_URI")
		}

		start := time.Now()
		c, err := p.dial(ctx, p.cfg)
		if err != nil {
			metrics.DBConnectAttempts.WithLabelValues("connect_error").Inc()
			logConnectFailure(err)
			return nil, fmt.Errorf("%w: %w", apperr.ErrConnectivity, err)
		}
		metrics.DBConnectAttempts.WithLabelValues("success").Inc()

		logging.Info().
			Str("database", p.cfg.Name).
			Dur("elapsed", time.Since(start)).
			Msg("Connected to MongoDB")

		p.client.Store(c)
		client = c
	}

	p.runBootstrap(ctx, client)
	return client, nil
}

// runBootstrap creates the indexes on a context detached from the caller, so
// a canceled request cannot leave the unique email index missing. Caller
// holds p.mu.
func (p *Pool) runBootstrap(ctx context.Context, client *mongo.Client) {
	if p.IndexesReady() {
		return
	}
	now := time.Now()
	if !p.lastBootstrap.IsZero() && now.Sub(p.lastBootstrap) < p.retryEvery {
		return
	}
	p.lastBootstrap = now

	bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), bootstrapTimeout)
	defer cancel()
	if err := p.bootstrap(bctx, client.Database(p.cfg.Name)); err != nil {
		logging.Warn().Err(err).Dur("retry_in", p.retryEvery).Msg("Failed to create MongoDB indexes")
		return
	}
	p.indexed.Store(true)
	logging.Debug().Msg("MongoDB indexes in place")
}

// IndexesReady reports whether index creation has succeeded (or is disabled).
// Writes that rely on a unique index must not run before it is true.
func (p *Pool) IndexesReady() bool {
	return p.bootstrap == nil || p.indexed.Load()
}

// Database returns the configured database, connecting on first use.
func (p *Pool) Database(ctx context.Context) (*mongo.Database, error) {
	c, err := p.Ensure(ctx)
	if err != nil {
		return nil, err
	}
	return c.Database(p.cfg.Name), nil
}

// Collection is shorthand for Database(ctx).Collection(name).
func (p *Pool) Collection(ctx context.Context, name string) (*mongo.Collection, error) {
	db, err := p.Database(ctx)
	if err != nil {
		return nil, err
	}
	return db.Collection(name), nil
}

// Connected reports whether a client has been cached.
func (p *Pool) Connected() bool {
	return p.client.Load() != nil
}

// Ping checks the cached client, connecting first if needed.
func (p *Pool) Ping(ctx context.Context) error {
	c, err := p.Ensure(ctx)
	if err != nil {
		return err
	}
	if err := c.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrConnectivity, err)
	}
	return nil
}

// Close disconnects the cached client, if any.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	c := p.client.Swap(nil)
	if c == nil {
		return nil
	}
	if err := c.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect mongodb: %w", err)
	}
	logging.Info().Msg("Disconnected from MongoDB")
	return nil
}

func dialMongo(ctx context.Context, cfg config.DatabaseConfig) (*mongo.Client, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout).
		SetAppName("launchpad")

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// EnsureIndexes creates the indexes the stores rely on. The unique email index
// is what makes duplicate sign-ups fail at the store level.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("email_unique")},
		},
		PostsCollection: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		ContactsCollection: {
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
	}
	var errs []error
	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", coll, err))
		}
	}
	return errors.Join(errs...)
}

// Diagnosis categories used in connection failure logs.
const (
	HintDNS         = "dns"
	HintCredentials = "credentials"
	HintAllowList   = "ip_allow_list"
	HintUnknown     = "unknown"
)

// Diagnose guesses why a connection attempt failed.
func Diagnose(err error) (category, hint string) {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "no such host"), strings.Contains(msg, "querysrv"),
		strings.Contains(msg, "lookup "), strings.Contains(msg, "server misbehaving"):
		return HintDNS, "DNS resolution failed: check the cluster hostname in MONGODB_URI and that SRV lookups are allowed"
	case strings.Contains(msg, "authentication failed"), strings.Contains(msg, "auth error"),
		strings.Contains(msg, "bad auth"), strings.Contains(msg, "unable to authenticate"):
		return HintCredentials, "authentication failed: check the username and password in MONGODB_URI (URL-encode special characters)"
	case strings.Contains(msg, "server selection"), strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "i/o timeout"), errors.Is(err, context.DeadlineExceeded):
		return HintAllowList, "server unreachable: check that this host's IP is on the cluster's network access list"
	default:
		return HintUnknown, "check MONGODB_URI and cluster status"
	}
}

func logConnectFailure(err error) {
	category, hint := Diagnose(err)
	logging.Error().
		Err(err).
		Str("cause", category).
		Str("hint", hint).
		Msg("MongoDB connection failed")
}
