// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

// Package mongostore implements the store repositories on MongoDB. Every
// operation goes through database.Pool.Collection, so the first request after
// startup (or after a failed connect) establishes the connection.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/tomtom215/launchpad/internal/apperr"
	"github.com/tomtom215/launchpad/internal/database"
	"github.com/tomtom215/launchpad/internal/metrics"
	"github.com/tomtom215/launchpad/internal/store"
)

// Store implements store.Store on a database.Pool.
type Store struct {
	pool     *database.Pool
	now      func() time.Time
	users    *userRepo
	posts    *postRepo
	contacts *contactRepo
}

var _ store.Store = (*Store)(nil)

// New returns a store backed by pool. The pool is not dialed until first use.
func New(pool *database.Pool) *Store {
	s := &Store{
		pool: pool,
		now:  func() time.Time { return time.Now().UTC() },
	}
	s.users = &userRepo{s: s}
	s.posts = &postRepo{s: s}
	s.contacts = &contactRepo{s: s}
	return s
}

// Users implements store.Store.
func (s *Store) Users() store.Users { return s.users }

// Posts implements store.Store.
func (s *Store) Posts() store.Posts { return s.posts }

// Contacts implements store.Store.
func (s *Store) Contacts() store.Contacts { return s.contacts }

// Ping implements store.Store.
func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Close implements store.Store.
func (s *Store) Close(ctx context.Context) error { return s.pool.Close(ctx) }

func (s *Store) collection(ctx context.Context, name string) (*mongo.Collection, error) {
	return s.pool.Collection(ctx, name)
}

// wrapErr maps driver errors onto the apperr taxonomy. Errors that already
// carry a sentinel (from Pool.Ensure) pass through unchanged.
func wrapErr(collection, op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperr.ErrNotFound
	case errors.Is(err, apperr.ErrConfiguration), errors.Is(err, apperr.ErrConnectivity):
		return err
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: duplicate key in %s", apperr.ErrConflict, collection)
	}
	metrics.DBOperationErrors.WithLabelValues(collection, op).Inc()
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return fmt.Errorf("%w: %s %s: %w", apperr.ErrConnectivity, collection, op, err)
	}
	return apperr.Upstream("mongodb", fmt.Errorf("%s %s: %w", collection, op, err))
}

// parseID converts a hex id; malformed ids cannot exist, so they are NotFound.
func parseID(id string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.ObjectID{}, apperr.ErrNotFound
	}
	return oid, nil
}
