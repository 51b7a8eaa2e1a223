// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

// Package badgerstore implements the store repositories on an embedded badger
// database. It backs DATABASE_DRIVER=badger for local development and gives
// handler tests a real store without a MongoDB server.
//
// Keys:
//
//	user:<id>            -> models.User (JSON, hash included)
//	user_email:<email>   -> <id>
//	post:<id>            -> models.Post
//	contact:<id>         -> models.ContactMessage
package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/launchpad/internal/apperr"
	"github.com/tomtom215/launchpad/internal/store"
)

const (
	prefixUser      = "user:"
	prefixUserEmail = "user_email:"
	prefixPost      = "post:"
	prefixContact   = "contact:"
)

// Store implements store.Store.
type Store struct {
	db    *badger.DB
	owned bool
	now   func() time.Time
	newID func() string
	users *userRepo
	posts *postRepo
	msgs  *contactRepo
}

var _ store.Store = (*Store)(nil)

// New wraps an open badger database. Close closes db only when owned is true.
func New(db *badger.DB, owned bool) *Store {
	s := &Store{
		db:    db,
		owned: owned,
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.NewString() },
	}
	s.users = &userRepo{s: s}
	s.posts = &postRepo{s: s}
	s.msgs = &contactRepo{s: s}
	return s
}

// Users implements store.Store.
func (s *Store) Users() store.Users { return s.users }

// Posts implements store.Store.
func (s *Store) Posts() store.Posts { return s.posts }

// Contacts implements store.Store.
func (s *Store) Contacts() store.Contacts { return s.msgs }

// Ping implements store.Store.
func (s *Store) Ping(context.Context) error {
	if s.db.IsClosed() {
		return fmt.Errorf("%w: badger database is closed", apperr.ErrConnectivity)
	}
	return nil
}

// Close implements store.Store.
func (s *Store) Close(context.Context) error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

func getJSON(txn *badger.Txn, key string, v interface{}) error {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return apperr.ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func setJSON(txn *badger.Txn, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set([]byte(key), data)
}

// scan decodes every value under prefix with decode.
func scan(txn *badger.Txn, prefix string, decode func(val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		if err := it.Item().Value(decode); err != nil {
			return err
		}
	}
	return nil
}

func count(txn *badger.Txn, prefix string) int64 {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	var n int64
	for it.Rewind(); it.Valid(); it.Next() {
		n++
	}
	return n
}
