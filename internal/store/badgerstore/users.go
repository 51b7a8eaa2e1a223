// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/launchpad/internal/apperr"
	"github.com/tomtom215/launchpad/internal/models"
)

// storedUser persists the password hash, which models.User hides from JSON.
type storedUser struct {
	models.User
	Hash *string `json:"password_hash,omitempty"`
}

func (u *storedUser) toModel() *models.User {
	out := u.User
	out.PasswordHash = u.Hash
	return &out
}

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, u *models.User) error {
	u.Email = models.NormalizeEmail(u.Email)
	if u.ID == "" {
		u.ID = r.s.newID()
	}
	now := r.s.now()
	u.CreatedAt, u.UpdatedAt = now, now
	if u.Role == "" {
		u.Role = models.RoleUser
	}

	err := r.s.db.Update(func(txn *badger.Txn) error {
		emailKey := []byte(prefixUserEmail + u.Email)
		if _, err := txn.Get(emailKey); err == nil {
			return fmt.Errorf("%w: email already registered", apperr.ErrConflict)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set(emailKey, []byte(u.ID)); err != nil {
			return err
		}
		return setJSON(txn, prefixUser+u.ID, &storedUser{User: *u, Hash: u.PasswordHash})
	})
	if errors.Is(err, badger.ErrConflict) {
		// A concurrent transaction wrote the same email key.
		return fmt.Errorf("%w: email already registered", apperr.ErrConflict)
	}
	return err
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	var out *models.User
	err := r.s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixUserEmail + models.NormalizeEmail(email)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return apperr.ErrNotFound
		}
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		var su storedUser
		if err := getJSON(txn, prefixUser+string(id), &su); err != nil {
			return err
		}
		out = su.toModel()
		return nil
	})
	return out, err
}

func (r *userRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	var su storedUser
	err := r.s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, prefixUser+id, &su)
	})
	if err != nil {
		return nil, err
	}
	return su.toModel(), nil
}

func (r *userRepo) List(context.Context) ([]*models.User, error) {
	users := []*models.User{}
	err := r.s.db.View(func(txn *badger.Txn) error {
		return scan(txn, prefixUser, func(val []byte) error {
			var su storedUser
			if err := json.Unmarshal(val, &su); err != nil {
				return err
			}
			users = append(users, su.toModel())
			return nil
		})
	})
	sort.SliceStable(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, err
}

func (r *userRepo) Count(context.Context) (int64, error) {
	var n int64
	err := r.s.db.View(func(txn *badger.Txn) error {
		n = count(txn, prefixUser)
		return nil
	})
	return n, err
}
