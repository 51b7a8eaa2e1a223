// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package badgerstore

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/launchpad/internal/models"
)

type contactRepo struct{ s *Store }

func (r *contactRepo) Create(_ context.Context, m *models.ContactMessage) error {
	if m.ID == "" {
		m.ID = r.s.newID()
	}
	m.CreatedAt = r.s.now()
	if m.Status == "" {
		m.Status = models.ContactNew
	}
	return r.s.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, prefixContact+m.ID, m)
	})
}

func (r *contactRepo) List(_ context.Context, opts models.ContactListOptions) ([]*models.ContactMessage, error) {
	msgs := []*models.ContactMessage{}
	err := r.s.db.View(func(txn *badger.Txn) error {
		return scan(txn, prefixContact, func(val []byte) error {
			var m models.ContactMessage
			if err := json.Unmarshal(val, &m); err != nil {
				return err
			}
			if opts.Matches(&m) {
				msgs = append(msgs, &m)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	models.SortContacts(msgs, opts.Sort)
	return models.Page(msgs, opts.Offset, opts.Limit), nil
}

func (r *contactRepo) UpdateStatus(_ context.Context, id, status string) (*models.ContactMessage, error) {
	var m models.ContactMessage
	err := r.s.db.Update(func(txn *badger.Txn) error {
		if err := getJSON(txn, prefixContact+id, &m); err != nil {
			return err
		}
		m.Status = status
		return setJSON(txn, prefixContact+id, &m)
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *contactRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	var n int64
	err := r.s.db.View(func(txn *badger.Txn) error {
		return scan(txn, prefixContact, func(val []byte) error {
			var m models.ContactMessage
			if err := json.Unmarshal(val, &m); err != nil {
				return err
			}
			if status == "" || m.Status == status {
				n++
			}
			return nil
		})
	})
	return n, err
}
