// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package badgerstore

import (
	"context"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/launchpad/internal/models"
)

type postRepo struct{ s *Store }

func (r *postRepo) Create(_ context.Context, p *models.Post) error {
	if p.ID == "" {
		p.ID = r.s.newID()
	}
	now := r.s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	if p.Status == "" {
		p.Status = models.PostDraft
	}
	return r.s.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, prefixPost+p.ID, p)
	})
}

func (r *postRepo) FindByID(_ context.Context, id string) (*models.Post, error) {
	var p models.Post
	err := r.s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, prefixPost+id, &p)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepo) Update(_ context.Context, id string, upd models.PostUpdate) (*models.Post, error) {
	var p models.Post
	err := r.s.db.Update(func(txn *badger.Txn) error {
		if err := getJSON(txn, prefixPost+id, &p); err != nil {
			return err
		}
		upd.Apply(&p, r.s.now())
		return setJSON(txn, prefixPost+id, &p)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepo) List(_ context.Context, opts models.PostListOptions) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := r.s.db.View(func(txn *badger.Txn) error {
		return scan(txn, prefixPost, func(val []byte) error {
			var p models.Post
			if err := json.Unmarshal(val, &p); err != nil {
				return err
			}
			if opts.Status == "" || p.Status == opts.Status {
				posts = append(posts, &p)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	return models.Page(posts, opts.Offset, opts.Limit), nil
}

func (r *postRepo) Count(context.Context) (int64, error) {
	var n int64
	err := r.s.db.View(func(txn *badger.Txn) error {
		n = count(txn, prefixPost)
		return nil
	})
	return n, err
}
