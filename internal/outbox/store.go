// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package outbox

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/launchpad/internal/apperr"
	"github.com/tomtom215/launchpad/internal/models"
)

const jobPrefix = "outbox:job:"

// ErrNotClaimable means the job is not pending (already claimed or finished).
var ErrNotClaimable = errors.New("outbox job is not pending")

// BadgerStore keeps outbox jobs in badger.
type BadgerStore struct {
	db  *badger.DB
	now func() time.Time

	mu        sync.RWMutex
	onEnqueue []func()
}

// NewBadgerStore wraps an open database. The caller owns db.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// OnEnqueue registers fn to run after a new job is stored.
func (s *BadgerStore) OnEnqueue(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEnqueue = append(s.onEnqueue, fn)
}

func jobKey(id string) []byte { return []byte(jobPrefix + id) }

// Enqueue stores job as pending and due now. It returns false without
// touching the stored job when the ID already exists.
func (s *BadgerStore) Enqueue(_ context.Context, job *models.OutboxJob) (bool, error) {
	if strings.TrimSpace(job.ID) == "" {
		return false, apperr.Validation("outbox job id is required")
	}
	if job.To == "" {
		return false, apperr.Validation("outbox job recipient is required")
	}

	now := s.now()
	created := false
	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(jobKey(job.ID))
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		job.Status = models.OutboxPending
		job.Attempts = 0
		job.LastError = ""
		job.NextAttemptAt = now
		job.CreatedAt = now
		job.UpdatedAt = now
		created = true
		return putJob(txn, job)
	})
	if err != nil {
		return false, fmt.Errorf("enqueue outbox job %s: %w", job.ID, err)
	}

	if created {
		s.mu.RLock()
		hooks := s.onEnqueue
		s.mu.RUnlock()
		for _, fn := range hooks {
			fn()
		}
	}
	return created, nil
}

// Get returns one job.
func (s *BadgerStore) Get(_ context.Context, id string) (*models.OutboxJob, error) {
	var job models.OutboxJob
	err := s.db.View(func(txn *badger.Txn) error {
		return getJob(txn, id, &job)
	})
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// Due returns up to limit pending jobs whose next attempt is at or before
// now, oldest first.
func (s *BadgerStore) Due(_ context.Context, now time.Time, limit int) ([]models.OutboxJob, error) {
	jobs, err := s.filter(func(j *models.OutboxJob) bool {
		return j.Status == models.OutboxPending && !j.NextAttemptAt.After(now)
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(jobs, func(i, k int) bool { return jobs[i].NextAttemptAt.Before(jobs[k].NextAttemptAt) })
	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

// Claim moves a pending job to sending in one transaction.
func (s *BadgerStore) Claim(_ context.Context, id string) (*models.OutboxJob, error) {
	var job models.OutboxJob
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := getJob(txn, id, &job); err != nil {
			return err
		}
		if job.Status != models.OutboxPending {
			return ErrNotClaimable
		}
		job.Status = models.OutboxSending
		job.UpdatedAt = s.now()
		return putJob(txn, &job)
	})
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// Update overwrites a job and stamps UpdatedAt.
func (s *BadgerStore) Update(_ context.Context, job *models.OutboxJob) error {
	job.UpdatedAt = s.now()
	return s.db.Update(func(txn *badger.Txn) error {
		return putJob(txn, job)
	})
}

// List returns jobs newest first, optionally filtered by status.
func (s *BadgerStore) List(_ context.Context, status models.OutboxStatus, limit int) ([]models.OutboxJob, error) {
	jobs, err := s.filter(func(j *models.OutboxJob) bool {
		return status == "" || j.Status == status
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(jobs, func(i, k int) bool { return jobs[i].CreatedAt.After(jobs[k].CreatedAt) })
	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

// CountByStatus returns the number of jobs per status.
func (s *BadgerStore) CountByStatus(_ context.Context) (map[models.OutboxStatus]int, error) {
	counts := map[models.OutboxStatus]int{
		models.OutboxPending: 0,
		models.OutboxSending: 0,
		models.OutboxSent:    0,
		models.OutboxFailed:  0,
	}
	_, err := s.filter(func(j *models.OutboxJob) bool {
		counts[j.Status]++
		return false
	})
	return counts, err
}

// Purge deletes sent and failed jobs last updated before cutoff.
func (s *BadgerStore) Purge(_ context.Context, cutoff time.Time) (int, error) {
	return s.rewrite(func(j *models.OutboxJob) (remove, changed bool) {
		return j.Status.Terminal() && j.UpdatedAt.Before(cutoff), false
	})
}

// RequeueStale returns jobs stuck in sending since before cutoff to pending.
func (s *BadgerStore) RequeueStale(_ context.Context, cutoff time.Time) (int, error) {
	now := s.now()
	return s.rewrite(func(j *models.OutboxJob) (remove, changed bool) {
		if j.Status != models.OutboxSending || !j.UpdatedAt.Before(cutoff) {
			return false, false
		}
		j.Status = models.OutboxPending
		j.NextAttemptAt = now
		j.UpdatedAt = now
		return false, true
	})
}

func (s *BadgerStore) filter(keep func(*models.OutboxJob) bool) ([]models.OutboxJob, error) {
	var jobs []models.OutboxJob
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(jobPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var j models.OutboxJob
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &j)
			}); err != nil {
				return err
			}
			if keep(&j) {
				jobs = append(jobs, j)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan outbox: %w", err)
	}
	return jobs, nil
}

// rewrite applies fn to every job in one transaction and returns how many
// were removed or changed.
func (s *BadgerStore) rewrite(fn func(*models.OutboxJob) (remove, changed bool)) (int, error) {
	type op struct {
		key    []byte
		job    models.OutboxJob
		remove bool
	}

	n := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		var ops []op
		collect := func() error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte(jobPrefix)
			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Rewind(); it.Valid(); it.Next() {
				item := it.Item()
				var j models.OutboxJob
				if err := item.Value(func(val []byte) error {
					return json.Unmarshal(val, &j)
				}); err != nil {
					return err
				}
				remove, changed := fn(&j)
				if remove || changed {
					ops = append(ops, op{key: item.KeyCopy(nil), job: j, remove: remove})
				}
			}
			return nil
		}
		if err := collect(); err != nil {
			return err
		}

		for i := range ops {
			var err error
			if ops[i].remove {
				err = txn.Delete(ops[i].key)
			} else {
				err = putJob(txn, &ops[i].job)
			}
			if err != nil {
				return err
			}
		}
		n = len(ops)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("rewrite outbox: %w", err)
	}
	return n, nil
}

func getJob(txn *badger.Txn, id string, job *models.OutboxJob) error {
	item, err := txn.Get(jobKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("outbox job %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, job)
	})
}

func putJob(txn *badger.Txn, job *models.OutboxJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return txn.Set(jobKey(job.ID), data)
}
