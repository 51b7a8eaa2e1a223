// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/logging"
)

// maxLockoutDuration caps exponential lockout growth.
const maxLockoutDuration = 24 * time.Hour

// LockoutEntry tracks failed sign-ins for one subject.
type LockoutEntry struct {
	Subject        string    `json:"subject"`
	FailedAttempts int       `json:"failed_attempts"`
	FirstAttempt   time.Time `json:"first_attempt"`
	LastAttempt    time.Time `json:"last_attempt"`
	LockoutCount   int       `json:"lockout_count"`
	LockedUntil    time.Time `json:"locked_until"`
}

// IsLocked reports whether the entry is locked at now.
func (e *LockoutEntry) IsLocked(now time.Time) bool {
	return now.Before(e.LockedUntil)
}

// LockoutStore persists lockout entries.
type LockoutStore interface {
	GetEntry(ctx context.Context, subject string) (*LockoutEntry, error)
	SaveEntry(ctx context.Context, entry *LockoutEntry) error
	DeleteEntry(ctx context.Context, subject string) error
	CleanupExpired(ctx context.Context, before time.Time) (int, error)
}

// LockoutManager applies the lockout policy.
type LockoutManager struct {
	cfg   config.LockoutConfig
	store LockoutStore
	now   func() time.Time

	mu        sync.Mutex
	onLockout func(entry LockoutEntry)
}

// NewLockoutManager returns a manager using store, or an in-memory store
// when store is nil.
func NewLockoutManager(cfg config.LockoutConfig, store LockoutStore) *LockoutManager {
	if store == nil {
		store = NewMemoryLockoutStore()
	}
	return &LockoutManager{cfg: cfg, store: store, now: time.Now}
}

// SetOnLockout registers a callback fired when a subject becomes locked.
func (m *LockoutManager) SetOnLockout(fn func(entry LockoutEntry)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLockout = fn
}

func lockoutKey(subject string) string {
	return strings.ToLower(strings.TrimSpace(subject))
}

// CheckLocked returns whether subject is locked and for how long.
func (m *LockoutManager) CheckLocked(ctx context.Context, subject string) (bool, time.Duration, error) {
	if !m.cfg.Enabled || subject == "" {
		return false, 0, nil
	}
	entry, err := m.store.GetEntry(ctx, lockoutKey(subject))
	if err != nil {
		if errors.Is(err, ErrLockoutNotFound) {
			return false, 0, nil
		}
		return false, 0, fmt.Errorf("check lockout: %w", err)
	}
	now := m.now()
	if !entry.IsLocked(now) {
		return false, 0, nil
	}
	return true, entry.LockedUntil.Sub(now), nil
}

// RecordFailure counts a failed attempt and reports whether the subject is
// now locked. Attempts older than the window start a fresh count.
func (m *LockoutManager) RecordFailure(ctx context.Context, subject string) (bool, time.Duration, error) {
	if !m.cfg.Enabled || subject == "" {
		return false, 0, nil
	}
	key := lockoutKey(subject)

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, err := m.store.GetEntry(ctx, key)
	if err != nil && !errors.Is(err, ErrLockoutNotFound) {
		return false, 0, fmt.Errorf("get lockout entry: %w", err)
	}
	if entry == nil {
		entry = &LockoutEntry{Subject: key}
	}

	now := m.now()
	if entry.IsLocked(now) {
		return true, entry.LockedUntil.Sub(now), nil
	}
	if entry.FailedAttempts == 0 || now.Sub(entry.FirstAttempt) > m.cfg.Window {
		entry.FailedAttempts = 0
		entry.FirstAttempt = now
	}
	entry.FailedAttempts++
	entry.LastAttempt = now

	if entry.FailedAttempts < m.cfg.MaxAttempts {
		return false, 0, m.store.SaveEntry(ctx, entry)
	}

	d := lockoutDuration(m.cfg.Duration, entry.LockoutCount)
	entry.LockedUntil = now.Add(d)
	entry.LockoutCount++
	entry.FailedAttempts = 0

	logging.Warn().
		Str("subject", logging.SanitizeEmail(key)).
		Dur("duration", d).
		Int("lockout_count", entry.LockoutCount).
		Msg("Account locked")

	if err := m.store.SaveEntry(ctx, entry); err != nil {
		return false, 0, fmt.Errorf("save locked entry: %w", err)
	}
	if m.onLockout != nil {
		go m.onLockout(*entry)
	}
	return true, d, nil
}

// RecordSuccess clears any lockout state for subject.
func (m *LockoutManager) RecordSuccess(ctx context.Context, subject string) error {
	if !m.cfg.Enabled || subject == "" {
		return nil
	}
	if err := m.store.DeleteEntry(ctx, lockoutKey(subject)); err != nil && !errors.Is(err, ErrLockoutNotFound) {
		return fmt.Errorf("clear lockout: %w", err)
	}
	return nil
}

// Cleanup drops unlocked entries idle for longer than a day.
func (m *LockoutManager) Cleanup(ctx context.Context) (int, error) {
	return m.store.CleanupExpired(ctx, m.now().Add(-24*time.Hour))
}

// lockoutDuration doubles base for each previous lockout.
func lockoutDuration(base time.Duration, previous int) time.Duration {
	d := base
	for i := 0; i < previous && d < maxLockoutDuration; i++ {
		d *= 2
	}
	if d > maxLockoutDuration {
		return maxLockoutDuration
	}
	return d
}

// MemoryLockoutStore is a process-local LockoutStore.
type MemoryLockoutStore struct {
	entries map[string]LockoutEntry
	mu      sync.RWMutex
}

// NewMemoryLockoutStore returns an empty store.
func NewMemoryLockoutStore() *MemoryLockoutStore {
	return &MemoryLockoutStore{entries: make(map[string]LockoutEntry)}
}

// GetEntry implements LockoutStore.
func (s *MemoryLockoutStore) GetEntry(_ context.Context, subject string) (*LockoutEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[subject]
	if !ok {
		return nil, ErrLockoutNotFound
	}
	return &e, nil
}

// SaveEntry implements LockoutStore.
func (s *MemoryLockoutStore) SaveEntry(_ context.Context, entry *LockoutEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.Subject] = *entry
	return nil
}

// DeleteEntry implements LockoutStore.
func (s *MemoryLockoutStore) DeleteEntry(_ context.Context, subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[subject]; !ok {
		return ErrLockoutNotFound
	}
	delete(s.entries, subject)
	return nil
}

// CleanupExpired implements LockoutStore.
func (s *MemoryLockoutStore) CleanupExpired(_ context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, e := range s.entries {
		if e.LockedUntil.Before(before) && e.LastAttempt.Before(before) {
			delete(s.entries, k)
			n++
		}
	}
	return n, nil
}
